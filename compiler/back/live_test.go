package back

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/slp/compiler/asm"
)

func TestLive(t *testing.T) {
	p := loopProg()
	a, b := p.Var("a"), p.Var("b")

	lv := live(t, p, false)

	assert.Equal(t, 3, lv.Sweeps)

	assert.Equal(t, []asm.Var{a}, lv.Gen[4].Slice())
	assert.Equal(t, []asm.Var{b}, lv.Kill[5].Slice())
	assert.Equal(t, []asm.Var{b}, lv.Gen[6].Slice(), "branch operands are read")

	assert.Empty(t, lv.In[0].Slice())
	assert.Equal(t, []asm.Var{a}, lv.Out[1].Slice())
	assert.Equal(t, []asm.Var{a, b}, lv.Out[5].Slice())
	assert.Equal(t, []asm.Var{a}, lv.In[5].Slice())
	assert.Equal(t, []asm.Var{a}, lv.Out[9].Slice())
	assert.Equal(t, []asm.Var{b}, lv.In[11].Slice())
	assert.Empty(t, lv.Out[12].Slice())
}

func TestLiveUnreachable(t *testing.T) {
	p := &asm.Prog{}
	x, y := p.Var("x"), p.Var("y")

	p.Emit(asm.Jump, asm.Label(0))
	p.Emit(asm.Add, asm.T0, x, y)
	p.Emit(asm.Mark, asm.Label(0))
	p.Emit(asm.Move, asm.A0, y)

	lv := live(t, p, false)

	assert.Equal(t, []asm.Var{x, y}, lv.In[1].Slice())
	assert.Equal(t, []asm.Var{y}, lv.Out[1].Slice())
	assert.Equal(t, []asm.Var{y}, lv.In[0].Slice())
}

func TestLiveEmpty(t *testing.T) {
	lv := Live(&asm.Prog{}, nil)

	assert.Equal(t, 1, lv.Sweeps)
	assert.Empty(t, lv.In)
}

func TestLiveProperties(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		p := randProg(rand.New(rand.NewSource(seed)), 40, 6)

		labels, err := p.Labels()
		require.NoError(t, err)

		succ, err := Succ(p, labels, false)
		require.NoError(t, err)

		lv := Live(p, succ)

		assert.LessOrEqual(t, lv.Sweeps, len(p.Vars)*len(p.Code)+1, "seed %d", seed)

		for i, x := range p.Code {
			for _, v := range x.Uses() {
				assert.True(t, lv.In[i].IsSet(v), "seed %d point %d: %v read but not live-in", seed, i, v)
			}

			want := lv.Out[i].AndNotCopy(lv.Kill[i])
			want.Or(lv.Gen[i])
			assert.Equal(t, want.Slice(), lv.In[i].Slice(), "seed %d point %d: in equation", seed, i)

			var out Vars
			for _, s := range succ[i] {
				out.Or(lv.In[s])
			}
			assert.Equal(t, out.Slice(), lv.Out[i].Slice(), "seed %d point %d: out equation", seed, i)
		}
	}
}

func live(t *testing.T, p *asm.Prog, conservative bool) *Liveness {
	t.Helper()

	labels, err := p.Labels()
	require.NoError(t, err)

	succ, err := Succ(p, labels, conservative)
	require.NoError(t, err)

	return Live(p, succ)
}

// randProg generates a well-formed program with nested loops.
func randProg(rnd *rand.Rand, n, nvars int) *asm.Prog {
	p := &asm.Prog{}

	vars := make([]asm.Var, nvars)
	for i := range vars {
		vars[i] = p.Var(string(rune('a' + i)))
	}

	val := func() asm.Operand {
		if rnd.Intn(4) == 0 {
			return asm.T0 + asm.Reg(rnd.Intn(8))
		}

		return vars[rnd.Intn(nvars)]
	}

	var open []asm.Label
	next := asm.Label(0)

	for i := 0; i < n; i++ {
		switch r := rnd.Intn(10); {
		case r < 3:
			p.Emit(asm.Store, asm.T0+asm.Reg(rnd.Intn(8)), vars[rnd.Intn(nvars)])
		case r < 6:
			p.Emit(asm.Add+asm.Op(rnd.Intn(4)), asm.T0+asm.Reg(rnd.Intn(8)), val(), val())
		case r < 7:
			p.Emit(asm.Move, asm.A0, val())
		case r < 8:
			p.Emit(asm.Mark, next)
			open = append(open, next)
			p.Emit(asm.Bge, val(), asm.Imm("10"), next+1)
			next += 2
		case r < 9 && len(open) != 0:
			l := open[len(open)-1]
			open = open[:len(open)-1]
			p.Emit(asm.Jump, l)
			p.Emit(asm.Mark, l+1)
		default:
			p.Emit(asm.Li, asm.T0, asm.Imm("1"))
		}
	}

	for len(open) != 0 {
		l := open[len(open)-1]
		open = open[:len(open)-1]
		p.Emit(asm.Jump, l)
		p.Emit(asm.Mark, l+1)
	}

	return p
}
