package back

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/slp/compiler/asm"
)

func TestSucc(t *testing.T) {
	p := loopProg()

	labels, err := p.Labels()
	require.NoError(t, err)
	assert.Equal(t, map[asm.Label]int{0: 2, 1: 11}, labels)

	succ, err := Succ(p, labels, false)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, succ[0])
	assert.Equal(t, []int{3}, succ[2], "marker falls through")
	assert.Equal(t, []int{7, 11}, succ[6], "branch: taken and not taken")
	assert.Equal(t, []int{2}, succ[10], "jump does not fall through")
	assert.Empty(t, succ[12], "last instruction")
}

// The jump fall-through edge is imprecise but safe for liveness.
func TestSuccConservativeJumps(t *testing.T) {
	p := loopProg()

	labels, err := p.Labels()
	require.NoError(t, err)

	precise, err := Succ(p, labels, false)
	require.NoError(t, err)

	cons, err := Succ(p, labels, true)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, precise[10])
	assert.Equal(t, []int{2, 11}, cons[10])

	lp := Live(p, precise)
	lc := Live(p, cons)

	for i := range p.Code {
		assert.Subset(t, lc.In[i].Slice(), lp.In[i].Slice(), "point %d", i)
	}
}

func TestSuccBranchToNext(t *testing.T) {
	p := &asm.Prog{}
	x := p.Var("x")

	p.Emit(asm.Ble, x, asm.Imm("1"), asm.Label(0))
	p.Emit(asm.Mark, asm.Label(0))

	labels, err := p.Labels()
	require.NoError(t, err)

	succ, err := Succ(p, labels, false)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1}, nil}, succ)
}

func TestSuccUnresolved(t *testing.T) {
	p := &asm.Prog{}
	p.Emit(asm.Jump, asm.Label(3))

	_, err := Succ(p, map[asm.Label]int{}, false)

	var e *asm.UnresolvedLabelError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 0, e.Point)
}

func TestReachable(t *testing.T) {
	p := &asm.Prog{}
	x := p.Var("x")

	p.Emit(asm.Jump, asm.Label(0))
	p.Emit(asm.Move, asm.A0, x)
	p.Emit(asm.Mark, asm.Label(0))

	labels, err := p.Labels()
	require.NoError(t, err)

	succ, err := Succ(p, labels, false)
	require.NoError(t, err)

	assert.Equal(t, []bool{true, false, true}, Reachable(succ))
}
