package back

import (
	"context"
	"slices"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/slp/compiler/asm"
)

type (
	Config struct {
		// Regs is the number of registers available for variables: $s0 .. $s(Regs-1).
		Regs int

		// Scratch registers spilled variables are loaded into.
		Scratch [2]asm.Reg

		// ConservativeJumps makes an unconditional jump fall through as well.
		ConservativeJumps bool
	}

	Compiler struct {
		Config
	}

	// Result of register allocation.
	Result struct {
		Prog  *asm.Prog // rewritten code, no variable operands left
		Cells []asm.Sym // data cells for spilled variables

		Coloring Coloring
		Graph    *Graph
		Live     *Liveness
		Succ     [][]int

		// Unreachable program points. They are rewritten like any other code.
		Unreachable []int
	}
)

const MaxRegs = int(asm.S7-asm.S0) + 1

func DefaultConfig() Config {
	return Config{
		Regs:    MaxRegs,
		Scratch: [2]asm.Reg{asm.T8, asm.T9},
	}
}

func New(cfg Config) *Compiler {
	return &Compiler{Config: cfg}
}

// Palette returns registers available for variables in color order.
func (c Config) Palette() []asm.Reg {
	p := make([]asm.Reg, 0, c.Regs)

	for i := 0; i < c.Regs; i++ {
		p = append(p, asm.S0+asm.Reg(i))
	}

	return p
}

func (c Config) Check() error {
	if c.Regs < 1 || c.Regs > MaxRegs {
		return errors.New("regs: want 1..%d, got %d", MaxRegs, c.Regs)
	}

	if c.Scratch[0] == c.Scratch[1] {
		return errors.New("scratch registers must differ: %v", c.Scratch[0])
	}

	for _, r := range c.Palette() {
		if r == c.Scratch[0] || r == c.Scratch[1] {
			return errors.New("scratch register %v is allocatable", r)
		}
	}

	return nil
}

// Allocate maps variables of p onto registers and spill cells.
// p is not modified.
func (c *Compiler) Allocate(ctx context.Context, p *asm.Prog) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: allocate", "instrs", len(p.Code), "vars", len(p.Vars), "regs", c.Regs)
	defer tr.Finish("err", &err)

	err = c.Check()
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}

	err = p.Check()
	if err != nil {
		return nil, errors.Wrap(err, "check code")
	}

	labels, err := p.Labels()
	if err != nil {
		return nil, errors.Wrap(err, "labels")
	}

	res = &Result{}

	res.Succ, err = Succ(p, labels, c.ConservativeJumps)
	if err != nil {
		return nil, errors.Wrap(err, "cfg")
	}

	for i, ok := range Reachable(res.Succ) {
		if !ok {
			res.Unreachable = append(res.Unreachable, i)
		}
	}

	if len(res.Unreachable) != 0 {
		tr.Printw("unreachable code", "points", len(res.Unreachable))
	}

	res.Live = Live(p, res.Succ)

	tr.Printw("liveness", "sweeps", res.Live.Sweeps)

	if tr.If("dump_live") {
		for i, x := range p.Code {
			tr.Printw("live", "i", i, "code", string(x.Append(nil, p)), "succ", res.Succ[i], "unreachable", slices.Contains(res.Unreachable, i),
				"gen", res.Live.Gen[i], "kill", res.Live.Kill[i], "in", res.Live.In[i], "out", res.Live.Out[i])
		}
	}

	res.Graph = Interference(p, res.Live)

	if tr.If("dump_graph") {
		tr.Printw("interference", "vars", p.Vars, "edges", res.Graph)
	}

	res.Coloring = ColorGraph(ctx, res.Graph, p.Vars, c.Regs)

	if tr.If("dump_color") {
		for v, col := range res.Coloring {
			tr.Printw("color", "var", p.Vars[v], "color", col)
		}
	}

	res.Prog, res.Cells, err = Rewrite(p, res.Coloring, c.Config)
	if err != nil {
		return nil, errors.Wrap(err, "rewrite")
	}

	tr.Printw("allocated", "spilled", len(res.Cells), "instrs", len(res.Prog.Code))

	if tr.If("dump_code") {
		for i, x := range res.Prog.Code {
			tr.Printw("code", "i", i, "code", x.String())
		}
	}

	return res, nil
}
