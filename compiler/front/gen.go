package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/slp/compiler/asm"
	"github.com/slowlang/slp/compiler/ast"
)

type (
	gen struct {
		p *asm.Prog

		temp  int // temps below are holding values not yet read
		label asm.Label
	}
)

// temps are $t0..$t7; $t8 and $t9 are left for spill loads.
const temps = 8

// errNoTemps is returned when an expression holds more values at once than there are temps.
var errNoTemps = errors.New("expression is too deep: more than %d temporary registers needed", temps)

var arith = map[ast.Op]asm.Op{
	ast.Add: asm.Add,
	ast.Sub: asm.Sub,
	ast.Mul: asm.Mul,
	ast.Div: asm.Div,
}

// exit branch: leave the loop when the condition does not hold.
var exitBranch = map[ast.CmpOp]asm.Op{
	ast.Less:    asm.Bge,
	ast.Greater: asm.Ble,
}

// Generate lowers the program into pseudo-instructions over variables.
func Generate(ctx context.Context, x ast.Stmt) (p *asm.Prog, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "front: generate")
	defer tr.Finish("err", &err)

	g := &gen{p: &asm.Prog{}}

	err = g.stmt(x)
	if err != nil {
		return nil, err
	}

	g.p.Emit(asm.Li, asm.V0, asm.Imm("10"))
	g.p.Emit(asm.Syscall)

	tr.Printw("generated", "instrs", len(g.p.Code), "vars", len(g.p.Vars), "labels", int(g.label))

	return g.p, nil
}

func (g *gen) stmt(x ast.Stmt) (err error) {
	defer g.release(g.temp)

	switch x := x.(type) {
	case *ast.Compound:
		if err = g.stmt(x.First); err != nil {
			return err
		}

		return g.stmt(x.Second)
	case *ast.Assign:
		dst := g.p.Var(x.Name)

		v, err := g.expr(x.Value)
		if err != nil {
			return errors.Wrap(err, "line %d: assign %v", x.Line, x.Name)
		}

		var t asm.Reg

		switch v.(type) {
		case asm.Imm:
			if t, err = g.tmp(); err != nil {
				return errors.Wrap(err, "line %d: assign %v", x.Line, x.Name)
			}

			g.p.Emit(asm.Li, t, v)
			v = t
		case asm.Var:
			if t, err = g.tmp(); err != nil {
				return errors.Wrap(err, "line %d: assign %v", x.Line, x.Name)
			}

			g.p.Emit(asm.Move, t, v)
			v = t
		}

		g.p.Emit(asm.Store, v, dst)
	case *ast.Print:
		for _, a := range x.Args {
			if err = g.print(a); err != nil {
				return errors.Wrap(err, "line %d: print", x.Line)
			}
		}
	case *ast.For:
		if err = g.stmt(x.Init); err != nil {
			return errors.Wrap(err, "line %d: for init", x.Line)
		}

		entry := g.newLabel()
		exit := g.newLabel()

		g.p.Emit(asm.Mark, entry)

		if err = g.cond(x.Cond, exit); err != nil {
			return errors.Wrap(err, "line %d: for condition", x.Line)
		}

		if err = g.stmt(x.Body); err != nil {
			return err
		}

		if err = g.stmt(x.Step); err != nil {
			return errors.Wrap(err, "line %d: for step", x.Line)
		}

		g.p.Emit(asm.Jump, entry)
		g.p.Emit(asm.Mark, exit)
	default:
		return errors.New("unsupported statement: %T", x)
	}

	return nil
}

func (g *gen) print(x ast.Expr) error {
	defer g.release(g.temp)

	v, err := g.expr(x)
	if err != nil {
		return err
	}

	v, err = g.load(v)
	if err != nil {
		return err
	}

	g.p.Emit(asm.Li, asm.V0, asm.Imm("1"))
	g.p.Emit(asm.Move, asm.A0, v)
	g.p.Emit(asm.Syscall)

	g.p.Emit(asm.Li, asm.V0, asm.Imm("4"))
	g.p.Emit(asm.La, asm.A0, asm.Newline)
	g.p.Emit(asm.Syscall)

	return nil
}

func (g *gen) cond(x *ast.Cmp, exit asm.Label) error {
	if x == nil {
		return errors.New("no condition")
	}

	defer g.release(g.temp)

	op, ok := exitBranch[x.Op]
	if !ok {
		return errors.New("unsupported comparison: %v", x.Op)
	}

	l, err := g.expr(x.Left)
	if err != nil {
		return err
	}

	r, err := g.expr(x.Right)
	if err != nil {
		return err
	}

	l, err = g.load(l)
	if err != nil {
		return err
	}

	g.p.Emit(op, l, r, exit)

	return nil
}

// expr returns the operand holding the value of x.
// A register result keeps its temp allocated until the caller releases it.
func (g *gen) expr(x ast.Expr) (asm.Operand, error) {
	switch x := x.(type) {
	case *ast.Ident:
		return g.p.Var(x.Name), nil
	case *ast.Num:
		return asm.Imm(x.Text), nil
	case *ast.BinOp:
		op, ok := arith[x.Op]
		if !ok {
			return nil, errors.New("unsupported operator: %v", x.Op)
		}

		mark := g.temp

		l, err := g.expr(x.Left)
		if err != nil {
			return nil, err
		}

		r, err := g.expr(x.Right)
		if err != nil {
			return nil, err
		}

		if l, err = g.load(l); err != nil {
			return nil, err
		}

		if r, err = g.load(r); err != nil {
			return nil, err
		}

		// operands are read before the result is written
		g.release(mark)

		t, err := g.tmp()
		if err != nil {
			return nil, err
		}

		g.p.Emit(op, t, l, r)

		return t, nil
	case *ast.Eseq:
		if err := g.stmt(x.Stmt); err != nil {
			return nil, err
		}

		return g.expr(x.Expr)
	case *ast.Cmp:
		return nil, errors.New("line %d: comparison is only allowed as a for condition", x.Line)
	default:
		return nil, errors.New("unsupported expression: %T", x)
	}
}

// load puts an immediate into a temp register.
func (g *gen) load(v asm.Operand) (asm.Operand, error) {
	if _, ok := v.(asm.Imm); !ok {
		return v, nil
	}

	t, err := g.tmp()
	if err != nil {
		return nil, err
	}

	g.p.Emit(asm.Li, t, v)

	return t, nil
}

// tmp allocates the next free temp.
func (g *gen) tmp() (asm.Reg, error) {
	if g.temp == temps {
		return 0, errNoTemps
	}

	r := asm.T0 + asm.Reg(g.temp)
	g.temp++

	return r, nil
}

// release frees temps allocated after mark.
func (g *gen) release(mark int) {
	g.temp = mark
}

func (g *gen) newLabel() asm.Label {
	l := g.label
	g.label++

	return l
}
