package format

import (
	"context"
	"strconv"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/slp/compiler/asm"
	"github.com/slowlang/slp/compiler/ast"
)

// Main is the program entry label.
const Main asm.Sym = "main"

// Asm emits a complete MIPS program: code, spill cells and the newline string.
func Asm(ctx context.Context, b []byte, p *asm.Prog, cells []asm.Sym) ([]byte, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}

	b = hfmt.Appendf(b, ".text\n%v:\n", Main)
	b = Code(b, p)
	b = append(b, ".data\n"...)

	for _, c := range cells {
		if reserved(c) {
			return nil, errors.New("spill cell %v collides with a program label", c)
		}

		b = hfmt.Appendf(b, "%v: .word 0\n", c)
	}

	b = hfmt.Appendf(b, "%v: .asciiz \"\\n\"\n", asm.Newline)

	return b, nil
}

// reserved reports whether a data cell name clashes with a label or the newline string.
func reserved(c asm.Sym) bool {
	if c == Main || c == asm.Newline {
		return true
	}

	n, ok := strings.CutPrefix(string(c), "LOOPLABEL")
	if !ok || n == "" {
		return false
	}

	_, err := strconv.Atoi(n)

	return err == nil
}

// Code appends instructions one per line. Label markers are not indented.
func Code(b []byte, p *asm.Prog) []byte {
	for _, x := range p.Code {
		if x.Op != asm.Mark {
			b = append(b, '\t')
		}

		b = x.Append(b, p)
		b = append(b, '\n')
	}

	return b
}

// Source formats the tree as canonical source text.
func Source(ctx context.Context, b []byte, x ast.Node) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Stmt:
		b, err = block(b, x, 0)
		if err != nil {
			return nil, err
		}

		b = append(b, '\n')
	case ast.Expr:
		b, err = expr(b, x)
	default:
		return nil, errors.New("unsupported node: %T", x)
	}

	return b, err
}

func block(b []byte, x ast.Stmt, d int) (_ []byte, err error) {
	for i, s := range ast.Flatten(x) {
		if i != 0 {
			b = append(b, ";\n"...)
		}

		b = app(b, d, "")

		b, err = stmt(b, s, d)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

func inline(b []byte, x ast.Stmt) (_ []byte, err error) {
	for i, s := range ast.Flatten(x) {
		if i != 0 {
			b = append(b, "; "...)
		}

		b, err = stmt(b, s, -1)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

// stmt formats a single statement. Negative d means on one line.
func stmt(b []byte, x ast.Stmt, d int) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Assign:
		b = app(b, 0, "%s := ", x.Name)

		b, err = expr(b, x.Value)
		if err != nil {
			return nil, errors.Wrap(err, "assign %v", x.Name)
		}
	case *ast.Print:
		b = append(b, "print("...)

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = expr(b, a)
			if err != nil {
				return nil, errors.Wrap(err, "print arg %d", i)
			}
		}

		b = append(b, ')')
	case *ast.For:
		if x.Cond == nil {
			return nil, errors.New("for: no condition")
		}

		b = append(b, "for ("...)

		b, err = stmt(b, x.Init, -1)
		if err != nil {
			return nil, errors.Wrap(err, "for init")
		}

		b = append(b, "; "...)

		b, err = expr(b, x.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "for cond")
		}

		b = append(b, "; "...)

		b, err = stmt(b, x.Step, -1)
		if err != nil {
			return nil, errors.Wrap(err, "for step")
		}

		if d < 0 {
			b = append(b, ") { "...)

			b, err = inline(b, x.Body)
			if err != nil {
				return nil, errors.Wrap(err, "for body")
			}

			b = append(b, " }"...)

			break
		}

		b = append(b, ") {\n"...)

		b, err = block(b, x.Body, d+1)
		if err != nil {
			return nil, errors.Wrap(err, "for body")
		}

		b = append(b, '\n')
		b = app(b, d, "}")
	case *ast.Compound:
		return inline(b, x)
	default:
		return nil, errors.New("unsupported stmt: %T", x)
	}

	return b, nil
}

func expr(b []byte, x ast.Expr) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Ident:
		b = append(b, x.Name...)
	case *ast.Num:
		b = append(b, x.Text...)
	case *ast.BinOp:
		switch x.Left.(type) {
		case *ast.Ident, *ast.Num:
		default:
			return nil, errors.New("left operand of %v must be a name or a number: %T", x.Op, x.Left)
		}

		b, _ = expr(b, x.Left)
		b = app(b, 0, " %v ", x.Op)

		b, err = expr(b, x.Right)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}
	case *ast.Cmp:
		b, err = expr(b, x.Left)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %v ", x.Op)

		b, err = expr(b, x.Right)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}
	case *ast.Eseq:
		b = append(b, '(')

		b, err = inline(b, x.Stmt)
		if err != nil {
			return nil, errors.Wrap(err, "eseq stmt")
		}

		b = append(b, ", "...)

		b, err = expr(b, x.Expr)
		if err != nil {
			return nil, errors.Wrap(err, "eseq expr")
		}

		b = append(b, ')')
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	for i := 0; i < d; i++ {
		b = append(b, '\t')
	}

	b = hfmt.Appendf(b, f, args...)
	return b
}
