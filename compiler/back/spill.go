package back

import (
	"fmt"
	"slices"

	"github.com/slowlang/slp/compiler/asm"
)

// MissingColorError is a variable referenced by code but absent from the coloring.
type MissingColorError struct {
	Point int
	Var   asm.Var
	Name  string
}

// Rewrite replaces variable operands with registers or spill loads.
//
// A store to a colored variable becomes a move into its register.
// A store to a spilled variable stays a store into the variable's data cell.
// A read of a spilled variable is preceded by a load into a scratch register.
// Scratch registers alternate across consecutive spilled operands
// so two spilled operands of one instruction don't clobber each other.
//
// The result has no variable operands. cells are the data cells spilled variables need.
func Rewrite(p *asm.Prog, col Coloring, cfg Config) (_ *asm.Prog, cells []asm.Sym, err error) {
	palette := cfg.Palette()
	scratch := 0

	r := &asm.Prog{
		Code: make([]asm.Instr, 0, len(p.Code)),
	}

	color := func(i int, v asm.Var) (Color, error) {
		if int(v) >= len(col) || col[v] != Spilled && int(col[v]) >= len(palette) {
			return 0, &MissingColorError{Point: i, Var: v, Name: p.Name(v)}
		}

		return col[v], nil
	}

	for i, x := range p.Code {
		x = x.Clone()

		if vs := x.Defs(); len(vs) != 0 {
			v := vs[0]

			c, err := color(i, v)
			if err != nil {
				return nil, nil, err
			}

			if c == Spilled {
				x.Args[1] = asm.Sym(p.Name(v))
			} else {
				x = asm.I(asm.Move, palette[c], x.Args[0])
			}
		}

		for _, j := range x.Srcs() {
			v, ok := x.Args[j].(asm.Var)
			if !ok {
				continue
			}

			c, err := color(i, v)
			if err != nil {
				return nil, nil, err
			}

			if c != Spilled {
				x.Args[j] = palette[c]
				continue
			}

			reg := cfg.Scratch[scratch]
			scratch ^= 1

			r.Emit(asm.Load, reg, asm.Sym(p.Name(v)))

			x.Args[j] = reg
		}

		r.Code = append(r.Code, x)
	}

	for _, v := range col.Spilled() {
		cells = append(cells, asm.Sym(p.Name(v)))
	}

	slices.Sort(cells)

	return r, cells, nil
}

func (e *MissingColorError) Error() string {
	return fmt.Sprintf("point %d: variable %s has no color", e.Point, e.Name)
}
