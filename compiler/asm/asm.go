package asm

import (
	"fmt"
	"strconv"
)

type (
	Op    int
	Reg   int
	Var   int
	Imm   string
	Label int
	Sym   string

	// Operand is one of Reg, Var, Imm, Label or Sym.
	Operand interface {
		fmt.Stringer

		operand()
	}

	Instr struct {
		Op   Op
		Args []Operand
	}

	// Prog is a linear instruction sequence.
	// Position in Code is the program point.
	Prog struct {
		Vars []string // Var -> name
		Code []Instr

		vars map[string]Var
	}
)

const (
	Add Op = iota
	Sub
	Mul
	Div
	Move
	Store
	Load
	Li
	La
	Bge
	Ble
	Jump
	Mark
	Syscall

	opLast
)

const (
	Zero Reg = iota
	V0
	A0
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	T8
	T9
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7

	regLast
)

// Newline is the data cell holding "\n" used by print.
const Newline Sym = "newline"

var opNames = [...]string{
	Add:     "add",
	Sub:     "sub",
	Mul:     "mul",
	Div:     "div",
	Move:    "move",
	Store:   "sw",
	Load:    "lw",
	Li:      "li",
	La:      "la",
	Bge:     "bge",
	Ble:     "ble",
	Jump:    "j",
	Mark:    "label",
	Syscall: "syscall",
}

var regNames = [...]string{
	Zero: "$zero",
	V0:   "$v0",
	A0:   "$a0",
	T0:   "$t0",
	T1:   "$t1",
	T2:   "$t2",
	T3:   "$t3",
	T4:   "$t4",
	T5:   "$t5",
	T6:   "$t6",
	T7:   "$t7",
	T8:   "$t8",
	T9:   "$t9",
	S0:   "$s0",
	S1:   "$s1",
	S2:   "$s2",
	S3:   "$s3",
	S4:   "$s4",
	S5:   "$s5",
	S6:   "$s6",
	S7:   "$s7",
}

func (Reg) operand()   {}
func (Var) operand()   {}
func (Imm) operand()   {}
func (Label) operand() {}
func (Sym) operand()   {}

func I(op Op, args ...Operand) Instr {
	return Instr{Op: op, Args: args}
}

func (op Op) String() string {
	if op < 0 || op >= opLast {
		return fmt.Sprintf("op(%d)", int(op))
	}

	return opNames[op]
}

func (op Op) Arith() bool { return op >= Add && op <= Div }

func (op Op) Branch() bool { return op == Bge || op == Ble }

func (r Reg) String() string {
	if r < 0 || r >= regLast {
		return fmt.Sprintf("$r%d", int(r))
	}

	return regNames[r]
}

func (v Var) String() string { return "v" + strconv.Itoa(int(v)) }

func (x Imm) String() string { return string(x) }

func (l Label) String() string { return "LOOPLABEL" + strconv.Itoa(int(l)) }

func (s Sym) String() string { return string(s) }

// Var interns the variable name.
func (p *Prog) Var(name string) Var {
	if p.vars == nil {
		p.vars = make(map[string]Var, len(p.Vars))

		for i, n := range p.Vars {
			p.vars[n] = Var(i)
		}
	}

	if v, ok := p.vars[name]; ok {
		return v
	}

	v := Var(len(p.Vars))
	p.Vars = append(p.Vars, name)
	p.vars[name] = v

	return v
}

// Name returns the source name of v.
func (p *Prog) Name(v Var) string {
	if int(v) < 0 || int(v) >= len(p.Vars) {
		return v.String()
	}

	return p.Vars[v]
}

func (p *Prog) Emit(op Op, args ...Operand) {
	p.Code = append(p.Code, I(op, args...))
}

// Srcs returns the operand indexes x reads.
func (x Instr) Srcs() []int {
	switch {
	case x.Op.Arith():
		return []int{1, 2}
	case x.Op.Branch():
		return []int{0, 1}
	case x.Op == Move, x.Op == Li, x.Op == La, x.Op == Load:
		return []int{1}
	case x.Op == Store:
		return []int{0}
	}

	return nil
}

// Uses returns the variables read by x.
func (x Instr) Uses() (vs []Var) {
	for _, j := range x.Srcs() {
		if j >= len(x.Args) {
			continue
		}

		if v, ok := x.Args[j].(Var); ok {
			vs = append(vs, v)
		}
	}

	return vs
}

// Defs returns the variables x unconditionally overwrites.
// Only a store writes a variable; arithmetic writes scratch registers.
func (x Instr) Defs() []Var {
	if x.Op != Store || len(x.Args) != 2 {
		return nil
	}

	if v, ok := x.Args[1].(Var); ok {
		return []Var{v}
	}

	return nil
}

// Target is the label a branch, jump or marker refers to.
func (x Instr) Target() (Label, bool) {
	switch x.Op {
	case Bge, Ble:
		if len(x.Args) == 3 {
			l, ok := x.Args[2].(Label)
			return l, ok
		}
	case Jump, Mark:
		if len(x.Args) == 1 {
			l, ok := x.Args[0].(Label)
			return l, ok
		}
	}

	return 0, false
}

func (x Instr) Clone() Instr {
	return Instr{Op: x.Op, Args: append([]Operand(nil), x.Args...)}
}

func (x Instr) String() string {
	return string(x.Append(nil, nil))
}

// Append appends assembly text of x.
// Variable names are taken from p if it's not nil.
func (x Instr) Append(b []byte, p *Prog) []byte {
	if x.Op == Mark && len(x.Args) == 1 {
		b = append(b, x.Args[0].String()...)
		return append(b, ':')
	}

	b = append(b, x.Op.String()...)

	for i, a := range x.Args {
		if i == 0 {
			b = append(b, ' ')
		} else {
			b = append(b, ", "...)
		}

		if v, ok := a.(Var); ok && p != nil {
			b = append(b, p.Name(v)...)
			continue
		}

		b = append(b, a.String()...)
	}

	return b
}
