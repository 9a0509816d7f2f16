package asm

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	// MalformedInstrError is an instruction with wrong operand arity or kinds.
	MalformedInstrError struct {
		Point  int
		Instr  Instr
		Reason string
	}

	// UnresolvedLabelError is a branch or jump to a label with no marker.
	UnresolvedLabelError struct {
		Point int
		Label Label
	}

	// DuplicateLabelError is a label defined by more than one marker.
	DuplicateLabelError struct {
		Point int
		Prev  int
		Label Label
	}

	kinds uint8
)

const (
	kReg kinds = 1 << iota
	kVar
	kImm
	kLabel
	kSym

	kValue = kReg | kVar | kImm
)

var shapes = [...][]kinds{
	Add:     {kReg, kValue, kValue},
	Sub:     {kReg, kValue, kValue},
	Mul:     {kReg, kValue, kValue},
	Div:     {kReg, kValue, kValue},
	Move:    {kReg, kReg | kVar},
	Store:   {kReg, kVar | kSym},
	Load:    {kReg, kSym},
	Li:      {kReg, kImm},
	La:      {kReg, kSym},
	Bge:     {kValue, kValue, kLabel},
	Ble:     {kValue, kValue, kLabel},
	Jump:    {kLabel},
	Mark:    {kLabel},
	Syscall: {},
}

var kindNames = [...]string{"register", "variable", "immediate", "label", "symbol"}

// Check validates operand arity and kinds.
func (x Instr) Check() error {
	if x.Op < 0 || x.Op >= opLast {
		return errors.New("unknown opcode %d", int(x.Op))
	}

	want := shapes[x.Op]

	if len(x.Args) != len(want) {
		return errors.New("%v: want %d operands, got %d", x.Op, len(want), len(x.Args))
	}

	for i, a := range x.Args {
		k := kindOf(a)

		if k&want[i] == 0 {
			return errors.New("%v: operand %d: unexpected %v", x.Op, i, kindName(k))
		}
	}

	return nil
}

// Check validates every instruction.
func (p *Prog) Check() error {
	for i, x := range p.Code {
		if err := x.Check(); err != nil {
			return &MalformedInstrError{Point: i, Instr: x, Reason: err.Error()}
		}

		for _, v := range x.Uses() {
			if int(v) >= len(p.Vars) {
				return &MalformedInstrError{Point: i, Instr: x, Reason: fmt.Sprintf("undeclared variable %v", v)}
			}
		}

		for _, v := range x.Defs() {
			if int(v) >= len(p.Vars) {
				return &MalformedInstrError{Point: i, Instr: x, Reason: fmt.Sprintf("undeclared variable %v", v)}
			}
		}
	}

	return nil
}

// Labels builds the label table: label -> program point of its marker.
// Every referenced label must have exactly one marker.
func (p *Prog) Labels() (map[Label]int, error) {
	labels := make(map[Label]int)

	for i, x := range p.Code {
		if x.Op != Mark {
			continue
		}

		l, ok := x.Target()
		if !ok {
			return nil, &MalformedInstrError{Point: i, Instr: x, Reason: "marker without label"}
		}

		if prev, ok := labels[l]; ok {
			return nil, &DuplicateLabelError{Point: i, Prev: prev, Label: l}
		}

		labels[l] = i
	}

	for i, x := range p.Code {
		if x.Op == Mark {
			continue
		}

		l, ok := x.Target()
		if !ok {
			continue
		}

		if _, ok := labels[l]; !ok {
			return nil, &UnresolvedLabelError{Point: i, Label: l}
		}
	}

	return labels, nil
}

func kindOf(a Operand) kinds {
	switch a.(type) {
	case Reg:
		return kReg
	case Var:
		return kVar
	case Imm:
		return kImm
	case Label:
		return kLabel
	case Sym:
		return kSym
	default:
		return 0
	}
}

func kindName(k kinds) string {
	for i, n := range kindNames {
		if k == 1<<i {
			return n
		}
	}

	return "operand"
}

func (e *MalformedInstrError) Error() string {
	return fmt.Sprintf("point %d: malformed instruction %q: %s", e.Point, e.Instr.String(), e.Reason)
}

func (e *UnresolvedLabelError) Error() string {
	return fmt.Sprintf("point %d: unresolved label %v", e.Point, e.Label)
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("point %d: label %v already defined at point %d", e.Point, e.Label, e.Prev)
}
