package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/slp/compiler/asm"
	"github.com/slowlang/slp/compiler/ast"
)

var exitCode = []string{
	"li $v0, 10",
	"syscall",
}

func generate(t *testing.T, src string) (*asm.Prog, []string) {
	t.Helper()

	p, err := Generate(context.Background(), parse(t, src))
	require.NoError(t, err)
	require.NoError(t, p.Check())

	var l []string
	for _, x := range p.Code {
		l = append(l, string(x.Append(nil, p)))
	}

	return p, l
}

func TestGenerateAssign(t *testing.T) {
	p, l := generate(t, "a := 1; b := a; c := a + 2 * b")

	assert.Equal(t, []string{"a", "b", "c"}, p.Vars)
	assert.Equal(t, append([]string{
		"li $t0, 1",
		"sw $t0, a",
		"move $t0, a",
		"sw $t0, b",
		"li $t0, 2",
		"mul $t0, $t0, b",
		"add $t0, a, $t0",
		"sw $t0, c",
	}, exitCode...), l)
}

func TestGeneratePrint(t *testing.T) {
	_, l := generate(t, "a := 3; print(a, 7)")

	assert.Equal(t, append([]string{
		"li $t0, 3",
		"sw $t0, a",

		"li $v0, 1",
		"move $a0, a",
		"syscall",
		"li $v0, 4",
		"la $a0, newline",
		"syscall",

		"li $t0, 7",
		"li $v0, 1",
		"move $a0, $t0",
		"syscall",
		"li $v0, 4",
		"la $a0, newline",
		"syscall",
	}, exitCode...), l)
}

func TestGenerateFor(t *testing.T) {
	_, l := generate(t, "for (i := 0; i < 3; i := i + 1) { print(i) }")

	assert.Equal(t, append([]string{
		"li $t0, 0",
		"sw $t0, i",
		"LOOPLABEL0:",
		"bge i, 3, LOOPLABEL1",
		"li $v0, 1",
		"move $a0, i",
		"syscall",
		"li $v0, 4",
		"la $a0, newline",
		"syscall",
		"li $t0, 1",
		"add $t0, i, $t0",
		"sw $t0, i",
		"j LOOPLABEL0",
		"LOOPLABEL1:",
	}, exitCode...), l)
}

func TestGenerateForGreater(t *testing.T) {
	_, l := generate(t, "for (i := 5; 0 > i; i := i - 1) { s := i }")

	assert.Equal(t, []string{
		"li $t0, 5",
		"sw $t0, i",
		"LOOPLABEL0:",
		"li $t0, 0",
		"ble $t0, i, LOOPLABEL1",
		"move $t0, i",
		"sw $t0, s",
		"li $t0, 1",
		"sub $t0, i, $t0",
		"sw $t0, i",
		"j LOOPLABEL0",
		"LOOPLABEL1:",
	}, l[:len(l)-len(exitCode)])
}

func TestGenerateForComputedOperands(t *testing.T) {
	_, l := generate(t, "for (i := 0; i + 1 < 2 + 3 + 4; i := i + 1) { print(i) }")

	assert.Equal(t, []string{
		"li $t0, 0",
		"sw $t0, i",
		"LOOPLABEL0:",
		"li $t0, 1",
		"add $t0, i, $t0",
		"li $t1, 3",
		"li $t2, 4",
		"add $t1, $t1, $t2",
		"li $t2, 2",
		"add $t1, $t2, $t1",
		"bge $t0, $t1, LOOPLABEL1",
	}, l[:11])
}

// Every temp read must have been written by the instruction computing it,
// with no write to the same temp in between.
func TestGenerateTempsNotClobbered(t *testing.T) {
	for _, src := range []string{
		"for (i := 0; i + 1 < 1 + 2 + 3 + 4 + 5 + 6 + 7 + 8 + 9 + 10; i := i + 1) { print(i) }",
		"a := 1 + (b := 2 * 3 - 4, b + (c := b / 2, c * c + 1))",
		"print(1 + 2, 3 * (x := 4 + 5, x - 6), 7)",
		"for (i := 1 * 2; (j := i + 1, j * j) > i - 1 + 2; i := i + (k := 1 + 1, k)) { print(i + 1, 2) }",
	} {
		p, _ := generate(t, src)

		written := map[asm.Reg]bool{}

		for i, x := range p.Code {
			for _, j := range x.Srcs() {
				r, ok := x.Args[j].(asm.Reg)
				if !ok || r < asm.T0 || r > asm.T7 {
					continue
				}

				assert.True(t, written[r], "%q: point %d: %v reads %v which is not live", src, i, x, r)

				delete(written, r)
			}

			if len(x.Args) != 0 && x.Op != asm.Store && !x.Op.Branch() && x.Op != asm.Jump && x.Op != asm.Mark {
				r, ok := x.Args[0].(asm.Reg)
				if ok && r >= asm.T0 && r <= asm.T7 {
					assert.False(t, written[r], "%q: point %d: %v overwrites %v before it is read", src, i, x, r)

					written[r] = true
				}
			}
		}

		assert.Empty(t, written, "%q: temps written but never read", src)
	}
}

func TestGenerateTempsExhausted(t *testing.T) {
	nested := func(levels int) ast.Stmt {
		var e ast.Expr = &ast.Ident{Name: "a"}

		for i := 0; i < levels; i++ {
			e = &ast.BinOp{
				Op:    ast.Add,
				Left:  &ast.BinOp{Op: ast.Mul, Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"}},
				Right: e,
			}
		}

		return &ast.Assign{Name: "c", Value: e}
	}

	p, err := Generate(context.Background(), nested(temps))
	require.NoError(t, err)
	assert.Contains(t, p.Code, asm.I(asm.Mul, asm.T7, asm.Var(1), asm.Var(2)))

	_, err = Generate(context.Background(), nested(temps+1))
	assert.ErrorContains(t, err, "too deep")
}

func TestGenerateNestedLabels(t *testing.T) {
	_, l := generate(t, "for (i := 0; i < 2; i := i + 1) { for (j := 0; j < 2; j := j + 1) { print(j) } }")

	var marks []string
	for _, s := range l {
		if s[len(s)-1] == ':' {
			marks = append(marks, s)
		}
	}

	assert.Equal(t, []string{"LOOPLABEL0:", "LOOPLABEL2:", "LOOPLABEL3:", "LOOPLABEL1:"}, marks)
}

func TestGenerateEseq(t *testing.T) {
	_, l := generate(t, "a := (b := 2, b * b)")

	assert.Equal(t, append([]string{
		"li $t0, 2",
		"sw $t0, b",
		"mul $t0, b, b",
		"sw $t0, a",
	}, exitCode...), l)
}

func TestGenerateErrors(t *testing.T) {
	cmp := &ast.Cmp{Op: ast.Less, Left: &ast.Num{Text: "1"}, Right: &ast.Num{Text: "2"}}

	_, err := Generate(context.Background(), &ast.Assign{Name: "a", Value: cmp})
	assert.ErrorContains(t, err, "comparison")

	_, err = Generate(context.Background(), &ast.For{
		Init: &ast.Assign{Name: "i", Value: &ast.Num{Text: "0"}},
		Step: &ast.Assign{Name: "i", Value: &ast.Num{Text: "1"}},
		Body: &ast.Print{Args: []ast.Expr{&ast.Ident{Name: "i"}}},
	})
	assert.ErrorContains(t, err, "no condition")
}
