package back

import (
	"slices"

	"github.com/slowlang/slp/compiler/asm"
)

// Succ computes the successor set of every program point.
//
// A jump transfers control only to its target unless conservative is set,
// in which case the next instruction is added as well.
// A conditional branch has both the target and the fall-through point.
// The last instruction has no fall-through.
func Succ(p *asm.Prog, labels map[asm.Label]int, conservative bool) ([][]int, error) {
	n := len(p.Code)
	succ := make([][]int, n)

	add := func(i, s int) {
		if s >= n || slices.Contains(succ[i], s) {
			return
		}

		succ[i] = append(succ[i], s)
	}

	for i, x := range p.Code {
		switch {
		case x.Op == asm.Jump, x.Op.Branch():
			l, _ := x.Target()

			to, ok := labels[l]
			if !ok {
				return nil, &asm.UnresolvedLabelError{Point: i, Label: l}
			}

			add(i, to)

			if x.Op == asm.Jump && !conservative {
				continue
			}
		}

		add(i, i+1)
	}

	for _, s := range succ {
		slices.Sort(s)
	}

	return succ, nil
}

// Reachable reports program points reachable from the entry.
func Reachable(succ [][]int) []bool {
	seen := make([]bool, len(succ))

	if len(succ) == 0 {
		return seen
	}

	q := []int{0}
	seen[0] = true

	for len(q) != 0 {
		i := q[len(q)-1]
		q = q[:len(q)-1]

		for _, j := range succ[i] {
			if seen[j] {
				continue
			}

			seen[j] = true
			q = append(q, j)
		}
	}

	return seen
}
