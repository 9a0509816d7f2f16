package back

import (
	"github.com/slowlang/slp/compiler/asm"
	"github.com/slowlang/slp/compiler/set"
)

type (
	Vars = set.Bitmap[asm.Var]

	// Liveness holds per program point dataflow sets.
	Liveness struct {
		Gen  []Vars
		Kill []Vars

		In  []Vars
		Out []Vars

		Sweeps int
	}
)

// Live solves backward liveness at instruction granularity:
//
//	out[i] = U in[s] for s in succ[i]
//	in[i]  = gen[i] U (out[i] \ kill[i])
//
// Sets only grow, so a sweep in which no set changed size is the fixpoint.
func Live(p *asm.Prog, succ [][]int) *Liveness {
	n := len(p.Code)

	lv := &Liveness{
		Gen:  make([]Vars, n),
		Kill: make([]Vars, n),
		In:   make([]Vars, n),
		Out:  make([]Vars, n),
	}

	for i, x := range p.Code {
		for _, v := range x.Uses() {
			lv.Gen[i].Set(v)
		}

		for _, v := range x.Defs() {
			lv.Kill[i].Set(v)
		}
	}

	for changed := true; changed; {
		changed = false
		lv.Sweeps++

		for i := n - 1; i >= 0; i-- {
			outSize := lv.Out[i].Size()
			inSize := lv.In[i].Size()

			for _, s := range succ[i] {
				lv.Out[i].Or(lv.In[s])
			}

			lv.In[i].Or(lv.Gen[i])
			lv.In[i].Or(lv.Out[i].AndNotCopy(lv.Kill[i]))

			if lv.Out[i].Size() != outSize || lv.In[i].Size() != inSize {
				changed = true
			}
		}
	}

	return lv
}
