package back

import (
	"github.com/slowlang/slp/compiler/asm"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Graph is an undirected interference graph over variables.
	Graph struct {
		adj []Vars
	}

	Edge [2]asm.Var
)

func NewGraph(n int) *Graph {
	return &Graph{adj: make([]Vars, n)}
}

// Interference adds an edge between every variable a store kills
// and every other variable live right after it.
func Interference(p *asm.Prog, lv *Liveness) *Graph {
	g := NewGraph(len(p.Vars))

	for i := range p.Code {
		lv.Kill[i].Range(func(v asm.Var) bool {
			lv.Out[i].Range(func(u asm.Var) bool {
				g.Add(u, v)

				return true
			})

			return true
		})
	}

	return g
}

func (g *Graph) Len() int { return len(g.adj) }

// Add inserts the undirected edge {u, v}. Self edges are ignored.
func (g *Graph) Add(u, v asm.Var) {
	if u == v || g.Adjacent(u, v) {
		return
	}

	g.adj[u].Set(v)
	g.adj[v].Set(u)
}

func (g *Graph) Adjacent(u, v asm.Var) bool {
	return g.adj[u].IsSet(v)
}

func (g *Graph) Degree(v asm.Var) int {
	return g.adj[v].Size()
}

func (g *Graph) Neighbors(v asm.Var) Vars {
	return g.adj[v].Copy()
}

// Edges returns every edge once, u < v, sorted.
func (g *Graph) Edges() (es []Edge) {
	for u := range g.adj {
		for _, v := range g.adj[u].Slice() {
			if asm.Var(u) < v {
				es = append(es, Edge{asm.Var(u), v})
			}
		}
	}

	return es
}

func (g *Graph) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, -1)

	for _, x := range g.Edges() {
		b = e.AppendTag(b, tlwire.Array, -1)
		b = e.AppendInt(b, int(x[0]))
		b = e.AppendInt(b, int(x[1]))
		b = e.AppendBreak(b)
	}

	b = e.AppendBreak(b)

	return b
}
