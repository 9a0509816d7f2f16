package back

import (
	"context"
	"strconv"

	"nikand.dev/go/heap"
	"tlog.app/go/tlog"

	"github.com/slowlang/slp/compiler/asm"
)

type (
	// Color is a register class index in [0, k) or Spilled.
	Color int

	// Coloring maps Var -> Color.
	Coloring []Color

	simplifyNode struct {
		v   asm.Var
		deg int
	}

	worklist struct {
		heap.Heap[*simplifyNode]

		k     int
		names []string
	}

	stackFrame struct {
		v         asm.Var
		neighbors Vars
		spill     bool
	}
)

const Spilled Color = -1

// ColorGraph assigns each of the graph nodes one of k colors or Spilled.
//
// Simplify removes nodes with degree < k in name order.
// When there is none the node with the highest degree (then lowest name)
// is removed as a potential spill.
// Select pops nodes in reverse removal order and gives each the lowest color
// none of its already colored neighbors hold.
func ColorGraph(ctx context.Context, g *Graph, names []string, k int) Coloring {
	tr := tlog.SpanFromContext(ctx)

	n := g.Len()

	adj := make([]Vars, n)
	nodes := make([]*simplifyNode, n)

	wl := &worklist{k: k, names: names}
	wl.Heap.Less = wl.less

	for v := range adj {
		adj[v] = g.Neighbors(asm.Var(v))
		nodes[v] = &simplifyNode{v: asm.Var(v), deg: g.Degree(asm.Var(v))}

		wl.Push(nodes[v])
	}

	stack := make([]stackFrame, 0, n)

	for wl.Len() != 0 {
		nd := wl.Pop()
		v := nd.v

		f := stackFrame{v: v, neighbors: adj[v].Copy(), spill: nd.deg >= k}
		stack = append(stack, f)

		if f.spill {
			tr.V("color").Printw("potential spill", "var", wl.name(v), "degree", nd.deg, "k", k)
		}

		adj[v].Range(func(u asm.Var) bool {
			adj[u].Clear(v)
			nodes[u].deg--

			wl.fix(nodes[u])

			return true
		})

		adj[v].Reset()
	}

	col := make(Coloring, n)

	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]

		used := make([]bool, k)

		f.neighbors.Range(func(u asm.Var) bool {
			if c := col[u]; c != Spilled {
				used[c] = true
			}

			return true
		})

		col[f.v] = Spilled

		for c := range used {
			if !used[c] {
				col[f.v] = Color(c)
				break
			}
		}

		tr.V("color").Printw("select", "var", wl.name(f.v), "color", col[f.v], "potential_spill", f.spill)
	}

	return col
}

// Spilled returns spilled variables in id order.
func (c Coloring) Spilled() (vs []asm.Var) {
	for v, x := range c {
		if x == Spilled {
			vs = append(vs, asm.Var(v))
		}
	}

	return vs
}

func (w *worklist) less(d []*simplifyNode, i, j int) bool {
	a, b := d[i], d[j]

	if ta, tb := a.deg < w.k, b.deg < w.k; ta != tb {
		return ta
	} else if !ta && a.deg != b.deg {
		return a.deg > b.deg
	}

	if na, nb := w.name(a.v), w.name(b.v); na != nb {
		return na < nb
	}

	return a.v < b.v
}

func (w *worklist) fix(nd *simplifyNode) {
	for i, x := range w.Data {
		if x == nd {
			w.Heap.Fix(i)
			return
		}
	}
}

func (w *worklist) name(v asm.Var) string {
	if int(v) < len(w.names) {
		return w.names[v]
	}

	return v.String()
}

func (c Color) String() string {
	if c == Spilled {
		return "spilled"
	}

	return "c" + strconv.Itoa(int(c))
}
