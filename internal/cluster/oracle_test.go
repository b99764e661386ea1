package cluster

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/mayer"
	"github.com/san-kum/virial/internal/potential"
)

// graphSum enumerates every graph on n points and sums the product of f over
// the edges of the biconnected ones.
func graphSum(n int, f []float64) float64 {
	type edge struct{ i, j int }
	var edges []edge
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, edge{i, j})
		}
	}
	sum := 0.0
	for g := 1; g < 1<<len(edges); g++ {
		adj := make([][]bool, n)
		for i := range adj {
			adj[i] = make([]bool, n)
		}
		w := 1.0
		for k, e := range edges {
			if g&(1<<k) != 0 {
				adj[e.i][e.j], adj[e.j][e.i] = true, true
				w *= f[e.i*n+e.j]
			}
		}
		if biconnected(adj) {
			sum += w
		}
	}
	return sum
}

func biconnected(adj [][]bool) bool {
	n := len(adj)
	if !connected(adj, -1) {
		return false
	}
	if n == 2 {
		return true
	}
	for v := 0; v < n; v++ {
		if !connected(adj, v) {
			return false
		}
	}
	return true
}

// connected reports whether the graph minus point skip is connected.
func connected(adj [][]bool, skip int) bool {
	n := len(adj)
	start := 0
	if skip == 0 {
		start = 1
	}
	seen := make([]bool, n)
	seen[start] = true
	stack := []int{start}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for u := 0; u < n; u++ {
			if u != skip && adj[v][u] && !seen[u] {
				seen[u] = true
				stack = append(stack, u)
			}
		}
	}
	for v := 0; v < n; v++ {
		if v != skip && !seen[v] {
			return false
		}
	}
	return true
}

func pointBox(t testing.TB, pos ...r3.Vec) *box.Box {
	t.Helper()
	mols := make([]*box.Molecule, len(pos))
	for i, p := range pos {
		mols[i] = box.NewPoint(i, 0, p)
	}
	b, err := box.New(mols)
	require.NoError(t, err)
	return b
}

func randomPoints(rng *rand.Rand, n int, spread float64) []r3.Vec {
	pos := make([]r3.Vec, n)
	for i := 1; i < n; i++ {
		pos[i] = r3.Vec{
			X: spread * (2*rng.Float64() - 1),
			Y: spread * (2*rng.Float64() - 1),
			Z: spread * (2*rng.Float64() - 1),
		}
	}
	return pos
}

func bondsOf(b *box.Box, f mayer.Function, beta float64) []float64 {
	n := b.Len()
	out := make([]float64, n*n)
	cp := b.CPairSet()
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			out[i*n+j] = f.F(b.APairSet().Pair(i, j), cp.R2(i, j), beta)
		}
	}
	return out
}

func ljMayer() mayer.Function { return mayer.NewSpherical(potential.NewLennardJones(1, 1)) }

// constant is a Mayer function with the same value for every pair.
type constant float64

func (c constant) F(box.MoleculePair, float64, float64) float64 { return float64(c) }

// hyperedge is a bond over the points of mask with Mayer value w.
type hyperedge struct {
	mask int
	w    float64
}

// hypergraphSum is graphSum for bonds over any number of points: it sums the
// product of w over every biconnected set of hyperedges. Removing a point
// shrinks the hyperedges that hold it.
func hypergraphSum(n int, edges []hyperedge) float64 {
	sum := 0.0
	chosen := make([]int, 0, len(edges))
	for g := 1; g < 1<<len(edges); g++ {
		chosen = chosen[:0]
		w := 1.0
		for k, e := range edges {
			if g&(1<<k) != 0 {
				chosen = append(chosen, e.mask)
				w *= e.w
			}
		}
		if hyperBiconnected(n, chosen) {
			sum += w
		}
	}
	return sum
}

func hyperBiconnected(n int, masks []int) bool {
	if !hyperConnected(n, masks, -1) {
		return false
	}
	for v := 0; n > 2 && v < n; v++ {
		if !hyperConnected(n, masks, v) {
			return false
		}
	}
	return true
}

func hyperConnected(n int, masks []int, skip int) bool {
	root := make([]int, n)
	for i := range root {
		root[i] = i
	}
	find := func(i int) int {
		for root[i] != i {
			i = root[i]
		}
		return i
	}
	for _, m := range masks {
		first := -1
		for i := 0; i < n; i++ {
			if i == skip || m&(1<<i) == 0 {
				continue
			}
			if first < 0 {
				first = i
				continue
			}
			root[find(i)] = find(first)
		}
	}
	r := -1
	for i := 0; i < n; i++ {
		if i == skip {
			continue
		}
		if r < 0 {
			r = find(i)
		} else if find(i) != r {
			return false
		}
	}
	return true
}

// pairEdges lists the pair bonds of b as hyperedges.
func pairEdges(b *box.Box, f mayer.Function, beta float64) []hyperedge {
	n := b.Len()
	fs := bondsOf(b, f, beta)
	var out []hyperedge
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, hyperedge{mask: 1<<i | 1<<j, w: fs[i*n+j]})
		}
	}
	return out
}

// tripletEdges lists one hyperedge per triplet of b with the Mayer function
// of that triplet's energy.
func tripletEdges(b *box.Box, f mayer.NonAdditive, beta float64) []hyperedge {
	n := b.Len()
	cp, mols := b.CPairSet(), b.Molecules()
	var out []hyperedge
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				w := f.F([]*box.Molecule{mols[i], mols[j], mols[k]},
					[]float64{cp.R2(i, j), cp.R2(i, k), cp.R2(j, k)}, beta)
				out = append(out, hyperedge{mask: 1<<i | 1<<j | 1<<k, w: w})
			}
		}
	}
	return out
}

// spreadPoints is randomPoints with no two points closer than dmin.
func spreadPoints(rng *rand.Rand, n int, spread, dmin float64) []r3.Vec {
	for {
		pos := randomPoints(rng, n, spread)
		ok := true
		for i := 0; i < n-1 && ok; i++ {
			for j := i + 1; j < n; j++ {
				if r3.Norm(r3.Sub(pos[i], pos[j])) < dmin {
					ok = false
					break
				}
			}
		}
		if ok {
			return pos
		}
	}
}

// constantMulti is a non-additive Mayer function with the same value for
// every set.
type constantMulti float64

func (c constantMulti) F([]*box.Molecule, []float64, float64) float64 { return float64(c) }

// nanBelow is f, except NaN for pairs closer than sqrt(r2).
type nanBelow struct {
	f  mayer.Function
	r2 float64
}

func (n nanBelow) F(p box.MoleculePair, r2, beta float64) float64 {
	if r2 < n.r2 {
		return math.NaN()
	}
	return n.f.F(p, r2, beta)
}
