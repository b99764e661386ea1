package cluster

import (
	"fmt"
	"math/bits"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/mayer"
)

// bondSource fills the pair Mayer functions of a box configuration.
type bondSource interface {
	fill(b *box.Box, beta float64, f []float64)
	clone() bondSource
}

// handles returns the molecule pair handles when the box points are its
// molecules, nil for leaf boxes.
func handles(b *box.Box, n int) *box.AtomPairSet {
	if b.Len() == n {
		return b.APairSet()
	}
	return nil
}

func pair(ap *box.AtomPairSet, i, j int) box.MoleculePair {
	if ap == nil {
		return box.MoleculePair{}
	}
	return ap.Pair(i, j)
}

// uniform uses one Mayer function for every pair.
type uniform struct {
	n int
	f mayer.Function
}

func (u *uniform) fill(b *box.Box, beta float64, f []float64) {
	n := u.n
	cp, ap := b.CPairSet(), handles(b, n)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			f[i*n+j] = u.f.F(pair(ap, i, j), cp.R2(i, j), beta)
		}
	}
}

func (u *uniform) clone() bondSource { return &uniform{n: u.n, f: u.f} }

// mixture picks the Mayer function of each pair by the species of its two
// molecules. The species of the points are read once per box.
type mixture struct {
	n     int
	table [][]mayer.Function
	seen  *box.Box
	types []int
}

func newMixture(n int, table [][]mayer.Function) (*mixture, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrSpecies)
	}
	for i, row := range table {
		if len(row) != len(table) {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrSpecies, i, len(row), len(table))
		}
		for j, f := range row {
			if f == nil {
				return nil, fmt.Errorf("%w: no function for species %d and %d", ErrSpecies, i, j)
			}
		}
	}
	return &mixture{n: n, table: table, types: make([]int, n)}, nil
}

func (m *mixture) fill(b *box.Box, beta float64, f []float64) {
	n := m.n
	if b != m.seen {
		mols := b.Molecules()
		if len(mols) != n {
			panic(fmt.Sprintf("cluster: mixture of %d points given a box of %d molecules", n, len(mols)))
		}
		for i, mol := range mols {
			if mol.Species < 0 || mol.Species >= len(m.table) {
				panic(fmt.Sprintf("cluster: molecule %d has species %d, table covers %d", i, mol.Species, len(m.table)))
			}
			m.types[i] = mol.Species
		}
		m.seen = b
	}
	cp, ap := b.CPairSet(), b.APairSet()
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			f[i*n+j] = m.table[m.types[i]][m.types[j]].F(ap.Pair(i, j), cp.R2(i, j), beta)
		}
	}
}

func (m *mixture) clone() bondSource {
	return &mixture{n: m.n, table: m.table, types: make([]int, m.n)}
}

// nonAdditive evaluates, for every subset of three or more points, the
// Mayer function of that subset's total non-additive energy. Functions are
// indexed by subset size; a nil entry means no non-additive energy.
type nonAdditive struct {
	n    int
	fs   []mayer.NonAdditive
	mols []*box.Molecule
	r2   []float64
}

func newNonAdditive(n int, fs []mayer.NonAdditive) *nonAdditive {
	padded := make([]mayer.NonAdditive, n+1)
	copy(padded, fs)
	return &nonAdditive{n: n, fs: padded, mols: make([]*box.Molecule, n), r2: make([]float64, n*(n-1)/2)}
}

func (na *nonAdditive) fill(b *box.Box, beta float64, multi []float64) {
	n := na.n
	cp := b.CPairSet()
	all := b.Molecules()
	for s := 7; s < 1<<n; s++ {
		k := bits.OnesCount(uint(s))
		if k < 3 || na.fs[k] == nil {
			multi[s] = 0
			continue
		}
		var idx [MaxPoints]int
		m := 0
		for i := 0; i < n; i++ {
			if s&(1<<i) != 0 {
				idx[m] = i
				if len(all) == n {
					na.mols[m] = all[i]
				}
				m++
			}
		}
		for a := 0; a < k-1; a++ {
			for c := a + 1; c < k; c++ {
				na.r2[mayer.PairIndex(a, c, k)] = cp.R2(idx[a], idx[c])
			}
		}
		multi[s] = na.fs[k].F(na.mols[:k], na.r2[:k*(k-1)/2], beta)
	}
}

func (na *nonAdditive) clone() *nonAdditive { return newNonAdditive(na.n, na.fs) }
