// Package neighbor maintains the Verlet neighbor index of the system: for
// each particle, the particles within a skin radius larger than the
// interaction cut off. The list is rebuilt on demand, when the accumulated
// displacements may have carried a particle across the skin margin.
package neighbor

import (
	"sort"

	"github.com/kpotier/swapmc/pkg/box"
	"github.com/kpotier/swapmc/pkg/state"
)

// List is the neighbor index. The rows are jagged slices into a single
// arena so that a rebuild reuses the storage of the previous one. Rows are
// symmetric (j on row i implies i on row j), sorted ascending and never
// contain the particle itself.
//
// Errors counts the audit failures: pairs that entered the interaction cut
// off without having been on the previous list. A non zero count at the
// end of a run means the skin was too tight for the move distribution. It
// is diagnostic only; the run goes on.
type List struct {
	Errors   int
	Rebuilds int

	n           int
	l           float64
	squareRc    float64
	squareRSkin float64
	squareRDiff float64
	brute       bool

	rows    [][]int32
	arena   []int32
	oldRows [][]int32
	old     []int32
	pairs   []int32 // scratch, flattened (i, j) hits of the last scan

	full  []int32 // brute mode row
	dirty bool
}

// New returns a neighbor index for n particles in a box of length l. In
// brute mode every particle neighbors every other and Rebuild is a no-op;
// it serves as a correctness reference for the Verlet mode.
func New(n int, l, rc, rSkin float64, brute bool) *List {
	nl := &List{
		n:           n,
		l:           l,
		squareRc:    rc * rc,
		squareRSkin: rSkin * rSkin,
		squareRDiff: (rSkin - rc) / 2 * ((rSkin - rc) / 2),
		brute:       brute,
		rows:        make([][]int32, n),
		oldRows:     make([][]int32, n),
	}

	if brute {
		nl.full = make([]int32, n)
		for i := range nl.full {
			nl.full[i] = int32(i)
		}
	}

	return nl
}

// Neighbors returns the neighbor row of particle i. In brute mode it is
// the full index range; the evaluator skips i itself.
func (nl *List) Neighbors(i int) []int32 {
	if nl.brute {
		return nl.full
	}
	return nl.rows[i]
}

// Rebuild scans every pair of particles and rebuilds the rows from the
// current positions. The new rows are audited against the previous ones:
// a pair already inside the interaction cut off that was absent from the
// previous list increments Errors, because the engine could not have seen
// that interaction during the previous cycle. The first rebuild has no
// previous list and counts nothing.
func (nl *List) Rebuild(p *state.Particles) {
	if nl.brute {
		return
	}
	nl.Rebuilds++

	nl.oldRows, nl.rows = nl.rows, nl.oldRows
	nl.old, nl.arena = nl.arena, nl.old

	counts := make([]int32, nl.n+1)
	nl.pairs = nl.pairs[:0]

	for i := 0; i < nl.n-1; i++ {
		pi := p.Position(i)
		for j := i + 1; j < nl.n; j++ {
			squareDistance := box.SquareDistance(pi, p.Position(j), nl.l)
			if squareDistance <= nl.squareRSkin {
				nl.pairs = append(nl.pairs, int32(i), int32(j))
				counts[i+1]++
				counts[j+1]++

				if nl.Rebuilds > 1 && squareDistance <= nl.squareRc {
					if !contains(nl.oldRows[i], int32(j)) {
						nl.Errors++
					}
				}
			}
		}
	}

	for i := 1; i <= nl.n; i++ {
		counts[i] += counts[i-1]
	}

	total := int(counts[nl.n])
	if cap(nl.arena) < total {
		nl.arena = make([]int32, total)
	}
	nl.arena = nl.arena[:total]

	next := make([]int32, nl.n)
	for k := 0; k < len(nl.pairs); k += 2 {
		i, j := nl.pairs[k], nl.pairs[k+1]
		nl.arena[counts[i]+next[i]] = j
		nl.arena[counts[j]+next[j]] = i
		next[i]++
		next[j]++
	}

	for i := 0; i < nl.n; i++ {
		nl.rows[i] = nl.arena[counts[i]:counts[i+1]]
	}

	nl.dirty = false
}

// contains reports whether x is on the sorted row.
func contains(row []int32, x int32) bool {
	k := sort.Search(len(row), func(i int) bool { return row[i] >= x })
	return k < len(row) && row[k] == x
}

// MarkDirty records that an accepted translation may have moved a particle
// relative to the list.
func (nl *List) MarkDirty() { nl.dirty = true }

// Dirty reports whether a translation was accepted since the last rebuild.
func (nl *List) Dirty() bool { return nl.dirty }

// MaybeRebuild rebuilds the list when the largest displacement accumulated
// since the last rebuild exceeds half the skin margin, so that no pair can
// have crossed into the cut off unseen. On rebuild the inter-rebuild
// accumulator is reset. It reports whether a rebuild happened. A clean
// list (no accepted translation since the last rebuild) is left alone.
func (nl *List) MaybeRebuild(p *state.Particles) bool {
	if nl.brute || !nl.dirty {
		return false
	}

	var max float64
	for i := 0; i < p.N; i++ {
		var square float64
		for k := 0; k < 3; k++ {
			d := p.Inter[3*i+k]
			square += d * d
		}
		if square > max {
			max = square
		}
	}

	if max <= nl.squareRDiff {
		return false
	}

	nl.Rebuild(p)
	p.ResetInter()
	return true
}
