// Package state owns the particle configuration: positions, diameters,
// molecule and particle types, image flags, the displacement accumulators
// and the bond topology. The arrays are flat buffers addressed by index;
// a particle is never a heap object of its own.
package state

import (
	"errors"
	"fmt"
	"math"

	"github.com/kpotier/swapmc/pkg/box"
)

// Particles is the mutable state of the system. Positions are kept wrapped
// into [0, L) at all times; the image flags count the box crossings of
// each particle since the start so that an unwrapped trajectory can be
// reconstructed. The three displacement accumulators track the motion of
// each particle within the current sweep (Step), since the last neighbor
// list rebuild (Inter) and since the start (Total).
type Particles struct {
	N int
	L float64

	Pos      []float64 // 3N, wrapped
	Diam     []float64 // N
	MolType  []int     // N
	PartType []int     // N
	Flags    []int     // 3N box crossings

	Step  []float64 // 3N
	Inter []float64 // 3N
	Total []float64 // 3N

	bondOff []int32
	bondIdx []int32
}

// New returns a Particles value for n particles in a cubic box whose
// length is set by the target density. The positions are wrapped into the
// box; the flags and accumulators start at zero.
func New(n int, density float64, pos []float64, diam []float64, molType, partType []int) (*Particles, error) {
	if len(pos) != 3*n || len(diam) != n || len(molType) != n || len(partType) != n {
		return nil, errors.New("length of the particle arrays doesn't match the number of particles")
	}

	p := &Particles{
		N:        n,
		L:        math.Cbrt(float64(n) / density),
		Pos:      pos,
		Diam:     diam,
		MolType:  molType,
		PartType: partType,
		Flags:    make([]int, 3*n),
		Step:     make([]float64, 3*n),
		Inter:    make([]float64, 3*n),
		Total:    make([]float64, 3*n),
	}

	for i := 0; i < n; i++ {
		xyz, _ := box.Wrap(p.Position(i), p.L)
		p.Pos[3*i] = xyz[0]
		p.Pos[3*i+1] = xyz[1]
		p.Pos[3*i+2] = xyz[2]
	}

	return p, nil
}

// Position returns the wrapped position of particle i.
func (p *Particles) Position(i int) [3]float64 {
	return [3]float64{p.Pos[3*i], p.Pos[3*i+1], p.Pos[3*i+2]}
}

// CommitTranslation commits an accepted translation of particle i: the
// wrapped position, the image flag increments and the raw displacement
// move together or not at all.
func (p *Particles) CommitTranslation(i int, xyz [3]float64, flags [3]int, delta [3]float64) {
	for k := 0; k < 3; k++ {
		p.Pos[3*i+k] = xyz[k]
		p.Flags[3*i+k] += flags[k]
		p.Step[3*i+k] += delta[k]
	}
}

// SwapDiameters exchanges the diameters of particles i and j. Swapping
// twice restores the exact original values.
func (p *Particles) SwapDiameters(i, j int) {
	p.Diam[i], p.Diam[j] = p.Diam[j], p.Diam[i]
}

// AccumulateSweep folds the per-sweep displacements into the inter-rebuild
// and total accumulators and clears the sweep buffer.
func (p *Particles) AccumulateSweep() {
	for k := range p.Step {
		p.Inter[k] += p.Step[k]
		p.Total[k] += p.Step[k]
		p.Step[k] = 0
	}
}

// ResetInter clears the inter-rebuild displacement accumulator. The
// neighbor index calls it whenever it rebuilds.
func (p *Particles) ResetInter() {
	for k := range p.Inter {
		p.Inter[k] = 0
	}
}

// SetBonds installs the bond topology from a list of index pairs. The
// adjacency is stored symmetric as an offsets array plus a flat index
// array. Self loops and duplicate edges are rejected.
func (p *Particles) SetBonds(pairs [][2]int) error {
	counts := make([]int32, p.N+1)
	for _, pair := range pairs {
		i, j := pair[0], pair[1]
		if i == j {
			return fmt.Errorf("bond %d-%d is a self loop", i, j)
		}
		if i < 0 || i >= p.N || j < 0 || j >= p.N {
			return fmt.Errorf("bond %d-%d is out of range", i, j)
		}
		counts[i+1]++
		counts[j+1]++
	}

	for i := 1; i <= p.N; i++ {
		counts[i] += counts[i-1]
	}

	p.bondOff = counts
	p.bondIdx = make([]int32, counts[p.N])
	next := make([]int32, p.N)
	for _, pair := range pairs {
		i, j := pair[0], pair[1]
		p.bondIdx[p.bondOff[i]+next[i]] = int32(j)
		p.bondIdx[p.bondOff[j]+next[j]] = int32(i)
		next[i]++
		next[j]++
	}

	for i := 0; i < p.N; i++ {
		row := p.Bonds(i)
		for a := 0; a < len(row); a++ {
			for b := a + 1; b < len(row); b++ {
				if row[a] == row[b] {
					return fmt.Errorf("bond %d-%d appears twice", i, row[a])
				}
			}
		}
	}

	return nil
}

// Bonds returns the indices bonded to particle i. The row is empty when no
// topology was installed.
func (p *Particles) Bonds(i int) []int32 {
	if p.bondOff == nil {
		return nil
	}
	return p.bondIdx[p.bondOff[i]:p.bondOff[i+1]]
}

// Bonded reports whether a bond topology was installed.
func (p *Particles) Bonded() bool { return p.bondOff != nil }
