// Package energy evaluates the potential energy of the system and of
// single particles under tentative moves. The polymer model adds bonded
// terms (FENE, or the Pedersen substitution on the end pair of a trimer)
// on top of the non bonded Lennard-Jones loop.
package energy

import (
	"github.com/kpotier/swapmc/pkg/box"
	"github.com/kpotier/swapmc/pkg/neighbor"
	"github.com/kpotier/swapmc/pkg/potential"
	"github.com/kpotier/swapmc/pkg/state"
)

// Evaluator computes energies against the current particle state. A
// tentative position is always evaluated against the current positions of
// every other particle; the neighbor index must not be rebuilt before the
// energy difference of a move is final.
type Evaluator struct {
	par *state.Particles
	nl  *neighbor.List

	squareRc float64
	shift    float64

	polymer  bool
	bond     potential.BondKind
	squareR0 float64
	feneK    float64
}

// New returns an evaluator for the atomic model: particles interact only
// through the truncated Lennard-Jones potential shifted by shift.
func New(par *state.Particles, nl *neighbor.List, rc, shift float64) *Evaluator {
	return &Evaluator{
		par:      par,
		nl:       nl,
		squareRc: rc * rc,
		shift:    shift,
	}
}

// NewPolymer returns an evaluator for the polymer model: bonded pairs
// additionally interact through the bond potential selected by kind, with
// nominal maximum extension r0 and stiffness k.
func NewPolymer(par *state.Particles, nl *neighbor.List, rc, shift float64, kind potential.BondKind, r0, k float64) *Evaluator {
	e := New(par, nl, rc, shift)
	e.polymer = true
	e.bond = kind
	e.squareR0 = r0 * r0
	e.feneK = k
	return e
}

// Particle returns the energy of particle i placed at pos, summed over the
// given neighbor row and, in the polymer model, over its bond row. skip
// excludes one extra particle from both sums (-1 for none); a swap move
// uses it so that the energy of the pair being swapped is not counted
// twice.
func (e *Evaluator) Particle(i int, pos [3]float64, neighbors []int32, skip int) float64 {
	par := e.par
	sigma := par.Diam[i]

	var energy float64
	for _, j := range neighbors {
		j := int(j)
		if j == i || j == skip {
			continue
		}

		squareDistance := box.SquareDistance(pos, par.Position(j), par.L)
		energy += potential.LJ(squareDistance, sigma, par.Diam[j], e.squareRc, e.shift)
	}

	if !e.polymer {
		return energy
	}

	for _, j := range par.Bonds(i) {
		j := int(j)
		if j == i || j == skip {
			continue
		}

		squareDistance := box.SquareDistance(pos, par.Position(j), par.L)
		if e.bond == potential.Pedersen && potential.PedersenPair(i, j) {
			energy += potential.PedersenBond(squareDistance, sigma, par.Diam[j],
				e.squareRc, e.squareR0, e.feneK, e.shift)
		} else {
			energy += potential.FENE(squareDistance, sigma, par.Diam[j], e.squareR0, e.feneK)
		}
	}

	return energy
}

// System returns the total energy of the system. Every pair is visited
// twice through the per particle sums, hence the half weight.
func (e *Evaluator) System() float64 {
	var energy float64
	for i := 0; i < e.par.N; i++ {
		energy += e.Particle(i, e.par.Position(i), e.nl.Neighbors(i), -1) / 2
	}
	return energy
}
