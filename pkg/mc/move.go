package mc

import (
	"math"

	"github.com/kpotier/swapmc/pkg/box"
)

// move attempts one Monte Carlo move. When swapping is enabled a fresh
// draw decides between a swap and a translation; otherwise every attempt
// is a translation.
func (m *MC) move() {
	if m.cfg.Swap && m.rng.Float64() < m.cfg.SwapFraction {
		m.swap()
		return
	}
	m.translation()
}

// translation attempts the translation of a random particle by a vector
// drawn uniformly from [-rbox, rbox] on each axis. On acceptance the
// position, the image flags, the sweep displacement and the running
// energy are committed together; on rejection nothing changes.
func (m *MC) translation() {
	par := m.par
	i := m.rng.Intn(par.N)

	var delta [3]float64
	for k := 0; k < 3; k++ {
		delta[k] = m.uniform(-m.cfg.RBox, m.cfg.RBox)
	}

	old := par.Position(i)
	moved := [3]float64{old[0] + delta[0], old[1] + delta[1], old[2] + delta[2]}
	moved, flags := box.Wrap(moved, par.L)

	neighbors := m.nl.Neighbors(i)
	oldEnergy := m.ev.Particle(i, old, neighbors, -1)
	newEnergy := m.ev.Particle(i, moved, neighbors, -1)
	diff := newEnergy - oldEnergy

	if !m.metropolis(diff) {
		return
	}

	if m.cfg.Pressure {
		oldVirial := m.ev.VirialParticle(i, old, neighbors, -1)
		newVirial := m.ev.VirialParticle(i, moved, neighbors, -1)
		m.pressure += newVirial - oldVirial
	}

	par.CommitTranslation(i, moved, flags, delta)
	m.energy += diff
	m.accTrans += 1 / float64(par.N)
	m.nl.MarkDirty()
}

// swap attempts to exchange the diameters of the two ends of a random
// trimer. Each particle is evaluated over its own neighbor row with the
// partner skipped: the pair term between the two ends depends only on the
// mean diameter, which a swap leaves unchanged, so skipping it on both
// sides of the difference avoids counting it twice. The diameters are
// swapped in place around the two evaluations and swapped back on
// rejection.
func (m *MC) swap() {
	par := m.par

	i := m.rng.Intn(par.N)
	i -= i % 3
	j := i + 2

	pi := par.Position(i)
	pj := par.Position(j)
	ni := m.nl.Neighbors(i)
	nj := m.nl.Neighbors(j)

	oldEnergy := m.ev.Particle(i, pi, ni, j) + m.ev.Particle(j, pj, nj, i)

	var oldVirial float64
	if m.cfg.Pressure {
		oldVirial = m.ev.VirialParticle(i, pi, ni, j) + m.ev.VirialParticle(j, pj, nj, i)
	}

	par.SwapDiameters(i, j)
	newEnergy := m.ev.Particle(i, pi, ni, j) + m.ev.Particle(j, pj, nj, i)
	diff := newEnergy - oldEnergy

	if !m.metropolis(diff) {
		par.SwapDiameters(i, j)
		return
	}

	if m.cfg.Pressure {
		newVirial := m.ev.VirialParticle(i, pi, ni, j) + m.ev.VirialParticle(j, pj, nj, i)
		m.pressure += newVirial - oldVirial
	}

	m.energy += diff
	m.accSwap += 1 / float64(par.N)
}

// metropolis decides whether a move with the given energy difference is
// accepted: always when the energy decreases, with probability
// exp(-diff/T) otherwise. A +Inf difference (a broken FENE bond) makes
// the threshold zero and the move is rejected, never raised as an error.
func (m *MC) metropolis(diff float64) bool {
	if diff < 0 {
		return true
	}

	threshold := math.Exp(-diff / m.cfg.Temp)
	return threshold > m.rng.Float64()
}

// uniform returns a draw from U[min, max).
func (m *MC) uniform(min, max float64) float64 {
	return min + (max-min)*m.rng.Float64()
}
