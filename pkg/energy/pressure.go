package energy

import (
	"github.com/kpotier/swapmc/pkg/box"
)

// VirialParticle returns the pair virial of particle i placed at pos,
// already divided by three times the box volume. The virial of a
// Lennard-Jones pair inside the cut off is 24x(2x-1) with x the sixth
// power of the reduced inverse distance; the shift does not contribute.
func (e *Evaluator) VirialParticle(i int, pos [3]float64, neighbors []int32, skip int) float64 {
	par := e.par
	sigma := par.Diam[i]
	volume := par.L * par.L * par.L

	var virial float64
	for _, j := range neighbors {
		j := int(j)
		if j == i || j == skip {
			continue
		}

		squareDistance := box.SquareDistance(pos, par.Position(j), par.L)
		squareSigma := (sigma + par.Diam[j]) / 2
		squareSigma *= squareSigma
		if squareDistance > e.squareRc*squareSigma {
			continue
		}

		x := squareSigma / squareDistance
		x = x * x * x
		virial += 24 * x * (2*x - 1)
	}

	return virial / (3 * volume)
}

// Pressure returns the virial pressure of the system at temperature temp:
// the ideal term plus the half-weighted per particle virials.
func (e *Evaluator) Pressure(temp float64) float64 {
	par := e.par
	density := float64(par.N) / (par.L * par.L * par.L)

	pressure := density * temp
	for i := 0; i < par.N; i++ {
		pressure += e.VirialParticle(i, par.Position(i), e.nl.Neighbors(i), -1) / 2
	}
	return pressure
}
