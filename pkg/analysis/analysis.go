// Package analysis derives structural observables from a configuration:
// the radius of gyration of each molecule and the radial distribution
// function of the final state.
package analysis

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/kpotier/swapmc/pkg/box"
	"github.com/kpotier/swapmc/pkg/state"
	"github.com/kpotier/swapmc/pkg/util"
)

// RadiusGyration returns the radius of gyration of every trimer. Each
// molecule is unfolded through the minimum image relative to its first
// particle before the center of mass is taken, so that a molecule sitting
// across a box face is measured whole.
func RadiusGyration(p *state.Particles) []float64 {
	molecules := p.N / 3
	radii := make([]float64, molecules)
	half := p.L / 2

	for m := 0; m < molecules; m++ {
		first := p.Position(3 * m)

		var xyz [3][3]float64
		for a := 0; a < 3; a++ {
			pos := p.Position(3*m + a)
			for k := 0; k < 3; k++ {
				d := pos[k] - first[k]
				if d > half {
					d -= p.L
				} else if d < -half {
					d += p.L
				}
				xyz[a][k] = d
			}
		}

		var com [3]float64
		for a := 0; a < 3; a++ {
			for k := 0; k < 3; k++ {
				com[k] += xyz[a][k]
			}
		}
		for k := 0; k < 3; k++ {
			com[k] /= 3
		}

		var radius float64
		for a := 0; a < 3; a++ {
			for k := 0; k < 3; k++ {
				mult := xyz[a][k] - com[k]
				radius += mult * mult
			}
		}
		radii[m] = math.Sqrt(radius / 3)
	}

	return radii
}

// SaveRadiusGyration writes the radius of gyration of every molecule.
func SaveRadiusGyration(path string, p *state.Particles) error {
	out, err := util.Write(path, struct {
		Molecules int `toml:"radius_gyration.molecules"`
	}{p.N / 3})
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer out.Close()

	out.WriteString("molecule radius\n")
	for m, radius := range RadiusGyration(p) {
		fmt.Fprintf(out, "%d %g\n", m, radius)
	}

	return nil
}

// GR returns the radial distribution function of the configuration, as
// bins of width dr up to rmax (half the box length when rmax is zero).
// Each bin holds the pair count normalized by the ideal gas expectation.
func GR(p *state.Particles, rmax, dr float64) ([]float64, error) {
	if rmax == 0 {
		rmax = p.L / 2
	}
	bins := int(rmax / dr)
	if bins <= 1 {
		return nil, fmt.Errorf("the number of bins must be greater than 1")
	}

	hstg := make([]float64, bins)
	rmax2 := rmax * rmax

	for i := 0; i < p.N-1; i++ {
		pi := p.Position(i)
		for j := i + 1; j < p.N; j++ {
			dist := box.SquareDistance(pi, p.Position(j), p.L)
			if dist <= rmax2 {
				index := int(math.Sqrt(dist) / dr)
				if index < bins {
					hstg[index] += 2
				}
			}
		}
	}

	density := float64(p.N) / (p.L * p.L * p.L)
	for i := 0; i < bins; i++ {
		vol := 4. / 3. * math.Pi *
			(util.Pow(float64(i+1)*dr, 3) - util.Pow(float64(i)*dr, 3))
		hstg[i] /= float64(p.N) * vol * density
	}

	return hstg, nil
}

// SaveGR writes the radial distribution function as two columns, the bin
// center and the value.
func SaveGR(path string, p *state.Particles, rmax, dr float64) error {
	hstg, err := GR(p, rmax, dr)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprint(w, "dist hstg\n")
	for i, v := range hstg {
		fmt.Fprintf(w, "%g %g\n", (float64(i)+0.5)*dr, v)
	}

	return w.Flush()
}
