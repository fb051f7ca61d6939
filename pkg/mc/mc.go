// Package mc implements the Metropolis Monte Carlo engine: the time step
// loop, the move mix, the acceptance rule and the bookkeeping that keeps
// the running energy, the neighbor index and the displacement accumulators
// consistent with each other.
package mc

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/kpotier/swapmc/pkg/analysis"
	"github.com/kpotier/swapmc/pkg/cfg"
	"github.com/kpotier/swapmc/pkg/energy"
	"github.com/kpotier/swapmc/pkg/neighbor"
	"github.com/kpotier/swapmc/pkg/potential"
	"github.com/kpotier/swapmc/pkg/state"
	"github.com/kpotier/swapmc/pkg/traj"
	"github.com/kpotier/swapmc/pkg/util"
)

// Type is the type of calculation.
var Type = "mc"

// energyLogUpdate is the step spacing of the energy log.
const energyLogUpdate = 50

// MC is the simulation. It can be instanced through the New method from a
// parameter file; Start runs the time step loop. Every mutation of the
// particle state happens on the calling goroutine.
type MC struct {
	cfg *cfg.Cfg
	par *state.Particles
	nl  *neighbor.List
	ev  *energy.Evaluator
	rng *rand.Rand
	log *log.Logger

	seed     int64
	energy   float64
	pressure float64
	accTrans float64
	accSwap  float64
}

// summary is the shutdown report written next to the other outputs.
type summary struct {
	Seed           int64   `toml:"mc.seed"`
	EnergyPerPart  float64 `toml:"mc.energy_per_particle"`
	AcceptanceRate float64 `toml:"mc.acceptance_rate"`
	SwapRate       float64 `toml:"mc.acceptance_rate_swap"`
	UpdateRate     float64 `toml:"mc.neighbor_update_rate"`
	Errors         int     `toml:"mc.neighbor_errors"`
}

// New returns an instance of the MC structure. It reads and validates the
// parameter file given in argument, loads the initial configuration and
// the bond topology, builds the neighbor index and computes the initial
// energy. A non empty fileIn overrides the configuration path from the
// parameter file. A non zero seed overrides the one from the parameter
// file; a zero seed everywhere draws one from the OS entropy so that the
// run can still be reproduced from the logged value.
func New(path, fileIn string, seed int64, logger *log.Logger) (*MC, error) {
	c, err := cfg.New(path)
	if err != nil {
		return nil, err
	}
	if fileIn != "" {
		c.FileIn = fileIn
	}

	sigma, err := c.SigmaTable()
	if err != nil {
		return nil, err
	}

	par, err := state.Read(c.FileIn, c.Density, sigma)
	if err != nil {
		return nil, fmt.Errorf("Read: %w", err)
	}

	if c.SimulationMol == cfg.MolPolymer {
		if err := state.ReadBonds(c.FileBonds, par); err != nil {
			return nil, fmt.Errorf("ReadBonds: %w", err)
		}
	}

	if c.Swap && par.N%3 != 0 {
		return nil, fmt.Errorf("the trimer swap policy needs a multiple of 3 particles (got %d)", par.N)
	}

	nl := neighbor.New(par.N, par.L, c.Rc, c.RSkin, c.NeighMethod == cfg.NeighBrute)
	nl.Rebuild(par)

	var ev *energy.Evaluator
	if c.SimulationMol == cfg.MolPolymer {
		kind, err := potential.ParseBondKind(c.BondType)
		if err != nil {
			return nil, err
		}
		ev = energy.NewPolymer(par, nl, c.Rc, c.ShiftValue(), kind, c.R0, c.FeneK)
	} else {
		ev = energy.New(par, nl, c.Rc, c.ShiftValue())
	}

	if seed == 0 {
		seed = c.Seed
	}
	if seed == 0 {
		seed, err = entropySeed()
		if err != nil {
			return nil, fmt.Errorf("entropySeed: %w", err)
		}
	}

	m := &MC{
		cfg:  c,
		par:  par,
		nl:   nl,
		ev:   ev,
		rng:  rand.New(rand.NewSource(seed)),
		log:  logger,
		seed: seed,
	}

	m.energy = ev.System()
	if math.IsNaN(m.energy) {
		return nil, fmt.Errorf("initial energy is NaN")
	}
	if c.Pressure {
		m.pressure = ev.Pressure(c.Temp)
	}

	return m, nil
}

// Start runs the simulation: Steps time steps of N attempted moves each.
// After every sweep the displacement accumulators are folded and the
// neighbor index is given a chance to rebuild; the energy log, the frames
// and the displacement dumps are written on their own cadences. It is a
// thread blocking method.
func (m *MC) Start() error {
	c := m.cfg
	n := float64(m.par.N)

	if err := os.MkdirAll(filepath.Join(c.Folder, "outXYZ"), 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(c.Folder, "disp"), 0755); err != nil {
		return err
	}

	m.log.Printf("mc: %d particles, box length %g, seed %d", m.par.N, m.par.L, m.seed)

	if err := m.save(0); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := traj.AppendFloat(filepath.Join(c.Folder, "outE.txt"), m.energy/n); err != nil {
		return err
	}

	saveTimes := traj.SaveTimes(c.Steps, c.SaveUpdate, 1.1)
	saveIndex := 0

	for i := 0; i < c.Steps; i++ {
		for j := 0; j < m.par.N; j++ {
			m.move()
		}

		m.par.AccumulateSweep()
		if c.NeighMethod == cfg.NeighVerlet {
			m.nl.MaybeRebuild(m.par)
		}

		if saveIndex < len(saveTimes) && saveTimes[saveIndex] == i {
			if err := m.save(i + 1); err != nil {
				return fmt.Errorf("save (step %d): %w", i, err)
			}
			saveIndex++
		}

		if i%energyLogUpdate == 0 {
			if math.IsNaN(m.energy) {
				return fmt.Errorf("energy is NaN at step %d", i)
			}
			if err := traj.AppendFloat(filepath.Join(c.Folder, "outE.txt"), m.energy/n); err != nil {
				return err
			}
		}
		if c.Pressure {
			if err := traj.AppendFloat(filepath.Join(c.Folder, "outP.txt"), m.pressure); err != nil {
				return err
			}
		}
	}

	m.accTrans /= float64(c.Steps)
	m.accSwap /= float64(c.Steps)
	if c.Swap {
		m.accSwap /= c.SwapFraction
	}

	if err := m.save(c.Steps); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := traj.AppendFloat(filepath.Join(c.Folder, "errors.txt"), float64(m.nl.Errors)); err != nil {
		return err
	}

	out, err := util.Write(filepath.Join(c.Folder, "summary.toml"), summary{
		Seed:           m.seed,
		EnergyPerPart:  m.energy / n,
		AcceptanceRate: m.accTrans,
		SwapRate:       m.accSwap,
		UpdateRate:     float64(m.nl.Rebuilds) / float64(c.Steps),
		Errors:         m.nl.Errors,
	})
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	out.Close()

	m.log.Printf("swap MC move acceptance rate: %g", m.accSwap)
	m.log.Printf("MC move acceptance rate: %g", m.accTrans)
	m.log.Printf("neighbor list update rate: %g", float64(m.nl.Rebuilds)/float64(c.Steps))
	m.log.Printf("number of neighbor list errors: %d", m.nl.Errors)

	if c.Analysis {
		if m.par.Bonded() {
			if err := analysis.SaveRadiusGyration(filepath.Join(c.Folder, "outRg.txt"), m.par); err != nil {
				return fmt.Errorf("SaveRadiusGyration: %w", err)
			}
		}
		if err := analysis.SaveGR(filepath.Join(c.Folder, "outGr.txt"), m.par, c.GrRMax, c.GrDr); err != nil {
			return fmt.Errorf("SaveGR: %w", err)
		}
	}

	return nil
}

// save dumps one trajectory frame and one displacement file for the given
// step index.
func (m *MC) save(step int) error {
	pos := filepath.Join(m.cfg.Folder, "outXYZ", fmt.Sprintf("position%d.xyz", step))
	if err := traj.SaveXYZ(pos, m.par); err != nil {
		return err
	}

	disp := filepath.Join(m.cfg.Folder, "disp", fmt.Sprintf("displacement%d.txt", step))
	return traj.SaveDisplacement(disp, m.par)
}

// Seed returns the seed the run was started with.
func (m *MC) Seed() int64 { return m.seed }

// Energy returns the running total energy.
func (m *MC) Energy() float64 { return m.energy }

// Folder returns the output folder of the run.
func (m *MC) Folder() string { return m.cfg.Folder }

// entropySeed draws a seed from the OS entropy source.
func entropySeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[:]) &^ (1 << 63)), nil
}
