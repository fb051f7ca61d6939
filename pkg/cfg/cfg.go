// Package cfg reads and validates the parameters of a simulation run. It
// avoids to spread parameter parsing over the simulation packages: the
// engine receives a value that is already checked.
package cfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Neighbor list and simulation modes accepted by Validate.
const (
	NeighVerlet = "verlet"
	NeighBrute  = "brute"

	MolAtomic  = "atomic"
	MolPolymer = "polymer"
)

// Cfg is a structure where the parameters of a run are stored. It can be
// instanced through the New method. Each run requires a parameter file
// where the parameters are stored; the file must use the TOML format, or
// the YAML format under a `mc` key when its extension is .yml or .yaml.
type Cfg struct {
	FileIn    string `toml:"mc.file_in" yaml:"file_in"`
	FileBonds string `toml:"mc.file_bonds" yaml:"file_bonds"`
	Folder    string `toml:"mc.folder" yaml:"folder"`

	Density float64 `toml:"mc.density" yaml:"density"`
	Temp    float64 `toml:"mc.temp" yaml:"temp"`

	Rc    float64 `toml:"mc.rc" yaml:"rc"`
	RSkin float64 `toml:"mc.rskin" yaml:"rskin"`
	RBox  float64 `toml:"mc.rbox" yaml:"rbox"`

	Steps      int `toml:"mc.steps" yaml:"steps"`
	SaveUpdate int `toml:"mc.save_update" yaml:"save_update"`

	NeighMethod   string `toml:"mc.neigh_method" yaml:"neigh_method"`
	SimulationMol string `toml:"mc.simulation_mol" yaml:"simulation_mol"`

	R0       float64 `toml:"mc.r0" yaml:"r0"`
	FeneK    float64 `toml:"mc.fene_k" yaml:"fene_k"`
	BondType string  `toml:"mc.bond_type" yaml:"bond_type"`

	Swap         bool    `toml:"mc.swap" yaml:"swap"`
	SwapFraction float64 `toml:"mc.swap_fraction" yaml:"swap_fraction"`

	// Shift is the constant added to the Lennard-Jones potential. When it
	// is absent the model default is used: 0 for atomic, 1/4 for polymer.
	Shift *float64 `toml:"mc.shift" yaml:"shift"`

	Sigma map[string]float64 `toml:"mc.sigma" yaml:"sigma"`

	Pressure bool  `toml:"mc.pressure" yaml:"pressure"`
	Analysis bool  `toml:"mc.analysis" yaml:"analysis"`
	Seed     int64 `toml:"mc.seed" yaml:"seed"`

	GrRMax float64 `toml:"mc.gr_rmax" yaml:"gr_rmax"`
	GrDr   float64 `toml:"mc.gr_dr" yaml:"gr_dr"`
}

// New returns an instance of the Cfg structure. It opens, reads and
// validates the parameter file given in argument.
func New(path string) (*Cfg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Cfg
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		var wrap struct {
			MC Cfg `yaml:"mc"`
		}
		dec := yaml.NewDecoder(f)
		if err := dec.Decode(&wrap); err != nil {
			return nil, err
		}
		cfg = wrap.MC
	default:
		dec := toml.NewDecoder(f)
		if err := dec.Decode(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the parameters and fills the defaults: swap fraction
// 0.2, flexible bonds, bond file under the output folder, g(r) bin width
// 0.05.
func (c *Cfg) Validate() error {
	if c.FileIn == "" {
		return errors.New("file_in is missing")
	}
	if c.Folder == "" {
		c.Folder = "."
	}

	if c.Density <= 0 {
		return errors.New("density must be positive")
	}
	if c.Temp <= 0 {
		return errors.New("temp must be positive")
	}
	if c.Rc <= 0 {
		return errors.New("rc must be positive")
	}
	if c.RBox <= 0 {
		return errors.New("rbox must be positive")
	}
	if c.Steps <= 0 {
		return errors.New("steps must be positive")
	}
	if c.SaveUpdate <= 0 {
		return errors.New("save_update must be positive")
	}

	switch c.NeighMethod {
	case NeighVerlet:
		if c.RSkin <= c.Rc {
			return fmt.Errorf("rskin must be greater than rc (%g vs %g)", c.RSkin, c.Rc)
		}
	case NeighBrute:
	default:
		return fmt.Errorf("neighbor method `%s` doesn't exist", c.NeighMethod)
	}

	switch c.SimulationMol {
	case MolAtomic:
	case MolPolymer:
		if c.R0 <= 0 {
			return errors.New("r0 must be positive for the polymer model")
		}
		if c.FeneK <= 0 {
			return errors.New("fene_k must be positive for the polymer model")
		}
		if c.BondType == "" {
			c.BondType = "flexible"
		}
	default:
		return fmt.Errorf("simulation model `%s` doesn't exist", c.SimulationMol)
	}

	if c.SwapFraction == 0 {
		c.SwapFraction = 0.2
	}
	if c.SwapFraction < 0 || c.SwapFraction > 1 {
		return errors.New("swap_fraction must be in (0, 1]")
	}

	if c.FileBonds == "" {
		c.FileBonds = filepath.Join(c.Folder, "bonds.txt")
	}

	if c.GrDr == 0 {
		c.GrDr = 0.05
	}

	return nil
}

// ShiftValue returns the Lennard-Jones shift: the configured value when
// present, the model default otherwise. The configured value round-trips
// through the decoder untouched.
func (c *Cfg) ShiftValue() float64 {
	if c.Shift != nil {
		return *c.Shift
	}
	if c.SimulationMol == MolPolymer {
		return 0.25
	}
	return 0
}

// SigmaTable converts the configured diameter table (TOML keys are
// strings) into a table keyed by particle type.
func (c *Cfg) SigmaTable() (map[int]float64, error) {
	if len(c.Sigma) == 0 {
		return nil, nil
	}

	table := make(map[int]float64, len(c.Sigma))
	for key, sigma := range c.Sigma {
		var typ int
		if _, err := fmt.Sscanf(key, "%d", &typ); err != nil {
			return nil, fmt.Errorf("sigma key `%s` is not a particle type", key)
		}
		if sigma <= 0 {
			return nil, fmt.Errorf("sigma for type %d must be positive", typ)
		}
		table[typ] = sigma
	}
	return table, nil
}
