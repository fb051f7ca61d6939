package mc

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpotier/swapmc/pkg/cfg"
)

const trimerConf = `3
one trimer
0 0 4.0 5.0 5.0
0 0 5.0 5.0 5.0
0 1 6.0 5.0 5.0
`

func writeRun(t *testing.T, params string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf.xyz"), []byte(trimerConf), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bonds.txt"), []byte("3 2\n0 1\n1 2\n"), 0644))

	path := filepath.Join(dir, "params.toml")
	content := fmt.Sprintf(params, filepath.Join(dir, "conf.xyz"), dir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const polymerParams = `[mc]
file_in = "%s"
folder = "%s"
density = 0.003
temp = 1.0
rc = 2.5
rskin = 3.0
rbox = 0.05
steps = 12
save_update = 6
neigh_method = "verlet"
simulation_mol = "polymer"
r0 = 1.5
fene_k = 30.0
bond_type = "flexible"
swap = true

[mc.sigma]
0 = 1.0
1 = 1.2
`

func quietLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestRunEnergyConsistency(t *testing.T) {
	m, err := New(writeRun(t, polymerParams), "", 42, quietLogger())
	require.NoError(t, err)
	require.NoError(t, m.Start())

	// The incrementally tracked energy matches a recomputation from
	// scratch after the whole run.
	assert.InDelta(t, m.ev.System(), m.energy, 1e-10*float64(m.par.N))
}

func TestRunDeterminism(t *testing.T) {
	m1, err := New(writeRun(t, polymerParams), "", 42, quietLogger())
	require.NoError(t, err)
	require.NoError(t, m1.Start())

	m2, err := New(writeRun(t, polymerParams), "", 42, quietLogger())
	require.NoError(t, err)
	require.NoError(t, m2.Start())

	assert.Equal(t, m1.par.Pos, m2.par.Pos)
	assert.Equal(t, m1.par.Diam, m2.par.Diam)
	assert.Equal(t, m1.energy, m2.energy)
	assert.Equal(t, int64(42), m1.Seed())
}

func TestRunOutputs(t *testing.T) {
	path := writeRun(t, polymerParams)
	m, err := New(path, "", 7, quietLogger())
	require.NoError(t, err)
	require.NoError(t, m.Start())

	folder := m.Folder()
	for _, name := range []string{
		filepath.Join("outXYZ", "position0.xyz"),
		filepath.Join("outXYZ", "position12.xyz"),
		filepath.Join("disp", "displacement0.txt"),
		filepath.Join("disp", "displacement12.txt"),
		"outE.txt",
		"errors.txt",
		"summary.toml",
	} {
		_, err := os.Stat(filepath.Join(folder, name))
		assert.NoError(t, err, name)
	}
}

func TestRunAtomicBrute(t *testing.T) {
	params := `[mc]
file_in = "%s"
folder = "%s"
density = 0.003
temp = 2.0
rc = 2.5
rbox = 0.1
steps = 5
save_update = 5
neigh_method = "brute"
simulation_mol = "atomic"
pressure = true
`
	m, err := New(writeRun(t, params), "", 3, quietLogger())
	require.NoError(t, err)
	require.NoError(t, m.Start())

	assert.InDelta(t, m.ev.System(), m.energy, 1e-10*float64(m.par.N))

	_, err = os.Stat(filepath.Join(m.Folder(), "outP.txt"))
	assert.NoError(t, err)
}

func TestNewErrors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.toml"), "", 0, quietLogger())
	assert.Error(t, err)
}

func TestSwapRoundTrip(t *testing.T) {
	// At a very high temperature every swap is accepted: two swaps of the
	// same trimer restore the diameters exactly and the energy within
	// rounding.
	m, err := New(writeRun(t, polymerParams), "", 42, quietLogger())
	require.NoError(t, err)
	m.cfg.Temp = 1e12

	diam := append([]float64(nil), m.par.Diam...)
	initial := m.energy

	m.swap()
	assert.NotEqual(t, diam, m.par.Diam)
	m.swap()
	assert.Equal(t, diam, m.par.Diam)
	assert.InDelta(t, initial, m.energy, 1e-12)
}

func TestEntropySeedPositive(t *testing.T) {
	for i := 0; i < 10; i++ {
		seed, err := entropySeed()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, seed, int64(0))
	}
}

func newTestMC(temp float64) *MC {
	return &MC{
		cfg: &cfg.Cfg{Temp: temp},
		rng: rand.New(rand.NewSource(1)),
	}
}

func TestMetropolisDownhill(t *testing.T) {
	m := newTestMC(1)
	for i := 0; i < 100; i++ {
		assert.True(t, m.metropolis(-1e-9))
	}
}

func TestMetropolisCold(t *testing.T) {
	// At T -> 0 the threshold vanishes: an uphill move is never accepted.
	m := newTestMC(1e-9)
	for i := 0; i < 1000; i++ {
		assert.False(t, m.metropolis(1))
	}
}

func TestMetropolisHot(t *testing.T) {
	// At T -> Inf the threshold tends to one: an uphill move is accepted.
	m := newTestMC(1e12)
	for i := 0; i < 1000; i++ {
		assert.True(t, m.metropolis(1))
	}
}

func TestMetropolisBrokenBond(t *testing.T) {
	// A broken FENE bond arrives as +Inf and behaves as a rejection.
	m := newTestMC(1e12)
	assert.False(t, m.metropolis(math.Inf(1)))
	assert.False(t, newTestMC(1e-9).metropolis(math.Inf(1)))
}

func TestUniformRange(t *testing.T) {
	m := newTestMC(1)
	for i := 0; i < 1000; i++ {
		v := m.uniform(-0.3, 0.3)
		assert.GreaterOrEqual(t, v, -0.3)
		assert.Less(t, v, 0.3)
	}
}
