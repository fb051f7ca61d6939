package potential

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLJMinimum(t *testing.T) {
	// Two unit particles at the potential minimum r = 2^(1/6).
	r2 := math.Cbrt(2)
	assert.InDelta(t, -1., LJ(r2, 1, 1, 6.25, 0), 1e-12)
}

func TestLJCutOff(t *testing.T) {
	assert.Zero(t, LJ(6.25+1e-9, 1, 1, 6.25, 0))
	assert.Zero(t, LJ(100, 1, 1, 6.25, 0.25))

	// The cut off scales with the mean diameter of the pair.
	sigma := (1.2 + 0.8) / 2.
	r2 := 6.25*sigma*sigma + 1e-9
	assert.Zero(t, LJ(r2, 1.2, 0.8, 6.25, 0))
	assert.NotZero(t, LJ(r2-1e-3, 1.2, 0.8, 6.25, 0))
}

func TestLJShift(t *testing.T) {
	// Inside the cut off the shift adds a constant 4*shift.
	r2 := 1.1
	assert.InDelta(t, LJ(r2, 1, 1, 6.25, 0)+1., LJ(r2, 1, 1, 6.25, 0.25), 1e-12)
}

func TestFENE(t *testing.T) {
	r2 := 1.
	squareR0 := 2.25
	k := 30.

	want := -0.5 * k * squareR0 * math.Log(1-r2/squareR0)
	assert.InDelta(t, want, FENE(r2, 1, 1, squareR0, k), 1e-12)
}

func TestFENEBroken(t *testing.T) {
	// At or past the maximum extension the bond is broken.
	assert.True(t, math.IsInf(FENE(2.25, 1, 1, 2.25, 30), 1))
	assert.True(t, math.IsInf(FENE(5, 1, 1, 2.25, 30), 1))
	assert.False(t, math.IsInf(FENE(2.25-1e-9, 1, 1, 2.25, 30), 1))
}

func TestFENERescale(t *testing.T) {
	// The maximum extension scales with the mean diameter.
	sigma := 1.2
	squareSigma := sigma * sigma
	r2 := 2.25*squareSigma - 1e-9

	assert.True(t, math.IsInf(FENE(r2, 1, 1, 2.25, 30), 1))
	assert.False(t, math.IsInf(FENE(r2, sigma, sigma, 2.25, 30), 1))
}

func TestPedersenBond(t *testing.T) {
	r2 := 1.5
	squareRc := 6.25
	squareR0 := 2.25
	k := 30.
	shift := 0.25

	want := LJ(r2, 1.35, 1.35, squareRc, shift) +
		FENE(r2, 1.35, 1.35, squareR0, k) -
		LJ(r2, 1, 1, squareRc, 0.25)
	assert.InDelta(t, want, PedersenBond(r2, 1, 1, squareRc, squareR0, k, shift), 1e-12)
}

func TestPedersenPair(t *testing.T) {
	assert.True(t, PedersenPair(0, 2))
	assert.True(t, PedersenPair(2, 0))
	assert.True(t, PedersenPair(3, 5))
	assert.False(t, PedersenPair(0, 1))
	assert.False(t, PedersenPair(1, 2))
	assert.False(t, PedersenPair(2, 4))
	assert.False(t, PedersenPair(2, 3))
}

func TestParseBondKind(t *testing.T) {
	kind, err := ParseBondKind("flexible")
	require.NoError(t, err)
	assert.Equal(t, Flexible, kind)

	kind, err = ParseBondKind("pedersen")
	require.NoError(t, err)
	assert.Equal(t, Pedersen, kind)

	_, err = ParseBondKind("rigid")
	assert.Error(t, err)
}
