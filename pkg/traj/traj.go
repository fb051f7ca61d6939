// Package traj writes the outputs of a run: extended XYZ frames, the
// unwrapped displacement dumps and the scalar logs. All files are append
// only within a run.
package traj

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/kpotier/swapmc/pkg/state"
)

// SaveXYZ writes the configuration as one extended XYZ frame: the number
// of particles, a lattice line describing the cubic cell, then one line
// per particle with its molecule type, particle type and position.
func SaveXYZ(path string, p *state.Particles) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%d\n", p.N)

	l := strconv.FormatFloat(p.L, 'g', -1, 64)
	fmt.Fprintf(w, "Lattice=\"%s 0.0 0.0 0.0 %s 0.0 0.0 0.0 %s\" Properties=molecule_type:S:1:type:I:1:pos:R:3:\n", l, l, l)

	var bytes []byte
	for i := 0; i < p.N; i++ {
		bytes = bytes[:0]
		bytes = strconv.AppendInt(bytes, int64(p.MolType[i]), 10)
		bytes = append(bytes, ' ')
		bytes = strconv.AppendInt(bytes, int64(p.PartType[i]), 10)
		for k := 0; k < 3; k++ {
			bytes = append(bytes, ' ')
			bytes = strconv.AppendFloat(bytes, p.Pos[3*i+k], 'g', -1, 64)
		}
		bytes = append(bytes, '\n')
		w.Write(bytes)
	}

	return w.Flush()
}

// SaveDisplacement writes the cumulative unwrapped displacement of every
// particle, one row of three floats per particle.
func SaveDisplacement(path string, p *state.Particles) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var bytes []byte
	for i := 0; i < p.N; i++ {
		bytes = bytes[:0]
		for k := 0; k < 3; k++ {
			if k > 0 {
				bytes = append(bytes, ' ')
			}
			bytes = strconv.AppendFloat(bytes, p.Total[3*i+k], 'g', -1, 64)
		}
		bytes = append(bytes, '\n')
		w.Write(bytes)
	}

	return w.Flush()
}

// AppendFloat appends one value to a scalar log file, creating it on the
// first call.
func AppendFloat(path string, v float64) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%g\n", v)
	return err
}

// SaveTimes returns the steps at which a frame is dumped: a linear ladder
// of spacing linear, each rung followed by a short log spaced burst of
// factor logFactor, then the last step.
func SaveTimes(max, linear int, logFactor float64) []int {
	var times []int
	for j := 0; j < max; j += linear {
		times = append(times, j, j+1)

		for i := int(logFactor) + 1; i < linear; i = int(float64(i)*logFactor) + 1 {
			times = append(times, j+i)
		}
	}
	times = append(times, max)
	return times
}
