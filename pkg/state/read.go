package state

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Read reads an initial configuration file. The first line holds the
// number of particles, the second line is a free comment; each following
// line holds five fields: molecule type, particle type and the three
// coordinates. The particle type indexes the diameter through sigma, a
// table from particle type to diameter (every particle gets diameter 1
// when the table is empty).
func Read(path string, density float64, sigma map[int]float64) (*Particles, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)

	if !sc.Scan() {
		return nil, fmt.Errorf("cannot read the number of particles")
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, fmt.Errorf("number of particles: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("number of particles must be positive (got %d)", n)
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("cannot read the comment line")
	}

	pos := make([]float64, 0, 3*n)
	diam := make([]float64, 0, n)
	molType := make([]int, 0, n)
	partType := make([]int, 0, n)

	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("missing record for particle %d", i)
		}

		fields := strings.Fields(sc.Text())
		if len(fields) != 5 {
			return nil, fmt.Errorf("particle %d: 5 fields are needed (got %d)", i, len(fields))
		}

		mol, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("particle %d: molecule type: %w", i, err)
		}
		typ, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("particle %d: particle type: %w", i, err)
		}

		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[2+k], 64)
			if err != nil {
				return nil, fmt.Errorf("particle %d: coordinate %d: %w", i, k, err)
			}
			pos = append(pos, v)
		}

		d := 1.
		if len(sigma) > 0 {
			var ok bool
			d, ok = sigma[typ]
			if !ok {
				return nil, fmt.Errorf("particle %d: diameter for type %d doesn't exist", i, typ)
			}
		}

		molType = append(molType, mol)
		partType = append(partType, typ)
		diam = append(diam, d)
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	return New(n, density, pos, diam, molType, partType)
}

// ReadBonds reads a bond topology file: the number of particles, the
// number of bonds, then one pair of indices per bond. Both directions of
// each bond are inserted into the adjacency.
func ReadBonds(path string, p *Particles) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var tokens []string
	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		tokens = append(tokens, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if len(tokens) < 2 {
		return fmt.Errorf("cannot read the number of particles and bonds")
	}

	n, err := strconv.Atoi(tokens[0])
	if err != nil {
		return fmt.Errorf("number of particles: %w", err)
	}
	if n != p.N {
		return fmt.Errorf("number of particles doesn't match the configuration (%d vs %d)", n, p.N)
	}

	bonds, err := strconv.Atoi(tokens[1])
	if err != nil {
		return fmt.Errorf("number of bonds: %w", err)
	}

	if len(tokens) != 2+2*bonds {
		return fmt.Errorf("%d bonds announced but %d indices found", bonds, len(tokens)-2)
	}

	pairs := make([][2]int, bonds)
	for b := 0; b < bonds; b++ {
		i, err := strconv.Atoi(tokens[2+2*b])
		if err != nil {
			return fmt.Errorf("bond %d: %w", b, err)
		}
		j, err := strconv.Atoi(tokens[3+2*b])
		if err != nil {
			return fmt.Errorf("bond %d: %w", b, err)
		}
		pairs[b] = [2]int{i, j}
	}

	return p.SetBonds(pairs)
}
