package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/kpotier/swapmc/pkg/mc"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var (
		seed int64
		plot bool
	)

	root := &cobra.Command{
		Use:   "swapmc [parameter file] [configuration file]",
		Short: "swap Monte Carlo simulation of dense Lennard-Jones and polymer systems",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fileIn string
			if len(args) == 2 {
				fileIn = args[1]
			}

			m, err := mc.New(args[0], fileIn, seed, logger)
			if err != nil {
				return fmt.Errorf("New: %w", err)
			}

			if err := m.Start(); err != nil {
				return fmt.Errorf("Start: %w", err)
			}

			if plot {
				return plotEnergy(m.Folder())
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().Int64Var(&seed, "seed", 0, "override the seed from the parameter file")
	root.Flags().BoolVar(&plot, "plot", false, "plot the energy trace at completion")

	if err := root.Execute(); err != nil {
		logger.Fatal(err)
	}
}

// plotEnergy reads the energy log of a finished run and draws it on the
// terminal.
func plotEnergy(folder string) error {
	f, err := os.Open(filepath.Join(folder, "outE.txt"))
	if err != nil {
		return err
	}
	defer f.Close()

	var data []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
		if err != nil {
			return fmt.Errorf("outE.txt: %w", err)
		}
		data = append(data, v)
	}
	if err := sc.Err(); err != nil {
		return err
	}

	fmt.Println(asciigraph.Plot(data, asciigraph.Height(12), asciigraph.Caption("E/N")))
	return nil
}
