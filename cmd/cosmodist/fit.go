package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/cosmodist/internal/cosmo"
	"github.com/san-kum/cosmodist/internal/sweep"
)

func runFit(cmd *cobra.Command, args []string) error {
	unit, err := cosmo.ParseUnit(unitName)
	if err != nil {
		return err
	}
	if len(h0Range) != 2 || len(omRange) != 2 {
		return errors.New("grid ranges take exactly two values: lo,hi")
	}

	obs, err := readObservations(args[0])
	if err != nil {
		return err
	}

	grid := sweep.Grid{
		H0:          sweep.Linspace(h0Range[0], h0Range[1], gridN),
		OmegaMatter: sweep.Linspace(omRange[0], omRange[1], gridN),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens, err := sweep.NewEnsemble(unit, workers, integrator, tableOptions()...)
	if err != nil {
		return err
	}
	res, err := ens.Fit(ctx, grid, obs, cosmo.ExtendConfig{Step: dz})
	if err != nil {
		return err
	}

	fmt.Printf("%d observations, %d grid points\n\n", len(obs), grid.Size())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tH0\tOMEGA_M\tCHI2")
	for i, s := range res.Scores[:max(0, min(topN, len(res.Scores)))] {
		fmt.Fprintf(w, "%d\t%.3f\t%.4f\t%.4f\n", i+1, s.H0, s.OmegaMatter, s.Chi2)
	}
	return w.Flush()
}

// readObservations parses z,dl,sigma rows. A non-numeric first row is
// treated as a header.
func readObservations(path string) ([]sweep.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true

	var obs []sweep.Observation
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		var vals [3]float64
		for i, field := range rec {
			vals[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				break
			}
		}
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		obs = append(obs, sweep.Observation{Z: vals[0], DL: vals[1], Sigma: vals[2]})
	}
	return obs, nil
}
