package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/cosmodist/internal/config"
	"github.com/san-kum/cosmodist/internal/cosmo"
	"github.com/san-kum/cosmodist/internal/export"
	"github.com/san-kum/cosmodist/internal/integrators"
	"github.com/san-kum/cosmodist/internal/metrics"
	"github.com/san-kum/cosmodist/internal/storage"
	"github.com/san-kum/cosmodist/internal/viz"
)

func runTabulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	var tbl *cosmo.Table
	if resume != "" {
		integ, err := integrators.Get(cfg.Integrator)
		if err != nil {
			return err
		}
		opts := append(tableOptions(), cosmo.WithIntegrator(integ))
		tbl, _, err = st.Restore(resume, opts...)
		if err != nil {
			return fmt.Errorf("failed to resume %s: %w", resume, err)
		}
	} else {
		tbl, err = cfg.Table(tableOptions()...)
		if err != nil {
			return err
		}
	}

	bounds, err := cfg.Bounds()
	if err != nil {
		return err
	}

	start := time.Now()
	extendErr := tbl.Extend(bounds, cfg.ExtendConfig())
	elapsed := time.Since(start)

	fmt.Println(viz.Summary(displayName(), tbl))
	fmt.Printf("%s %v\n", viz.Subtle.Render("completed in"), elapsed)
	if extendErr != nil {
		return extendErr
	}

	if saveRun {
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(displayName(), cfg.Integrator, cfg.Extend.Dz, tbl)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", viz.StatusOK.Render(runID))
	}
	return nil
}

type conversion struct {
	in, out string
	// bound is the extend target needed to answer a query for v.
	bound func(tbl *cosmo.Table, v float64) cosmo.Bounds
	eval  func(tbl *cosmo.Table, v float64) float64
}

// Distances on both sides of a conversion are in the output unit.
var conversions = map[string]conversion{
	"z2dl": {"z", "DL", zBound, func(t *cosmo.Table, z float64) float64 { return t.Z2DL(z) }},
	"z2dc": {"z", "Dc", zBound, func(t *cosmo.Table, z float64) float64 { return t.Z2Dc(z) / t.Params().Unit().Scale() }},
	"dl2z": {"DL", "z", func(t *cosmo.Table, v float64) cosmo.Bounds { return cosmo.Bounds{MaxDL: v * t.Params().Unit().Scale()} },
		func(t *cosmo.Table, dl float64) float64 { return t.DL2z(dl) }},
	"dc2z": {"Dc", "z", func(t *cosmo.Table, v float64) cosmo.Bounds { return cosmo.Bounds{MaxDc: v * t.Params().Unit().Scale()} },
		func(t *cosmo.Table, dc float64) float64 { return t.Dc2z(dc * t.Params().Unit().Scale()) }},
	"dvcdz":    {"z", "dVc/dz", zBound, func(t *cosmo.Table, z float64) float64 { return t.DVcDz(z, 0) }},
	"logdvcdz": {"z", "ln dVc/dz", zBound, func(t *cosmo.Table, z float64) float64 { return t.LogDVcDz(z, 0) }},
}

func zBound(_ *cosmo.Table, z float64) cosmo.Bounds { return cosmo.Bounds{MaxZ: z} }

func runConvert(cmd *cobra.Command, args []string) error {
	conv, ok := conversions[args[0]]
	if !ok {
		return fmt.Errorf("unknown conversion: %s", args[0])
	}

	values := make([]float64, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", a, err)
		}
		values = append(values, v)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tbl, err := cfg.Table(tableOptions()...)
	if err != nil {
		return err
	}

	highest := values[0]
	for _, v := range values {
		highest = math.Max(highest, v)
	}
	if err := tbl.Extend(conv.bound(tbl, highest), cfg.ExtendConfig()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", conv.in, conv.out)
	for _, v := range values {
		fmt.Fprintf(w, "%g\t%.10g\n", v, conv.eval(tbl, v))
	}
	return w.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tbl, err := cfg.Table(tableOptions()...)
	if err != nil {
		return err
	}
	if err := tbl.Extend(cosmo.Bounds{MaxZ: maxZ}, cfg.ExtendConfig()); err != nil {
		return err
	}

	graph, err := viz.Plot(tbl, args[0], maxZ, plotWidth, plotHeight)
	if err != nil {
		return err
	}
	fmt.Println(graph)

	if svgPath == "" {
		return nil
	}
	zs, vals, err := viz.Series(tbl, args[0], maxZ, 200)
	if err != nil {
		return err
	}
	svg, err := export.CurveToSVG(zs, vals, 800, 400, export.DefaultStroke, viz.Quantities[args[0]].Caption)
	if err != nil {
		return err
	}
	if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgPath)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tH0\tOM\tMAX_Z\tSAMPLES\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%g\t%.4f\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ho*cosmo.MpcSI*1e-3,
			run.OmegaMatter,
			run.MaxZ,
			run.Samples,
			run.Integrator,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	tbl, meta, err := storage.New(dataDir).Restore(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Summary(meta.ID, tbl))

	_, series, err := viz.Series(tbl, "dvcdz", tbl.MaxZ(), 60)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", viz.MetricLabel.Render("dVc/dz"), viz.SparklineChart(series, 60))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	tbl, _, err := storage.New(dataDir).Restore(args[0])
	if err != nil {
		return err
	}
	unit := tbl.Params().Unit()
	scale := unit.Scale()

	w := csv.NewWriter(os.Stdout)
	header := []string{"z", "dc_" + unit.String(), "dl_" + unit.String(), "vc_" + unit.String() + "3"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range tbl.Samples() {
		row := []string{
			strconv.FormatFloat(s.Z, 'f', 6, 64),
			strconv.FormatFloat(s.Dc/scale, 'g', 10, 64),
			strconv.FormatFloat(s.DL()/scale, 'g', 10, 64),
			strconv.FormatFloat(s.Vc/(scale*scale*scale), 'g', 10, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type exportData struct {
	Metadata *storage.RunMetadata `json:"metadata"`
	Z        []float64            `json:"z"`
	Dc       []float64            `json:"dc_cm"`
	DL       []float64            `json:"dl_cm"`
	Vc       []float64            `json:"vc_cm3"`
}

func exportJSON(cmd *cobra.Command, args []string) error {
	tbl, meta, err := storage.New(dataDir).Restore(args[0])
	if err != nil {
		return err
	}

	samples := tbl.Samples()
	data := exportData{
		Metadata: meta,
		Z:        make([]float64, len(samples)),
		Dc:       make([]float64, len(samples)),
		DL:       make([]float64, len(samples)),
		Vc:       make([]float64, len(samples)),
	}
	for i, s := range samples {
		data.Z[i], data.Dc[i], data.DL[i], data.Vc[i] = s.Z, s.Dc, s.DL(), s.Vc
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tH0\tOMEGA_M\tOMEGA_R\tOMEGA_L")
	for _, name := range config.ListPresets() {
		c := config.Presets[name]
		fmt.Fprintf(w, "%s\t%.2f\t%g\t%g\t%g\n", name, c.H0, c.OmegaMatter, c.OmegaRadiation, c.Lambda())
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	bounds, err := cfg.Bounds()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	fmt.Printf("benchmarking extend to %s\n\n", boundsString(cfg.Extend))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tSAMPLES\tTIME\tSTEPS/SEC\tMAX_Z\tDL(MAX_Z)")

	for _, name := range integrators.List() {
		integ, err := integrators.Get(name)
		if err != nil {
			return err
		}
		opts := append(tableOptions(), cosmo.WithIntegrator(integ), cosmo.WithObserver(rec))
		tbl := cosmo.NewTable(p, opts...)

		start := time.Now()
		if err := tbl.Extend(bounds, cfg.ExtendConfig()); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)

		steps := tbl.Len() - 1
		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t%.4f\t%.6g\n",
			name, tbl.Len(), elapsed, float64(steps)/elapsed.Seconds(), tbl.MaxZ(), tbl.Z2DL(tbl.MaxZ()))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	values, err := metrics.Snapshot(reg)
	if err != nil {
		return err
	}
	fmt.Println("\nmetrics:")
	for _, v := range values {
		fmt.Printf("  %s: %g\n", v.Name, v.Value)
	}
	return nil
}

func boundsString(b config.ExtendConfig) string {
	return fmt.Sprintf("z>=%g DL>=%g Dc>=%g Vc>=%g", b.MaxZ, b.MaxDL, b.MaxDc, b.MaxVc)
}

func serveMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	tbl, err := cfg.Table(append(tableOptions(), cosmo.WithObserver(rec))...)
	if err != nil {
		return err
	}
	bounds, err := cfg.Bounds()
	if err != nil {
		return err
	}
	if err := tbl.Extend(bounds, cfg.ExtendConfig()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: listenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("serving metrics on %s/metrics (%d samples, z <= %.4f)\n", listenAddr, tbl.Len(), tbl.MaxZ())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
