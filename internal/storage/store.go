package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/cosmodist/internal/cosmo"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a saved table. Ho is kept in s^-1 so that restored
// parameters are bit-identical to the ones that produced the samples.
type RunMetadata struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Timestamp      time.Time `json:"timestamp"`
	Ho             float64   `json:"ho_per_s"`
	OmegaMatter    float64   `json:"omega_matter"`
	OmegaRadiation float64   `json:"omega_radiation"`
	OmegaLambda    float64   `json:"omega_lambda"`
	Unit           string    `json:"unit"`
	Integrator     string    `json:"integrator"`
	Step           float64   `json:"dz"`
	Samples        int       `json:"samples"`
	MaxZ           float64   `json:"max_z"`
}

// Params rebuilds the cosmological parameters of the run.
func (m *RunMetadata) Params() (*cosmo.Params, error) {
	unit, err := cosmo.ParseUnit(m.Unit)
	if err != nil {
		return nil, err
	}
	return cosmo.NewParams(m.Ho, m.OmegaMatter, m.OmegaRadiation, m.OmegaLambda, unit)
}

// Save writes the table's samples and parameters under a new run id.
func (s *Store) Save(name, integrator string, step float64, tbl *cosmo.Table) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	samples := tbl.Samples()
	p := tbl.Params()
	meta := RunMetadata{
		ID:             runID,
		Name:           name,
		Timestamp:      now,
		Ho:             p.Ho(),
		OmegaMatter:    p.OmegaMatter(),
		OmegaRadiation: p.OmegaRadiation(),
		OmegaLambda:    p.OmegaLambda(),
		Unit:           p.Unit().String(),
		Integrator:     integrator,
		Step:           step,
		Samples:        len(samples),
		MaxZ:           samples[len(samples)-1].Z,
	}

	if err := writeRun(runDir, &meta, samples); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

// writeRun writes the samples and then the metadata, so a run that List
// reports always has its samples on disk.
func writeRun(runDir string, meta *RunMetadata, samples []cosmo.Sample) error {
	if err := writeSamples(filepath.Join(runDir, samplesFile), samples); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func writeSamples(path string, samples []cosmo.Sample) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"z", "dc_cm", "vc_cm3"}); err != nil {
		return err
	}
	for _, smp := range samples {
		row := []string{
			strconv.FormatFloat(smp.Z, 'g', -1, 64),
			strconv.FormatFloat(smp.Dc, 'g', -1, 64),
			strconv.FormatFloat(smp.Vc, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the metadata of every saved run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]cosmo.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []cosmo.Sample{}, nil
	}

	samples := make([]cosmo.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [3]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		samples = append(samples, cosmo.Sample{Z: vals[0], Dc: vals[1], Vc: vals[2]})
	}
	return samples, nil
}

// Restore loads a saved run back into a table that can be queried and
// extended further.
func (s *Store) Restore(runID string, opts ...cosmo.Option) (*cosmo.Table, *RunMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	p, err := meta.Params()
	if err != nil {
		return nil, nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := cosmo.Restore(p, samples, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return tbl, meta, nil
}
