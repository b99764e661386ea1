package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/virial/internal/cluster"
	"github.com/san-kum/virial/internal/config"
	"github.com/san-kum/virial/internal/meter"
	"github.com/san-kum/virial/internal/msmc"
)

// ErrNotFound indicates a run ID with no stored metadata.
var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string                      `json:"id"`
	Name       string                      `json:"name"`
	Timestamp  time.Time                   `json:"timestamp"`
	Elapsed    float64                     `json:"elapsed_seconds"`
	Config     *config.Config              `json:"config"`
	Points     int                         `json:"points"`
	Reference  float64                     `json:"reference"`
	Estimates  []meter.Estimate            `json:"estimates"`
	Acceptance map[string]meter.Acceptance `json:"acceptance"`
	StepSizes  map[string]float64          `json:"step_sizes"`
	Counters   cluster.Counters            `json:"counters"`
	Samples    int64                       `json:"samples"`
	Blocks     int                         `json:"blocks"`
}

// Save writes metadata.json and the per-block channel averages to
// samples.csv in a new run directory.
func (s *Store) Save(name string, cfg *config.Config, result *msmc.Result, elapsed time.Duration) (string, error) {
	runID := fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  time.Now(),
		Elapsed:    elapsed.Seconds(),
		Config:     cfg,
		Points:     result.Points,
		Reference:  result.Reference,
		Estimates:  result.Estimates,
		Acceptance: result.Acceptance,
		StepSizes:  result.StepSizes,
		Counters:   result.Counters,
		Samples:    result.Samples,
	}
	if result.Meter != nil {
		meta.Blocks = result.Meter.BlockCount()
	}

	if err := ExportJSON(filepath.Join(runDir, "metadata.json"), &meta); err != nil {
		return "", err
	}
	if result.Meter == nil {
		return runID, nil
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	m := result.Meter
	header := []string{"block", "reference"}
	for k := 1; k < m.Channels(); k++ {
		header = append(header, fmt.Sprintf("target%d", k-1))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for i := 0; i < m.BlockCount(); i++ {
		row := []string{strconv.Itoa(i)}
		for _, v := range m.Block(i) {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return runID, w.Error()
}

// List returns every stored run, oldest first.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadBlocks reads samples.csv back: one row of channel averages per block,
// reference first.
func (s *Store) LoadBlocks(runID string) ([][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, nil
	}

	blocks := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %q: %w", field, err)
			}
			row = append(row, v)
		}
		blocks = append(blocks, row)
	}
	return blocks, nil
}

// RunningEstimate turns stored blocks into the estimate of target channel k
// after each block: B_ref Σ target / Σ reference.
func RunningEstimate(blocks [][]float64, k int, reference float64) []float64 {
	out := make([]float64, 0, len(blocks))
	var sumRef, sumTarget float64
	for _, b := range blocks {
		if len(b) <= k+1 {
			continue
		}
		sumRef += b[0]
		sumTarget += b[k+1]
		out = append(out, reference*sumTarget/sumRef)
	}
	return out
}
