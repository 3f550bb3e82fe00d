package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/rebound/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Tick       float64            `json:"tick_ms"`
	Duration   float64            `json:"duration_ms"`
	Integrator string             `json:"integrator"`
	Bodies     int                `json:"bodies"`
	Steps      int                `json:"steps"`
	Rebounds   int                `json:"rebounds"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run id.
func (s *Store) Save(integrator string, cfg sim.Config, result *sim.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", sanitizeName(result.Scene), ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	bodies := 0
	if len(result.States) > 0 {
		bodies = len(result.States[0]) / 4
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      result.Scene,
		Timestamp:  ts,
		Tick:       cfg.Tick,
		Duration:   cfg.Duration,
		Integrator: integrator,
		Bodies:     bodies,
		Steps:      result.StepsTaken,
		Rebounds:   result.Rebounds,
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeStates(filepath.Join(runDir, statesFile), bodies, result); err != nil {
		return "", err
	}

	return runID, nil
}

// sanitizeName maps a scene name onto a single safe path element: anything
// outside [A-Za-z0-9._-] becomes '_' and leading dots are dropped.
func sanitizeName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		return "run"
	}
	return clean
}

// runDir resolves a run id inside the base directory.
func (s *Store) runDir(runID string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || filepath.Base(runID) != runID || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("invalid run id: %q", runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, bodies int, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"time_ms"}
	for i := 0; i < bodies; i++ {
		header = append(header,
			fmt.Sprintf("b%d_x", i), fmt.Sprintf("b%d_y", i),
			fmt.Sprintf("b%d_vx", i), fmt.Sprintf("b%d_vy", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 4, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates reads back the flattened states and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(filepath.Join(dir, statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}

		state := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// LoadResult rebuilds a Result from a stored run.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &sim.Result{
		Scene:      meta.Scene,
		Times:      times,
		States:     states,
		Metrics:    meta.Metrics,
		Rebounds:   meta.Rebounds,
		StepsTaken: meta.Steps,
	}, nil
}
