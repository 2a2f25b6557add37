package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/massspring/internal/dynamo"
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

// RunMetadata describes a stored run. Springs and Fixed carry the scene
// topology so frames can be drawn without rebuilding the scenario.
type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	SampleEvery int                `json:"sample_every"`
	Steps       int                `json:"steps"`
	Params      dynamo.Params      `json:"params"`
	Features    dynamo.Features    `json:"features"`
	Points      int                `json:"points"`
	Fixed       []int              `json:"fixed,omitempty"`
	Springs     []dynamo.Spring    `json:"springs"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and states.csv into a fresh run directory and
// returns the run ID. ID, Timestamp, Steps and Metrics are filled in.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(fmt.Sprintf("%s_%s_%d", meta.Scenario, meta.Integrator, now.Unix()))
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteStates(csvFile, result.Frames, result.Times); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) newRunDir(base string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := base
	for n := 1; ; n++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// WriteStates writes one CSV row per frame: time, then x,y,z of every
// point.
func WriteStates(out io.Writer, frames [][]float64, times []float64) error {
	w := csv.NewWriter(out)
	if len(frames) > 0 {
		header := []string{"time"}
		for i := 0; i < len(frames[0])/3; i++ {
			header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i), fmt.Sprintf("p%d_z", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}
	}

	for i, frame := range frames {
		row := make([]string, 0, len(frame)+1)
		row = append(row, strconv.FormatFloat(times[i], 'f', 6, 64))
		for _, val := range frame {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns stored runs, newest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads the sampled frames and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	frames := make([][]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
			}
			vals[j] = v
		}
		times = append(times, vals[0])
		frames = append(frames, vals[1:])
	}

	return frames, times, nil
}

// Frame rebuilds the points of one stored frame. Velocities are not
// stored and come back zero.
func (m *RunMetadata) Frame(flat []float64) []dynamo.Point {
	points := make([]dynamo.Point, len(flat)/3)
	for i := range points {
		points[i].Position.X = flat[3*i]
		points[i].Position.Y = flat[3*i+1]
		points[i].Position.Z = flat[3*i+2]
	}
	for _, i := range m.Fixed {
		if i >= 0 && i < len(points) {
			points[i].Fixed = true
		}
	}
	return points
}

// NewRunMetadata describes a run about to start from the given scene.
func NewRunMetadata(scenario string, kind dynamo.IntegratorKind, params dynamo.Params, features dynamo.Features, points []dynamo.Point, springs []dynamo.Spring, cfg dynamo.Config) RunMetadata {
	meta := RunMetadata{
		Scenario:    scenario,
		Integrator:  kind.String(),
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		SampleEvery: max(cfg.SampleEvery, 1),
		Params:      params,
		Features:    features,
		Points:      len(points),
		Springs:     springs,
	}
	for i, p := range points {
		if p.Fixed {
			meta.Fixed = append(meta.Fixed, i)
		}
	}
	return meta
}
