package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravitas/internal/config"
	"github.com/san-kum/gravitas/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	seriesFile   = "series.csv"
	finalFile    = "final.json"
	mergesFile   = "merges.json"
)

var seriesHeader = []string{
	"tick", "bodies", "primaries", "dynamics",
	"total_mass", "kinetic_energy", "merges", "spawned", "expired",
}

// Store keeps one directory per run under baseDir.
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
	ID                string             `json:"id"`
	Label             string             `json:"label"`
	Timestamp         time.Time          `json:"timestamp"`
	Seed              int64              `json:"seed"`
	Ticks             int                `json:"ticks"`
	DynamicCollisions bool               `json:"dynamic_collisions"`
	FinalBodies       int                `json:"final_bodies"`
	Merges            int                `json:"merges"`
	Errors            []string           `json:"errors,omitempty"`
	Metrics           map[string]float64 `json:"metrics"`
}

// Save writes the metadata, the config used, the per-tick series, the final
// population and the merge log of a run, and returns the run id.
// Non-finite metrics and bodies cannot be encoded as JSON; they are left out
// and reported in the metadata errors instead.
func (s *Store) Save(label string, cfg *config.Config, result *dynamo.Result) (runID string, err error) {
	now := time.Now()
	runID = fmt.Sprintf("%s_%d", label, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
			runID = ""
		}
	}()

	metrics, final, dropped := finiteOnly(result)

	meta := RunMetadata{
		ID:                runID,
		Label:             label,
		Timestamp:         now,
		Seed:              cfg.Seed,
		Ticks:             result.TicksTaken,
		DynamicCollisions: cfg.DynamicCollisions,
		FinalBodies:       len(final),
		Merges:            len(result.Merges),
		Metrics:           metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	meta.Errors = append(meta.Errors, dropped...)

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result.Series); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, finalFile), final); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, mergesFile), result.Merges); err != nil {
		return "", err
	}

	return runID, nil
}

func finiteOnly(result *dynamo.Result) (map[string]float64, []dynamo.BodyView, []string) {
	var dropped []string

	metrics := make(map[string]float64, len(result.Metrics))
	for name, v := range result.Metrics {
		if !finite(v) {
			dropped = append(dropped, fmt.Sprintf("metric %s is %v, not stored", name, v))
			continue
		}
		metrics[name] = v
	}

	final := make([]dynamo.BodyView, 0, len(result.Final))
	omitted := 0
	for _, b := range result.Final {
		if !finiteView(b) {
			omitted++
			continue
		}
		final = append(final, b)
	}
	if omitted > 0 {
		dropped = append(dropped, fmt.Sprintf("%d bodies with non-finite state left out of %s", omitted, finalFile))
	}

	return metrics, final, dropped
}

func finiteView(b dynamo.BodyView) bool {
	if !finite(b.Pos.X) || !finite(b.Pos.Y) || !finite(b.Vel.X) || !finite(b.Vel.Y) || !finite(b.Mass) {
		return false
	}
	for _, p := range b.Trail {
		if !finite(p.X) || !finite(p.Y) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
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

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeSeries(path string, series []dynamo.TickSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}

	for _, s := range series {
		row := []string{
			strconv.Itoa(s.Tick),
			strconv.Itoa(s.Bodies),
			strconv.Itoa(s.Primaries),
			strconv.Itoa(s.Dynamics),
			strconv.FormatFloat(s.TotalMass, 'g', -1, 64),
			strconv.FormatFloat(s.KineticEnergy, 'g', -1, 64),
			strconv.Itoa(s.Merges),
			strconv.Itoa(s.Spawned),
			strconv.Itoa(s.Expired),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, oldest first.
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

		var meta RunMetadata
		if err := readJSON(filepath.Join(s.baseDir, entry.Name(), metadataFile), &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadFinal(runID string) ([]dynamo.BodyView, error) {
	var views []dynamo.BodyView
	if err := readJSON(filepath.Join(s.baseDir, runID, finalFile), &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *Store) LoadMerges(runID string) ([]dynamo.MergeEvent, error) {
	var merges []dynamo.MergeEvent
	if err := readJSON(filepath.Join(s.baseDir, runID, mergesFile), &merges); err != nil {
		return nil, err
	}
	return merges, nil
}

// LoadSeries reads the per-tick summary back. Malformed rows are skipped.
func (s *Store) LoadSeries(runID string) ([]dynamo.TickSample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
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
		return []dynamo.TickSample{}, nil
	}

	series := make([]dynamo.TickSample, 0, len(records)-1)
	for _, record := range records[1:] {
		sample, err := parseSample(record)
		if err != nil {
			continue
		}
		series = append(series, sample)
	}

	return series, nil
}

func parseSample(record []string) (dynamo.TickSample, error) {
	var s dynamo.TickSample
	if len(record) != len(seriesHeader) {
		return s, fmt.Errorf("expected %d fields, got %d", len(seriesHeader), len(record))
	}

	ints := []*int{&s.Tick, &s.Bodies, &s.Primaries, &s.Dynamics}
	for i, dst := range ints {
		v, err := strconv.Atoi(record[i])
		if err != nil {
			return s, err
		}
		*dst = v
	}

	var err error
	if s.TotalMass, err = strconv.ParseFloat(record[4], 64); err != nil {
		return s, err
	}
	if s.KineticEnergy, err = strconv.ParseFloat(record[5], 64); err != nil {
		return s, err
	}

	ints = []*int{&s.Merges, &s.Spawned, &s.Expired}
	for i, dst := range ints {
		v, err := strconv.Atoi(record[6+i])
		if err != nil {
			return s, err
		}
		*dst = v
	}
	return s, nil
}
