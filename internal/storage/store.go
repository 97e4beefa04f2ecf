package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/export"
	"github.com/san-kum/physlab/internal/regression"
)

const (
	reportFile  = "report.json"
	samplesFile = "samples.csv"
)

// Store keeps finished experiments as one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Save writes the report and samples of res and returns the run ID.
func (s *Store) Save(res *experiment.Result, integrator string) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", res.Lab, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	rep := export.NewReport(res, integrator)
	rep.ID = runID
	rep.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, reportFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	if err := export.WriteJSON(metaFile, rep); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	if err := export.WriteCSV(csvFile, res.Samples); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]export.Report, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []export.Report{}, nil
		}
		return nil, err
	}

	runs := make([]export.Report, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rep, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *rep)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*export.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, reportFile))
	if err != nil {
		return nil, err
	}

	var rep export.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, err
	}

	return &rep, nil
}

func (s *Store) LoadSamples(runID string) (*regression.SampleSet, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return export.ReadCSV(f)
}
