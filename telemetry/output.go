package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/arcfield/steer/config"
)

// DecisionRecord is one agent's decision for one tick, exported to
// decisions.csv.
type DecisionRecord struct {
	Tick      int64   `csv:"tick"`
	Agent     int     `csv:"agent"`
	Slot      int     `csv:"slot"`
	Value     float64 `csv:"value"`
	HeadingX  float64 `csv:"heading_x"`
	HeadingY  float64 `csv:"heading_y"`
	Magnitude float64 `csv:"magnitude"`
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir           string
	decisionsFile *os.File
	statsFile     *os.File
	perfFile      *os.File

	// Track if headers have been written
	decisionsHeaderWritten bool
	statsHeaderWritten     bool
	perfHeaderWritten      bool

	pending    []DecisionRecord
	flushEvery int
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, flushEvery int) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if flushEvery < 1 {
		flushEvery = 64
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, flushEvery: flushEvery}

	f, err := os.Create(filepath.Join(dir, "decisions.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating decisions.csv: %w", err)
	}
	om.decisionsFile = f

	f, err = os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		om.decisionsFile.Close()
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	f, err = os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		om.decisionsFile.Close()
		om.statsFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the active configuration as YAML next to the CSVs.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteDecision buffers a decision record, flushing in batches.
func (om *OutputManager) WriteDecision(rec DecisionRecord) error {
	if om == nil {
		return nil
	}
	om.pending = append(om.pending, rec)
	if len(om.pending) >= om.flushEvery {
		return om.flushDecisions()
	}
	return nil
}

func (om *OutputManager) flushDecisions() error {
	if len(om.pending) == 0 {
		return nil
	}
	var err error
	if !om.decisionsHeaderWritten {
		err = gocsv.Marshal(om.pending, om.decisionsFile)
		om.decisionsHeaderWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(om.pending, om.decisionsFile)
	}
	om.pending = om.pending[:0]
	if err != nil {
		return fmt.Errorf("writing decisions: %w", err)
	}
	return nil
}

// WriteStats writes a window stats record to stats.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.statsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}

	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes buffered decisions and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	firstErr := om.flushDecisions()

	for _, f := range []*os.File{om.decisionsFile, om.statsFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
