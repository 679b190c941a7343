package stmtfetch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestName is the file a run writes next to the statements it saved.
const ManifestName = "manifest.yaml"

// Manifest records what a run saved into its output directory.
type Manifest struct {
	RunID      string          `yaml:"run_id"`
	FetchedAt  time.Time       `yaml:"fetched_at"`
	WindowFrom string          `yaml:"window_from"`
	WindowTo   string          `yaml:"window_to"`
	Statements []ManifestEntry `yaml:"statements"`
}

// ManifestEntry describes one saved statement.
type ManifestEntry struct {
	PeriodStart string `yaml:"period_start"`
	PeriodEnd   string `yaml:"period_end"`
	File        string `yaml:"file"`
	Bytes       int    `yaml:"bytes"`
	PDFVersion  string `yaml:"pdf_version,omitempty"`
}

// NewManifest builds the manifest of a report.
func NewManifest(r *Report) *Manifest {
	m := &Manifest{
		RunID:      r.RunID,
		FetchedAt:  r.StartedAt,
		WindowFrom: r.Window.From.Format(fileDateLayout),
		WindowTo:   r.Window.To.Format(fileDateLayout),
	}
	for _, s := range r.Saved {
		m.Statements = append(m.Statements, ManifestEntry{
			PeriodStart: s.Statement.Start.Format(fileDateLayout),
			PeriodEnd:   s.Statement.End.Format(fileDateLayout),
			File:        filepath.Base(s.Path),
			Bytes:       s.Size,
			PDFVersion:  s.PDFVersion,
		})
	}
	return m
}

// WriteManifest writes the manifest of r into r.Dir, replacing the one of
// an earlier run on the same day.
func WriteManifest(r *Report) error {
	data, err := yaml.Marshal(NewManifest(r))
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(r.Dir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest stored in dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
