package run

import (
	"fmt"

	"designspace/domain/core"
)

// Status of a run
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Manifest is the header of a stored run
type Manifest struct {
	RunID         core.RunID      `json:"run_id"`
	SchemaVersion string          `json:"schema_version"`
	Rows          int             `json:"rows"`
	Fingerprint   Fingerprint     `json:"fingerprint"`
	Status        Status          `json:"status"`
	Error         string          `json:"error,omitempty"`
	CreatedAt     core.Timestamp  `json:"created_at"`
	CompletedAt   *core.Timestamp `json:"completed_at,omitempty"`
}

// NewManifest starts a running manifest
func NewManifest(runID core.RunID, schemaVersion string, rows int, fp Fingerprint) *Manifest {
	return &Manifest{
		RunID:         runID,
		SchemaVersion: schemaVersion,
		Rows:          rows,
		Fingerprint:   fp,
		Status:        StatusRunning,
		CreatedAt:     core.Now(),
	}
}

// Complete marks the run finished
func (m *Manifest) Complete() {
	now := core.Now()
	m.Status = StatusCompleted
	m.CompletedAt = &now
}

// Fail marks the run failed with a reason
func (m *Manifest) Fail(err error) {
	now := core.Now()
	m.Status = StatusFailed
	m.Error = err.Error()
	m.CompletedAt = &now
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.SchemaHash == "" {
		return fmt.Errorf("run manifest: schema_hash cannot be empty")
	}
	if m.Fingerprint.LayoutHash == "" {
		return fmt.Errorf("run manifest: layout_hash cannot be empty")
	}
	if m.Rows <= 0 {
		return fmt.Errorf("run manifest: row count must be positive")
	}
	return nil
}
