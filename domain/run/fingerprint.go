package run

import (
	"fmt"

	"designspace/domain/core"
)

// Fingerprint identifies everything that determines a run's output apart
// from the input rows themselves.
type Fingerprint struct {
	SchemaHash  core.Hash `json:"schema_hash"`
	LayoutHash  core.Hash `json:"layout_hash"`
	Strategy    string    `json:"strategy"`
	Components  int       `json:"components"`
	CodeVersion string    `json:"code_version"`
	Fingerprint core.Hash `json:"fingerprint"` // hash of all above
}

// NewFingerprint creates a fingerprint from the determinism parameters
func NewFingerprint(schemaHash, layoutHash core.Hash, strategy string, components int, codeVersion string) Fingerprint {
	return Fingerprint{
		SchemaHash:  schemaHash,
		LayoutHash:  layoutHash,
		Strategy:    strategy,
		Components:  components,
		CodeVersion: codeVersion,
		Fingerprint: computeFingerprint(schemaHash, layoutHash, strategy, components, codeVersion),
	}
}

func computeFingerprint(schemaHash, layoutHash core.Hash, strategy string, components int, codeVersion string) core.Hash {
	data := fmt.Sprintf("schema:%s|layout:%s|strategy:%s|components:%d|code:%s",
		schemaHash, layoutHash, strategy, components, codeVersion)
	return core.NewHash([]byte(data))
}
