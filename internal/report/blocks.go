package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"designspace/domain/condition"
	"designspace/domain/core"
	"designspace/domain/paradigm"
)

// MappingNotesColumn holds per-condition JSON notes; its "block_id" key groups
// conditions run in the same experimental block.
const MappingNotesColumn = "Super_Experiment_Mapping_Notes"

// BlockParadigm is the most frequent paradigm among a block's conditions
type BlockParadigm struct {
	Block      string            `json:"block"`
	Paradigm   paradigm.Paradigm `json:"paradigm"`
	Paper      string            `json:"paper,omitempty"`
	Conditions int               `json:"conditions"`
}

// BlockID reads the block of the condition at position index. Conditions
// without a usable block_id note form a block of their own.
func BlockID(notes, experiment string, index int) string {
	fallback := fmt.Sprintf("%s_row_%d", experiment, index)
	notes = strings.Trim(strings.TrimSpace(notes), `"`)
	if notes == "" {
		return fallback
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(notes), &parsed); err != nil {
		return fallback
	}
	id, ok := parsed["block_id"]
	if !ok || id == nil {
		return fallback
	}
	if s, ok := id.(string); ok {
		return s
	}
	return fmt.Sprint(id)
}

// BlockIDs assigns a block to every row of a raw table, in row order.
func BlockIDs(table condition.RawTable, idColumn string) []string {
	out := make([]string, len(table.Rows))
	for i, raw := range table.Rows {
		out[i] = BlockID(raw[MappingNotesColumn], strings.TrimSpace(raw[idColumn]), i)
	}
	return out
}

// SummarizeBlocks groups labelled rows by block. Each block takes its modal
// paradigm and the first recognizable paper among its conditions. Blocks are
// ordered by paradigm, then paper.
func SummarizeBlocks(rows []condition.Row, labels []paradigm.Paradigm, blocks []string) ([]BlockParadigm, []ParadigmCount, error) {
	if len(labels) != len(rows) {
		return nil, nil, core.NewShapeError("labels", len(rows), 1, len(labels), 1)
	}
	if len(blocks) != len(rows) {
		return nil, nil, core.NewShapeError("block ids", len(rows), 1, len(blocks), 1)
	}

	members := make(map[string][]paradigm.Paradigm)
	papers := make(map[string]string)
	var order []string
	for i, r := range rows {
		b := blocks[i]
		if _, ok := members[b]; !ok {
			order = append(order, b)
		}
		members[b] = append(members[b], labels[i])
		if papers[b] == "" {
			if paper, ok := ExtractPaper(r.ID); ok {
				papers[b] = paper
			}
		}
	}

	out := make([]BlockParadigm, 0, len(order))
	modal := make([]paradigm.Paradigm, 0, len(order))
	for _, b := range order {
		m := mode(members[b])
		out = append(out, BlockParadigm{Block: b, Paradigm: m, Paper: papers[b], Conditions: len(members[b])})
		modal = append(modal, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Paradigm != out[j].Paradigm {
			return out[i].Paradigm < out[j].Paradigm
		}
		return out[i].Paper < out[j].Paper
	})
	return out, distribution(modal), nil
}
