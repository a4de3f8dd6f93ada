package editor

import (
	"encoding/json"
	"fmt"

	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/store"
)

// BatchEdit is one line item in a batch document: the same verb grammar
// accepted by chsr's interactive form, expressed as structured JSON instead
// of argv tokens (supplemented feature: a scriptable bulk-edit mode, grounded
// on the original's process::json module).
type BatchEdit struct {
	Role    string   `json:"role,omitempty"`
	Task    string   `json:"task,omitempty"`
	Verb    string   `json:"verb"`
	Args    []string `json:"args,omitempty"`
}

// Batch is the top-level document read from stdin for "chsr batch".
type Batch struct {
	Edits []BatchEdit `json:"edits"`
}

// BatchResult reports, per edit, whether it changed the document.
type BatchResult struct {
	Changed []bool `json:"changed"`
}

// ParseBatch decodes a JSON batch document.
func ParseBatch(data []byte) (Batch, error) {
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return Batch{}, fmt.Errorf("parsing batch document: %w", err)
	}
	return b, nil
}

// ApplyBatch applies every edit in b to cfg in order. It operates on a deep
// copy first: if any edit fails, cfg is left completely untouched and the
// error identifies the failing index (spec's atomic-batch requirement — all
// edits commit together or none do).
func ApplyBatch(cfg *policy.Config, b Batch) (BatchResult, error) {
	working, err := store.Clone(cfg)
	if err != nil {
		return BatchResult{}, fmt.Errorf("preparing batch working copy: %w", err)
	}

	result := BatchResult{Changed: make([]bool, len(b.Edits))}
	for i, edit := range b.Edits {
		cmd := Command{Role: edit.Role, Task: edit.Task, Verb: edit.Verb, Args: edit.Args}
		changed, err := Execute(working, cmd)
		if err != nil {
			return BatchResult{}, fmt.Errorf("edit %d (%s): %w", i, edit.Verb, err)
		}
		result.Changed[i] = changed
	}

	*cfg = *working
	return result, nil
}
