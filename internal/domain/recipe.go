// Package domain defines the core types and interfaces for the recipe bot.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Placeholder notes shown in place of a step list.
const (
	NoteNoInstructions = "No instructions available."
	NoteFetchFailed    = "Error fetching instructions."
)

// RecipeSummary is a search hit: just enough to fetch the rest.
type RecipeSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// InstructionStep is a single numbered preparation step. Numbers start
// at 1 and increase strictly within a recipe.
type InstructionStep struct {
	Number      int    `json:"number"`
	Instruction string `json:"instruction"`
}

// Instructions is either an ordered list of steps or a placeholder note
// that replaced them. On the wire it is a JSON array of steps, or a bare
// JSON string for a note.
type Instructions struct {
	Steps []InstructionStep
	Note  string
}

// StepList wraps steps as Instructions. An empty list is stored as nil
// so it compares equal after a JSON round trip.
func StepList(steps []InstructionStep) Instructions {
	if len(steps) == 0 {
		steps = nil
	}
	return Instructions{Steps: steps}
}

// Placeholder wraps a note as Instructions.
func Placeholder(note string) Instructions {
	return Instructions{Note: note}
}

// IsPlaceholder reports whether the steps were replaced by a note.
func (in Instructions) IsPlaceholder() bool { return in.Note != "" }

// MarshalJSON encodes a note as a string and steps as an array.
func (in Instructions) MarshalJSON() ([]byte, error) {
	if in.IsPlaceholder() {
		return json.Marshal(in.Note)
	}
	if in.Steps == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(in.Steps)
}

// UnmarshalJSON accepts either form written by MarshalJSON. An empty
// array decodes to nil steps.
func (in *Instructions) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("instructions: empty value")
	}

	switch trimmed[0] {
	case '"':
		var note string
		if err := json.Unmarshal(trimmed, &note); err != nil {
			return fmt.Errorf("instructions: %w", err)
		}
		*in = Instructions{Note: note}
	case '[':
		var steps []InstructionStep
		if err := json.Unmarshal(trimmed, &steps); err != nil {
			return fmt.Errorf("instructions: %w", err)
		}
		if len(steps) == 0 {
			steps = nil
		}
		*in = Instructions{Steps: steps}
	case 'n':
		*in = Instructions{}
	default:
		return fmt.Errorf("instructions: unexpected JSON %q", truncate(string(trimmed), 20))
	}
	return nil
}

// HydratedRecipe is a search hit enriched with its instructions. It is
// never mutated after the pipeline builds it.
type HydratedRecipe struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Instructions Instructions `json:"instructions"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
