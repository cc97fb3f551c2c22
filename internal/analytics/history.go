package analytics

import (
	"time"

	"vidinsights/domain/core"

	"github.com/google/uuid"
)

// PredictionEntry is one stored prediction
type PredictionEntry struct {
	ID         uuid.UUID          `json:"id"`
	Group      string             `json:"group"`
	Inputs     map[string]float64 `json:"inputs"`
	Prediction float64            `json:"prediction"`
	CreatedAt  time.Time          `json:"created_at"`
}

// PredictionHistory keeps predictions in caller-named groups. It is a plain
// value owned by whoever sequences interactions; it has no locking.
type PredictionHistory struct {
	groups map[string][]PredictionEntry
	order  []string
}

// NewPredictionHistory creates an empty history
func NewPredictionHistory() *PredictionHistory {
	return &PredictionHistory{groups: make(map[string][]PredictionEntry)}
}

// Ensure creates the group if it does not exist yet
func (h *PredictionHistory) Ensure(group string) {
	if h.groups == nil {
		h.groups = make(map[string][]PredictionEntry)
	}
	if _, ok := h.groups[group]; !ok {
		h.groups[group] = []PredictionEntry{}
		h.order = append(h.order, group)
	}
}

// Append records a prediction under group
func (h *PredictionHistory) Append(group string, inputs map[string]float64, prediction float64) PredictionEntry {
	h.Ensure(group)
	copied := make(map[string]float64, len(inputs))
	for k, v := range inputs {
		copied[k] = v
	}
	entry := PredictionEntry{
		ID:         core.NewEntryID(),
		Group:      group,
		Inputs:     copied,
		Prediction: prediction,
		CreatedAt:  time.Now().UTC(),
	}
	h.groups[group] = append(h.groups[group], entry)
	return entry
}

// Entries returns a copy of a group's predictions in insertion order
func (h *PredictionHistory) Entries(group string) []PredictionEntry {
	entries := h.groups[group]
	out := make([]PredictionEntry, len(entries))
	copy(out, entries)
	return out
}

// Clear empties a group but keeps it listed. Reports whether it existed.
func (h *PredictionHistory) Clear(group string) bool {
	if _, ok := h.groups[group]; !ok {
		return false
	}
	h.groups[group] = []PredictionEntry{}
	return true
}

// Groups lists group names in creation order
func (h *PredictionHistory) Groups() []string {
	return append([]string(nil), h.order...)
}

// Compare flattens the named groups into one list, in the order requested.
// Unknown groups contribute nothing.
func (h *PredictionHistory) Compare(groups ...string) []PredictionEntry {
	var out []PredictionEntry
	for _, g := range groups {
		out = append(out, h.groups[g]...)
	}
	if out == nil {
		out = []PredictionEntry{}
	}
	return out
}
