// Package forms persists the per-form selection state between htmx requests. State is scoped
// to one form id and is never written back to the vehicle listing.
package forms

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alc/leasing-form/internal/leasing"
)

// ErrNotFound indicates the form id is unknown or has expired.
var ErrNotFound = errors.New("form not found")

// DefaultTTL bounds how long an idle form keeps its state.
const DefaultTTL = 2 * time.Hour

// State is the stored snapshot of one configurator form.
type State struct {
	ID         string            `json:"id"`
	VehicleID  int64             `json:"vehicle_id"`
	Selections map[string]string `json:"selections"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Store keeps form state keyed by form id.
type Store interface {
	Get(ctx context.Context, id string) (State, error)
	Put(ctx context.Context, state State) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh form id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like a form id issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Capture snapshots a form's current selections.
func Capture(form *leasing.Form, now time.Time) State {
	selections := make(map[string]string, len(leasing.Categories))
	for cat, id := range form.Selections() {
		selections[string(cat)] = id
	}
	return State{
		ID:         form.ID,
		VehicleID:  form.Listing.VehicleID,
		Selections: selections,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Restore rebuilds a form for listing from stored state. Selections that no longer exist in
// the listing's catalog fall back to the catalog defaults.
func (s State) Restore(listing leasing.Listing, calc *leasing.Calculator) *leasing.Form {
	form := leasing.NewForm(s.ID, listing, calc)
	selected := make(map[leasing.Category]string, len(s.Selections))
	for key, id := range s.Selections {
		if cat, ok := leasing.ParseCategory(key); ok {
			selected[cat] = id
		}
	}
	form.Restore(selected)
	return form
}
