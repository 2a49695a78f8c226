package ui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID names a toggleable overlay.
type OverlayID string

const (
	OverlayVelocity OverlayID = "velocity"
	OverlayStats    OverlayID = "stats"
	OverlayPerf     OverlayID = "perf"
	OverlayParams   OverlayID = "params"
)

// Overlay categories, in display order.
const (
	CategoryVisual = "visual"
	CategoryPanels = "panels"
)

// OverlayDescriptor describes one overlay and its key binding.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // raylib key code, 0 for none
	KeyLabel    string // shown in the controls panel
	Category    string
	// Exclusive overlays are switched off when this one is switched on.
	Exclusive []OverlayID
}

var defaultOverlays = []OverlayDescriptor{
	{
		ID: OverlayVelocity, Name: "Velocity", Description: "Velocity arrows over the dye",
		Key: rl.KeyV, KeyLabel: "V", Category: CategoryVisual,
	},
	{
		ID: OverlayParams, Name: "Parameters", Description: "Viscosity, diffusion and brush sliders",
		Key: rl.KeyTab, KeyLabel: "Tab", Category: CategoryPanels,
	},
	{
		ID: OverlayStats, Name: "Flow Stats", Description: "Dye totals, divergence and speed",
		Key: rl.KeyT, KeyLabel: "T", Category: CategoryPanels,
		Exclusive: []OverlayID{OverlayPerf},
	},
	{
		ID: OverlayPerf, Name: "Performance", Description: "Per-phase step timings",
		Key: rl.KeyP, KeyLabel: "P", Category: CategoryPanels,
		Exclusive: []OverlayID{OverlayStats},
	},
}

// OverlayRegistry holds overlay descriptors in registration order and their
// on/off state.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry returns a registry with the velocity, parameter, stats
// and perf overlays, all off.
func NewOverlayRegistry() *OverlayRegistry {
	r := &OverlayRegistry{enabled: make(map[OverlayID]bool)}
	for _, d := range defaultOverlays {
		r.Register(d)
	}
	return r
}

// Register appends desc, replacing any overlay with the same ID.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	if i := r.index(desc.ID); i >= 0 {
		r.descriptors[i] = desc
		return
	}
	r.descriptors = append(r.descriptors, desc)
	r.enabled[desc.ID] = false
}

func (r *OverlayRegistry) index(id OverlayID) int {
	return slices.IndexFunc(r.descriptors, func(d OverlayDescriptor) bool { return d.ID == id })
}

// Toggle flips id and returns its new state. Unknown IDs stay off.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled sets id's state, switching off its exclusive peers when enabled.
func (r *OverlayRegistry) SetEnabled(id OverlayID, on bool) {
	i := r.index(id)
	if i < 0 {
		return
	}
	r.enabled[id] = on
	if on {
		for _, peer := range r.descriptors[i].Exclusive {
			r.enabled[peer] = false
		}
	}
}

// IsEnabled reports whether id is on.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool { return r.enabled[id] }

// All returns the descriptors in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor { return r.descriptors }

// ByCategory returns the descriptors in category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var out []OverlayDescriptor
	for _, d := range r.descriptors {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for _, d := range r.descriptors {
		if !slices.Contains(cats, d.Category) {
			cats = append(cats, d.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key. handled is false when no
// overlay uses key.
func (r *OverlayRegistry) HandleKeyPress(key int32) (id OverlayID, on, handled bool) {
	for _, d := range r.descriptors {
		if d.Key == key {
			return d.ID, r.Toggle(d.ID), true
		}
	}
	return "", false, false
}

// EnabledOverlays returns the IDs that are on, in registration order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var out []OverlayID
	for _, d := range r.descriptors {
		if r.enabled[d.ID] {
			out = append(out, d.ID)
		}
	}
	return out
}
