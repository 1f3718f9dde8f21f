package domain

import (
	"context"

	"modguard/internal/core/nightmode"
)

// ServicePort is the moderation pipeline surface
type ServicePort interface {
	// Evaluate runs the ordered checks and returns exactly one verdict
	Evaluate(ctx context.Context, msg Message) (Verdict, error)

	// SetConfig validates and atomically swaps the active config
	SetConfig(ctx context.Context, cfg Config) error

	// ActiveConfig returns a copy of the config in effect
	ActiveConfig() Config

	// Stats returns the verdict counters
	Stats() Stats
}

// NightModePort controls the per-group night phase
type NightModePort interface {
	// Phase reports the group's current phase
	Phase(groupID int64) nightmode.Phase

	// Force pins the group's phase regardless of the clock
	Force(groupID int64, p nightmode.Phase)

	// ClearForce returns the group to clock-driven phases
	ClearForce(groupID int64)
}
