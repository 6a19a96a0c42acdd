package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Field names for the trip plan model
const (
	// TripPlanVersionField is the field name for the plan version counter
	TripPlanVersionField = "version"
	// TripPlanPayloadField is the field name for the plan payload
	TripPlanPayloadField = "payload"
)

// TripPlanStatus represents the current state of a trip plan
type TripPlanStatus string

// Trip plan status constants
const (
	// TripPlanStatusDraft indicates the plan is being assembled
	TripPlanStatusDraft TripPlanStatus = "draft"
	// TripPlanStatusFinal indicates the plan has been published to the guest
	TripPlanStatusFinal TripPlanStatus = "final"
)

// TripPlan is an itinerary document guarded by an optimistic version
// counter. Every successful write bumps Version by exactly one; a write
// carrying a stale expected version is rejected with VersionConflictError.
type TripPlan struct {
	gorm.Model
	BookingID uint            `json:"booking_id" gorm:"not null;index"`
	Version   int             `json:"version" gorm:"not null;default:0"`
	Status    TripPlanStatus  `json:"status" gorm:"not null;default:'draft'"`
	Payload   json.RawMessage `json:"payload" gorm:"type:jsonb"`
	Revisions []PlanRevision  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// PlanRevision is an immutable snapshot of a trip plan at one version step.
// Revisions are append-only and cascade-deleted with their plan.
type PlanRevision struct {
	gorm.Model
	TripPlanID  uint            `json:"trip_plan_id" gorm:"not null;index"`
	FromVersion int             `json:"from_version" gorm:"not null"`
	ToVersion   int             `json:"to_version" gorm:"not null"`
	Snapshot    json.RawMessage `json:"snapshot" gorm:"type:jsonb"`
	Actor       string          `json:"actor" gorm:"not null"`
	Reason      string          `json:"reason" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
}

// VersionConflictError is returned when a versioned write carries an
// expected version that no longer matches the stored row. The caller must
// re-read and retry; the guard never merges.
type VersionConflictError struct {
	ExpectedVersion int
	CurrentVersion  int
}

// Error implements the error interface
func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: expected version %d, current version %d",
		e.ExpectedVersion, e.CurrentVersion)
}

// ResolveNextVersion applies the version-counter guard. With no expected
// version (nil) the write is an unconditional append and the next version is
// current+1. With an expected version that mismatches, the write is rejected.
func ResolveNextVersion(currentVersion int, expectedVersion *int) (int, error) {
	if expectedVersion != nil && *expectedVersion != currentVersion {
		return 0, &VersionConflictError{
			ExpectedVersion: *expectedVersion,
			CurrentVersion:  currentVersion,
		}
	}
	return currentVersion + 1, nil
}
