package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Field names for the orchestrator job model
const (
	// OrchestratorJobStatusField is the field name for job status
	OrchestratorJobStatusField = "status"
	// OrchestratorJobGenerationField is the field name for the generation token
	OrchestratorJobGenerationField = "generation_id"
)

// OrchestratorJobStatus represents the current state of an orchestrator run
type OrchestratorJobStatus string

// Orchestrator job status constants
const (
	// OrchestratorJobStatusQueued indicates the run has not started
	OrchestratorJobStatusQueued OrchestratorJobStatus = "queued"
	// OrchestratorJobStatusPlanning indicates the run is composing a plan
	OrchestratorJobStatusPlanning OrchestratorJobStatus = "planning"
	// OrchestratorJobStatusEnriching indicates the run is filling in details
	OrchestratorJobStatusEnriching OrchestratorJobStatus = "enriching"
	// OrchestratorJobStatusComplete indicates the run finished
	OrchestratorJobStatusComplete OrchestratorJobStatus = "complete"
	// OrchestratorJobStatusError indicates the run failed
	OrchestratorJobStatusError OrchestratorJobStatus = "error"
)

// String returns the string representation of the orchestrator job status
func (s OrchestratorJobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is permitted from s.
func (s OrchestratorJobStatus) IsTerminal() bool {
	return s == OrchestratorJobStatusComplete || s == OrchestratorJobStatusError
}

// RejectionReason classifies why a guarded orchestrator update matched no row
type RejectionReason string

// Rejection reason constants
const (
	// RejectionNotFound means the job row does not exist
	RejectionNotFound RejectionReason = "not_found"
	// RejectionGenerationMismatch means the stored generation token belongs
	// to a different run
	RejectionGenerationMismatch RejectionReason = "generation_mismatch"
	// RejectionTerminalState means a non-terminal write hit a finished job
	RejectionTerminalState RejectionReason = "terminal_state_protection"
	// RejectionGuard means the predicate failed for an undetermined reason
	RejectionGuard RejectionReason = "guard_rejected"
)

// GuardRejectedError is returned when a guarded orchestrator update matched
// zero rows. Reason carries the classification against the stored row.
type GuardRejectedError struct {
	JobID  uint
	Reason RejectionReason
}

// Error implements the error interface
func (e *GuardRejectedError) Error() string {
	return fmt.Sprintf("orchestrator job %d update rejected: %s", e.JobID, e.Reason)
}

// OrchestratorJob tracks one long-lived AI orchestration run over a booking.
// GenerationID identifies the logical run; writes from a superseded run are
// rejected by the generation guard. The column is nullable because rows
// created before generation tracking existed carry no token, and those rows
// accept writes from any run.
type OrchestratorJob struct {
	gorm.Model
	BookingID    uint                  `json:"booking_id" gorm:"not null;index"`
	GenerationID *string               `json:"generation_id,omitempty" gorm:"index"`
	Status       OrchestratorJobStatus `json:"status" gorm:"not null;index"`
	Result       json.RawMessage       `json:"result,omitempty" gorm:"type:jsonb"`
	Error        string                `json:"error,omitempty" gorm:"type:text"`
}

// BeforeCreate is a GORM hook that runs before creating a new orchestrator job
func (j *OrchestratorJob) BeforeCreate(_ *gorm.DB) error {
	if j.Status == "" {
		j.Status = OrchestratorJobStatusQueued
	}
	if j.BookingID == 0 {
		return fmt.Errorf("orchestrator job booking_id cannot be zero")
	}
	return nil
}
