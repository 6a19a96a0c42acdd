package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Field names for the reply job model
const (
	// ReplyJobStatusField is the field name for job status
	ReplyJobStatusField = "status"
	// ReplyJobDueAtField is the field name for the job due time
	ReplyJobDueAtField = "due_at"
	// ReplyJobAttemptCountField is the field name for the attempt counter
	ReplyJobAttemptCountField = "attempt_count"
	// ReplyJobErrorField is the field name for the last error text
	ReplyJobErrorField = "error"
)

// ReplyJobStatus represents the current state of a synthetic reply job
type ReplyJobStatus string

// Reply job status constants
const (
	// ReplyJobStatusPending indicates the job is waiting for its due time
	ReplyJobStatusPending ReplyJobStatus = "pending"
	// ReplyJobStatusProcessing indicates the job has been claimed by a worker
	ReplyJobStatusProcessing ReplyJobStatus = "processing"
	// ReplyJobStatusDone indicates the reply was sent
	ReplyJobStatusDone ReplyJobStatus = "done"
	// ReplyJobStatusFailed indicates the job exhausted its retries
	ReplyJobStatusFailed ReplyJobStatus = "failed"
	// ReplyJobStatusCancelled indicates the job became structurally ineligible
	ReplyJobStatusCancelled ReplyJobStatus = "cancelled"
)

// String returns the string representation of the reply job status
func (s ReplyJobStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is permitted from s.
func (s ReplyJobStatus) IsTerminal() bool {
	switch s {
	case ReplyJobStatusDone, ReplyJobStatusFailed, ReplyJobStatusCancelled:
		return true
	}
	return false
}

// ParseReplyJobStatus converts a string to a ReplyJobStatus type
func ParseReplyJobStatus(str string) (ReplyJobStatus, error) {
	switch str {
	case string(ReplyJobStatusPending):
		return ReplyJobStatusPending, nil
	case string(ReplyJobStatusProcessing):
		return ReplyJobStatusProcessing, nil
	case string(ReplyJobStatusDone):
		return ReplyJobStatusDone, nil
	case string(ReplyJobStatusFailed):
		return ReplyJobStatusFailed, nil
	case string(ReplyJobStatusCancelled):
		return ReplyJobStatusCancelled, nil
	default:
		return "", fmt.Errorf("invalid reply job status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for ReplyJobStatus
func (s *ReplyJobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseReplyJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// ReplyJob represents a scheduled synthetic host reply. The unique index on
// (booking_id, trigger_message_id) is the dedup boundary: enqueueing the same
// trigger twice upserts the existing row instead of creating a duplicate.
// Jobs are never deleted; terminal rows remain as an audit trail.
type ReplyJob struct {
	gorm.Model
	BookingID        uint           `json:"booking_id" gorm:"not null;uniqueIndex:idx_reply_jobs_dedup"`
	TriggerMessageID uint           `json:"trigger_message_id" gorm:"not null;uniqueIndex:idx_reply_jobs_dedup"`
	HostID           uint           `json:"host_id" gorm:"not null;index"`
	Status           ReplyJobStatus `json:"status" gorm:"not null;index"`
	DueAt            time.Time      `json:"due_at" gorm:"not null;index"`
	AttemptCount     int            `json:"attempt_count" gorm:"not null;default:0"`
	Error            string         `json:"error,omitempty" gorm:"type:text"`
}

// Validate ensures that the reply job data is valid
func (j *ReplyJob) Validate() error {
	if j.BookingID == 0 {
		return fmt.Errorf("reply job booking_id cannot be zero")
	}
	if j.TriggerMessageID == 0 {
		return fmt.Errorf("reply job trigger_message_id cannot be zero")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new reply job
func (j *ReplyJob) BeforeCreate(_ *gorm.DB) error {
	if j.Status == "" {
		j.Status = ReplyJobStatusPending
	}
	return j.Validate()
}
