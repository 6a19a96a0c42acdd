package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tripmesh/concierge/config"
	"github.com/tripmesh/concierge/internal/db/models"
	"github.com/tripmesh/concierge/internal/db/repos"
	"github.com/tripmesh/concierge/internal/logger"
	"github.com/tripmesh/concierge/internal/responder"
)

// Retry/backoff constants
const (
	// backoffStep is the per-attempt backoff increment
	backoffStep = 10 * time.Second
	// backoffCap bounds the retry delay
	backoffCap = 120 * time.Second
)

// EnqueueReason explains the outcome of an enqueue or trigger-gate call.
// Skips are expected and frequent; they are values, never errors.
type EnqueueReason string

// Enqueue outcome reasons
const (
	// ReasonEnqueued means a job was created or refreshed
	ReasonEnqueued EnqueueReason = "ENQUEUED"
	// ReasonDisabled means the subsystem is globally disabled
	ReasonDisabled EnqueueReason = "DISABLED"
	// ReasonSenderIsHost means the trigger message came from the host
	ReasonSenderIsHost EnqueueReason = "SENDER_IS_HOST"
	// ReasonBookingNotChatEligible means the booking cannot receive chat replies
	ReasonBookingNotChatEligible EnqueueReason = "BOOKING_NOT_CHAT_ELIGIBLE"
	// ReasonHostNotSyntheticEnabled means the host has not opted in
	ReasonHostNotSyntheticEnabled EnqueueReason = "HOST_NOT_SYNTHETIC_ENABLED"
	// ReasonEnqueueSkipped means the gate passed but enqueue declined
	ReasonEnqueueSkipped EnqueueReason = "ENQUEUE_SKIPPED"
)

// EnqueueResult reports what an enqueue call did
type EnqueueResult struct {
	Enqueued bool          `json:"enqueued"`
	Reason   EnqueueReason `json:"reason"`
	JobID    uint          `json:"job_id,omitempty"`
	DueAt    time.Time     `json:"due_at,omitempty"`
}

// ProcessStats reports the outcome of one ProcessDue batch
type ProcessStats struct {
	Claimed   int `json:"claimed"`
	Done      int `json:"done"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// ReplyQueue schedules and processes synthetic host replies. It is safe to
// call concurrently from any number of processes; all coordination happens
// through conditional updates on the job rows.
type ReplyQueue struct {
	settings config.Settings
	jobs     *repos.ReplyJobRepository
	bookings *repos.BookingRepository
	hosts    *repos.HostRepository
	messages *repos.MessageRepository
}

// NewReplyQueueService creates a new instance of the ReplyQueue service
func NewReplyQueueService(settings config.Settings, jobs *repos.ReplyJobRepository, bookings *repos.BookingRepository, hosts *repos.HostRepository, messages *repos.MessageRepository) *ReplyQueue {
	return &ReplyQueue{
		settings: settings,
		jobs:     jobs,
		bookings: bookings,
		hosts:    hosts,
		messages: messages,
	}
}

// Enqueue schedules a synthetic reply for a trigger message. The call is
// idempotent: the same trigger always computes the same due time and upserts
// the same row. When the subsystem is disabled this is a no-op, not an error.
func (s *ReplyQueue) Enqueue(ctx context.Context, bookingID, hostID, triggerMessageID uint, latencyMin, latencyMax time.Duration) (EnqueueResult, error) {
	if !s.settings.SyntheticRepliesEnabled {
		return EnqueueResult{Enqueued: false, Reason: ReasonDisabled}, nil
	}
	if latencyMin <= 0 {
		latencyMin = s.settings.LatencyMin
	}
	if latencyMax <= 0 {
		latencyMax = s.settings.LatencyMax
	}

	dueAt := time.Now().Add(replyLatency(triggerMessageID, latencyMin, latencyMax))
	job := models.ReplyJob{
		BookingID:        bookingID,
		TriggerMessageID: triggerMessageID,
		HostID:           hostID,
		Status:           models.ReplyJobStatusPending,
		DueAt:            dueAt,
	}
	if err := s.jobs.Upsert(ctx, &job); err != nil {
		return EnqueueResult{}, fmt.Errorf("failed to enqueue reply job: %w", err)
	}
	if job.ID == 0 {
		// The upsert refreshed an existing row; resolve its ID for the caller.
		existing, err := s.jobs.GetByDedupKey(ctx, bookingID, triggerMessageID)
		if err != nil {
			return EnqueueResult{}, err
		}
		job.ID = existing.ID
	}

	logger.DebugWithFields("reply job enqueued", map[string]interface{}{
		"job_id":     job.ID,
		"booking_id": bookingID,
		"due_at":     dueAt,
	})
	return EnqueueResult{Enqueued: true, Reason: ReasonEnqueued, JobID: job.ID, DueAt: dueAt}, nil
}

// MaybeEnqueueForMessage runs the eligibility gate for a freshly persisted
// chat message and enqueues a reply when everything lines up. Skip reasons
// are normal outcomes and do not produce errors.
func (s *ReplyQueue) MaybeEnqueueForMessage(ctx context.Context, booking *models.Booking, senderID, triggerMessageID uint) (EnqueueResult, error) {
	if senderID == booking.HostID {
		return EnqueueResult{Reason: ReasonSenderIsHost}, nil
	}
	if !booking.Status.ChatEligible() {
		return EnqueueResult{Reason: ReasonBookingNotChatEligible}, nil
	}
	host, err := s.hosts.GetByID(ctx, booking.HostID)
	if err != nil {
		return EnqueueResult{}, err
	}
	if !host.SyntheticEnabled {
		return EnqueueResult{Reason: ReasonHostNotSyntheticEnabled}, nil
	}

	result, err := s.Enqueue(ctx, booking.ID, booking.HostID, triggerMessageID, s.settings.LatencyMin, s.settings.LatencyMax)
	if err != nil {
		return EnqueueResult{}, err
	}
	if !result.Enqueued {
		result.Reason = ReasonEnqueueSkipped
	}
	return result, nil
}

// ProcessDue claims and processes up to limit due jobs. Designed to be
// invoked concurrently from the worker loop and opportunistically from
// request handlers; the per-row conditional claim makes that safe without
// any external coordination.
func (s *ReplyQueue) ProcessDue(ctx context.Context, limit int) (ProcessStats, error) {
	var stats ProcessStats

	due, err := s.jobs.FindDue(ctx, time.Now(), limit)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch due reply jobs: %w", err)
	}

	for i := range due {
		job := due[i]
		claimed, err := s.jobs.Claim(ctx, job.ID)
		if err != nil {
			return stats, err
		}
		if !claimed {
			// Another worker won the row; nothing to do.
			logger.Debugf("reply job %d already claimed, skipping", job.ID)
			continue
		}
		stats.Claimed++
		job.AttemptCount++

		cancelReason, err := s.processClaimed(ctx, &job)
		switch {
		case err != nil:
			stats.Failed += s.onFailure(ctx, &job, err)
		case cancelReason != "":
			logger.Debugf("reply job %d cancelled: %s", job.ID, cancelReason)
			if err := s.jobs.MarkCancelled(ctx, job.ID, cancelReason); err != nil {
				return stats, err
			}
			stats.Cancelled++
		default:
			stats.Done++
		}
	}
	return stats, nil
}

// ListJobs returns reply jobs, optionally filtered by status
func (s *ReplyQueue) ListJobs(ctx context.Context, status models.ReplyJobStatus, opts *models.ListOptions) ([]models.ReplyJob, error) {
	return s.jobs.List(ctx, status, opts)
}

// processClaimed re-fetches the full context for a claimed job, revalidates
// eligibility, and writes the reply. Time has passed since the job was
// enqueued, so every gate check runs again: a non-empty cancel reason means
// the job became structurally ineligible and must not be retried.
func (s *ReplyQueue) processClaimed(ctx context.Context, job *models.ReplyJob) (cancelReason string, err error) {
	booking, err := s.bookings.GetByID(ctx, job.BookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "booking no longer exists", nil
	}
	if err != nil {
		return "", err
	}
	if !booking.Status.ChatEligible() {
		return string(ReasonBookingNotChatEligible), nil
	}

	host, err := s.hosts.GetByID(ctx, job.HostID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "host no longer exists", nil
	}
	if err != nil {
		return "", err
	}
	if !host.SyntheticEnabled {
		return string(ReasonHostNotSyntheticEnabled), nil
	}

	trigger, err := s.messages.GetByID(ctx, job.TriggerMessageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "trigger message no longer exists", nil
	}
	if err != nil {
		return "", err
	}
	if trigger.SenderID == booking.HostID {
		return string(ReasonSenderIsHost), nil
	}

	// If the host has answered on their own since the trigger, a synthetic
	// reply would just be noise.
	history, err := s.messages.ListByBooking(ctx, booking.ID, &models.ListOptions{Limit: 10})
	if err != nil {
		return "", err
	}
	for _, m := range history {
		if m.SenderID == booking.HostID && !m.Synthetic && m.ID > trigger.ID {
			return "host already replied", nil
		}
	}

	body := responder.GenerateReply(responder.Context{
		GuestMessage: trigger.Body,
		HostName:     host.Name,
		Style:        host.ReplyStyle,
		ListingTitle: booking.ListingTitle,
		CheckIn:      booking.CheckIn,
		CheckOut:     booking.CheckOut,
		MaxLen:       s.settings.ReplyMaxLen,
	})

	reply := models.Message{
		BookingID: booking.ID,
		SenderID:  booking.HostID,
		Body:      body,
		Synthetic: true,
	}
	if err := s.jobs.CompleteWithMessage(ctx, job.ID, &reply); err != nil {
		return "", err
	}
	return "", nil
}

// onFailure applies the retry policy after a claimed job's processing failed.
// Returns 1 when the job reached its terminal failed state, 0 when it was
// rescheduled.
func (s *ReplyQueue) onFailure(ctx context.Context, job *models.ReplyJob, procErr error) int {
	if job.AttemptCount >= s.settings.MaxRetries {
		logger.ErrorWithFields("reply job failed permanently", map[string]interface{}{
			"job_id":   job.ID,
			"attempts": job.AttemptCount,
			"error":    procErr.Error(),
		})
		if err := s.jobs.MarkFailed(ctx, job.ID, procErr.Error()); err != nil {
			logger.Errorf("failed to mark reply job %d failed: %v", job.ID, err)
		}
		return 1
	}

	dueAt := time.Now().Add(backoffDelay(job.AttemptCount))
	logger.DebugWithFields("reply job rescheduled", map[string]interface{}{
		"job_id":  job.ID,
		"attempt": job.AttemptCount,
		"due_at":  dueAt,
	})
	if err := s.jobs.Reschedule(ctx, job.ID, dueAt, procErr.Error()); err != nil {
		logger.Errorf("failed to reschedule reply job %d: %v", job.ID, err)
	}
	return 0
}

// backoffDelay computes the linear, capped retry delay
func backoffDelay(attemptCount int) time.Duration {
	if attemptCount < 1 {
		attemptCount = 1
	}
	delay := time.Duration(attemptCount) * backoffStep
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay
}
