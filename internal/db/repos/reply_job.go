package repos

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tripmesh/concierge/internal/db/models"
)

// ReplyJobRepository handles database operations for synthetic reply jobs
type ReplyJobRepository struct {
	db *gorm.DB
}

// NewReplyJobRepository creates a new instance of ReplyJobRepository
func NewReplyJobRepository(db *gorm.DB) *ReplyJobRepository {
	return &ReplyJobRepository{db: db}
}

// Upsert creates a reply job, or refreshes the existing row for the same
// (booking_id, trigger_message_id) dedup key. On conflict the due time, host
// and status are reset and the error cleared; attempt_count is deliberately
// left alone so retry history survives re-triggered enqueues.
func (r *ReplyJobRepository) Upsert(ctx context.Context, job *models.ReplyJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid reply job: %w", err)
	}
	if job.Status == "" {
		job.Status = models.ReplyJobStatusPending
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "booking_id"}, {Name: "trigger_message_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			models.ReplyJobDueAtField:  job.DueAt,
			"host_id":                  job.HostID,
			models.ReplyJobStatusField: models.ReplyJobStatusPending,
			models.ReplyJobErrorField:  "",
			"updated_at":               time.Now(),
		}),
	}).Create(job).Error
}

// GetByID retrieves a reply job by ID
func (r *ReplyJobRepository) GetByID(ctx context.Context, id uint) (*models.ReplyJob, error) {
	var job models.ReplyJob
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get reply job: %w", err)
	}
	return &job, nil
}

// GetByDedupKey retrieves the reply job for a (booking, trigger message) pair
func (r *ReplyJobRepository) GetByDedupKey(ctx context.Context, bookingID, triggerMessageID uint) (*models.ReplyJob, error) {
	var job models.ReplyJob
	err := r.db.WithContext(ctx).Where(models.ReplyJob{
		BookingID:        bookingID,
		TriggerMessageID: triggerMessageID,
	}).First(&job).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get reply job: %w", err)
	}
	return &job, nil
}

// FindDue retrieves up to limit pending jobs whose due time has passed,
// oldest-due first so a backlog drains fairly.
func (r *ReplyJobRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.ReplyJob, error) {
	var jobs []models.ReplyJob
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_at <= ?", models.ReplyJobStatusPending, now).
		Order(models.ReplyJobDueAtField + " ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// Claim attempts to transition a pending job to processing. The conditional
// update is the whole concurrency mechanism: only the caller whose UPDATE
// affects a row owns the job; everyone else sees zero rows and moves on.
func (r *ReplyJobRepository) Claim(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.ReplyJob{}).
		Where("id = ? AND status = ?", id, models.ReplyJobStatusPending).
		Updates(map[string]interface{}{
			models.ReplyJobStatusField:       models.ReplyJobStatusProcessing,
			models.ReplyJobAttemptCountField: gorm.Expr(models.ReplyJobAttemptCountField + " + 1"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim reply job %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// CompleteWithMessage appends the reply message and finalizes the job in a
// single transaction. A reply must never exist without its job being done,
// and vice versa.
func (r *ReplyJobRepository) CompleteWithMessage(ctx context.Context, jobID uint, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create reply message: %w", err)
		}
		result := tx.Model(&models.ReplyJob{}).
			Where("id = ? AND status = ?", jobID, models.ReplyJobStatusProcessing).
			Updates(map[string]interface{}{
				models.ReplyJobStatusField: models.ReplyJobStatusDone,
				models.ReplyJobErrorField:  "",
			})
		if result.Error != nil {
			return fmt.Errorf("failed to finalize reply job %d: %w", jobID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("reply job %d not in processing state", jobID)
		}
		return nil
	})
}

// Reschedule returns a claimed job to pending with a new due time, keeping
// only the latest failure reason.
func (r *ReplyJobRepository) Reschedule(ctx context.Context, id uint, dueAt time.Time, errMsg string) error {
	return r.transition(ctx, id, models.ReplyJobStatusPending, map[string]interface{}{
		models.ReplyJobDueAtField: dueAt,
		models.ReplyJobErrorField: errMsg,
	})
}

// MarkFailed moves a claimed job to the terminal failed state
func (r *ReplyJobRepository) MarkFailed(ctx context.Context, id uint, errMsg string) error {
	return r.transition(ctx, id, models.ReplyJobStatusFailed, map[string]interface{}{
		models.ReplyJobErrorField: errMsg,
	})
}

// MarkCancelled moves a claimed job to the terminal cancelled state. Used for
// structural ineligibility discovered at process time; cancelled jobs are
// never retried.
func (r *ReplyJobRepository) MarkCancelled(ctx context.Context, id uint, reason string) error {
	return r.transition(ctx, id, models.ReplyJobStatusCancelled, map[string]interface{}{
		models.ReplyJobErrorField: reason,
	})
}

// transition applies an outcome to a job currently in processing. Guarding on
// the processing status keeps terminal states terminal.
func (r *ReplyJobRepository) transition(ctx context.Context, id uint, to models.ReplyJobStatus, updates map[string]interface{}) error {
	updates[models.ReplyJobStatusField] = to
	result := r.db.WithContext(ctx).Model(&models.ReplyJob{}).
		Where("id = ? AND status = ?", id, models.ReplyJobStatusProcessing).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to transition reply job %d to %s: %w", id, to, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("reply job %d not in processing state", id)
	}
	return nil
}

// List returns reply jobs, optionally filtered by status. Cancelled jobs are
// excluded unless the options ask for them.
func (r *ReplyJobRepository) List(ctx context.Context, status models.ReplyJobStatus, opts *models.ListOptions) ([]models.ReplyJob, error) {
	var jobs []models.ReplyJob
	query := r.db.WithContext(ctx).Model(&models.ReplyJob{})
	if status != "" {
		query = query.Where(models.ReplyJobStatusField+" = ?", status)
	}
	if opts != nil {
		if !opts.IncludeCancelled && status == "" {
			query = query.Where(models.ReplyJobStatusField+" <> ?", models.ReplyJobStatusCancelled)
		}
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	err := query.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}
