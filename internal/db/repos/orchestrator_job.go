package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tripmesh/concierge/internal/db/models"
)

// OrchestratorJobRepository handles database operations for orchestrator jobs
type OrchestratorJobRepository struct {
	db *gorm.DB
}

// NewOrchestratorJobRepository creates a new instance of OrchestratorJobRepository
func NewOrchestratorJobRepository(db *gorm.DB) *OrchestratorJobRepository {
	return &OrchestratorJobRepository{db: db}
}

// Create creates a new orchestrator job in the database
func (r *OrchestratorJobRepository) Create(ctx context.Context, job *models.OrchestratorJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves an orchestrator job by ID
func (r *OrchestratorJobRepository) GetByID(ctx context.Context, id uint) (*models.OrchestratorJob, error) {
	var job models.OrchestratorJob
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get orchestrator job: %w", err)
	}
	return &job, nil
}

// guardedQuery builds the conditional predicate for a guarded update.
//
// When an expected generation is supplied, the stored token must match it or
// be absent: rows created before generation tracking existed carry no token
// and accept writes from any run. Non-terminal writes additionally require
// the job not to have finished already; terminal writes omit that clause so
// a racing run can still close a job out.
func (r *OrchestratorJobRepository) guardedQuery(tx *gorm.DB, id uint, expectedGeneration *string, nextStatus models.OrchestratorJobStatus) *gorm.DB {
	query := tx.Model(&models.OrchestratorJob{}).Where("id = ?", id)
	if expectedGeneration != nil {
		query = query.Where("(generation_id = ? OR generation_id IS NULL)", *expectedGeneration)
	}
	if !nextStatus.IsTerminal() {
		query = query.Where("status NOT IN ?", []models.OrchestratorJobStatus{
			models.OrchestratorJobStatusComplete,
			models.OrchestratorJobStatusError,
		})
	}
	return query
}

// UpdateStatus applies a generation-guarded status update. If the predicate
// matches no row the rejection is classified against the stored row and
// returned as a GuardRejectedError.
func (r *OrchestratorJobRepository) UpdateStatus(ctx context.Context, id uint, expectedGeneration *string, status models.OrchestratorJobStatus, result json.RawMessage, errMsg string) error {
	updates := map[string]interface{}{
		models.OrchestratorJobStatusField: status,
		"error":                           errMsg,
	}
	if result != nil {
		updates["result"] = result
	}

	res := r.guardedQuery(r.db.WithContext(ctx), id, expectedGeneration, status).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update orchestrator job %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.GuardRejectedError{
			JobID:  id,
			Reason: r.classifyRejection(ctx, id, expectedGeneration, status),
		}
	}
	return nil
}

// RotateGeneration installs a fresh generation token, superseding any run
// still writing under the old one. Rotation is a non-terminal write, so it is
// refused on finished jobs.
func (r *OrchestratorJobRepository) RotateGeneration(ctx context.Context, id uint, generationID string) error {
	res := r.guardedQuery(r.db.WithContext(ctx), id, nil, models.OrchestratorJobStatusQueued).
		Updates(map[string]interface{}{
			models.OrchestratorJobGenerationField: generationID,
			models.OrchestratorJobStatusField:     models.OrchestratorJobStatusQueued,
			"error":                               "",
		})
	if res.Error != nil {
		return fmt.Errorf("failed to rotate generation for orchestrator job %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.GuardRejectedError{
			JobID:  id,
			Reason: r.classifyRejection(ctx, id, nil, models.OrchestratorJobStatusQueued),
		}
	}
	return nil
}

// classifyRejection re-reads the stored row to explain a zero-row guarded
// update. The classification is best-effort: by the time we look, the row may
// have changed again, so an undetermined result falls back to guard_rejected.
func (r *OrchestratorJobRepository) classifyRejection(ctx context.Context, id uint, expectedGeneration *string, nextStatus models.OrchestratorJobStatus) models.RejectionReason {
	var job models.OrchestratorJob
	err := r.db.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RejectionNotFound
	}
	if err != nil {
		return models.RejectionGuard
	}
	if expectedGeneration != nil && job.GenerationID != nil && *job.GenerationID != *expectedGeneration {
		return models.RejectionGenerationMismatch
	}
	if !nextStatus.IsTerminal() && job.Status.IsTerminal() {
		return models.RejectionTerminalState
	}
	return models.RejectionGuard
}
