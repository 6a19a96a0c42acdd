package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tripmesh/concierge/internal/db/models"
)

// ErrRevisionNotFound is returned when a revision does not exist or belongs
// to a different plan.
var ErrRevisionNotFound = errors.New("plan revision not found")

// TripPlanRepository handles database operations for trip plans and their
// revision history
type TripPlanRepository struct {
	db *gorm.DB
}

// NewTripPlanRepository creates a new instance of TripPlanRepository
func NewTripPlanRepository(db *gorm.DB) *TripPlanRepository {
	return &TripPlanRepository{db: db}
}

// Create creates a new trip plan at version 0
func (r *TripPlanRepository) Create(ctx context.Context, plan *models.TripPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// GetByID retrieves a trip plan by ID
func (r *TripPlanRepository) GetByID(ctx context.Context, id uint) (*models.TripPlan, error) {
	var plan models.TripPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get trip plan: %w", err)
	}
	return &plan, nil
}

// Write applies a versioned write to a trip plan. The stored version must
// still equal the version read inside the transaction for the update to land;
// a caller-supplied expected version is checked against it first. Every
// successful write bumps the version by exactly one and appends an immutable
// revision snapshot in the same transaction.
func (r *TripPlanRepository) Write(ctx context.Context, planID uint, payload json.RawMessage, expectedVersion *int, actor, reason string) (*models.TripPlan, error) {
	var updated models.TripPlan
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan models.TripPlan
		if err := tx.First(&plan, planID).Error; err != nil {
			return fmt.Errorf("failed to get trip plan: %w", err)
		}

		nextVersion, err := models.ResolveNextVersion(plan.Version, expectedVersion)
		if err != nil {
			return err
		}

		result := tx.Model(&models.TripPlan{}).
			Where("id = ? AND version = ?", planID, plan.Version).
			Updates(map[string]interface{}{
				models.TripPlanVersionField: nextVersion,
				models.TripPlanPayloadField: payload,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update trip plan %d: %w", planID, result.Error)
		}
		if result.RowsAffected == 0 {
			// A concurrent writer advanced the version between our read
			// and the conditional update.
			var current models.TripPlan
			if err := tx.First(&current, planID).Error; err != nil {
				return fmt.Errorf("failed to re-read trip plan: %w", err)
			}
			return &models.VersionConflictError{
				ExpectedVersion: plan.Version,
				CurrentVersion:  current.Version,
			}
		}

		revision := models.PlanRevision{
			TripPlanID:  planID,
			FromVersion: plan.Version,
			ToVersion:   nextVersion,
			Snapshot:    payload,
			Actor:       actor,
			Reason:      reason,
		}
		if err := tx.Create(&revision).Error; err != nil {
			return fmt.Errorf("failed to append plan revision: %w", err)
		}

		updated = plan
		updated.Version = nextVersion
		updated.Payload = payload
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Restore rewrites a plan from an earlier revision snapshot. The restore goes
// through the same versioned write, so the version counter keeps moving
// forward and history is never rewritten.
func (r *TripPlanRepository) Restore(ctx context.Context, planID, revisionID uint, expectedVersion *int, actor string) (fromVersion int, restored *models.TripPlan, err error) {
	var revision models.PlanRevision
	if err := r.db.WithContext(ctx).First(&revision, revisionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrRevisionNotFound
		}
		return 0, nil, fmt.Errorf("failed to get plan revision: %w", err)
	}
	if revision.TripPlanID != planID {
		return 0, nil, ErrRevisionNotFound
	}

	reason := fmt.Sprintf("restore from version %d", revision.ToVersion)
	plan, err := r.Write(ctx, planID, revision.Snapshot, expectedVersion, actor, reason)
	if err != nil {
		return 0, nil, err
	}
	return revision.ToVersion, plan, nil
}

// ListRevisions retrieves the revision history for a plan, newest first
func (r *TripPlanRepository) ListRevisions(ctx context.Context, planID uint, opts *models.ListOptions) ([]models.PlanRevision, error) {
	var revisions []models.PlanRevision
	query := r.db.WithContext(ctx).Where(models.PlanRevision{TripPlanID: planID})
	if opts != nil {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	err := query.Order("to_version DESC").Find(&revisions).Error
	return revisions, err
}
