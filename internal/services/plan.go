package services

import (
	"context"
	"encoding/json"

	"github.com/tripmesh/concierge/internal/db/models"
	"github.com/tripmesh/concierge/internal/db/repos"
)

// Plan handles trip plan operations
type Plan struct {
	repo *repos.TripPlanRepository
}

// NewPlanService creates a new instance of the Plan service
func NewPlanService(repo *repos.TripPlanRepository) *Plan {
	return &Plan{repo: repo}
}

// Create creates a new trip plan
func (s *Plan) Create(ctx context.Context, plan *models.TripPlan) error {
	return s.repo.Create(ctx, plan)
}

// Get retrieves a trip plan by ID
func (s *Plan) Get(ctx context.Context, planID uint) (*models.TripPlan, error) {
	return s.repo.GetByID(ctx, planID)
}

// Write applies a versioned write to a trip plan. A nil expectedVersion is an
// unconditional append used for system-initiated writes; a stale expected
// version yields a VersionConflictError and leaves the plan untouched.
func (s *Plan) Write(ctx context.Context, planID uint, payload json.RawMessage, expectedVersion *int, actor, reason string) (*models.TripPlan, error) {
	return s.repo.Write(ctx, planID, payload, expectedVersion, actor, reason)
}

// RestoreResult reports a completed restore
type RestoreResult struct {
	RestoredFromVersion int `json:"restored_from_version"`
	RestoredVersion     int `json:"restored_version"`
}

// Restore rewrites a plan from an earlier revision. The restored payload is
// written at a new, strictly higher version; history is never rewound.
func (s *Plan) Restore(ctx context.Context, planID, revisionID uint, expectedVersion *int, actor string) (*RestoreResult, error) {
	fromVersion, plan, err := s.repo.Restore(ctx, planID, revisionID, expectedVersion, actor)
	if err != nil {
		return nil, err
	}
	return &RestoreResult{
		RestoredFromVersion: fromVersion,
		RestoredVersion:     plan.Version,
	}, nil
}

// ListRevisions retrieves the revision history for a plan
func (s *Plan) ListRevisions(ctx context.Context, planID uint, opts *models.ListOptions) ([]models.PlanRevision, error) {
	return s.repo.ListRevisions(ctx, planID, opts)
}
