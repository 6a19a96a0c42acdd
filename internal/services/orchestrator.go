package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tripmesh/concierge/internal/db/models"
	"github.com/tripmesh/concierge/internal/db/repos"
	"github.com/tripmesh/concierge/internal/logger"
)

// Orchestrator handles AI-orchestration job records. Every mutation goes
// through the generation guard so writes from superseded runs are rejected
// instead of silently applied.
type Orchestrator struct {
	repo *repos.OrchestratorJobRepository
}

// NewOrchestratorService creates a new instance of the Orchestrator service
func NewOrchestratorService(repo *repos.OrchestratorJobRepository) *Orchestrator {
	return &Orchestrator{repo: repo}
}

// StartJob creates an orchestrator job for a booking with a fresh generation
// token and returns both.
func (s *Orchestrator) StartJob(ctx context.Context, bookingID uint) (*models.OrchestratorJob, error) {
	generationID := uuid.NewString()
	job := models.OrchestratorJob{
		BookingID:    bookingID,
		GenerationID: &generationID,
		Status:       models.OrchestratorJobStatusQueued,
	}
	if err := s.repo.Create(ctx, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Get retrieves an orchestrator job by ID
func (s *Orchestrator) Get(ctx context.Context, jobID uint) (*models.OrchestratorJob, error) {
	return s.repo.GetByID(ctx, jobID)
}

// Restart supersedes the current run by rotating the generation token. Any
// in-flight writes from the old run will fail their guard from here on.
func (s *Orchestrator) Restart(ctx context.Context, jobID uint) (string, error) {
	generationID := uuid.NewString()
	if err := s.repo.RotateGeneration(ctx, jobID, generationID); err != nil {
		return "", err
	}
	logger.Debugf("orchestrator job %d restarted with generation %s", jobID, generationID)
	return generationID, nil
}

// UpdateStatus applies a generation-guarded status update. A zero-row match
// surfaces as a GuardRejectedError carrying the classified reason.
func (s *Orchestrator) UpdateStatus(ctx context.Context, jobID uint, expectedGeneration *string, status models.OrchestratorJobStatus, result json.RawMessage, errMsg string) error {
	return s.repo.UpdateStatus(ctx, jobID, expectedGeneration, status, result, errMsg)
}
