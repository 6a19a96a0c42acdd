package repos

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/tripmesh/concierge/internal/db/models"
)

// OrchestratorJobRepositoryTestSuite tests the orchestrator job repository
type OrchestratorJobRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func TestOrchestratorJobRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrchestratorJobRepositoryTestSuite))
}

func (s *OrchestratorJobRepositoryTestSuite) createJob(generation *string) *models.OrchestratorJob {
	job := &models.OrchestratorJob{
		BookingID:    1,
		GenerationID: generation,
	}
	s.Require().NoError(s.orchestratorRepo.Create(s.ctx, job))
	return job
}

func strPtr(v string) *string { return &v }

func (s *OrchestratorJobRepositoryTestSuite) TestUpdateWithMatchingGeneration() {
	gen := uuid.NewString()
	job := s.createJob(&gen)

	err := s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &gen, models.OrchestratorJobStatusPlanning, nil, "")
	s.Require().NoError(err)

	stored, err := s.orchestratorRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.OrchestratorJobStatusPlanning, stored.Status)
}

func (s *OrchestratorJobRepositoryTestSuite) TestUpdateWithStaleGenerationIsRejected() {
	gen := uuid.NewString()
	job := s.createJob(&gen)

	stale := uuid.NewString()
	err := s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &stale, models.OrchestratorJobStatusPlanning, nil, "")

	var rejected *models.GuardRejectedError
	s.Require().ErrorAs(err, &rejected)
	s.Equal(models.RejectionGenerationMismatch, rejected.Reason)

	stored, err := s.orchestratorRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.OrchestratorJobStatusQueued, stored.Status, "rejected write must not change the row")
}

func (s *OrchestratorJobRepositoryTestSuite) TestLegacyRowWithoutGenerationAcceptsAnyWriter() {
	job := s.createJob(nil)

	err := s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, strPtr(uuid.NewString()), models.OrchestratorJobStatusEnriching, nil, "")
	s.Require().NoError(err)

	stored, err := s.orchestratorRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.OrchestratorJobStatusEnriching, stored.Status)
}

func (s *OrchestratorJobRepositoryTestSuite) TestNonTerminalWriteOnFinishedJobIsRejected() {
	gen := uuid.NewString()
	job := s.createJob(&gen)

	err := s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &gen, models.OrchestratorJobStatusComplete, json.RawMessage(`{"plan":"done"}`), "")
	s.Require().NoError(err)

	err = s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &gen, models.OrchestratorJobStatusPlanning, nil, "")
	var rejected *models.GuardRejectedError
	s.Require().ErrorAs(err, &rejected)
	s.Equal(models.RejectionTerminalState, rejected.Reason)

	stored, err := s.orchestratorRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.OrchestratorJobStatusComplete, stored.Status)
	s.JSONEq(`{"plan":"done"}`, string(stored.Result))
}

func (s *OrchestratorJobRepositoryTestSuite) TestTerminalWriteMayCloseOutFinishedJob() {
	gen := uuid.NewString()
	job := s.createJob(&gen)

	s.Require().NoError(s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &gen, models.OrchestratorJobStatusComplete, nil, ""))

	// Terminal writes skip the status clause so a racing run can still
	// record its outcome.
	err := s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &gen, models.OrchestratorJobStatusError, nil, "downstream timeout")
	s.Require().NoError(err)

	stored, err := s.orchestratorRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.OrchestratorJobStatusError, stored.Status)
	s.Equal("downstream timeout", stored.Error)
}

func (s *OrchestratorJobRepositoryTestSuite) TestUpdateMissingJob() {
	gen := uuid.NewString()
	err := s.orchestratorRepo.UpdateStatus(s.ctx, 9999, &gen, models.OrchestratorJobStatusPlanning, nil, "")

	var rejected *models.GuardRejectedError
	s.Require().ErrorAs(err, &rejected)
	s.Equal(models.RejectionNotFound, rejected.Reason)
}

func (s *OrchestratorJobRepositoryTestSuite) TestRotateGenerationSupersedesOldRun() {
	oldGen := uuid.NewString()
	job := s.createJob(&oldGen)

	s.Require().NoError(s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &oldGen, models.OrchestratorJobStatusPlanning, nil, ""))

	newGen := uuid.NewString()
	s.Require().NoError(s.orchestratorRepo.RotateGeneration(s.ctx, job.ID, newGen))

	stored, err := s.orchestratorRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.OrchestratorJobStatusQueued, stored.Status)
	s.Require().NotNil(stored.GenerationID)
	s.Equal(newGen, *stored.GenerationID)

	// The superseded run keeps writing under the old token and loses.
	err = s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &oldGen, models.OrchestratorJobStatusEnriching, nil, "")
	var rejected *models.GuardRejectedError
	s.Require().ErrorAs(err, &rejected)
	s.Equal(models.RejectionGenerationMismatch, rejected.Reason)
}

func (s *OrchestratorJobRepositoryTestSuite) TestRotateGenerationRefusedOnFinishedJob() {
	gen := uuid.NewString()
	job := s.createJob(&gen)
	s.Require().NoError(s.orchestratorRepo.UpdateStatus(s.ctx, job.ID, &gen, models.OrchestratorJobStatusComplete, nil, ""))

	err := s.orchestratorRepo.RotateGeneration(s.ctx, job.ID, uuid.NewString())
	var rejected *models.GuardRejectedError
	s.Require().ErrorAs(err, &rejected)
	s.Equal(models.RejectionTerminalState, rejected.Reason)
}
