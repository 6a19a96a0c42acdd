package handlers

import (
	"encoding/json"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/tripmesh/concierge/internal/db/models"
)

// StartOrchestratorJobRequest is the body for starting an orchestration run
type StartOrchestratorJobRequest struct {
	BookingID uint `json:"booking_id"`
}

// StartOrchestratorJob creates an orchestrator job with a fresh generation token
func (h *Handler) StartOrchestratorJob(c *fiber.Ctx) error {
	var req StartOrchestratorJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.BookingID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "booking_id is required",
		})
	}

	job, err := h.orchestrator.StartJob(c.Context(), req.BookingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(job)
}

// GetOrchestratorJob retrieves an orchestrator job by ID
func (h *Handler) GetOrchestratorJob(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.orchestrator.Get(c.Context(), jobID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(job)
}

// RestartOrchestratorJob rotates the generation token, superseding the
// current run
func (h *Handler) RestartOrchestratorJob(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	generationID, err := h.orchestrator.Restart(c.Context(), jobID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"generation_id": generationID})
}

// UpdateOrchestratorJobRequest is the body for a guarded status update
type UpdateOrchestratorJobRequest struct {
	ExpectedGenerationID *string         `json:"expected_generation_id,omitempty"`
	Status               string          `json:"status"`
	Result               json.RawMessage `json:"result,omitempty"`
	Error                string          `json:"error,omitempty"`
}

// UpdateOrchestratorJob applies a generation-guarded status update. A guard
// rejection yields 409 (or 404 for a missing row) with the classified reason.
func (h *Handler) UpdateOrchestratorJob(c *fiber.Ctx) error {
	jobID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateOrchestratorJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	status := models.OrchestratorJobStatus(req.Status)
	switch status {
	case models.OrchestratorJobStatusQueued, models.OrchestratorJobStatusPlanning,
		models.OrchestratorJobStatusEnriching, models.OrchestratorJobStatusComplete,
		models.OrchestratorJobStatusError:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid status",
		})
	}

	if err := h.orchestrator.UpdateStatus(c.Context(), jobID, req.ExpectedGenerationID, status, req.Result, req.Error); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": true})
}
