package handlers

import (
	"encoding/json"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/tripmesh/concierge/internal/db/models"
)

// CreatePlanRequest is the body for the plan creation endpoint
type CreatePlanRequest struct {
	BookingID uint            `json:"booking_id"`
	Payload   json.RawMessage `json:"payload"`
}

// CreatePlan creates a trip plan at version 0
func (h *Handler) CreatePlan(c *fiber.Ctx) error {
	var req CreatePlanRequest
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

	plan := models.TripPlan{
		BookingID: req.BookingID,
		Payload:   req.Payload,
	}
	if err := h.plans.Create(c.Context(), &plan); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// GetPlan retrieves a trip plan by ID
func (h *Handler) GetPlan(c *fiber.Ctx) error {
	planID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	plan, err := h.plans.Get(c.Context(), planID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(plan)
}

// WritePlanRequest is the body for the versioned write endpoint
type WritePlanRequest struct {
	Payload         json.RawMessage `json:"payload"`
	ExpectedVersion *int            `json:"expected_version,omitempty"`
	Actor           string          `json:"actor"`
	Reason          string          `json:"reason,omitempty"`
}

// WritePlan applies a versioned write to a trip plan. A stale expected
// version yields 409 VERSION_CONFLICT with both versions.
func (h *Handler) WritePlan(c *fiber.Ctx) error {
	planID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req WritePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Actor == "" {
		req.Actor = "system"
	}

	plan, err := h.plans.Write(c.Context(), planID, req.Payload, req.ExpectedVersion, req.Actor, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"new_version": plan.Version})
}

// RestorePlanRequest is the body for the restore endpoint
type RestorePlanRequest struct {
	RevisionID      uint   `json:"revision_id"`
	ExpectedVersion *int   `json:"expected_version,omitempty"`
	Actor           string `json:"actor"`
}

// RestorePlan rewrites a plan from an earlier revision snapshot
func (h *Handler) RestorePlan(c *fiber.Ctx) error {
	planID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req RestorePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.RevisionID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "revision_id is required",
		})
	}
	if req.Actor == "" {
		req.Actor = "system"
	}

	result, err := h.plans.Restore(c.Context(), planID, req.RevisionID, req.ExpectedVersion, req.Actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// ListPlanRevisions returns the revision history for a plan
func (h *Handler) ListPlanRevisions(c *fiber.Ctx) error {
	planID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	revisions, err := h.plans.ListRevisions(c.Context(), planID, listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"revisions": revisions})
}
