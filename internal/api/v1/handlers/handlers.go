// Package handlers provides HTTP request handling
package handlers

import (
	"errors"
	"strconv"

	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tripmesh/concierge/internal/db/models"
	"github.com/tripmesh/concierge/internal/db/repos"
	"github.com/tripmesh/concierge/internal/services"
)

// Handler bundles the services the API exposes
type Handler struct {
	replyQueue   *services.ReplyQueue
	plans        *services.Plan
	orchestrator *services.Orchestrator
	bookings     *repos.BookingRepository
	messages     *repos.MessageRepository
}

// NewHandler creates a new Handler instance
func NewHandler(replyQueue *services.ReplyQueue, plans *services.Plan, orchestrator *services.Orchestrator, bookings *repos.BookingRepository, messages *repos.MessageRepository) *Handler {
	return &Handler{
		replyQueue:   replyQueue,
		plans:        plans,
		orchestrator: orchestrator,
		bookings:     bookings,
		messages:     messages,
	}
}

// paramID parses a uint path parameter
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// listOptions builds pagination options from query parameters
func listOptions(c *fiber.Ctx) *models.ListOptions {
	limit := c.QueryInt("limit", models.DefaultLimit)
	if limit <= 0 || limit > models.DefaultLimit {
		limit = models.DefaultLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return &models.ListOptions{
		Limit:            limit,
		Offset:           offset,
		IncludeCancelled: c.QueryBool("include_cancelled", false),
	}
}

// respondError maps service errors to HTTP responses
func respondError(c *fiber.Ctx, err error) error {
	var conflict *models.VersionConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":            "VERSION_CONFLICT",
			"expected_version": conflict.ExpectedVersion,
			"current_version":  conflict.CurrentVersion,
		})
	}

	var rejected *models.GuardRejectedError
	if errors.As(err, &rejected) {
		status := fiber.StatusConflict
		if rejected.Reason == models.RejectionNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error":  "GUARD_REJECTED",
			"reason": rejected.Reason,
		})
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repos.ErrRevisionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "NOT_FOUND",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
