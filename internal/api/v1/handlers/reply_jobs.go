package handlers

import (
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/tripmesh/concierge/internal/db/models"
)

// EnqueueReplyRequest is the body for the enqueue endpoint
type EnqueueReplyRequest struct {
	BookingID        uint `json:"booking_id"`
	HostID           uint `json:"host_id"`
	TriggerMessageID uint `json:"trigger_message_id"`
	LatencyMinSec    int  `json:"latency_min_sec,omitempty"`
	LatencyMaxSec    int  `json:"latency_max_sec,omitempty"`
}

// EnqueueReply schedules a synthetic reply job for a trigger message
func (h *Handler) EnqueueReply(c *fiber.Ctx) error {
	var req EnqueueReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.BookingID == 0 || req.HostID == 0 || req.TriggerMessageID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "booking_id, host_id and trigger_message_id are required",
		})
	}

	result, err := h.replyQueue.Enqueue(c.Context(),
		req.BookingID, req.HostID, req.TriggerMessageID,
		time.Duration(req.LatencyMinSec)*time.Second,
		time.Duration(req.LatencyMaxSec)*time.Second,
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// ProcessReplies claims and processes due reply jobs. Invoked by the
// scheduled trigger and available to any collaborator that wants to drain
// the queue opportunistically.
func (h *Handler) ProcessReplies(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	stats, err := h.replyQueue.ProcessDue(c.Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// ListReplyJobs returns reply jobs, optionally filtered by status
func (h *Handler) ListReplyJobs(c *fiber.Ctx) error {
	var status models.ReplyJobStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseReplyJobStatus(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		status = parsed
	}

	jobs, err := h.replyQueue.ListJobs(c.Context(), status, listOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}
