package handlers

import (
	"context"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/tripmesh/concierge/internal/db/models"
	"github.com/tripmesh/concierge/internal/events"
	"github.com/tripmesh/concierge/internal/logger"
)

// opportunisticLimit is the small batch size used when request handlers
// piggyback reply processing
const opportunisticLimit = 3

// CreateMessageRequest is the body for the message creation endpoint
type CreateMessageRequest struct {
	SenderID uint   `json:"sender_id"`
	Body     string `json:"body"`
}

// CreateMessage persists a chat message on a booking and publishes the
// message-created event; the reply trigger gate runs off that event.
func (h *Handler) CreateMessage(c *fiber.Ctx) error {
	bookingID, err := paramID(c, "booking_id")
	if err != nil {
		return err
	}

	var req CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if _, err := h.bookings.GetByID(c.Context(), bookingID); err != nil {
		return respondError(c, err)
	}

	message := models.Message{
		BookingID: bookingID,
		SenderID:  req.SenderID,
		Body:      req.Body,
	}
	if err := h.messages.Create(c.Context(), &message); err != nil {
		return respondError(c, err)
	}

	events.Publish(events.Event{
		Type:      events.EventMessageCreated,
		BookingID: bookingID,
		MessageID: message.ID,
		SenderID:  message.SenderID,
	})

	return c.Status(fiber.StatusCreated).JSON(message)
}

// ListMessages returns the chat thread for a booking. After responding it
// opportunistically drains a few due reply jobs, so replies land with low
// latency even without the dedicated worker.
func (h *Handler) ListMessages(c *fiber.Ctx) error {
	bookingID, err := paramID(c, "booking_id")
	if err != nil {
		return err
	}

	messages, err := h.messages.ListByBooking(c.Context(), bookingID, listOptions(c))
	if err != nil {
		return respondError(c, err)
	}

	// The fiber context is recycled once the handler returns, so the
	// piggybacked processing runs on its own context.
	go func() {
		if _, err := h.replyQueue.ProcessDue(context.Background(), opportunisticLimit); err != nil {
			logger.Debugf("opportunistic reply processing: %v", err)
		}
	}()

	return c.JSON(fiber.Map{"messages": messages})
}
