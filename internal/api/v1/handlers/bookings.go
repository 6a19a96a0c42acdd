package handlers

import (
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/tripmesh/concierge/internal/db/models"
	"github.com/tripmesh/concierge/internal/events"
)

// CreateBookingRequest is the body for the booking creation endpoint
type CreateBookingRequest struct {
	GuestID      uint      `json:"guest_id"`
	HostID       uint      `json:"host_id"`
	ListingTitle string    `json:"listing_title"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
}

// CreateBooking creates a new booking
func (h *Handler) CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	booking := models.Booking{
		GuestID:      req.GuestID,
		HostID:       req.HostID,
		ListingTitle: req.ListingTitle,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
	}
	if err := h.bookings.Create(c.Context(), &booking); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

// GetBooking retrieves a booking by ID
func (h *Handler) GetBooking(c *fiber.Ctx) error {
	bookingID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.GetByID(c.Context(), bookingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}

// UpdateBookingStatusRequest is the body for the booking status endpoint
type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status"`
}

// UpdateBookingStatus updates the status of a booking
func (h *Handler) UpdateBookingStatus(c *fiber.Ctx) error {
	bookingID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateBookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.bookings.UpdateStatus(c.Context(), bookingID, req.Status); err != nil {
		return respondError(c, err)
	}

	events.Publish(events.Event{
		Type:      events.EventBookingStatusChanged,
		BookingID: bookingID,
	})

	return c.JSON(fiber.Map{"updated": true})
}
