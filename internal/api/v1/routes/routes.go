package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tripmesh/concierge/internal/api/v1/handlers"
)

// SetupRoutes configures all the v1 routes
func SetupRoutes(router fiber.Router, h *handlers.Handler) {
	// Booking routes
	bookings := router.Group("/bookings")
	bookings.Post("/", h.CreateBooking)
	bookings.Get("/:id", h.GetBooking)
	bookings.Patch("/:id/status", h.UpdateBookingStatus)
	bookings.Post("/:booking_id/messages", h.CreateMessage)
	bookings.Get("/:booking_id/messages", h.ListMessages)

	// Reply job routes
	replies := router.Group("/replies")
	replies.Post("/enqueue", h.EnqueueReply)
	replies.Post("/process", h.ProcessReplies)
	replies.Get("/jobs", h.ListReplyJobs)

	// Trip plan routes
	plans := router.Group("/plans")
	plans.Post("/", h.CreatePlan)
	plans.Get("/:id", h.GetPlan)
	plans.Put("/:id", h.WritePlan)
	plans.Post("/:id/restore", h.RestorePlan)
	plans.Get("/:id/revisions", h.ListPlanRevisions)

	// Orchestrator job routes
	orchestrator := router.Group("/orchestrator/jobs")
	orchestrator.Post("/", h.StartOrchestratorJob)
	orchestrator.Get("/:id", h.GetOrchestratorJob)
	orchestrator.Post("/:id/restart", h.RestartOrchestratorJob)
	orchestrator.Patch("/:id", h.UpdateOrchestratorJob)
}

// Register registers the v1 routes
func Register(app *fiber.App, h *handlers.Handler) {
	v1Group := app.Group("/api/v1")
	SetupRoutes(v1Group, h)
}
