// Package events provides event handling functionality
package events

import (
	"context"
	"sync"

	"github.com/tripmesh/concierge/internal/logger"
)

// EventType represents the type of domain event
type EventType string

const (
	// EventMessageCreated is emitted after a chat message is persisted
	EventMessageCreated EventType = "message_created"
	// EventBookingStatusChanged is emitted when a booking changes status
	EventBookingStatusChanged EventType = "booking_status_changed"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a domain event
type Event struct {
	Type      EventType // The type of event
	BookingID uint      // The booking the event belongs to
	MessageID uint      // The message ID, for message events
	SenderID  uint      // The sender of the message, for message events
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	// handlers is a map of event types to their handlers
	handlers = make(map[EventType][]Handler)
	// handlersMu is a mutex for the handlers map
	handlersMu sync.RWMutex
	// eventChan is a channel for events
	eventChan = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed
func Publish(event Event) {
	eventChan <- event
	logger.Debugf("Published event: %s (booking: %d)", event.Type, event.BookingID)
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-eventChan:
			handlersMu.RLock()
			eventHandlers := handlers[event.Type]
			handlersMu.RUnlock()

			// Process event with all registered handlers
			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s: %v", e.Type, err)
					}
				}(handler, event)
			}
		}
	}
}
