package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Message represents a chat message on a booking thread
type Message struct {
	gorm.Model
	BookingID uint   `json:"booking_id" gorm:"not null;index"`
	SenderID  uint   `json:"sender_id" gorm:"not null;index"`
	Body      string `json:"body" gorm:"type:text;not null"`
	// Synthetic marks messages composed by the reply subsystem on behalf
	// of the host. Synthetic messages never trigger further enqueues.
	Synthetic bool `json:"synthetic" gorm:"not null;default:false"`
}

// Validate ensures that the message data is valid
func (m *Message) Validate() error {
	if m.BookingID == 0 {
		return fmt.Errorf("message booking_id cannot be zero")
	}
	if m.SenderID == 0 {
		return fmt.Errorf("message sender_id cannot be zero")
	}
	if m.Body == "" {
		return fmt.Errorf("message body cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new message
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	return m.Validate()
}
