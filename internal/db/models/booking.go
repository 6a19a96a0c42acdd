package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BookingStatus represents the current state of a booking
type BookingStatus string

// Booking status constants
const (
	// BookingStatusRequested indicates the booking has not been accepted yet
	BookingStatusRequested BookingStatus = "requested"
	// BookingStatusConfirmed indicates the host accepted the booking
	BookingStatusConfirmed BookingStatus = "confirmed"
	// BookingStatusActive indicates the guest has checked in
	BookingStatusActive BookingStatus = "active"
	// BookingStatusCompleted indicates the stay has ended
	BookingStatusCompleted BookingStatus = "completed"
	// BookingStatusCancelled indicates the booking was cancelled
	BookingStatusCancelled BookingStatus = "cancelled"
)

// String returns the string representation of the booking status
func (s BookingStatus) String() string {
	return string(s)
}

// ChatEligible reports whether participants may exchange messages on the
// booking. Synthetic replies are only scheduled for chat-eligible bookings.
func (s BookingStatus) ChatEligible() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusActive:
		return true
	}
	return false
}

// Booking represents a reservation between a guest and a host
type Booking struct {
	gorm.Model
	GuestID      uint          `json:"guest_id" gorm:"not null;index"`
	HostID       uint          `json:"host_id" gorm:"not null;index"`
	ListingTitle string        `json:"listing_title" gorm:"not null"`
	Status       BookingStatus `json:"status" gorm:"not null;index"`
	CheckIn      time.Time     `json:"check_in" gorm:"not null"`
	CheckOut     time.Time     `json:"check_out" gorm:"not null"`
}

// Validate ensures that the booking data is valid
func (b *Booking) Validate() error {
	if b.GuestID == 0 {
		return fmt.Errorf("booking guest_id cannot be zero")
	}
	if b.HostID == 0 {
		return fmt.Errorf("booking host_id cannot be zero")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new booking
func (b *Booking) BeforeCreate(_ *gorm.DB) error {
	if b.Status == "" {
		b.Status = BookingStatusRequested
	}
	return b.Validate()
}
