package models

import (
	"gorm.io/gorm"
)

// ReplyStyle selects the tone used for generated replies from a host
type ReplyStyle string

// Reply style constants
const (
	// ReplyStyleConcise keeps replies short and to the point
	ReplyStyleConcise ReplyStyle = "concise"
	// ReplyStyleProfessional uses a formal register
	ReplyStyleProfessional ReplyStyle = "professional"
	// ReplyStyleWarm uses a welcoming register
	ReplyStyleWarm ReplyStyle = "warm"
	// ReplyStyleFriendly uses a casual register
	ReplyStyleFriendly ReplyStyle = "friendly"
)

// Host represents a marketplace host account
type Host struct {
	gorm.Model
	Name string `json:"name" gorm:"not null"`
	// SyntheticEnabled flags the host as opted in to automated replies.
	// Checked at enqueue time and again at process time.
	SyntheticEnabled bool       `json:"synthetic_enabled" gorm:"not null;default:false;index"`
	ReplyStyle       ReplyStyle `json:"reply_style" gorm:"not null;default:'friendly'"`
}
