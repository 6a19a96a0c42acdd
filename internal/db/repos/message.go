package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tripmesh/concierge/internal/db/models"
)

// MessageRepository handles database operations for booking chat messages
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of MessageRepository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message in the database
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &message, nil
}

// ListByBooking retrieves messages for a booking, newest first
func (r *MessageRepository) ListByBooking(ctx context.Context, bookingID uint, opts *models.ListOptions) ([]models.Message, error) {
	var messages []models.Message
	query := r.db.WithContext(ctx).Where(models.Message{BookingID: bookingID})
	if opts != nil {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}
	err := query.Order("created_at DESC").Find(&messages).Error
	return messages, err
}
