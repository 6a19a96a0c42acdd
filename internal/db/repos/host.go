package repos

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tripmesh/concierge/internal/db/models"
)

// HostRepository handles database operations for hosts
type HostRepository struct {
	db *gorm.DB
}

// NewHostRepository creates a new instance of HostRepository
func NewHostRepository(db *gorm.DB) *HostRepository {
	return &HostRepository{db: db}
}

// Create creates a new host in the database
func (r *HostRepository) Create(ctx context.Context, host *models.Host) error {
	return r.db.WithContext(ctx).Create(host).Error
}

// GetByID retrieves a host by ID
func (r *HostRepository) GetByID(ctx context.Context, id uint) (*models.Host, error) {
	var host models.Host
	if err := r.db.WithContext(ctx).First(&host, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	return &host, nil
}
