package records

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gradgate/gradgate/models"
)

// ErrNotFound is returned when no application exists under the requested id.
var ErrNotFound = errors.New("application not found")

// Store persists application records. The ingestion path only ever inserts;
// there is no update or delete here.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an initialized gorm handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Insert creates the application row together with its attachment rows.
func (s *Store) Insert(ctx context.Context, app *models.Application) error {
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// GetByID loads one application with its attachments in submission order.
func (s *Store) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := s.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&app, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get application %d: %w", id, err)
	}
	return &app, nil
}

// ListAll returns applications newest-first by submission time, paginated.
func (s *Store) ListAll(ctx context.Context, page, pageSize int) ([]models.Application, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Application{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	var apps []models.Application
	err := s.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("submitted_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&apps).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	return apps, total, nil
}
