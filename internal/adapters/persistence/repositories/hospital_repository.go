package repositories

import (
	"context"

	"red-reserve/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// hospitalRepository implements HospitalRepository on GORM
type hospitalRepository struct {
	db *gorm.DB
}

// NewHospitalRepository creates a new hospital repository
func NewHospitalRepository(db *gorm.DB) HospitalRepository {
	return &hospitalRepository{db: db}
}

// Create creates a new hospital
func (r *hospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	return r.db.WithContext(ctx).Create(hospital).Error
}

// GetByID gets a hospital by ID
func (r *hospitalRepository) GetByID(ctx context.Context, id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&hospital).Error
	if err != nil {
		return nil, err
	}
	return &hospital, nil
}

// GetByEmail gets a hospital by email
func (r *hospitalRepository) GetByEmail(ctx context.Context, email string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&hospital).Error
	if err != nil {
		return nil, err
	}
	return &hospital, nil
}

// ExistsByEmail checks if a hospital email exists
func (r *hospitalRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Hospital{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
