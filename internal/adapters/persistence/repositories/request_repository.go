package repositories

import (
	"context"

	"red-reserve/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// requestRepository implements RequestRepository on GORM
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new blood request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create creates a new blood request
func (r *requestRepository) Create(ctx context.Context, request *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a request with its hospital and responses by ID
func (r *requestRepository) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	var request models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Hospital").
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("request_responses.id ASC")
		}).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListOpen lists all open requests, oldest first
func (r *requestRepository) ListOpen(ctx context.Context) ([]*models.BloodRequest, error) {
	var requests []*models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Hospital").
		Where("fulfilled = ?", false).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	return requests, err
}

// ListByHospital lists a hospital's requests filtered by fulfillment state
func (r *requestRepository) ListByHospital(ctx context.Context, hospitalID uint, fulfilled bool) ([]*models.BloodRequest, error) {
	var requests []*models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Hospital").
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("request_responses.id ASC")
		}).
		Where("hospital_id = ? AND fulfilled = ?", hospitalID, fulfilled).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	return requests, err
}

// ListOpenExcludingHospital lists open requests posted by other hospitals
func (r *requestRepository) ListOpenExcludingHospital(ctx context.Context, hospitalID uint) ([]*models.BloodRequest, error) {
	var requests []*models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Hospital").
		Where("hospital_id <> ? AND fulfilled = ?", hospitalID, false).
		Order("created_at ASC, id ASC").
		Find(&requests).Error
	return requests, err
}

// MarkFulfilled flips the fulfilled flag. Updating an already fulfilled
// request changes nothing, which keeps fulfill idempotent.
func (r *requestRepository) MarkFulfilled(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("id = ?", id).
		Update("fulfilled", true).Error
}

// AppendResponse inserts a new response row for the request
func (r *requestRepository) AppendResponse(ctx context.Context, requestID, donorEmail string) error {
	return r.db.WithContext(ctx).Create(&models.RequestResponse{
		RequestID:  requestID,
		DonorEmail: donorEmail,
	}).Error
}
