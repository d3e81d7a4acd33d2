package repositories

import (
	"context"
	"time"

	"red-reserve/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// donorRepository implements DonorRepository on GORM
type donorRepository struct {
	db *gorm.DB
}

// NewDonorRepository creates a new donor repository
func NewDonorRepository(db *gorm.DB) DonorRepository {
	return &donorRepository{db: db}
}

// Create creates a new donor
func (r *donorRepository) Create(ctx context.Context, donor *models.Donor) error {
	return r.db.WithContext(ctx).Create(donor).Error
}

// GetByID gets a donor with their profile by ID
func (r *donorRepository) GetByID(ctx context.Context, id uint) (*models.Donor, error) {
	var donor models.Donor
	err := r.db.WithContext(ctx).Preload("Profile").Where("id = ?", id).First(&donor).Error
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

// GetByEmail gets a donor with their profile by email
func (r *donorRepository) GetByEmail(ctx context.Context, email string) (*models.Donor, error) {
	var donor models.Donor
	err := r.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&donor).Error
	if err != nil {
		return nil, err
	}
	return &donor, nil
}

// ExistsByEmail checks if a donor email exists
func (r *donorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Donor{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ListByEmails gets donors with profiles for the given emails
func (r *donorRepository) ListByEmails(ctx context.Context, emails []string) ([]*models.Donor, error) {
	var donors []*models.Donor
	if len(emails) == 0 {
		return donors, nil
	}
	err := r.db.WithContext(ctx).Preload("Profile").Where("email IN ?", emails).Find(&donors).Error
	return donors, err
}

// SaveProfile inserts or fully replaces a donor profile
func (r *donorRepository) SaveProfile(ctx context.Context, profile *models.DonorProfile) error {
	if profile.ID != 0 {
		return r.db.WithContext(ctx).Save(profile).Error
	}
	return r.db.WithContext(ctx).Create(profile).Error
}

// UpdateProfileFields applies a partial update to a donor profile
func (r *donorRepository) UpdateProfileFields(ctx context.Context, donorID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.DonorProfile{}).
		Where("donor_id = ?", donorID).
		Updates(fields).Error
}

// ClaimDonation performs the conditional cooldown update. The WHERE clause
// makes the check-then-set a single statement: of two concurrent accepts,
// only one can match the predicate and win the claim.
func (r *donorRepository) ClaimDonation(ctx context.Context, donorID uint, now, cutoff time.Time, hospitalName string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DonorProfile{}).
		Where("donor_id = ? AND (last_donation_date IS NULL OR last_donation_date <= ?)", donorID, cutoff).
		Updates(map[string]interface{}{
			"last_donation_date": now,
			"last_hospital_name": hospitalName,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
