package repositories

import (
	"context"
	"time"

	"red-reserve/internal/adapters/persistence/models"
)

// DonorRepository defines donor repository interface
type DonorRepository interface {
	Create(ctx context.Context, donor *models.Donor) error
	GetByID(ctx context.Context, id uint) (*models.Donor, error)
	GetByEmail(ctx context.Context, email string) (*models.Donor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListByEmails(ctx context.Context, emails []string) ([]*models.Donor, error)
	SaveProfile(ctx context.Context, profile *models.DonorProfile) error
	UpdateProfileFields(ctx context.Context, donorID uint, fields map[string]interface{}) error
	// ClaimDonation atomically starts a new cooldown window for the donor.
	// The update only applies while the stored last_donation_date is unset
	// or at most cutoff; the boolean reports whether this call won the
	// claim. This is the compare-and-set that closes the cooldown race.
	ClaimDonation(ctx context.Context, donorID uint, now, cutoff time.Time, hospitalName string) (bool, error)
}

// HospitalRepository defines hospital repository interface
type HospitalRepository interface {
	Create(ctx context.Context, hospital *models.Hospital) error
	GetByID(ctx context.Context, id uint) (*models.Hospital, error)
	GetByEmail(ctx context.Context, email string) (*models.Hospital, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RequestRepository defines blood request repository interface
type RequestRepository interface {
	Create(ctx context.Context, request *models.BloodRequest) error
	GetByID(ctx context.Context, id string) (*models.BloodRequest, error)
	ListOpen(ctx context.Context) ([]*models.BloodRequest, error)
	ListByHospital(ctx context.Context, hospitalID uint, fulfilled bool) ([]*models.BloodRequest, error)
	ListOpenExcludingHospital(ctx context.Context, hospitalID uint) ([]*models.BloodRequest, error)
	// MarkFulfilled flips fulfilled to true. Fulfilled is monotonic: the
	// update is a no-op on an already fulfilled request.
	MarkFulfilled(ctx context.Context, id string) error
	// AppendResponse records a donor's acceptance as a new row, never an
	// overwrite, so concurrent appends cannot lose each other.
	AppendResponse(ctx context.Context, requestID, donorEmail string) error
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllBySubject(ctx context.Context, subjectType string, subjectID uint) error
	DeleteExpired(ctx context.Context) error
}

// Store bundles the repositories behind a single transactional boundary.
// Transaction runs fn against a store whose mutations commit or roll back
// as one unit; the lifecycle service relies on this to keep the donor's
// cooldown and the request's response list consistent.
type Store interface {
	Donors() DonorRepository
	Hospitals() HospitalRepository
	Requests() RequestRepository
	RefreshTokens() RefreshTokenRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}
