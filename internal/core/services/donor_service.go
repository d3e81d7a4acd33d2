package services

import (
	"context"
	"errors"
	"time"

	"red-reserve/internal/adapters/persistence/models"
	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/core/domain"
	"red-reserve/internal/core/eligibility"

	"gorm.io/gorm"
)

// DonorService handles donor profile management and the donor-facing
// request feed
type DonorService struct {
	store repositories.Store
}

// NewDonorService creates a new donor service
func NewDonorService(store repositories.Store) *DonorService {
	return &DonorService{store: store}
}

// CreateProfileInput carries the full profile field set. Create replaces
// the whole profile; a profile is never partially initialized.
type CreateProfileInput struct {
	FirstName        string     `json:"firstname" validate:"required"`
	LastName         string     `json:"lastname" validate:"required"`
	Phone            string     `json:"phone" validate:"required"`
	Pincode          string     `json:"pincode" validate:"required"`
	Gender           string     `json:"gender" validate:"required,oneof=male female"`
	Age              int        `json:"age" validate:"required,gt=0"`
	BloodGroup       string     `json:"bloodgroup" validate:"required"`
	LastDonationDate *time.Time `json:"lastdonationdate"`
}

// UpdateProfileInput enumerates the updatable profile fields. Only fields
// present in the payload are applied; everything else is preserved.
// Unknown keys are never accepted.
type UpdateProfileInput struct {
	FirstName        *string    `json:"firstname"`
	LastName         *string    `json:"lastname"`
	Phone            *string    `json:"phone"`
	Pincode          *string    `json:"pincode"`
	Gender           *string    `json:"gender"`
	Age              *int       `json:"age"`
	BloodGroup       *string    `json:"bloodgroup"`
	LastDonationDate *time.Time `json:"lastdonationdate"`
}

// LastDonationInfo is the donor's most recent donation record
type LastDonationInfo struct {
	LastDonation *time.Time `json:"lastdonation"`
	Hospital     string     `json:"hospital,omitempty"`
}

// CreateProfile creates or fully replaces the donor's profile
func (s *DonorService) CreateProfile(ctx context.Context, donorID uint, input *CreateProfileInput) error {
	if input.Gender != "male" && input.Gender != "female" {
		return domain.ErrInvalidGender
	}

	donor, err := s.store.Donors().GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDonorNotFound
		}
		return err
	}

	profile := &models.DonorProfile{
		DonorID:          donor.ID,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Phone:            input.Phone,
		Pincode:          input.Pincode,
		Gender:           input.Gender,
		Age:              input.Age,
		BloodGroup:       eligibility.NormalizeBloodType(input.BloodGroup),
		LastDonationDate: input.LastDonationDate,
	}
	// Replacing keeps the row identity so donation history columns are
	// overwritten, not merged
	if donor.Profile != nil {
		profile.ID = donor.Profile.ID
	}

	return s.store.Donors().SaveProfile(ctx, profile)
}

// UpdateProfile merges the present fields into an existing profile
func (s *DonorService) UpdateProfile(ctx context.Context, donorID uint, input *UpdateProfileInput) error {
	donor, err := s.store.Donors().GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDonorNotFound
		}
		return err
	}
	if donor.Profile == nil {
		// Merging into an absent profile would create a half-initialized
		// one
		return domain.ErrProfileNotFound
	}

	fields := make(map[string]interface{})
	if input.FirstName != nil {
		fields["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		fields["last_name"] = *input.LastName
	}
	if input.Phone != nil {
		fields["phone"] = *input.Phone
	}
	if input.Pincode != nil {
		fields["pincode"] = *input.Pincode
	}
	if input.Gender != nil {
		if *input.Gender != "male" && *input.Gender != "female" {
			return domain.ErrInvalidGender
		}
		fields["gender"] = *input.Gender
	}
	if input.Age != nil {
		fields["age"] = *input.Age
	}
	if input.BloodGroup != nil {
		fields["blood_group"] = eligibility.NormalizeBloodType(*input.BloodGroup)
	}
	if input.LastDonationDate != nil {
		fields["last_donation_date"] = *input.LastDonationDate
	}

	return s.store.Donors().UpdateProfileFields(ctx, donorID, fields)
}

// GetProfile returns the donor's profile
func (s *DonorService) GetProfile(ctx context.Context, donorID uint) (*models.DonorProfile, error) {
	donor, err := s.store.Donors().GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonorNotFound
		}
		return nil, err
	}
	if donor.Profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	return donor.Profile, nil
}

// MatchingRequests returns the open requests the donor is compatible
// with, oldest first
func (s *DonorService) MatchingRequests(ctx context.Context, donorID uint) ([]*models.BloodRequestResponse, error) {
	donor, err := s.store.Donors().GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonorNotFound
		}
		return nil, err
	}
	if !eligibility.IsProfileComplete(donor) {
		return nil, domain.ErrProfileIncomplete
	}

	open, err := s.store.Requests().ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	matched := eligibility.MatchingOpenRequests(donor, open)
	out := make([]*models.BloodRequestResponse, len(matched))
	for i, request := range matched {
		out[i] = request.ToResponse()
	}
	return out, nil
}

// LastDonation returns the donor's most recent donation date and hospital
func (s *DonorService) LastDonation(ctx context.Context, donorID uint) (*LastDonationInfo, error) {
	profile, err := s.GetProfile(ctx, donorID)
	if err != nil {
		return nil, err
	}
	info := &LastDonationInfo{LastDonation: profile.LastDonationDate}
	if profile.LastDonationDate != nil {
		info.Hospital = profile.LastHospitalName
	}
	return info, nil
}

// CooldownEnd returns when the donor's current cooldown window ends, or
// nil when no donation has been recorded
func (s *DonorService) CooldownEnd(ctx context.Context, donorID uint) (*time.Time, error) {
	donor, err := s.store.Donors().GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonorNotFound
		}
		return nil, err
	}
	if donor.Profile == nil || donor.Profile.LastDonationDate == nil {
		return nil, nil
	}
	end := eligibility.CooldownEnd(*donor.Profile.LastDonationDate)
	return &end, nil
}
