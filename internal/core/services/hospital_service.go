package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"red-reserve/internal/adapters/persistence/models"
	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/core/domain"
	"red-reserve/internal/core/eligibility"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HospitalService handles request posting and the hospital-facing views
type HospitalService struct {
	store repositories.Store
}

// NewHospitalService creates a new hospital service
func NewHospitalService(store repositories.Store) *HospitalService {
	return &HospitalService{store: store}
}

// CreateRequestInput represents a new blood request
type CreateRequestInput struct {
	BloodType     string   `json:"bloodtype" validate:"required"`
	EligibleTypes []string `json:"eligibletypes" validate:"required,min=1"`
	Units         int      `json:"units" validate:"required,gt=0"`
	Contact       string   `json:"contact" validate:"required"`
}

// CreateRequest posts a new open request for the acting hospital
func (s *HospitalService) CreateRequest(ctx context.Context, hospitalID uint, input *CreateRequestInput) (*models.BloodRequestResponse, error) {
	hospital, err := s.store.Hospitals().GetByID(ctx, hospitalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrHospitalNotFound
		}
		return nil, err
	}

	eligible := make([]string, 0, len(input.EligibleTypes))
	for _, bloodType := range input.EligibleTypes {
		eligible = append(eligible, eligibility.NormalizeBloodType(bloodType))
	}

	request := &models.BloodRequest{
		ID:                 uuid.New().String(),
		HospitalID:         hospital.ID,
		RequiredBloodType:  eligibility.NormalizeBloodType(input.BloodType),
		EligibleBloodTypes: eligible,
		UnitsRequired:      input.Units,
		Contact:            strings.TrimSpace(input.Contact),
	}
	if err := s.store.Requests().Create(ctx, request); err != nil {
		return nil, err
	}

	request.Hospital = *hospital
	log.Printf("🩸 Blood request posted: %s needs %s x%d", hospital.Name, request.RequiredBloodType, request.UnitsRequired)
	return request.ToResponse(), nil
}

// OpenRequests lists the hospital's own open requests
func (s *HospitalService) OpenRequests(ctx context.Context, hospitalID uint) ([]*models.BloodRequestResponse, error) {
	requests, err := s.store.Requests().ListByHospital(ctx, hospitalID, false)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

// FulfilledRequests lists the hospital's fulfilled request history
func (s *HospitalService) FulfilledRequests(ctx context.Context, hospitalID uint) ([]*models.BloodRequestResponse, error) {
	requests, err := s.store.Requests().ListByHospital(ctx, hospitalID, true)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

// OthersOpenRequests lists open requests posted by other hospitals
func (s *HospitalService) OthersOpenRequests(ctx context.Context, hospitalID uint) ([]*models.BloodRequestResponse, error) {
	requests, err := s.store.Requests().ListOpenExcludingHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

// RequestResponders returns donor display details for every response
// entry on a request, in response order. A donor who responded twice
// appears twice; the response list is history, not a set.
func (s *HospitalService) RequestResponders(ctx context.Context, requestID string) ([]*models.ResponderDetail, error) {
	request, err := s.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	emails := make([]string, len(request.Responses))
	for i, resp := range request.Responses {
		emails[i] = resp.DonorEmail
	}
	donors, err := s.store.Donors().ListByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}
	byEmail := make(map[string]*models.Donor, len(donors))
	for _, donor := range donors {
		byEmail[donor.Email] = donor
	}

	details := make([]*models.ResponderDetail, 0, len(request.Responses))
	for _, resp := range request.Responses {
		donor, ok := byEmail[resp.DonorEmail]
		if !ok || donor.Profile == nil {
			continue
		}
		details = append(details, &models.ResponderDetail{
			Name:      fmt.Sprintf("%s %s", donor.Profile.FirstName, donor.Profile.LastName),
			Contact:   donor.Profile.Phone,
			BloodType: donor.Profile.BloodGroup,
		})
	}
	return details, nil
}

func toResponses(requests []*models.BloodRequest) []*models.BloodRequestResponse {
	out := make([]*models.BloodRequestResponse, len(requests))
	for i, request := range requests {
		out[i] = request.ToResponse()
	}
	return out
}
