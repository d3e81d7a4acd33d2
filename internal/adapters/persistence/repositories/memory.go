package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"red-reserve/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memoryStore is an in-memory Store used by unit tests. It honors the
// same contracts as the GORM store, including gorm.ErrRecordNotFound and
// the atomic cooldown claim, so services can be tested without MySQL.
type memoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	donors         map[uint]*models.Donor
	hospitals      map[uint]*models.Hospital
	requests       map[string]*models.BloodRequest
	tokens         map[uint]*models.RefreshToken
	nextDonorID    uint
	nextHospitalID uint
	nextTokenID    uint
	nextResponseID uint
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() Store {
	return &memoryStore{
		donors:    make(map[uint]*models.Donor),
		hospitals: make(map[uint]*models.Hospital),
		requests:  make(map[string]*models.BloodRequest),
		tokens:    make(map[uint]*models.RefreshToken),
	}
}

func (s *memoryStore) Donors() DonorRepository               { return &memoryDonors{s} }
func (s *memoryStore) Hospitals() HospitalRepository         { return &memoryHospitals{s} }
func (s *memoryStore) Requests() RequestRepository           { return &memoryRequests{s} }
func (s *memoryStore) RefreshTokens() RefreshTokenRepository { return &memoryTokens{s} }

// Transaction serializes transactional units against each other. The only
// failure the lifecycle service guards mid-transaction is the cooldown
// claim, which happens before any other mutation, so serialization gives
// the same observable behavior as a rollback-capable store.
func (s *memoryStore) Transaction(ctx context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

// ============================================================
// Donors
// ============================================================

type memoryDonors struct {
	s *memoryStore
}

func copyDonor(d *models.Donor) *models.Donor {
	cp := *d
	if d.Profile != nil {
		p := *d.Profile
		cp.Profile = &p
	}
	return &cp
}

func (r *memoryDonors) Create(ctx context.Context, donor *models.Donor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextDonorID++
	donor.ID = r.s.nextDonorID
	if donor.CreatedAt.IsZero() {
		donor.CreatedAt = time.Now()
	}
	r.s.donors[donor.ID] = copyDonor(donor)
	return nil
}

func (r *memoryDonors) GetByID(ctx context.Context, id uint) (*models.Donor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	donor, ok := r.s.donors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyDonor(donor), nil
}

func (r *memoryDonors) GetByEmail(ctx context.Context, email string) (*models.Donor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, donor := range r.s.donors {
		if donor.Email == email {
			return copyDonor(donor), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryDonors) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, donor := range r.s.donors {
		if donor.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryDonors) ListByEmails(ctx context.Context, emails []string) ([]*models.Donor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[string]bool, len(emails))
	for _, email := range emails {
		wanted[email] = true
	}
	var donors []*models.Donor
	for _, donor := range r.s.donors {
		if wanted[donor.Email] {
			donors = append(donors, copyDonor(donor))
		}
	}
	return donors, nil
}

func (r *memoryDonors) SaveProfile(ctx context.Context, profile *models.DonorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	donor, ok := r.s.donors[profile.DonorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if profile.ID == 0 {
		profile.ID = profile.DonorID
	}
	p := *profile
	donor.Profile = &p
	return nil
}

func (r *memoryDonors) UpdateProfileFields(ctx context.Context, donorID uint, fields map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	donor, ok := r.s.donors[donorID]
	if !ok || donor.Profile == nil {
		return nil // mirrors UPDATE matching zero rows
	}
	p := donor.Profile
	for column, value := range fields {
		switch column {
		case "first_name":
			p.FirstName = value.(string)
		case "last_name":
			p.LastName = value.(string)
		case "phone":
			p.Phone = value.(string)
		case "pincode":
			p.Pincode = value.(string)
		case "gender":
			p.Gender = value.(string)
		case "age":
			p.Age = value.(int)
		case "blood_group":
			p.BloodGroup = value.(string)
		case "last_donation_date":
			t := value.(time.Time)
			p.LastDonationDate = &t
		case "last_hospital_name":
			p.LastHospitalName = value.(string)
		}
	}
	return nil
}

func (r *memoryDonors) ClaimDonation(ctx context.Context, donorID uint, now, cutoff time.Time, hospitalName string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	donor, ok := r.s.donors[donorID]
	if !ok || donor.Profile == nil {
		return false, nil
	}
	last := donor.Profile.LastDonationDate
	if last != nil && last.After(cutoff) {
		return false, nil
	}
	t := now
	donor.Profile.LastDonationDate = &t
	donor.Profile.LastHospitalName = hospitalName
	return true, nil
}

// ============================================================
// Hospitals
// ============================================================

type memoryHospitals struct {
	s *memoryStore
}

func (r *memoryHospitals) Create(ctx context.Context, hospital *models.Hospital) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextHospitalID++
	hospital.ID = r.s.nextHospitalID
	if hospital.CreatedAt.IsZero() {
		hospital.CreatedAt = time.Now()
	}
	cp := *hospital
	r.s.hospitals[hospital.ID] = &cp
	return nil
}

func (r *memoryHospitals) GetByID(ctx context.Context, id uint) (*models.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	hospital, ok := r.s.hospitals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *hospital
	return &cp, nil
}

func (r *memoryHospitals) GetByEmail(ctx context.Context, email string) (*models.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, hospital := range r.s.hospitals {
		if hospital.Email == email {
			cp := *hospital
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryHospitals) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, hospital := range r.s.hospitals {
		if hospital.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ============================================================
// Blood requests
// ============================================================

type memoryRequests struct {
	s *memoryStore
}

// copyRequest resolves the hospital association the way the GORM preload
// does
func (r *memoryRequests) copyRequest(req *models.BloodRequest) *models.BloodRequest {
	cp := *req
	cp.EligibleBloodTypes = append(cp.EligibleBloodTypes[:0:0], req.EligibleBloodTypes...)
	cp.Responses = append(cp.Responses[:0:0], req.Responses...)
	if hospital, ok := r.s.hospitals[req.HospitalID]; ok {
		cp.Hospital = *hospital
	}
	return &cp
}

func (r *memoryRequests) Create(ctx context.Context, request *models.BloodRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	cp := *request
	cp.Responses = nil
	r.s.requests[request.ID] = &cp
	return nil
}

func (r *memoryRequests) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request, ok := r.s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.copyRequest(request), nil
}

func (r *memoryRequests) list(filter func(*models.BloodRequest) bool) []*models.BloodRequest {
	var requests []*models.BloodRequest
	for _, request := range r.s.requests {
		if filter(request) {
			requests = append(requests, r.copyRequest(request))
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
	return requests
}

func (r *memoryRequests) ListOpen(ctx context.Context) ([]*models.BloodRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(req *models.BloodRequest) bool {
		return !req.Fulfilled
	}), nil
}

func (r *memoryRequests) ListByHospital(ctx context.Context, hospitalID uint, fulfilled bool) ([]*models.BloodRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(req *models.BloodRequest) bool {
		return req.HospitalID == hospitalID && req.Fulfilled == fulfilled
	}), nil
}

func (r *memoryRequests) ListOpenExcludingHospital(ctx context.Context, hospitalID uint) ([]*models.BloodRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(req *models.BloodRequest) bool {
		return req.HospitalID != hospitalID && !req.Fulfilled
	}), nil
}

func (r *memoryRequests) MarkFulfilled(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if request, ok := r.s.requests[id]; ok {
		request.Fulfilled = true
	}
	return nil
}

func (r *memoryRequests) AppendResponse(ctx context.Context, requestID, donorEmail string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request, ok := r.s.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.nextResponseID++
	request.Responses = append(request.Responses, models.RequestResponse{
		ID:         r.s.nextResponseID,
		RequestID:  requestID,
		DonorEmail: donorEmail,
		CreatedAt:  time.Now(),
	})
	return nil
}

// ============================================================
// Refresh tokens
// ============================================================

type memoryTokens struct {
	s *memoryStore
}

func (r *memoryTokens) Create(ctx context.Context, token *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextTokenID++
	token.ID = r.s.nextTokenID
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	cp := *token
	r.s.tokens[token.ID] = &cp
	return nil
}

func (r *memoryTokens) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, token := range r.s.tokens {
		if token.TokenHash == tokenHash {
			cp := *token
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryTokens) Revoke(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if token, ok := r.s.tokens[id]; ok && token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (r *memoryTokens) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, token := range r.s.tokens {
		if token.TokenHash == tokenHash && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *memoryTokens) RevokeAllBySubject(ctx context.Context, subjectType string, subjectID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, token := range r.s.tokens {
		if token.SubjectType == subjectType && token.SubjectID == subjectID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *memoryTokens) DeleteExpired(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, token := range r.s.tokens {
		if token.IsExpired() {
			delete(r.s.tokens, id)
		}
	}
	return nil
}
