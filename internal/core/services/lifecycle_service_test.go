package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"red-reserve/internal/adapters/persistence/models"
	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDonor creates a donor with a complete profile and the given last
// donation date
func seedDonor(t *testing.T, store repositories.Store, email string, lastDonation *time.Time) *models.Donor {
	t.Helper()
	ctx := context.Background()

	donor := &models.Donor{Email: email, Password: "hashed"}
	require.NoError(t, store.Donors().Create(ctx, donor))

	profile := &models.DonorProfile{
		DonorID:          donor.ID,
		FirstName:        "Asha",
		LastName:         "Rao",
		Phone:            "5550101",
		Pincode:          "560001",
		Gender:           "female",
		Age:              29,
		BloodGroup:       "O+",
		LastDonationDate: lastDonation,
	}
	require.NoError(t, store.Donors().SaveProfile(ctx, profile))

	donor.Profile = profile
	return donor
}

// seedRequest creates a hospital and an open request for it
func seedRequest(t *testing.T, store repositories.Store, hospitalName, requestID string) *models.Hospital {
	t.Helper()
	ctx := context.Background()

	hospital := &models.Hospital{
		Name:    hospitalName,
		Contact: "5550199",
		Pincode: "560002",
		Address: "12 Main Rd",
		Email:   fmt.Sprintf("%s@example.org", requestID),
	}
	require.NoError(t, store.Hospitals().Create(ctx, hospital))

	request := &models.BloodRequest{
		ID:                 requestID,
		HospitalID:         hospital.ID,
		RequiredBloodType:  "O+",
		EligibleBloodTypes: []string{"O+", "O-"},
		UnitsRequired:      2,
		Contact:            "5550199",
	}
	require.NoError(t, store.Requests().Create(ctx, request))
	return hospital
}

func TestAcceptSuccess(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	past := time.Now().AddDate(0, 0, -20)
	donor := seedDonor(t, store, "asha@example.com", &past)
	seedRequest(t, store, "City General", "req-1")

	now := time.Now()
	require.NoError(t, svc.Accept(ctx, donor.ID, "req-1", now))

	// Donor side: cooldown consumed, hospital recorded
	fresh, err := store.Donors().GetByID(ctx, donor.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.Profile.LastDonationDate)
	assert.True(t, fresh.Profile.LastDonationDate.Equal(now))
	assert.Equal(t, "City General", fresh.Profile.LastHospitalName)

	// Request side: response appended
	request, err := store.Requests().GetByID(ctx, "req-1")
	require.NoError(t, err)
	require.Len(t, request.Responses, 1)
	assert.Equal(t, "asha@example.com", request.Responses[0].DonorEmail)
}

func TestAcceptCooldownActive(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	last := time.Now().AddDate(0, 0, -5)
	donor := seedDonor(t, store, "asha@example.com", &last)
	seedRequest(t, store, "City General", "req-1")

	err := svc.Accept(ctx, donor.ID, "req-1", time.Now())

	var cooldown *domain.CooldownActiveError
	require.ErrorAs(t, err, &cooldown)
	assert.True(t, cooldown.Until.Equal(last.AddDate(0, 0, 14)))

	// No mutation on either record
	fresh, err := store.Donors().GetByID(ctx, donor.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Profile.LastDonationDate.Equal(last))
	assert.Empty(t, fresh.Profile.LastHospitalName)

	request, err := store.Requests().GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Empty(t, request.Responses)
}

func TestAcceptThenImmediateRetry(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	donor := seedDonor(t, store, "asha@example.com", nil)
	seedRequest(t, store, "City General", "req-1")
	seedRequest(t, store, "Mercy Hospital", "req-2")

	now := time.Now()
	require.NoError(t, svc.Accept(ctx, donor.ID, "req-1", now))

	err := svc.Accept(ctx, donor.ID, "req-2", now.Add(time.Minute))
	var cooldown *domain.CooldownActiveError
	require.ErrorAs(t, err, &cooldown)
	assert.True(t, cooldown.Until.Equal(now.AddDate(0, 0, 14)))

	request, err := store.Requests().GetByID(ctx, "req-2")
	require.NoError(t, err)
	assert.Empty(t, request.Responses)
}

func TestAcceptDonorNotFound(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	err := svc.Accept(context.Background(), 42, "req-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrDonorNotFound)
}

func TestAcceptProfileIncomplete(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	donor := &models.Donor{Email: "bare@example.com", Password: "hashed"}
	require.NoError(t, store.Donors().Create(ctx, donor))
	seedRequest(t, store, "City General", "req-1")

	err := svc.Accept(ctx, donor.ID, "req-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrProfileIncomplete)
}

func TestAcceptRequestNotFound(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	donor := seedDonor(t, store, "asha@example.com", nil)

	err := svc.Accept(ctx, donor.ID, "missing", time.Now())
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	// The donor's cooldown must not have been consumed
	fresh, err := store.Donors().GetByID(ctx, donor.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.Profile.LastDonationDate)
}

func TestFulfillIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	seedRequest(t, store, "City General", "req-1")

	require.NoError(t, svc.Fulfill(ctx, "req-1"))
	request, err := store.Requests().GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, request.Fulfilled)

	// Second fulfill succeeds without side effects
	require.NoError(t, svc.Fulfill(ctx, "req-1"))
	request, err = store.Requests().GetByID(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, request.Fulfilled)
}

func TestFulfillNotFound(t *testing.T) {
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	err := svc.Fulfill(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

// TestAcceptConcurrentSameDonor drives the cooldown race: the same donor
// accepting two different open requests at the same instant. Exactly one
// accept may win; the other must observe the now-active cooldown.
func TestAcceptConcurrentSameDonor(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	donor := seedDonor(t, store, "asha@example.com", nil)
	seedRequest(t, store, "City General", "req-1")
	seedRequest(t, store, "Mercy Hospital", "req-2")

	now := time.Now()
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, requestID := range []string{"req-1", "req-2"} {
		go func(i int, requestID string) {
			defer wg.Done()
			errs[i] = svc.Accept(ctx, donor.ID, requestID, now)
		}(i, requestID)
	}
	wg.Wait()

	var succeeded, blocked int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var cooldown *domain.CooldownActiveError
		require.ErrorAs(t, err, &cooldown)
		blocked++
	}
	assert.Equal(t, 1, succeeded, "exactly one accept must win")
	assert.Equal(t, 1, blocked, "the loser must see the cooldown")

	// Exactly one response exists across both requests
	total := 0
	for _, requestID := range []string{"req-1", "req-2"} {
		request, err := store.Requests().GetByID(ctx, requestID)
		require.NoError(t, err)
		total += len(request.Responses)
	}
	assert.Equal(t, 1, total)
}

// TestAcceptConcurrentDistinctDonors drives the append race: N donors
// accepting the same request at once must produce N responses with no
// lost appends.
func TestAcceptConcurrentDistinctDonors(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewLifecycleService(store)

	seedRequest(t, store, "City General", "req-1")

	const n = 8
	donors := make([]*models.Donor, n)
	for i := 0; i < n; i++ {
		donors[i] = seedDonor(t, store, fmt.Sprintf("donor%d@example.com", i), nil)
	}

	now := time.Now()
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Accept(ctx, donors[i].ID, "req-1", now)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "donor %d", i)
	}

	request, err := store.Requests().GetByID(ctx, "req-1")
	require.NoError(t, err)
	require.Len(t, request.Responses, n)

	seen := make(map[string]int)
	for _, resp := range request.Responses {
		seen[resp.DonorEmail]++
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, 1, seen[fmt.Sprintf("donor%d@example.com", i)])
	}
}
