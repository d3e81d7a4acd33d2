package services

import (
	"context"
	"testing"
	"time"

	"red-reserve/internal/adapters/persistence/models"
	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHospital(t *testing.T, store repositories.Store, name, email string) *models.Hospital {
	t.Helper()
	hospital := &models.Hospital{
		Name: name, Contact: "5550400", Pincode: "560006",
		Address: "1 Hospital Rd", Email: email,
	}
	require.NoError(t, store.Hospitals().Create(context.Background(), hospital))
	return hospital
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewHospitalService(store)

	hospital := newHospital(t, store, "City General", "city@example.org")

	created, err := svc.CreateRequest(ctx, hospital.ID, &CreateRequestInput{
		BloodType:     "o+",
		EligibleTypes: []string{"o+", "o-"},
		Units:         3,
		Contact:       "5550400",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "City General", created.HospitalName)
	// Blood types normalized on write
	assert.Equal(t, "O+", created.RequiredBloodType)
	assert.Equal(t, []string{"O+", "O-"}, created.EligibleBloodTypes)
	assert.False(t, created.Fulfilled)

	_, err = svc.CreateRequest(ctx, 99, &CreateRequestInput{
		BloodType: "O+", EligibleTypes: []string{"O+"}, Units: 1, Contact: "x",
	})
	assert.ErrorIs(t, err, domain.ErrHospitalNotFound)
}

func TestHospitalRequestViews(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewHospitalService(store)

	mine := newHospital(t, store, "City General", "city@example.org")
	other := newHospital(t, store, "Mercy Hospital", "mercy@example.org")

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seed := func(id string, hospitalID uint, fulfilled bool, offset int) {
		require.NoError(t, store.Requests().Create(ctx, &models.BloodRequest{
			ID: id, HospitalID: hospitalID,
			RequiredBloodType: "O+", EligibleBloodTypes: []string{"O+"},
			UnitsRequired: 1, Contact: "5550400",
			Fulfilled: fulfilled, CreatedAt: base.AddDate(0, 0, offset),
		}))
	}
	seed("mine-open-2", mine.ID, false, 2)
	seed("mine-open-1", mine.ID, false, 1)
	seed("mine-done", mine.ID, true, 0)
	seed("other-open", other.ID, false, 3)

	open, err := svc.OpenRequests(ctx, mine.ID)
	require.NoError(t, err)
	require.Len(t, open, 2)
	// Oldest first
	assert.Equal(t, "mine-open-1", open[0].ID)
	assert.Equal(t, "mine-open-2", open[1].ID)

	history, err := svc.FulfilledRequests(ctx, mine.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "mine-done", history[0].ID)

	others, err := svc.OthersOpenRequests(ctx, mine.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "other-open", others[0].ID)
	assert.Equal(t, "Mercy Hospital", others[0].HospitalName)
}

func TestRequestResponders(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewHospitalService(store)

	seedRequest(t, store, "City General", "req-1")
	seedDonor(t, store, "asha@example.com", nil)
	seedDonor(t, store, "ravi@example.com", nil)

	require.NoError(t, store.Requests().AppendResponse(ctx, "req-1", "ravi@example.com"))
	require.NoError(t, store.Requests().AppendResponse(ctx, "req-1", "asha@example.com"))
	// The same donor responding again is history, not a duplicate to drop
	require.NoError(t, store.Requests().AppendResponse(ctx, "req-1", "ravi@example.com"))

	details, err := svc.RequestResponders(ctx, "req-1")
	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, "Asha Rao", details[1].Name)
	assert.Equal(t, "O+", details[0].BloodType)
	assert.Equal(t, details[0].Name, details[2].Name)

	_, err = svc.RequestResponders(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}
