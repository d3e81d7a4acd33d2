package eligibility

import (
	"testing"
	"time"

	"red-reserve/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func donorWithGroup(group string) *models.Donor {
	return &models.Donor{
		ID:    1,
		Email: "donor@example.com",
		Profile: &models.DonorProfile{
			DonorID:    1,
			FirstName:  "Asha",
			LastName:   "Rao",
			BloodGroup: group,
		},
	}
}

func TestIsProfileComplete(t *testing.T) {
	assert.False(t, IsProfileComplete(nil))
	assert.False(t, IsProfileComplete(&models.Donor{}))
	assert.False(t, IsProfileComplete(&models.Donor{Profile: &models.DonorProfile{}}))
	assert.True(t, IsProfileComplete(donorWithGroup("O+")))
}

func TestCooldownRemaining(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no profile", func(t *testing.T) {
		_, active := CooldownRemaining(nil, now)
		assert.False(t, active)
	})

	t.Run("no prior donation", func(t *testing.T) {
		_, active := CooldownRemaining(&models.DonorProfile{}, now)
		assert.False(t, active)
	})

	t.Run("window elapsed", func(t *testing.T) {
		last := now.AddDate(0, 0, -20)
		_, active := CooldownRemaining(&models.DonorProfile{LastDonationDate: &last}, now)
		assert.False(t, active)
	})

	t.Run("window active", func(t *testing.T) {
		last := now.AddDate(0, 0, -5)
		end, active := CooldownRemaining(&models.DonorProfile{LastDonationDate: &last}, now)
		require.True(t, active)
		assert.Equal(t, last.AddDate(0, 0, 14), end)
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		// Exactly 14 days later the donor is eligible again
		last := now.AddDate(0, 0, -14)
		_, active := CooldownRemaining(&models.DonorProfile{LastDonationDate: &last}, now)
		assert.False(t, active)
	})
}

func TestCompatibility(t *testing.T) {
	assert.True(t, IsCompatible("O+", []string{"O+", "O-"}, "O+"))
	assert.False(t, IsCompatible("AB+", []string{"AB+"}, "O+"))

	// Required-type equality alone is enough
	assert.True(t, IsCompatible("O+", []string{"A+"}, "O+"))
	// Eligible-set membership alone is enough
	assert.True(t, IsCompatible("A+", []string{"A+", "O+"}, "O+"))

	// Case-insensitive on both sides
	assert.True(t, MatchesRequired("o+", "O+"))
	assert.True(t, MatchesEligible([]string{"ab-"}, "AB-"))
	assert.False(t, MatchesEligible([]string{"AB+"}, "AB-"))
}

func TestMatchingOpenRequests(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	requests := []*models.BloodRequest{
		{ID: "c", RequiredBloodType: "O+", CreatedAt: base.AddDate(0, 0, 2)},
		{ID: "a", RequiredBloodType: "O+", CreatedAt: base},
		{ID: "b", RequiredBloodType: "AB+", EligibleBloodTypes: []string{"AB+"}, CreatedAt: base.AddDate(0, 0, 1)},
		{ID: "d", RequiredBloodType: "O+", CreatedAt: base.AddDate(0, 0, 3), Fulfilled: true},
		{ID: "e", RequiredBloodType: "B-", EligibleBloodTypes: []string{"B-", "O+"}, CreatedAt: base.AddDate(0, 0, 4)},
	}

	t.Run("filters and orders by creation time", func(t *testing.T) {
		matched := MatchingOpenRequests(donorWithGroup("O+"), requests)
		require.Len(t, matched, 3)
		assert.Equal(t, "a", matched[0].ID)
		assert.Equal(t, "c", matched[1].ID)
		assert.Equal(t, "e", matched[2].ID)
	})

	t.Run("incomplete profile matches nothing", func(t *testing.T) {
		assert.Nil(t, MatchingOpenRequests(&models.Donor{}, requests))
	})
}
