// Package eligibility holds the pure decision rules for donor eligibility:
// the 14-day cooldown arithmetic and blood-type compatibility. Nothing in
// this package touches storage.
package eligibility

import (
	"sort"
	"strings"
	"time"

	"red-reserve/internal/adapters/persistence/models"
)

// CooldownDays is the number of calendar days a donor must wait between
// donations
const CooldownDays = 14

// IsProfileComplete reports whether the donor can take part in matching
// and accepts. A donor without a profile (or without a blood group) is
// invisible to eligibility queries.
func IsProfileComplete(donor *models.Donor) bool {
	return donor != nil && donor.Profile != nil && donor.Profile.BloodGroup != ""
}

// CooldownEnd returns the first instant a donor who donated at last may
// donate again. Calendar-day arithmetic, matching how the date is shown
// to the donor.
func CooldownEnd(last time.Time) time.Time {
	return last.AddDate(0, 0, CooldownDays)
}

// CooldownRemaining returns the cooldown end date and true while the
// donor's cooldown window is still running as of asOf. A donor with no
// prior donation has no cooldown.
func CooldownRemaining(profile *models.DonorProfile, asOf time.Time) (time.Time, bool) {
	if profile == nil || profile.LastDonationDate == nil {
		return time.Time{}, false
	}
	end := CooldownEnd(*profile.LastDonationDate)
	if asOf.Before(end) {
		return end, true
	}
	return time.Time{}, false
}

// NormalizeBloodType uppercases and trims a blood type so comparisons are
// case-insensitive
func NormalizeBloodType(bloodType string) string {
	return strings.ToUpper(strings.TrimSpace(bloodType))
}

// MatchesRequired reports whether the donor's blood group equals the
// request's required type
func MatchesRequired(required, donorGroup string) bool {
	return NormalizeBloodType(required) == NormalizeBloodType(donorGroup)
}

// MatchesEligible reports whether the donor's blood group appears in the
// request's eligible-types set
func MatchesEligible(eligible []string, donorGroup string) bool {
	group := NormalizeBloodType(donorGroup)
	for _, bloodType := range eligible {
		if NormalizeBloodType(bloodType) == group {
			return true
		}
	}
	return false
}

// IsCompatible reports whether the donor can serve the request: either
// their group equals the required type or it is listed among the eligible
// types. Requests are created with both a single required type and an
// explicit eligible set, so both match modes are supported.
func IsCompatible(required string, eligible []string, donorGroup string) bool {
	return MatchesRequired(required, donorGroup) || MatchesEligible(eligible, donorGroup)
}

// MatchingOpenRequests filters open requests down to those the donor is
// compatible with, ordered by creation time ascending (ties broken by ID
// so the order is deterministic). Donors without a complete profile match
// nothing.
func MatchingOpenRequests(donor *models.Donor, requests []*models.BloodRequest) []*models.BloodRequest {
	if !IsProfileComplete(donor) {
		return nil
	}
	group := donor.Profile.BloodGroup

	var matched []*models.BloodRequest
	for _, request := range requests {
		if request.Fulfilled {
			continue
		}
		if IsCompatible(request.RequiredBloodType, request.EligibleBloodTypes, group) {
			matched = append(matched, request)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched
}
