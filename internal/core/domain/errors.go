package domain

import (
	"errors"
	"fmt"
	"time"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEmail     = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Donor errors
var (
	ErrDonorNotFound     = errors.New("donor not found")
	ErrProfileNotFound   = errors.New("donor profile not found")
	ErrProfileIncomplete = errors.New("donor profile incomplete")
	ErrInvalidGender     = errors.New("gender must be male or female")
)

// Hospital / request errors
var (
	ErrHospitalNotFound = errors.New("hospital not found")
	ErrRequestNotFound  = errors.New("blood request not found")
)

// CooldownActiveError is returned when a donor tries to accept a request
// before the 14-day donation cooldown has elapsed. Until is the first
// instant the donor may donate again.
type CooldownActiveError struct {
	Until time.Time
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("in cooldown until %s", e.Until.Format("Mon Jan 2 2006"))
}

// NewCooldownActiveError builds a cooldown error for the given end date
func NewCooldownActiveError(until time.Time) *CooldownActiveError {
	return &CooldownActiveError{Until: until}
}
