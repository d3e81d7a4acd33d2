package services

import (
	"context"
	"errors"
	"log"
	"time"

	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/core/domain"
	"red-reserve/internal/core/eligibility"

	"gorm.io/gorm"
)

// LifecycleService owns the request state transitions: a donor accepting
// a request and a hospital fulfilling one. Every transition is atomic
// with respect to concurrent calls.
type LifecycleService struct {
	store repositories.Store
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(store repositories.Store) *LifecycleService {
	return &LifecycleService{store: store}
}

// Accept records a donor's acceptance of a request as of now.
//
// The cooldown check and the cooldown write are a single conditional
// update, so two concurrent accepts by the same donor cannot both pass;
// the donor mutation and the response append share one transaction, so
// a donor's cooldown is never consumed without the hospital seeing the
// response.
func (s *LifecycleService) Accept(ctx context.Context, donorID uint, requestID string, now time.Time) error {
	donor, err := s.store.Donors().GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDonorNotFound
		}
		return err
	}
	if !eligibility.IsProfileComplete(donor) {
		return domain.ErrProfileIncomplete
	}

	// Early check for a friendly error before touching anything; the
	// conditional update below remains the authoritative guard.
	if until, active := eligibility.CooldownRemaining(donor.Profile, now); active {
		return domain.NewCooldownActiveError(until)
	}

	request, err := s.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRequestNotFound
		}
		return err
	}

	hospitalName := request.Hospital.Name
	cutoff := now.AddDate(0, 0, -eligibility.CooldownDays)

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		claimed, err := tx.Donors().ClaimDonation(ctx, donorID, now, cutoff, hospitalName)
		if err != nil {
			return err
		}
		if !claimed {
			// Lost the race to a concurrent accept. Re-read for the
			// exact cooldown end; nothing has been written by this call.
			fresh, err := tx.Donors().GetByID(ctx, donorID)
			if err != nil {
				return err
			}
			if until, active := eligibility.CooldownRemaining(fresh.Profile, now); active {
				return domain.NewCooldownActiveError(until)
			}
			return domain.ErrForbidden
		}
		return tx.Requests().AppendResponse(ctx, requestID, donor.Email)
	})
	if err != nil {
		return err
	}

	log.Printf("🩸 Donor %s accepted request %s (%s)", donor.Email, requestID, hospitalName)
	return nil
}

// Fulfill marks a request fulfilled. Fulfilling an already fulfilled
// request succeeds without side effects; the transition is one-way. Any
// authenticated hospital may fulfill any request, including another
// hospital's.
func (s *LifecycleService) Fulfill(ctx context.Context, requestID string) error {
	request, err := s.store.Requests().GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRequestNotFound
		}
		return err
	}
	if request.Fulfilled {
		return nil
	}

	if err := s.store.Requests().MarkFulfilled(ctx, requestID); err != nil {
		return err
	}

	log.Printf("✅ Request %s fulfilled (%s)", requestID, request.Hospital.Name)
	return nil
}
