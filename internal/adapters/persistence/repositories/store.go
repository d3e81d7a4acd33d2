package repositories

import (
	"context"

	"gorm.io/gorm"
)

// gormStore implements Store on a GORM connection
type gormStore struct {
	db            *gorm.DB
	donors        DonorRepository
	hospitals     HospitalRepository
	requests      RequestRepository
	refreshTokens RefreshTokenRepository
}

// NewStore creates a Store backed by the given database connection
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:            db,
		donors:        NewDonorRepository(db),
		hospitals:     NewHospitalRepository(db),
		requests:      NewRequestRepository(db),
		refreshTokens: NewRefreshTokenRepository(db),
	}
}

func (s *gormStore) Donors() DonorRepository               { return s.donors }
func (s *gormStore) Hospitals() HospitalRepository         { return s.hospitals }
func (s *gormStore) Requests() RequestRepository           { return s.requests }
func (s *gormStore) RefreshTokens() RefreshTokenRepository { return s.refreshTokens }

// Transaction runs fn inside a database transaction. The store handed to
// fn is bound to the transaction; returning an error rolls everything
// back.
func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
