package services

import (
	"context"
	"log"

	"red-reserve/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs: a daily digest of open
// requests and cleanup of expired refresh tokens.
type CronService struct {
	store repositories.Store
	cron  *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(store repositories.Store) *CronService {
	return &CronService{
		store: store,
		cron:  cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// 08:30 daily: open-request digest
	s.cron.AddFunc("30 8 * * *", s.logOpenRequestDigest)
	// 03:00 daily: drop expired refresh tokens
	s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens)
	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

// logOpenRequestDigest logs how many requests are waiting per blood type
func (s *CronService) logOpenRequestDigest() {
	open, err := s.store.Requests().ListOpen(context.Background())
	if err != nil {
		log.Printf("❌ Open-request digest query error: %v", err)
		return
	}

	perType := make(map[string]int)
	for _, request := range open {
		perType[request.RequiredBloodType]++
	}
	log.Printf("🩸 Open requests: %d total, by type: %v", len(open), perType)
}

func (s *CronService) purgeExpiredTokens() {
	if err := s.store.RefreshTokens().DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Expired token cleanup error: %v", err)
	}
}
