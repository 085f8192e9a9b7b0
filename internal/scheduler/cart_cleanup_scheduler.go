package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tiendita/tiendita-backend/internal/app/repository"
	"github.com/tiendita/tiendita-backend/pkg/logger"
)

// CartCleanupScheduler purges cart items that have been idle past the
// configured age. Abandoned carts would otherwise hold stale product
// references forever.
type CartCleanupScheduler struct {
	cron     *cron.Cron
	cartRepo repository.CartRepository
	schedule string
	maxAge   time.Duration
}

func NewCartCleanupScheduler(cartRepo repository.CartRepository, schedule string, maxAge time.Duration) *CartCleanupScheduler {
	return &CartCleanupScheduler{
		cron:     cron.New(),
		cartRepo: cartRepo,
		schedule: schedule,
		maxAge:   maxAge,
	}
}

func (s *CartCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		logger.Error("Failed to register cart cleanup job", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart cleanup scheduler started", map[string]interface{}{
		"schedule":     s.schedule,
		"max_item_age": s.maxAge.String(),
	})

	return nil
}

func (s *CartCleanupScheduler) Stop() {
	logger.Info("Stopping cart cleanup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cart cleanup scheduler stopped", nil)
}

func (s *CartCleanupScheduler) run() {
	cutoff := time.Now().Add(-s.maxAge)
	logger.Info("Starting scheduled cart cleanup", map[string]interface{}{
		"cutoff": cutoff.Format(time.RFC3339),
	})

	removed, err := s.cartRepo.DeleteStaleItems(cutoff)
	if err != nil {
		logger.Error("Failed to purge stale cart items", err)
		return
	}

	logger.Info("Cart cleanup finished", map[string]interface{}{
		"items_removed": removed,
	})
}
