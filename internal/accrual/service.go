package accrual

import (
	"context"
	"log"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"gamecafe-backend/config"
	"gamecafe-backend/internal/notification"
	"gamecafe-backend/internal/store"
)

// Service drives the periodic server-side accrual of open sessions and
// dispatches expiry alerts to the notification worker pool.
type Service struct {
	cfg        *config.Config
	store      store.Store
	workerPool *notification.WorkerPool
}

// NewService creates and initializes a new accrual service.
func NewService(cfg *config.Config, st store.Store) *Service {
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, st.DB(), &webpushOptions)

	return &Service{
		cfg:        cfg,
		store:      st,
		workerPool: workerPool,
	}
}

// Run starts the accrual loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Accrual.Enabled {
		log.Println("Accrual service is disabled. Not starting.")
		return
	}
	log.Println("Starting accrual service...")

	// Start the worker pool
	s.workerPool.Start(ctx)

	s.TickOnce(ctx)

	timer := time.NewTimer(s.cfg.Accrual.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Accrual service shutting down.")
			return
		case <-timer.C:
			s.TickOnce(ctx)
			timer.Reset(s.cfg.Accrual.Interval)
		}
	}
}

// TickOnce performs a single accrual cycle over all open sessions.
func (s *Service) TickOnce(ctx context.Context) {
	now := time.Now().UTC()

	expired, err := s.store.AccrueOpenSessions(ctx, now)
	if err != nil {
		log.Printf("Error accruing open sessions: %v", err)
		return
	}

	if len(expired) > 0 {
		log.Printf("Dispatching expiry notifications for %d sessions", len(expired))
		for _, job := range expired {
			s.workerPool.Dispatch(job)
		}
	}
}
