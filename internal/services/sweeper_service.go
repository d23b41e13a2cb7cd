package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/venuebook/server/internal/models"
	"github.com/venuebook/server/internal/notify"
)

// SweeperService cancels confirmed bookings whose payment deadline
// lapsed without a completed payment. It is owned by the application
// lifecycle: main starts it at boot and stops it on shutdown. Actual
// cancellation latency is bounded by the sweep interval, not the
// deadline itself.
type SweeperService struct {
	bookings   models.BookingsRepo
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	cron       *cron.Cron
	interval   time.Duration
	batchSize  int64
	wg         sync.WaitGroup
}

func NewSweeperService(bookings models.BookingsRepo, dispatcher *notify.Dispatcher, interval time.Duration, logger *slog.Logger) *SweeperService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweeperService{
		bookings:   bookings,
		dispatcher: dispatcher,
		logger:     logger,
		cron:       cron.New(),
		interval:   interval,
		batchSize:  100,
	}
}

// Start schedules the recurring sweep and runs one immediately so a
// restart does not defer overdue cancellations by a full interval.
func (s *SweeperService) Start() error {
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("expiry sweeper started", "interval", s.interval.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(context.Background())
	}()
	return nil
}

// Stop halts the schedule and waits for in-flight sweeps to finish,
// the boot-time one included.
func (s *SweeperService) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("expiry sweeper stopped")
}

// RunOnce performs a single sweep and returns how many bookings were
// cancelled. Per-booking failures are logged and never abort the
// batch; a booking paid between the scan and the conditional update is
// skipped.
func (s *SweeperService) RunOnce(ctx context.Context) int {
	now := time.Now()
	expired, err := s.bookings.FindExpired(ctx, now, s.batchSize)
	if err != nil {
		s.logger.Error("expiry sweep query failed", "error", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}
	s.logger.Info("expiry sweep found candidates", "count", len(expired))

	cancelled := 0
	for _, booking := range expired {
		updated, err := s.bookings.ExpireBooking(ctx, booking.ID, now)
		if errors.Is(err, models.ErrConflict) {
			// Lost the race to a payment or cancel; nothing to do.
			continue
		}
		if err != nil {
			s.logger.Error("failed to expire booking", "booking_id", booking.ID.Hex(), "error", err)
			continue
		}
		cancelled++

		s.dispatcher.Dispatch(notify.TemplateBookingExpired, updated.CustomerEmail, map[string]any{
			"booking_id": updated.ID.Hex(),
			"event_date": updated.EventDate,
			"reason":     updated.CancellationReason,
		})
		s.logger.Info("booking auto-cancelled", "booking_id", updated.ID.Hex())
	}
	return cancelled
}
