package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"boma/internal/events"
)

// ReconcileSpec runs the rating reconciliation daily at 03:00 server time.
const ReconcileSpec = "0 0 3 * * *"

type Scheduler struct {
	cron      *cron.Cron
	publisher events.Publisher
	log       zerolog.Logger
}

func NewScheduler(publisher events.Publisher, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:      c,
		publisher: publisher,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.publisher == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(ReconcileSpec, s.enqueueReconcile); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron and waits up to five seconds for a running job.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ev := events.Event{Type: events.RatingsReconcile, OccurredAt: time.Now().UTC()}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Error().Err(err).Msg("enqueue ratings reconcile failed")
		return
	}
	s.log.Info().Msg("ratings reconcile enqueued")
}
