package jobs

import (
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/events"
)

func TestReconcileSpecParses(t *testing.T) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	_, err := parser.Parse(ReconcileSpec)
	require.NoError(t, err)
}

func TestEnqueueReconcile(t *testing.T) {
	rec := &events.Recorder{}
	s := NewScheduler(rec, zerolog.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Len(t, s.cron.Entries(), 1)

	s.enqueueReconcile()
	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.RatingsReconcile, evs[0].Type)
	assert.False(t, evs[0].OccurredAt.IsZero())
}

func TestStartWithoutPublisher(t *testing.T) {
	s := NewScheduler(nil, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
	s.Stop()
}
