package scheduler

import (
	"context"
	"errors"
	"testing"

	eventDto "anoa.com/wanderhub/internal/modules/event/dto"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAds struct {
	flushed, expired int
	err              error
}

func (f *fakeAds) FlushCounters(context.Context) (int, error) {
	f.flushed++
	return 2, f.err
}

func (f *fakeAds) DeactivateExpired(context.Context) (int64, error) {
	f.expired++
	return 1, f.err
}

type fakeImporter struct{ calls int }

func (f *fakeImporter) Import(context.Context) (*eventDto.ImportResponse, error) {
	f.calls++
	return &eventDto.ImportResponse{Feeds: 1, Inserted: 3}, nil
}

func TestRegister_RejectsBadSchedule(t *testing.T) {
	s := New(logger.Nop())

	err := s.Register(NewJob("broken", "not a cron line", func(context.Context) error { return nil }))
	assert.Error(t, err)
}

func TestDefaultJobs_RunByName(t *testing.T) {
	ads := &fakeAds{}
	importer := &fakeImporter{}
	s := New(logger.Nop())

	for _, job := range DefaultJobs(ads, importer, Schedules{
		AdFlush:     "@every 1m",
		AdExpiry:    "@daily",
		EventImport: "",
	}, logger.Nop()) {
		require.NoError(t, s.Register(job))
	}

	assert.Equal(t, []string{JobAdFlush, JobAdExpiry, JobEventImport}, s.Names())

	ctx := context.Background()
	require.NoError(t, s.RunByName(ctx, JobAdFlush))
	require.NoError(t, s.RunByName(ctx, JobAdExpiry))
	require.NoError(t, s.RunByName(ctx, JobEventImport))

	assert.Equal(t, 1, ads.flushed)
	assert.Equal(t, 1, ads.expired)
	assert.Equal(t, 1, importer.calls)

	assert.ErrorIs(t, s.RunByName(ctx, "missing"), apperror.ErrNotFound)
}

func TestRunByName_OnDemandJobHasDeadline(t *testing.T) {
	s := New(logger.Nop())
	var hasDeadline bool
	require.NoError(t, s.Register(NewJob("reindex", "", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})))

	require.NoError(t, s.RunByName(context.Background(), "reindex"))
	assert.True(t, hasDeadline)
}

func TestRunByName_PropagatesJobError(t *testing.T) {
	boom := errors.New("redis down")
	s := New(logger.Nop())
	for _, job := range DefaultJobs(&fakeAds{err: boom}, &fakeImporter{}, Schedules{}, logger.Nop()) {
		require.NoError(t, s.Register(job))
	}

	assert.ErrorIs(t, s.RunByName(context.Background(), JobAdFlush), boom)
}

func TestStartStop(t *testing.T) {
	s := New(logger.Nop())
	s.Start()
	s.Stop(context.Background())
}
