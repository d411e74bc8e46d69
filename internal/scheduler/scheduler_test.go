package scheduler

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(nil, quietLogger())
	assert.False(t, s.IsRunning())

	// Nothing scheduled yet.
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no jobs scheduled")

	require.NoError(t, s.ScheduleRatingRefresh("0 3 * * 1"))
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	next := s.GetNextRun()
	assert.False(t, next.IsZero())
	assert.True(t, next.After(time.Now().UTC().Add(-time.Minute)))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// Stopping twice is harmless.
	require.NoError(t, s.Stop())
}

func TestSchedulerRejectsInvalidCronExpression(t *testing.T) {
	s := NewScheduler(nil, quietLogger())
	err := s.ScheduleRatingRefresh("not a schedule")
	require.Error(t, err)
}

func TestSchedulerRejectsDoubleStart(t *testing.T) {
	s := NewScheduler(nil, quietLogger())
	require.NoError(t, s.ScheduleRatingRefresh("@hourly"))
	require.NoError(t, s.Start())
	defer s.Stop()

	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	err = s.ScheduleRatingRefresh("@daily")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "while scheduler is running")
}

func TestSchedulerNextRunBeforeStartIsZero(t *testing.T) {
	s := NewScheduler(nil, quietLogger())
	require.NoError(t, s.ScheduleRatingRefresh("@hourly"))
	assert.True(t, s.GetNextRun().IsZero())
}
