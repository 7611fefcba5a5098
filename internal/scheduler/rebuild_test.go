package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCronSchedule(t *testing.T) {
	valid := []string{"0 * * * *", "*/15 * * * *", "0 0 * * 0", "@hourly", "@every 10m"}
	for _, schedule := range valid {
		assert.NoError(t, ValidateCronSchedule(schedule), schedule)
	}

	invalid := []string{"", "* * *", "61 * * * *", "every hour"}
	for _, schedule := range invalid {
		assert.Error(t, ValidateCronSchedule(schedule), schedule)
	}
}

func TestGetNextRunTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 25, 0, 0, time.UTC)

	next, err := GetNextRunTime("0 * * * *", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), next)

	_, err = GetNextRunTime("bogus", now)
	assert.Error(t, err)
}

func TestGetCronDescription(t *testing.T) {
	assert.Equal(t, "Every hour at :00", GetCronDescription("0 * * * *"))
	assert.Equal(t, "Daily at midnight", GetCronDescription("@daily"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", GetCronDescription("5 4 * * *"))
}

func TestNewRebuildTrigger_InvalidSchedule(t *testing.T) {
	_, err := NewRebuildTrigger("not a schedule")
	assert.Error(t, err)
}

func TestRebuildTrigger_Run(t *testing.T) {
	trigger, err := NewRebuildTrigger("@every 1s")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reasons := make(chan string, 8)
	result := make(chan error, 1)
	go func() {
		result <- trigger.Run(ctx, func(reason string) { reasons <- reason })
	}()

	select {
	case reason := <-reasons:
		assert.Equal(t, "Scheduled rebuild", reason)
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled rebuild was not requested")
	}

	cancel()
	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("rebuild trigger did not stop")
	}
}
