package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Standard five-field cron syntax plus descriptors such as "@hourly"
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCronSchedule checks that schedule can be parsed.
func ValidateCronSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// GetNextRunTime calculates when the schedule fires next after now.
func GetNextRunTime(schedule string, now time.Time) (time.Time, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now), nil
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *", "@hourly":
		return "Every hour at :00"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *", "@daily", "@midnight":
		return "Daily at midnight"
	case "0 0 * * 0", "@weekly":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// RebuildTrigger requests periodic rebuilds, so books whose source page could
// not be fetched are retried without touching the record file.
type RebuildTrigger struct {
	schedule string
}

// NewRebuildTrigger creates a trigger for the given cron schedule.
func NewRebuildTrigger(schedule string) (*RebuildTrigger, error) {
	if err := ValidateCronSchedule(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return &RebuildTrigger{schedule: schedule}, nil
}

// Run schedules rebuild requests until ctx is done.
func (r *RebuildTrigger) Run(ctx context.Context, notify func(reason string)) error {
	c := cron.New(cron.WithParser(scheduleParser))

	if _, err := c.AddFunc(r.schedule, func() {
		notify("Scheduled rebuild")
	}); err != nil {
		return fmt.Errorf("failed to schedule rebuild job: %w", err)
	}

	c.Start()

	nextRun, _ := GetNextRunTime(r.schedule, time.Now())
	log.Printf("Rebuild scheduler: started with schedule '%s' (%s). Next run: %v",
		r.schedule,
		GetCronDescription(r.schedule),
		nextRun)

	<-ctx.Done()

	// Stop accepting new jobs and wait for a running notify to return
	stopCtx := c.Stop()
	<-stopCtx.Done()

	log.Printf("Rebuild scheduler: stopped")
	return nil
}
