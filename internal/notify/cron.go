package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a 5-field cron expression.
func ValidateSchedule(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("notify: invalid schedule %q: %w", expr, err)
	}
	return nil
}

// SendDigest builds the current digest and posts it. It reports whether
// anything was sent.
func SendDigest(ctx context.Context, db *gorm.DB, n Notifier) (bool, error) {
	d, err := BuildDigest(db.WithContext(ctx), time.Now())
	if err != nil {
		return false, err
	}
	if d == nil {
		return false, nil
	}
	if err := n.Notify(ctx, FormatDigest(d)); err != nil {
		return false, err
	}
	return true, nil
}

// ScheduleDigest posts the digest on the given schedule until ctx is
// cancelled. The returned channel closes once the scheduler has stopped.
func ScheduleDigest(ctx context.Context, db *gorm.DB, n Notifier, schedule string, log *slog.Logger) (<-chan struct{}, error) {
	if log == nil {
		log = slog.Default()
	}
	c := cron.New(cron.WithParser(cronParser))
	_, err := c.AddFunc(schedule, func() {
		sent, err := SendDigest(ctx, db, n)
		if err != nil {
			log.Error("digest failed", "error", err)
			return
		}
		log.Info("digest run", "sent", sent)
	})
	if err != nil {
		return nil, fmt.Errorf("notify: schedule digest %q: %w", schedule, err)
	}

	c.Start()
	log.Info("digest scheduled", "schedule", schedule)

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return done, nil
}
