package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"pilemap/internal/config"
	"pilemap/internal/notify"
	"pilemap/internal/storage/sqlite"
	"pilemap/internal/summary"
)

const (
	SourceScheduled = "scheduled"
	SourceManual    = "manual"
	SourceStartup   = "startup"
)

type Refresher interface {
	Refresh(ctx context.Context) summary.Summary
}

// Job re-fetches the board, then records and announces the new summary.
// History and Notifier are optional.
type Job struct {
	Board    Refresher
	History  *sql.DB
	Notifier notify.Notifier
	Title    string
}

func (j *Job) Run(ctx context.Context, source string) summary.Summary {
	sum := j.Board.Refresh(ctx)

	if j.History != nil {
		if _, err := sqlite.InsertSnapshot(j.History, time.Now(), source, sum); err != nil {
			log.Printf("Error recording %s snapshot: %v", source, err)
		}
	}
	// Only scheduled refreshes are announced.
	if j.Notifier != nil && source == SourceScheduled {
		if err := j.Notifier.Notify(ctx, j.Title, sum); err != nil {
			log.Printf("Auto-refresh post error: %v", err)
		}
	}
	return sum
}

// Start parses a 5-field cron expression and refreshes on it until ctx is
// done. An empty expression disables the scheduler.
// Examples: "*/15 * * * *" (every 15 minutes), "0 7 * * 1-5" (weekdays 7am).
func Start(ctx context.Context, expr string, loc *time.Location, job *Job) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		log.Println("Auto-refresh disabled (refresh_schedule not set)")
		return nil
	}
	sched, err := config.ScheduleParser().Parse(expr)
	if err != nil {
		return fmt.Errorf("invalid refresh_schedule '%s': %w", expr, err)
	}
	if loc == nil {
		loc = time.Local
	}
	log.Printf("Auto-refresh scheduled (cron: %s)", expr)
	go loop(ctx, sched, loc, job)
	return nil
}

func loop(ctx context.Context, sched cron.Schedule, loc *time.Location, job *Job) {
	for {
		now := time.Now().In(loc)
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Debugf("Next auto-refresh at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		sum := job.Run(ctx, SourceScheduled)
		log.Printf("Auto-refresh complete: %s", summary.Format(sum))
	}
}
