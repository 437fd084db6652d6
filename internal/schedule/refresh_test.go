package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pilemap/internal/storage/sqlite"
	"pilemap/internal/summary"
)

type countingBoard struct {
	mu    sync.Mutex
	calls int
	sum   summary.Summary
}

func (b *countingBoard) Refresh(context.Context) summary.Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.sum
}

func (b *countingBoard) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, title string, _ summary.Summary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	return n.err
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.titles)
}

// everySchedule fires at a fixed short interval.
type everySchedule time.Duration

func (e everySchedule) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func TestJobRunRecordsAndNotifies(t *testing.T) {
	db, err := sqlite.InitDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer db.Close()

	board := &countingBoard{sum: summary.Summary{Total: 2, Completed: 1, Pending: 1}}
	notifier := &recordingNotifier{}
	job := &Job{Board: board, History: db, Notifier: notifier, Title: "Sheet1"}

	job.Run(context.Background(), SourceManual)
	if notifier.Count() != 0 {
		t.Fatal("manual refresh must not post to Slack")
	}
	got := job.Run(context.Background(), SourceScheduled)
	if got != board.sum {
		t.Fatalf("unexpected summary %+v", got)
	}
	if notifier.Count() != 1 || notifier.titles[0] != "Sheet1" {
		t.Fatalf("expected one notification titled Sheet1, got %v", notifier.titles)
	}

	snaps, err := sqlite.RecentSnapshots(db, 10)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	sources := map[string]bool{}
	for _, s := range snaps {
		sources[s.Source] = true
		if s.Summary.Total != 2 {
			t.Fatalf("unexpected snapshot summary %+v", s.Summary)
		}
	}
	if !sources[SourceManual] || !sources[SourceScheduled] {
		t.Fatalf("expected manual and scheduled snapshots, got %v", sources)
	}
}

func TestJobRunToleratesNotifierError(t *testing.T) {
	board := &countingBoard{}
	job := &Job{Board: board, Notifier: &recordingNotifier{err: errors.New("slack down")}}
	job.Run(context.Background(), SourceScheduled)
	if board.Calls() != 1 {
		t.Fatalf("expected one refresh, got %d", board.Calls())
	}
}

func TestStartDisabledAndInvalid(t *testing.T) {
	job := &Job{Board: &countingBoard{}}
	if err := Start(context.Background(), "  ", nil, job); err != nil {
		t.Fatalf("empty schedule should disable without error, got %v", err)
	}
	err := Start(context.Background(), "not a cron", nil, job)
	if err == nil || !strings.Contains(err.Error(), "refresh_schedule") {
		t.Fatalf("expected refresh_schedule error, got %v", err)
	}
}

func TestLoopRefreshesUntilCancelled(t *testing.T) {
	board := &countingBoard{}
	job := &Job{Board: board}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		loop(ctx, everySchedule(5*time.Millisecond), time.UTC, job)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for board.Calls() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not refresh twice")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}
