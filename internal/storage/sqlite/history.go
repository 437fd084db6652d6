package sqlite

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pilemap/internal/summary"
)

// Snapshot is one recorded summary. Only aggregate counts are stored.
type Snapshot struct {
	ID      int64           `json:"id"`
	TakenAt time.Time       `json:"taken_at"`
	Source  string          `json:"source"`
	Summary summary.Summary `json:"summary"`
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS summary_snapshots (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at  DATETIME NOT NULL,
		source    TEXT NOT NULL DEFAULT 'manual',
		total     INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		ongoing   INTEGER NOT NULL,
		pending   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summary_snapshots_taken_at ON summary_snapshots(taken_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func InsertSnapshot(db *sql.DB, takenAt time.Time, source string, s summary.Summary) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO summary_snapshots (taken_at, source, total, completed, ongoing, pending)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		takenAt, source, s.Total, s.Completed, s.Ongoing, s.Pending,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentSnapshots returns up to limit snapshots, newest first.
func RecentSnapshots(db *sql.DB, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT id, taken_at, source, total, completed, ongoing, pending
		 FROM summary_snapshots ORDER BY taken_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		var total, completed, ongoing, pending int
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.Source, &total, &completed, &ongoing, &pending); err != nil {
			return nil, err
		}
		s.Summary = rebuild(total, completed, ongoing, pending)
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func rebuild(total, completed, ongoing, pending int) summary.Summary {
	return summary.Summary{
		Total:        total,
		Completed:    completed,
		Ongoing:      ongoing,
		Pending:      pending,
		CompletedPct: summary.Percent(completed, total),
		OngoingPct:   summary.Percent(ongoing, total),
		PendingPct:   summary.Percent(pending, total),
	}
}
