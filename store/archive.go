package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ftahirops/xtrend/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	id            TEXT PRIMARY KEY,
	ts_unix_ms    INTEGER NOT NULL,
	cpu           REAL NOT NULL,
	mem_used_gb   REAL NOT NULL,
	mem_total_gb  REAL NOT NULL,
	disk_used_gb  REAL NOT NULL,
	disk_total_gb REAL NOT NULL,
	net_rx_mbps   REAL NOT NULL,
	net_tx_mbps   REAL NOT NULL,
	load_score    REAL NOT NULL,
	level         TEXT NOT NULL,
	alerts        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS ticks_ts ON ticks (ts_unix_ms);
`

// Archive appends every tick to a SQLite database. It is write-mostly;
// nothing reads it back into the live history.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive at path.
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) Name() string { return "sqlite-archive" }

// Publish inserts rep as one row.
func (a *Archive) Publish(ctx context.Context, rep *model.Report) error {
	alerts, err := json.Marshal(rep.Alerts)
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}
	s := rep.Snapshot
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO ticks (id, ts_unix_ms, cpu, mem_used_gb, mem_total_gb, disk_used_gb,
			disk_total_gb, net_rx_mbps, net_tx_mbps, load_score, level, alerts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.Timestamp.UnixMilli(), s.CPUPercent, s.MemoryUsedGB, s.MemoryTotalGB,
		s.DiskUsedGB, s.DiskTotalGB, s.NetRxMBps, s.NetTxMBps, s.LoadScore,
		rep.Level().String(), string(alerts))
	if err != nil {
		return fmt.Errorf("insert tick %s: %w", rep.ID, err)
	}
	return nil
}

// Row is one archived tick.
type Row struct {
	ID       string
	Snapshot model.MetricSnapshot
	Level    model.AlertLevel
	Alerts   []model.Alert
}

// Recent returns the newest n rows, newest first.
func (a *Archive) Recent(ctx context.Context, n int) ([]Row, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, ts_unix_ms, cpu, mem_used_gb, mem_total_gb, disk_used_gb, disk_total_gb,
			net_rx_mbps, net_tx_mbps, load_score, level, alerts
		 FROM ticks ORDER BY ts_unix_ms DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query ticks: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r      Row
			ms     int64
			level  string
			alerts string
		)
		s := &r.Snapshot
		if err := rows.Scan(&r.ID, &ms, &s.CPUPercent, &s.MemoryUsedGB, &s.MemoryTotalGB,
			&s.DiskUsedGB, &s.DiskTotalGB, &s.NetRxMBps, &s.NetTxMBps, &s.LoadScore,
			&level, &alerts); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		s.Timestamp = time.UnixMilli(ms)
		if err := r.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("tick %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(alerts), &r.Alerts); err != nil {
			return nil, fmt.Errorf("tick %s alerts: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of archived ticks.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ticks: %w", err)
	}
	return n, nil
}
