// Package sqlite provides the durable AlarmStore on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hamed0406/alarmcore/internal/domain"
	"github.com/hamed0406/alarmcore/internal/repo"
)

var _ repo.AlarmStore = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs the
// idempotent schema migration.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL for concurrent readers; SQLite allows one writer at a time.
	// modernc wants pragmas in _pragma=name(value) form.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alarms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hour INTEGER NOT NULL,
		minute INTEGER NOT NULL,
		label TEXT,
		enabled INTEGER DEFAULT 1,
		sound_ref TEXT,
		created_at INTEGER DEFAULT (strftime('%s','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_alarms_enabled ON alarms(enabled);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Insert(ctx context.Context, a *domain.Alarm) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO alarms (hour, minute, label, enabled, sound_ref, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.Hour, a.Minute, a.Label, boolToInt(a.Enabled), a.SoundRef, a.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert alarm: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert alarm id: %w", err)
	}
	a.ID = id
	return nil
}

func (s *Store) Update(ctx context.Context, a *domain.Alarm) error {
	// created_at is immutable; it is deliberately absent from the SET list.
	res, err := s.db.ExecContext(ctx,
		`UPDATE alarms SET hour = ?, minute = ?, label = ?, enabled = ?, sound_ref = ? WHERE id = ?`,
		a.Hour, a.Minute, a.Label, boolToInt(a.Enabled), a.SoundRef, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update alarm: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update alarm rows: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alarms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete alarm rows: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id int64) (*domain.Alarm, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, hour, minute, label, enabled, sound_ref, created_at FROM alarms WHERE id = ?`, id)
	a, err := scanAlarm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query alarm: %w", err)
	}
	return a, nil
}

func (s *Store) ListAll(ctx context.Context) ([]domain.Alarm, error) {
	return s.list(ctx,
		`SELECT id, hour, minute, label, enabled, sound_ref, created_at FROM alarms ORDER BY hour ASC, minute ASC, id ASC`)
}

func (s *Store) ListEnabled(ctx context.Context) ([]domain.Alarm, error) {
	return s.list(ctx,
		`SELECT id, hour, minute, label, enabled, sound_ref, created_at FROM alarms WHERE enabled = 1 ORDER BY hour ASC, minute ASC, id ASC`)
}

func (s *Store) list(ctx context.Context, query string) ([]domain.Alarm, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query alarms: %w", err)
	}
	defer rows.Close()

	var out []domain.Alarm
	for rows.Next() {
		a, err := scanAlarm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alarm: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlarm(row scanner) (*domain.Alarm, error) {
	var a domain.Alarm
	var label, soundRef sql.NullString
	var enabled int
	var createdAt int64
	if err := row.Scan(&a.ID, &a.Hour, &a.Minute, &label, &enabled, &soundRef, &createdAt); err != nil {
		return nil, err
	}
	a.Label = label.String
	a.SoundRef = soundRef.String
	a.Enabled = enabled != 0
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
