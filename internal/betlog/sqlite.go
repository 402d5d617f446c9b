package betlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DateLayout is the day key used for every entry
const DateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS flagged_bets (
    bet_date    TEXT     NOT NULL,
    description TEXT     NOT NULL,
    recorded_at DATETIME NOT NULL,
    PRIMARY KEY (bet_date, description)
);
`

// SQLiteBetLog remembers which opportunity descriptions were flagged on which day
type SQLiteBetLog struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteBetLog opens (or creates) the bet log at path. Use ":memory:" in tests.
func NewSQLiteBetLog(path string, logger zerolog.Logger) (*SQLiteBetLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open bet log %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply bet log schema: %w", err)
	}

	return &SQLiteBetLog{
		db:     db,
		logger: logger.With().Str("component", "betlog").Logger(),
	}, nil
}

// Seen reports whether description was flagged on date or on the day before it
func (b *SQLiteBetLog) Seen(ctx context.Context, description string, date time.Time) (bool, error) {
	today := date.Format(DateLayout)
	yesterday := date.AddDate(0, 0, -1).Format(DateLayout)

	var n int
	err := b.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flagged_bets WHERE description = ? AND bet_date IN (?, ?)`,
		description, today, yesterday,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query bet log: %w", err)
	}
	return n > 0, nil
}

// Record appends description under date. Recording the same pair twice is a no-op.
func (b *SQLiteBetLog) Record(ctx context.Context, description string, date time.Time) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO flagged_bets (bet_date, description, recorded_at) VALUES (?, ?, ?)`,
		date.Format(DateLayout), description, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record bet: %w", err)
	}

	b.logger.Debug().
		Str("date", date.Format(DateLayout)).
		Str("description", description).
		Msg("recorded flagged bet")
	return nil
}

// Entries returns every description recorded for date, in insertion order
func (b *SQLiteBetLog) Entries(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT description FROM flagged_bets WHERE bet_date = ? ORDER BY rowid`,
		date.Format(DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list bet log: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan bet log row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close releases the database handle
func (b *SQLiteBetLog) Close() error {
	return b.db.Close()
}
