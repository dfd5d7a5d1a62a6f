// Package journal keeps an optional sqlite log of delivery attempts for the status API.
// It is write-only from the pipeline's point of view and never consulted for dedup,
// so restarting the process still starts with an empty dedup cache.
package journal

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/umputun/feedwatch/pkg/domain"
)

//go:embed schema.sql
var schema string

// errCritical stops retries for errors other than sqlite lock contention
var errCritical = errors.New("critical journal error")

// Journal records delivery attempts in sqlite
type Journal struct {
	db  *sqlx.DB
	now func() time.Time
}

// Delivery is a single recorded send attempt
type Delivery struct {
	ID          int64     `db:"id" json:"id"`
	Key         string    `db:"dedup_key" json:"key"`
	Source      string    `db:"source" json:"source"`
	Link        string    `db:"link" json:"link"`
	Title       string    `db:"title" json:"title"`
	Tier        string    `db:"tier" json:"tier"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
	SentAt      time.Time `db:"sent_at" json:"sent_at"`
	Error       string    `db:"error" json:"error,omitempty"`
}

// Counts holds totals of recorded attempts
type Counts struct {
	Sent   int64 `db:"sent" json:"sent"`
	Failed int64 `db:"failed" json:"failed"`
}

// New opens (or creates) the journal database at path
func New(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("empty journal path")
	}
	conn, err := sqlx.Open("sqlite", "file:"+path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// single writer, avoids SQLITE_BUSY between the pipeline and status readers
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &Journal{db: conn, now: time.Now}, nil
}

// Record stores a send attempt for item, sendErr is nil for successful sends
func (j *Journal) Record(ctx context.Context, item domain.Item, sendErr error) error {
	d := Delivery{
		Key:         item.Key(),
		Source:      item.Source,
		Link:        item.Link,
		Title:       item.Title,
		Tier:        item.Tier.String(),
		PublishedAt: item.PublishedAt.UTC(),
		SentAt:      j.timestamp(),
	}
	if sendErr != nil {
		d.Error = sendErr.Error()
	}

	query := `INSERT INTO deliveries (dedup_key, source, link, title, tier, published_at, sent_at, error)
		VALUES (:dedup_key, :source, :link, :title, :tier, :published_at, :sent_at, :error)`

	return j.retry(ctx, func() error {
		if _, err := j.db.NamedExecContext(ctx, query, d); err != nil {
			return j.classify(fmt.Errorf("insert delivery: %w", err))
		}
		return nil
	})
}

// Recent returns up to limit latest attempts, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	var res []Delivery
	query := `SELECT id, dedup_key, source, link, title, tier, published_at, sent_at, error
		FROM deliveries ORDER BY id DESC LIMIT ?`
	if err := j.db.SelectContext(ctx, &res, query, limit); err != nil {
		return nil, fmt.Errorf("select deliveries: %w", err)
	}
	return res, nil
}

// Counts returns totals of successful and failed attempts
func (j *Journal) Counts(ctx context.Context) (Counts, error) {
	var res Counts
	query := `SELECT
			COALESCE(SUM(CASE WHEN error = '' THEN 1 ELSE 0 END), 0) AS sent,
			COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0) AS failed
		FROM deliveries`
	if err := j.db.GetContext(ctx, &res, query); err != nil {
		return Counts{}, fmt.Errorf("count deliveries: %w", err)
	}
	return res, nil
}

// Cleanup removes attempts older than retention and returns how many were removed
func (j *Journal) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := j.timestamp().Add(-retention)
	var removed int64
	err := j.retry(ctx, func() error {
		res, err := j.db.ExecContext(ctx, "DELETE FROM deliveries WHERE sent_at < ?", cutoff)
		if err != nil {
			return j.classify(fmt.Errorf("delete deliveries: %w", err))
		}
		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("%w: rows affected: %w", errCritical, err)
		}
		return nil
	})
	return removed, err
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// timestamp is the current time in UTC truncated to seconds, so stored values compare as text
func (j *Journal) timestamp() time.Time {
	return j.now().UTC().Truncate(time.Second)
}

func (j *Journal) retry(ctx context.Context, fn func() error) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, fn, errCritical)
}

// classify marks everything except lock contention as critical
func (j *Journal) classify(err error) error {
	if isLockError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", errCritical, err)
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}
