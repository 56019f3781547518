package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/llmcheck/visibility/internal/scan"
)

// Store owns all persistence for the scan engine. Scan rows are append-only:
// created once per fresh scan, never updated or deleted.
type Store struct {
	DB *sql.DB
}

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("not found")

// ScanRecord is one persisted scan-level row (no cells).
type ScanRecord struct {
	ID           string
	URL          string
	Industry     string
	TotalFound   int
	TotalQueries int
	ScannedAt    time.Time
}

// TrackedURL is a URL a user registered for scheduled rescans.
type TrackedURL struct {
	ID           string
	UserID       string
	URL          string
	Industry     string
	ScheduleCron string
	CreatedAt    time.Time
}

// User is an account row.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Premium      bool
}

// NewWithDSN opens a Postgres connection and verifies it.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

// SaveScan persists one scan-level row plus one child row per non-error cell.
// Errored cells are transient and never written back into history, so
// provider outages do not pollute trend data.
func (s *Store) SaveScan(ctx context.Context, out scan.Output) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
INSERT INTO scans (id, url, industry, total_found, total_queries, scanned_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, out.ID, out.NormalizedURL, nullableString(out.Industry), out.TotalFound, out.TotalQueries, out.ScannedAt.UTC()); err != nil {
		return err
	}

	for _, res := range out.Results {
		if res.Error {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
INSERT INTO scan_results (scan_id, model, prompt, found, snippet)
VALUES ($1,$2,$3,$4,$5)
`, out.ID, string(res.Model), res.Prompt, res.Found, nullableString(res.Snippet)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LatestScan returns the most recent persisted scan for the URL when its
// scanned_at falls within maxAge of now, with cells loaded. The boolean
// reports whether a fresh-enough scan existed.
func (s *Store) LatestScan(ctx context.Context, url string, maxAge time.Duration) (scan.Output, bool, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.DB.QueryRowContext(ctx, `
SELECT id, url, industry, total_found, total_queries, scanned_at
FROM scans
WHERE url=$1 AND scanned_at >= $2
ORDER BY scanned_at DESC
LIMIT 1
`, url, cutoff)

	var out scan.Output
	var industry sql.NullString
	if err := row.Scan(&out.ID, &out.NormalizedURL, &industry, &out.TotalFound, &out.TotalQueries, &out.ScannedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scan.Output{}, false, nil
		}
		return scan.Output{}, false, err
	}
	if industry.Valid {
		out.Industry = industry.String
	}

	results, err := s.scanResults(ctx, out.ID)
	if err != nil {
		return scan.Output{}, false, err
	}
	out.Results = results
	return out, true, nil
}

// scanResults loads the persisted cells for one scan in insertion order.
func (s *Store) scanResults(ctx context.Context, scanID string) ([]scan.VisibilityResult, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT model, prompt, found, snippet
FROM scan_results
WHERE scan_id=$1
ORDER BY id
`, scanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scan.VisibilityResult
	for rows.Next() {
		var res scan.VisibilityResult
		var model string
		var snippet sql.NullString
		if err := rows.Scan(&model, &res.Prompt, &res.Found, &snippet); err != nil {
			return nil, err
		}
		res.Model = scan.Model(model)
		if snippet.Valid {
			res.Snippet = snippet.String
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ScanHistory returns all persisted scan-level rows for the URL, oldest
// first. Consumers build the trend series directly from this order.
func (s *Store) ScanHistory(ctx context.Context, url string) ([]ScanRecord, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, url, industry, total_found, total_queries, scanned_at
FROM scans
WHERE url=$1
ORDER BY scanned_at ASC
`, url)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var industry sql.NullString
		if err := rows.Scan(&rec.ID, &rec.URL, &industry, &rec.TotalFound, &rec.TotalQueries, &rec.ScannedAt); err != nil {
			return nil, err
		}
		if industry.Valid {
			rec.Industry = industry.String
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LatestScanTime returns when the URL was last scanned, for scheduler due
// checks. Returns ErrNotFound when the URL has never been scanned.
func (s *Store) LatestScanTime(ctx context.Context, url string) (time.Time, error) {
	var ts time.Time
	err := s.DB.QueryRowContext(ctx, `
SELECT scanned_at FROM scans WHERE url=$1 ORDER BY scanned_at DESC LIMIT 1
`, url).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	return ts, err
}

// CreateUser inserts a new account with a bcrypt password hash.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	id := uuid.New().String()
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, premium)
VALUES ($1,$2,$3,false)
`, id, email, passwordHash)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetUserByEmail looks an account up for login.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.DB.QueryRowContext(ctx, `
SELECT id, email, password_hash, premium FROM users WHERE email=$1
`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Premium)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// SetPremium flips an account's premium flag.
func (s *Store) SetPremium(ctx context.Context, email string, premium bool) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE users SET premium=$1 WHERE email=$2`, premium, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTrackedURL registers a URL for scheduled rescans.
func (s *Store) CreateTrackedURL(ctx context.Context, userID, url, industry, scheduleCron string) (string, error) {
	id := uuid.New().String()
	if scheduleCron == "" {
		scheduleCron = "@daily"
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO tracked_urls (id, user_id, url, industry, schedule_cron)
VALUES ($1,$2,$3,$4,$5)
`, id, userID, url, nullableString(industry), scheduleCron)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListTrackedURLs returns one user's tracked URLs, newest first.
func (s *Store) ListTrackedURLs(ctx context.Context, userID string) ([]TrackedURL, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, url, industry, schedule_cron, created_at
FROM tracked_urls
WHERE user_id=$1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrackedURLs(rows)
}

// ListAllTrackedURLs returns every tracked URL, for the scheduler.
func (s *Store) ListAllTrackedURLs(ctx context.Context) ([]TrackedURL, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, url, industry, schedule_cron, created_at
FROM tracked_urls
ORDER BY created_at
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrackedURLs(rows)
}

// DeleteTrackedURL removes a user's tracked URL.
func (s *Store) DeleteTrackedURL(ctx context.Context, userID, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM tracked_urls WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func collectTrackedURLs(rows *sql.Rows) ([]TrackedURL, error) {
	var out []TrackedURL
	for rows.Next() {
		var rec TrackedURL
		var industry sql.NullString
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.URL, &industry, &rec.ScheduleCron, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if industry.Valid {
			rec.Industry = industry.String
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
