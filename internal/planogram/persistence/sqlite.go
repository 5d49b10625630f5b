package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// SQLite Repository
// ============================================================

// DefaultTTL is how long a draft stays restorable.
const DefaultTTL = 48 * time.Hour

var ErrNotFound = errors.New("draft not found")

type Repository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

type Option func(*Repository)

func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) { r.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New wraps an open database. Call Init before use.
func New(db *sql.DB, opts ...Option) *Repository {
	r := &Repository{db: db, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init applies the schema and drops drafts that expired while offline.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	n, err := r.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Infof("[DRAFTS] purged %d expired drafts", n)
	}
	return nil
}

// Save writes the draft, replacing any previous one for the layout.
func (r *Repository) Save(ctx context.Context, d Draft) error {
	if d.Timestamp == "" {
		d.Timestamp = r.now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", d.LayoutID, err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO drafts (layout_id, payload, saved_at)
        VALUES (?, ?, ?)
        ON CONFLICT(layout_id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
    `, d.LayoutID, string(payload), d.Timestamp)
	if err != nil {
		return fmt.Errorf("save draft %s: %w", d.LayoutID, err)
	}
	return nil
}

// Load returns ErrNotFound for missing drafts and for drafts older than the
// TTL, which are deleted on the way.
func (r *Repository) Load(ctx context.Context, layoutID string) (*Draft, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT payload, saved_at
        FROM drafts
        WHERE layout_id = ?
    `, layoutID)

	var payload, savedAt string
	if err := row.Scan(&payload, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load draft %s: %w", layoutID, err)
	}

	if r.expired(savedAt) {
		if err := r.Delete(ctx, layoutID); err != nil {
			return nil, err
		}
		log.Infof("[DRAFTS] %s expired, removed", layoutID)
		return nil, ErrNotFound
	}

	var d Draft
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", layoutID, err)
	}
	return &d, nil
}

// Delete removes the layout's draft, if any.
func (r *Repository) Delete(ctx context.Context, layoutID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE layout_id = ?`, layoutID); err != nil {
		return fmt.Errorf("delete draft %s: %w", layoutID, err)
	}
	return nil
}

// List returns live drafts, newest first.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT layout_id, saved_at
        FROM drafts
        WHERE saved_at >= ?
        ORDER BY saved_at DESC
    `, r.cutoff())
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		var savedAt string
		if err := rows.Scan(&s.LayoutID, &savedAt); err != nil {
			return nil, err
		}
		if s.SavedAt, err = time.Parse(time.RFC3339, savedAt); err != nil {
			return nil, fmt.Errorf("draft %s: bad timestamp: %w", s.LayoutID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE saved_at < ?`, r.cutoff())
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	return res.RowsAffected()
}

// RFC3339 in UTC sorts lexically, so cutoffs compare as strings.
func (r *Repository) cutoff() string {
	return r.now().Add(-r.ttl).UTC().Format(time.RFC3339)
}

func (r *Repository) expired(savedAt string) bool {
	t, err := time.Parse(time.RFC3339, savedAt)
	if err != nil {
		return true
	}
	return r.now().Sub(t) > r.ttl
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.Exec(string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// OpenSQLite opens (creating if needed) the sqlite file at dbPath.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
