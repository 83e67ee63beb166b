// Package buildstate remembers what previous builds wrote so unchanged
// pages are not rewritten.
package buildstate

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sort"
	"sync"
	"time"

	"github.com/inful/mdfp"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// FileName is the store's file name inside the output directory.
const FileName = ".blogbuilder.db"

// Build is one finished build.
type Build struct {
	ID           string
	Started      time.Time
	Finished     time.Time
	Outcome      string
	PagesWritten int
	PagesSkipped int
}

// Store is a SQLite-backed record of output fingerprints and builds.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Fingerprint returns the content fingerprint of an output file.
func Fingerprint(path string, content []byte) string {
	return mdfp.CalculateFingerprintFromParts(path, string(content))
}

// Open opens or creates the store at dbPath. Use ":memory:" for a
// throwaway store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap(err, "open build state database").WithContext("path", dbPath).Build()
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, wrap(err, "initialize build state schema").WithContext("path", dbPath).Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		pages_written INTEGER NOT NULL,
		pages_skipped INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_finished ON builds(finished);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Fingerprints returns the recorded fingerprint of every output path.
func (s *Store) Fingerprints(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT path, fingerprint FROM pages")
	if err != nil {
		return nil, wrap(err, "query page fingerprints").Build()
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, fp string
		if err := rows.Scan(&p, &fp); err != nil {
			return nil, wrap(err, "scan page fingerprint").Build()
		}
		out[p] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "iterate page fingerprints").Build()
	}
	return out, nil
}

// Replace makes pages the complete set of recorded fingerprints for
// buildID. Paths missing from pages are forgotten and returned, sorted,
// so the caller can remove their files.
func (s *Store) Replace(ctx context.Context, buildID string, pages map[string]string) (stale []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap(err, "begin transaction").Build()
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT path FROM pages")
	if err != nil {
		return nil, wrap(err, "query pages").Build()
	}
	for rows.Next() {
		var p string
		if err = rows.Scan(&p); err != nil {
			_ = rows.Close()
			return nil, wrap(err, "scan page").Build()
		}
		if _, ok := pages[p]; !ok {
			stale = append(stale, p)
		}
	}
	if err = rows.Close(); err != nil {
		return nil, wrap(err, "close page rows").Build()
	}

	for _, p := range stale {
		if _, err = tx.ExecContext(ctx, "DELETE FROM pages WHERE path = ?", p); err != nil {
			return nil, wrap(err, "delete page").WithContext("path", p).Build()
		}
	}

	now := time.Now().Unix()
	for p, fp := range pages {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pages (path, fingerprint, build_id, updated) VALUES (?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET fingerprint = excluded.fingerprint, build_id = excluded.build_id, updated = excluded.updated
			WHERE pages.fingerprint <> excluded.fingerprint`,
			p, fp, buildID, now,
		)
		if err != nil {
			return nil, wrap(err, "upsert page").WithContext("path", p).Build()
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, wrap(err, "commit page fingerprints").Build()
	}
	sort.Strings(stale)
	return stale, nil
}

// RecordBuild stores a finished build.
func (s *Store) RecordBuild(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO builds (id, started, finished, outcome, pages_written, pages_skipped) VALUES (?, ?, ?, ?, ?, ?)",
		b.ID, b.Started.UnixMilli(), b.Finished.UnixMilli(), b.Outcome, b.PagesWritten, b.PagesSkipped,
	)
	if err != nil {
		return wrap(err, "insert build").WithContext("build_id", b.ID).Build()
	}
	return nil
}

// LastBuild returns the most recently finished build. ok is false when
// no build has been recorded.
func (s *Store) LastBuild(ctx context.Context) (b Build, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var started, finished int64
	err = s.db.QueryRowContext(ctx,
		"SELECT id, started, finished, outcome, pages_written, pages_skipped FROM builds ORDER BY finished DESC LIMIT 1",
	).Scan(&b.ID, &started, &finished, &b.Outcome, &b.PagesWritten, &b.PagesSkipped)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Build{}, false, nil
	}
	if err != nil {
		return Build{}, false, wrap(err, "query last build").Build()
	}
	b.Started = time.UnixMilli(started)
	b.Finished = time.UnixMilli(finished)
	return b, true, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func wrap(err error, msg string) *errors.ErrorBuilder {
	return errors.WrapError(err, errors.CategoryStore, msg)
}
