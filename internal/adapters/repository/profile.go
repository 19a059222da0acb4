package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/okian/pecounsel/internal/domain/model"
)

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`

// SQLiteProfileStore keeps the profile as JSON under ProfileKey in a sqlite
// key-value table.
type SQLiteProfileStore struct {
	db *sql.DB
}

// OpenSQLiteProfileStore opens (creating if needed) the sqlite file at path.
func OpenSQLiteProfileStore(ctx context.Context, path string) (*SQLiteProfileStore, error) {
	dsn := "file:" + path + "?mode=rwc&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrProfileStore, err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrProfileStore, err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: schema: %w", ErrProfileStore, err)
	}
	return &SQLiteProfileStore{db: db}, nil
}

// Load implements ProfileStore.
func (s *SQLiteProfileStore) Load(ctx context.Context) (model.StudentProfile, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, ProfileKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StudentProfile{}, ErrNotFound
	}
	if err != nil {
		return model.StudentProfile{}, fmt.Errorf("%w: load: %w", ErrProfileStore, err)
	}
	var p model.StudentProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.StudentProfile{}, fmt.Errorf("%w: decode: %w", ErrProfileStore, err)
	}
	return p, nil
}

// Save implements ProfileStore.
func (s *SQLiteProfileStore) Save(ctx context.Context, p model.StudentProfile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrProfileStore, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		ProfileKey, string(b), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: save: %w", ErrProfileStore, err)
	}
	return nil
}

// Close implements ProfileStore.
func (s *SQLiteProfileStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MemoryProfileStore keeps the profile in process memory.
type MemoryProfileStore struct {
	mu sync.RWMutex
	p  *model.StudentProfile
}

// NewMemoryProfileStore creates an empty store.
func NewMemoryProfileStore() *MemoryProfileStore { return &MemoryProfileStore{} }

// Load implements ProfileStore.
func (s *MemoryProfileStore) Load(_ context.Context) (model.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.p == nil {
		return model.StudentProfile{}, ErrNotFound
	}
	return cloneProfile(*s.p), nil
}

// Save implements ProfileStore.
func (s *MemoryProfileStore) Save(_ context.Context, p model.StudentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneProfile(p)
	s.p = &cp
	return nil
}

// Close implements ProfileStore.
func (s *MemoryProfileStore) Close() error { return nil }

func cloneProfile(p model.StudentProfile) model.StudentProfile {
	out := p
	if p.AcademicScore != nil {
		v := *p.AcademicScore
		out.AcademicScore = &v
	}
	out.SportsScores = maps.Clone(p.SportsScores)
	return out
}
