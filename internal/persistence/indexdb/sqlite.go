package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan BuildRecord
	wg   sync.WaitGroup
	once sync.Once

	// mu guards closed and the send on ch against Close.
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan BuildRecord, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS builds (
			build_id TEXT PRIMARY KEY,
			level_name TEXT NOT NULL,
			num_players INTEGER NOT NULL,
			digest TEXT NOT NULL,
			archive_path TEXT NOT NULL,
			source TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_builds_created ON builds(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_builds_digest ON builds(digest);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Dropped reports records discarded because the writer fell behind.
func (s *SQLiteIndex) Dropped() int64 { return s.dropped.Load() }

func (s *SQLiteIndex) RecordBuild(r BuildRecord) {
	if s == nil {
		return
	}
	if r.CreatedAt == "" {
		r.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Archives and the build log remain the source of truth.
		s.dropped.Add(1)
	}
}

func (s *SQLiteIndex) loop() {
	insert, err := s.db.Prepare(`INSERT OR REPLACE INTO builds(build_id,level_name,num_players,digest,archive_path,source,created_at) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		for range s.ch {
			s.dropped.Add(1)
		}
		return
	}
	defer insert.Close()

	for r := range s.ch {
		if _, err := insert.Exec(r.BuildID, r.LevelName, r.NumPlayers, r.Digest, r.ArchivePath, r.Source, r.CreatedAt); err != nil {
			s.dropped.Add(1)
		}
	}
}

func (s *SQLiteIndex) RecentBuilds(ctx context.Context, limit int) ([]BuildRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT build_id,level_name,num_players,digest,archive_path,source,created_at FROM builds ORDER BY created_at DESC, build_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBuilds(rows)
}

func scanBuilds(rows *sql.Rows) ([]BuildRecord, error) {
	var out []BuildRecord
	for rows.Next() {
		var r BuildRecord
		if err := rows.Scan(&r.BuildID, &r.LevelName, &r.NumPlayers, &r.Digest, &r.ArchivePath, &r.Source, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
