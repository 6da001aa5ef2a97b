package indexdb

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresIndex writes synchronously; it is meant for shared deployments
// where several servers report into one index.
type PostgresIndex struct {
	db *sql.DB
}

func OpenPostgres(dsn string) (*PostgresIndex, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		level_name TEXT NOT NULL,
		num_players INTEGER NOT NULL,
		digest TEXT NOT NULL,
		archive_path TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresIndex{db: db}, nil
}

func (p *PostgresIndex) RecordBuild(r BuildRecord) {
	if p == nil {
		return
	}
	created := time.Now().UTC()
	if r.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
			created = t
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = p.db.ExecContext(ctx, `INSERT INTO builds(build_id,level_name,num_players,digest,archive_path,source,created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (build_id) DO UPDATE SET digest=EXCLUDED.digest, archive_path=EXCLUDED.archive_path`,
		r.BuildID, r.LevelName, r.NumPlayers, r.Digest, r.ArchivePath, r.Source, created)
}

func (p *PostgresIndex) RecentBuilds(ctx context.Context, limit int) ([]BuildRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `SELECT build_id,level_name,num_players,digest,archive_path,source,created_at FROM builds ORDER BY created_at DESC, build_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BuildRecord
	for rows.Next() {
		var (
			r       BuildRecord
			created time.Time
		)
		if err := rows.Scan(&r.BuildID, &r.LevelName, &r.NumPlayers, &r.Digest, &r.ArchivePath, &r.Source, &created); err != nil {
			return nil, err
		}
		r.CreatedAt = created.UTC().Format(time.RFC3339Nano)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresIndex) Close() error { return p.db.Close() }
