package indexdb

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// BuildRecord is one indexed document build.
type BuildRecord struct {
	BuildID     string
	LevelName   string
	NumPlayers  int
	Digest      string
	ArchivePath string
	Source      string
	CreatedAt   string
}

// Index stores build records. RecordBuild may be asynchronous; records are
// durable once Close returns.
type Index interface {
	RecordBuild(r BuildRecord)
	RecentBuilds(ctx context.Context, limit int) ([]BuildRecord, error)
	Close() error
}

// Open selects a backend by name: "sqlite" (dsn is a file path, default
// dataDir/index/builds.sqlite), "postgres" (dsn is a connection string) or
// "none". A nil Index with nil error means indexing is disabled.
func Open(backend, dsn, dataDir string) (Index, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = "sqlite"
	}
	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		if strings.TrimSpace(dsn) == "" {
			dsn = filepath.Join(dataDir, "index", "builds.sqlite")
		}
		return OpenSQLite(dsn)
	case "postgres", "postgresql":
		if strings.TrimSpace(dsn) == "" {
			return nil, fmt.Errorf("index backend postgres needs a dsn")
		}
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", backend)
	}
}
