// Package builds runs one document build end to end: assemble, validate,
// digest, archive, index and log.
package builds

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"substrates.ai/internal/persistence/archive"
	"substrates.ai/internal/persistence/indexdb"
	persistlog "substrates.ai/internal/persistence/log"
	"substrates.ai/internal/protocol"
	"substrates.ai/internal/sim/catalogs"
	"substrates.ai/internal/sim/substrate"
)

type Options struct {
	Assembler *substrate.Assembler

	// ArchiveDir is where documents are written; empty disables archiving.
	ArchiveDir string
	Index      indexdb.Index
	BuildLog   *persistlog.BuildLogger
	// Mirror receives every archived file (document and meta).
	Mirror Mirror
	Logger *log.Logger

	// StrictRoles rejects roles outside the config's valid roles instead of
	// ignoring them.
	StrictRoles bool
}

type Mirror interface {
	Enqueue(localPath string)
}

type Result struct {
	BuildID     string
	Document    substrate.Document
	Digests     catalogs.Digests
	ArchivePath string
	Elapsed     time.Duration
}

type Stats struct {
	OK      int64
	Failed  int64
	LastMS  float64
	Players int64
}

type Service struct {
	opts   Options
	config substrate.Config
	newID  func() string

	ok       atomic.Int64
	failed   atomic.Int64
	players  atomic.Int64
	lastNano atomic.Int64
}

func New(opts Options) (*Service, error) {
	if opts.Assembler == nil {
		a, err := substrate.Default()
		if err != nil {
			return nil, err
		}
		opts.Assembler = a
	}
	return &Service{
		opts:   opts,
		config: opts.Assembler.Config(),
		newID:  func() string { return uuid.NewString() },
	}, nil
}

func (s *Service) Assembler() *substrate.Assembler { return s.opts.Assembler }
func (s *Service) Config() substrate.Config        { return s.config }

// Build assembles a document for len(roles) players. source tags the log
// and index entries ("ws", "http", "cli").
func (s *Service) Build(ctx context.Context, source string, roles []string) (Result, error) {
	start := time.Now()
	res, err := s.build(ctx, roles)
	res.Elapsed = time.Since(start)
	s.lastNano.Store(int64(res.Elapsed))

	entry := persistlog.BuildLogEntry{
		BuildID:    res.BuildID,
		Source:     source,
		Roles:      roles,
		NumPlayers: len(roles),
		Digest:     res.Digests.Document,
		Archive:    res.ArchivePath,
	}
	if err != nil {
		s.failed.Add(1)
		entry.ErrorCode = protocol.CodeFor(err)
		entry.Error = err.Error()
		s.logf("build %s failed source=%s players=%d: %v", res.BuildID, source, len(roles), err)
	} else {
		s.ok.Add(1)
		s.players.Add(int64(len(roles)))
		s.logf("build %s source=%s players=%d digest=%.12s took=%s", res.BuildID, source, len(roles), res.Digests.Document, res.Elapsed)
		if s.opts.Index != nil {
			s.opts.Index.RecordBuild(indexdb.BuildRecord{
				BuildID:     res.BuildID,
				LevelName:   res.Document.LevelName,
				NumPlayers:  res.Document.NumPlayers,
				Digest:      res.Digests.Document,
				ArchivePath: res.ArchivePath,
				Source:      source,
			})
		}
	}
	if lerr := s.opts.BuildLog.WriteBuild(entry); lerr != nil {
		s.logf("build log: %v", lerr)
	}
	return res, err
}

func (s *Service) build(ctx context.Context, roles []string) (Result, error) {
	res := Result{BuildID: s.newID()}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if s.opts.StrictRoles {
		if err := s.config.CheckRoles(roles); err != nil {
			return res, err
		}
	}
	doc, err := s.opts.Assembler.Build(roles, s.config)
	if err != nil {
		return res, err
	}
	if err := protocol.ValidateDocument(doc); err != nil {
		return res, err
	}
	digests, err := catalogs.Digest(doc)
	if err != nil {
		return res, err
	}
	res.Document = doc
	res.Digests = digests

	if s.opts.ArchiveDir != "" {
		path, _, err := archive.ArchiveBuild(s.opts.ArchiveDir, res.BuildID, doc, digests)
		if err != nil {
			return res, fmt.Errorf("archive: %w", err)
		}
		res.ArchivePath = path
		if s.opts.Mirror != nil {
			s.opts.Mirror.Enqueue(path)
			s.opts.Mirror.Enqueue(archive.MetaPath(path))
		}
	}
	return res, nil
}

// Stats reports counters since the service started.
func (s *Service) Stats() Stats {
	return Stats{
		OK:      s.ok.Load(),
		Failed:  s.failed.Load(),
		LastMS:  float64(s.lastNano.Load()) / float64(time.Millisecond),
		Players: s.players.Load(),
	}
}

// DefaultRoles returns n copies of the default role.
func DefaultRoles(n int) []string {
	roles := make([]string, n)
	for i := range roles {
		roles[i] = substrate.DefaultRole
	}
	return roles
}

func (s *Service) logf(format string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.Printf(format, args...)
	}
}
