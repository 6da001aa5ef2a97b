package r2s3

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Stats struct {
	QueueDepth    int
	QueueCapacity int
	Enqueued      uint64
	Dropped       uint64
	Uploaded      uint64
	Failed        uint64
}

// Mirror uploads archived files in the background. Object keys are the
// file path relative to baseDir, under prefix.
type Mirror struct {
	client  *Client
	baseDir string
	prefix  string
	logger  *log.Logger

	jobs chan string
	wg   sync.WaitGroup

	enqueued atomic.Uint64
	dropped  atomic.Uint64
	uploaded atomic.Uint64
	failed   atomic.Uint64

	backoff time.Duration
}

func NewMirror(client *Client, baseDir, prefix string, workers int, logger *log.Logger) *Mirror {
	if workers <= 0 {
		workers = 1
	}
	m := &Mirror{
		client:  client,
		baseDir: baseDir,
		prefix:  strings.Trim(strings.ReplaceAll(prefix, "\\", "/"), "/"),
		logger:  logger,
		jobs:    make(chan string, 1024),
		backoff: 200 * time.Millisecond,
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for p := range m.jobs {
				m.uploadOne(p)
			}
		}()
	}
	return m
}

// Enqueue never blocks; a full queue drops the file.
func (m *Mirror) Enqueue(localPath string) {
	if m == nil {
		return
	}
	m.enqueued.Add(1)
	select {
	case m.jobs <- localPath:
	default:
		m.dropped.Add(1)
		m.printf("mirror drop local=%s reason=queue_full", localPath)
	}
}

// Close waits for queued uploads.
func (m *Mirror) Close() {
	if m == nil {
		return
	}
	close(m.jobs)
	m.wg.Wait()
}

func (m *Mirror) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(m.jobs),
		QueueCapacity: cap(m.jobs),
		Enqueued:      m.enqueued.Load(),
		Dropped:       m.dropped.Load(),
		Uploaded:      m.uploaded.Load(),
		Failed:        m.failed.Load(),
	}
}

func (m *Mirror) uploadOne(localPath string) {
	key, err := m.objectKey(localPath)
	if err != nil {
		m.failed.Add(1)
		m.printf("mirror skip local=%s err=%v", localPath, err)
		return
	}
	const maxAttempts = 4
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = m.client.PutFile(ctx, key, localPath)
		cancel()
		if err == nil {
			m.uploaded.Add(1)
			return
		}
		if attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*attempt) * m.backoff)
	}
	m.failed.Add(1)
	m.printf("mirror upload failed key=%s err=%v", key, err)
}

func (m *Mirror) objectKey(localPath string) (string, error) {
	absBase, err := filepath.Abs(m.baseDir)
	if err != nil {
		return "", err
	}
	absLocal, err := filepath.Abs(localPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absLocal)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %s is outside %s", absLocal, absBase)
	}
	if m.prefix != "" {
		rel = path.Join(m.prefix, rel)
	}
	return rel, nil
}

func (m *Mirror) printf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
