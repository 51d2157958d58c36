// Package store keeps the timetable in a single JSON file.
//
// Every operation reads the whole file; writes rewrite it completely through a
// temporary file that replaces the original. A single mutex serialises
// read-modify-write cycles so concurrent appends cannot lose each other.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m3rciful/schedulebot/core/logger"
	"github.com/m3rciful/schedulebot/core/metrics"
	"github.com/m3rciful/schedulebot/internal/lesson"
)

// ErrCorrupt reports a schedule file that exists but cannot be decoded.
var ErrCorrupt = errors.New("schedule store: corrupt file")

const component = "store"

// FileStore is a lesson store backed by one JSON array file.
type FileStore struct {
	path    string
	mu      sync.Mutex
	metrics *metrics.Metrics
}

// Option customises a FileStore.
type Option func(*FileStore)

// WithMetrics reports operations to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *FileStore) { s.metrics = m }
}

// Open prepares a store at path, creating the parent directory if needed.
// The file itself is created on the first write.
func Open(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("schedule store: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure dir: %w", err)
		}
	}
	s := &FileStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// LoadAll returns every stored lesson in file order. A missing or unreadable
// file is an empty timetable.
func (s *FileStore) LoadAll(ctx context.Context) ([]lesson.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	lessons, err := s.loadUnlocked(false)
	s.observe(ctx, "load", start, len(lessons), err)
	return lessons, err
}

// Append adds l to the end of the timetable. Duplicates are allowed. A file
// that exists but cannot be read fails the write instead of being replaced.
func (s *FileStore) Append(ctx context.Context, l lesson.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	lessons, err := s.loadUnlocked(true)
	if err == nil {
		lessons = append(lessons, l)
		err = s.saveUnlocked(lessons)
	}
	s.observe(ctx, "append", start, len(lessons), err)
	return err
}

// Delete removes every lesson equal to target. Removing an absent lesson is
// not an error.
func (s *FileStore) Delete(ctx context.Context, target lesson.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	lessons, err := s.loadUnlocked(true)
	removed := 0
	if err == nil {
		kept := lessons[:0]
		for _, l := range lessons {
			if l.Equal(target) {
				removed++
				continue
			}
			kept = append(kept, l)
		}
		lessons = kept
		err = s.saveUnlocked(lessons)
	}
	s.observe(ctx, "delete", start, len(lessons), err, slog.Int("removed", removed))
	return err
}

// loadUnlocked reads the timetable. Read errors yield an empty timetable,
// except for writers, which only treat a missing file that way.
func (s *FileStore) loadUnlocked(forWrite bool) ([]lesson.Lesson, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if forWrite && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read schedule: %w", err)
		}
		return []lesson.Lesson{}, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []lesson.Lesson{}, nil
	}
	var lessons []lesson.Lesson
	if err := json.Unmarshal(data, &lessons); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if lessons == nil {
		lessons = []lesson.Lesson{}
	}
	return lessons, nil
}

func (s *FileStore) saveUnlocked(lessons []lesson.Lesson) error {
	data, err := json.Marshal(lessons)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace schedule: %w", err)
	}
	return nil
}

func (s *FileStore) observe(ctx context.Context, op string, start time.Time, count int, err error, extra ...slog.Attr) {
	s.metrics.ObserveStore(op, err)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("op", op),
		slog.Int("count", count),
		slog.Duration("duration", logger.Took(start)),
	}
	attrs = append(attrs, extra...)
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		logger.Error(ctx, component, "store."+op, attrs...)
		return
	}
	logger.Debug(ctx, component, "store."+op, attrs...)
}
