// Package httpcache keeps upstream responses (place searches, personality
// profiles) in an otter cache, optionally persisted to disk between runs.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

const snapshotName = "responses.gob"

// Entry is one cached response body.
type Entry struct {
	ExpiresAt time.Time
	Data      []byte
}

// Store is a TTL-bounded response cache. A Store with an empty directory
// lives in memory only.
type Store struct {
	cache      *otter.Cache[string, Entry]
	logger     *slog.Logger
	saveCancel context.CancelFunc
	dir        string
	saveWg     sync.WaitGroup
	ttl        time.Duration
	mu         sync.Mutex
	now        func() time.Time
}

// Options configures a Store.
type Options struct {
	// Dir enables gob snapshots under this directory. Empty means memory only.
	Dir string
	// TTL bounds how long a response is served from cache.
	TTL time.Duration
	// MaxEntries caps the in-memory size.
	MaxEntries int
	// SaveInterval is how often snapshots are written; zero means 15 minutes.
	SaveInterval time.Duration
}

// New creates a Store. When opts.Dir is set, existing unexpired entries are
// loaded and a goroutine saves snapshots until ctx ends or Close is called.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 10_000
	}

	s := &Store{
		cache: otter.Must(&otter.Options[string, Entry]{
			MaximumSize:      opts.MaxEntries,
			ExpiryCalculator: otter.ExpiryWriting[string, Entry](opts.TTL),
		}),
		dir:    opts.Dir,
		ttl:    opts.TTL,
		logger: logger,
		now:    time.Now,
	}

	if s.dir == "" {
		logger.Debug("response cache initialized", "mode", "memory", "ttl", opts.TTL)
		return s, nil
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if err := s.load(); err != nil {
		logger.Warn("failed to load cache snapshot", "error", err)
	}
	logger.Info("response cache initialized", "dir", s.dir, "entries_loaded", s.cache.EstimatedSize())

	interval := opts.SaveInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	s.startPeriodicSave(ctx, interval)
	return s, nil
}

// Key derives a cache key from a URL and an optional request body.
func Key(url string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached body for key.
func (s *Store) Get(key string) ([]byte, bool) {
	entry, found := s.cache.GetIfPresent(key)
	if !found {
		return nil, false
	}
	if s.now().After(entry.ExpiresAt) {
		s.cache.Invalidate(key)
		return nil, false
	}
	return entry.Data, true
}

// Set stores data under key for the Store's TTL.
func (s *Store) Set(key string, data []byte) {
	entry := Entry{Data: data, ExpiresAt: s.now().Add(s.ttl)}
	s.cache.Set(key, entry)
	s.logger.Debug("cache set", "key", key[:min(12, len(key))], "size", len(data))
}

// Len reports the approximate number of cached entries.
func (s *Store) Len() int {
	return s.cache.EstimatedSize()
}

func (s *Store) snapshotPath() string {
	return filepath.Join(s.dir, snapshotName)
}

func (s *Store) load() error {
	file, err := os.Open(s.snapshotPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening cache snapshot: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Debug("failed to close cache snapshot", "error", err)
		}
	}()

	var entries map[string]Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache snapshot: %w", err)
	}

	now := s.now()
	valid := 0
	for key, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			s.cache.Set(key, entry)
			valid++
		}
	}
	s.logger.Debug("loaded cache snapshot", "total", len(entries), "valid", valid)
	return nil
}

// Save writes unexpired entries to the snapshot file. It is a no-op for
// memory-only stores.
func (s *Store) Save() error {
	if s.dir == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make(map[string]Entry)
	now := s.now()
	for key, entry := range s.cache.All() {
		if now.Before(entry.ExpiresAt) {
			entries[key] = entry
		}
	}

	tmp := s.snapshotPath() + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating cache snapshot: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("failed to remove temp snapshot", "error", err)
		}
	}()

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		_ = file.Close() //nolint:errcheck // already failing
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.snapshotPath()); err != nil {
		return fmt.Errorf("replacing cache snapshot: %w", err)
	}
	s.logger.Debug("cache snapshot saved", "entries", len(entries))
	return nil
}

func (s *Store) startPeriodicSave(ctx context.Context, interval time.Duration) {
	saveCtx, cancel := context.WithCancel(ctx)
	s.saveCancel = cancel

	s.saveWg.Add(1)
	go func() {
		defer s.saveWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-saveCtx.Done():
				return
			case <-ticker.C:
				if err := s.Save(); err != nil {
					s.logger.Warn("periodic cache save failed", "error", err)
				}
			}
		}
	}()
}

// Close stops periodic saving, writes a final snapshot, and stops the
// cache's background cleanup.
func (s *Store) Close() error {
	if s.saveCancel != nil {
		s.saveCancel()
	}
	s.saveWg.Wait()
	err := s.Save()
	s.cache.StopAllGoroutines()
	return err
}
