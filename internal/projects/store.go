package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/christopherklint97/timething/internal/forecast"
)

// Fetcher lists projects from the scheduling service.
type Fetcher interface {
	ListProjects(ctx context.Context) ([]forecast.Project, error)
}

// Source records where a loaded project list came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceLive  Source = "live"
	// SourceStale is a cached list returned because a live fetch failed.
	SourceStale Source = "stale"
	// SourceEmpty means neither the cache nor the service had a list.
	SourceEmpty Source = "empty"
)

type Result struct {
	Projects  []forecast.Project
	Source    Source
	FetchedAt time.Time
	// FetchErr is the live fetch failure behind a stale or empty result.
	FetchErr error
}

type cacheFile struct {
	Projects  []forecast.Project `json:"projects"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Store keeps the last fetched Forecast project list on disk.
type Store struct {
	path    string
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

func NewStore(path string, fetcher Fetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		path:    path,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Store) Path() string { return s.path }

// Load returns the cached list unless force is set or the cache is missing
// or unreadable, in which case it fetches and rewrites the cache. A failed
// fetch falls back to whatever the cache held, or to an empty list.
// Only filesystem permission errors are returned.
func (s *Store) Load(ctx context.Context, force bool) (*Result, error) {
	cached, err := s.read()
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, err
		}
		s.logger.Warn("ignoring unreadable project cache", "path", s.path, "error", err)
		cached = nil
	}

	if !force && cached != nil {
		s.logger.Debug("projects loaded from cache", "path", s.path, "count", len(cached.Projects))
		return &Result{Projects: cached.Projects, Source: SourceCache, FetchedAt: cached.FetchedAt}, nil
	}

	projects, fetchErr := s.fetcher.ListProjects(ctx)
	if fetchErr == nil {
		entry := &cacheFile{Projects: projects, FetchedAt: s.now()}
		if err := s.write(entry); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil, err
			}
			s.logger.Warn("could not write project cache", "path", s.path, "error", err)
		}
		return &Result{Projects: projects, Source: SourceLive, FetchedAt: entry.FetchedAt}, nil
	}

	s.logger.Warn("fetching projects failed", "error", fetchErr)
	if cached != nil {
		return &Result{Projects: cached.Projects, Source: SourceStale, FetchedAt: cached.FetchedAt, FetchErr: fetchErr}, nil
	}
	return &Result{Source: SourceEmpty, FetchErr: fetchErr}, nil
}

// read returns nil, nil when the cache file does not exist.
func (s *Store) read() (*cacheFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading project cache: %w", err)
	}

	var entry cacheFile
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parsing project cache: %w", err)
	}
	if entry.Projects == nil {
		return nil, fmt.Errorf("project cache has no project list")
	}
	return &entry, nil
}

// write replaces the cache atomically (tmp + rename).
func (s *Store) write(entry *cacheFile) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling project cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp cache file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}
