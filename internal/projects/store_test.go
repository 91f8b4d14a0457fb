package projects

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/christopherklint97/timething/internal/apiclient"
	"github.com/christopherklint97/timething/internal/forecast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	projects []forecast.Project
	err      error
	calls    int
}

func (f *fakeFetcher) ListProjects(context.Context) ([]forecast.Project, error) {
	f.calls++
	return f.projects, f.err
}

var (
	fixedNow = time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	live     = []forecast.Project{{ID: 1, Name: "Live"}}
)

func newStore(t *testing.T, f Fetcher) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "data", "projects.json"), f, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func writeCache(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoad_FirstFetchWritesCache(t *testing.T) {
	f := &fakeFetcher{projects: live}
	s := newStore(t, f)

	res, err := s.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)
	assert.Equal(t, live, res.Projects)

	again, err := s.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, again.Source)
	assert.Equal(t, live, again.Projects)
	assert.True(t, fixedNow.Equal(again.FetchedAt))
	assert.Equal(t, 1, f.calls)

	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_ForceRefetches(t *testing.T) {
	f := &fakeFetcher{projects: live}
	s := newStore(t, f)
	writeCache(t, s.Path(), `{"projects": [{"id": 9, "name": "Old"}]}`)

	res, err := s.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)
	assert.Equal(t, 1, f.calls)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Live"`)
}

func TestLoad_CorruptCacheTriggersFetch(t *testing.T) {
	f := &fakeFetcher{projects: live}
	s := newStore(t, f)
	writeCache(t, s.Path(), `{"projects": [`)

	res, err := s.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)
	assert.Equal(t, 1, f.calls)
}

func TestLoad_FetchFailureFallsBackToStaleCache(t *testing.T) {
	f := &fakeFetcher{err: fmt.Errorf("getting forecast projects: %w", apiclient.ErrUnavailable)}
	s := newStore(t, f)
	writeCache(t, s.Path(), `{"projects": [{"id": 9, "name": "Old"}]}`)

	res, err := s.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, SourceStale, res.Source)
	require.Len(t, res.Projects, 1)
	assert.Equal(t, "Old", res.Projects[0].Name)
	assert.ErrorIs(t, res.FetchErr, apiclient.ErrUnavailable)
}

func TestLoad_FetchFailureWithoutCacheIsEmpty(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	s := newStore(t, f)

	res, err := s.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, SourceEmpty, res.Source)
	assert.Empty(t, res.Projects)
	assert.Error(t, res.FetchErr)
}

func TestLoad_UnwritableCacheDirIsFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	s := NewStore(filepath.Join(dir, "projects.json"), &fakeFetcher{projects: live}, nil)
	_, err := s.Load(context.Background(), false)
	require.Error(t, err)
}
