package pypm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain verifies that the worker pools ParseMany and Resolve spin up
// (errgroup dispatchers, bounded semaphore goroutines) are fully drained
// by the time each test function returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestScan_ReturnsEligibleFilesOnly(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"app.py":     "import os\n",
		"README.md":  "not python",
		"venv/lib.py": "import os\n",
	})

	paths, err := Scan(context.Background(), dir, Options{})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, FilePath(filepath.Join(dir, "app.py")), paths[0])
}

func TestParseMany_ClassifiesImportsAcrossFiles(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.py": "import requests\n",
		"b.py": "from typing import TYPE_CHECKING\nif TYPE_CHECKING:\n    import pandas\n",
	})
	paths, err := Scan(context.Background(), dir, Options{})
	require.NoError(t, err)

	opts := Options{CacheDir: t.TempDir()}
	results, warnings := ParseMany(context.Background(), paths, opts)
	assert.Empty(t, warnings)
	require.Len(t, results, 2)

	var sawRequests, sawPandasAsTyping bool
	for _, r := range results {
		for _, m := range r.Runtime {
			if m == "requests" {
				sawRequests = true
			}
		}
		for _, m := range r.Typing {
			if m == "pandas" {
				sawPandasAsTyping = true
			}
		}
	}
	assert.True(t, sawRequests)
	assert.True(t, sawPandasAsTyping)
}

func TestParseMany_InvokesOnFileParsedPerFile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.py": "import os\n",
		"b.py": "import sys\n",
		"c.py": "import json\n",
	})
	paths, err := Scan(context.Background(), dir, Options{})
	require.NoError(t, err)

	var count int32
	opts := Options{CacheDir: t.TempDir(), OnFileParsed: func() { atomic.AddInt32(&count, 1) }}
	_, _ = ParseMany(context.Background(), paths, opts)
	assert.Equal(t, int32(len(paths)), atomic.LoadInt32(&count))
}

func TestResolve_OfflineOnlyUsesStaticAndBundledSources(t *testing.T) {
	dir := t.TempDir()
	result, err := Resolve(context.Background(), []ModuleName{"requests", "os", "cv2"}, dir, Options{Offline: true})
	require.NoError(t, err)

	var names []string
	for _, d := range result.Resolved {
		names = append(names, string(d.Name))
	}
	assert.Contains(t, names, "requests")
	assert.Contains(t, names, "opencv-python")
}

func TestResolve_OnlineUsesIndexClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":{"version":"1.0.0"}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	opts := Options{CacheDir: t.TempDir(), IndexBaseURL: srv.URL}
	result, err := Resolve(context.Background(), []ModuleName{"some-unmapped-thing"}, dir, opts)
	require.NoError(t, err)
	require.Len(t, result.Resolved, 1)
}

func TestResolve_OnlineUsesCacheJSONFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":{"version":"1.0.0"}}`))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	dir := t.TempDir()
	opts := Options{CacheDir: cacheDir, IndexBaseURL: srv.URL}
	_, err := Resolve(context.Background(), []ModuleName{"some-unmapped-thing"}, dir, opts)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(cacheDir, "cache.json"))
	assert.NoError(t, statErr, "index cache should be persisted as cache.json")
}

func TestResolve_CancelledContextSkipsCacheWrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":{"version":"1.0.0"}}`))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	dir := t.TempDir()
	opts := Options{CacheDir: cacheDir, IndexBaseURL: srv.URL}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = Resolve(ctx, []ModuleName{"some-unmapped-thing"}, dir, opts)

	_, statErr := os.Stat(filepath.Join(cacheDir, "cache.json"))
	assert.True(t, os.IsNotExist(statErr), "cancelled resolve must not persist the index cache")
}

func TestParseMany_CancelledContextSkipsCacheWrite(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.py": "import requests\n",
	})
	paths, err := Scan(context.Background(), dir, Options{})
	require.NoError(t, err)

	cacheDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = ParseMany(ctx, paths, Options{CacheDir: cacheDir})

	_, statErr := os.Stat(filepath.Join(cacheDir, "parse.json"))
	assert.True(t, os.IsNotExist(statErr), "cancelled parse must not persist the parse cache")
}

func TestInfer_EndToEndOfflinePipeline(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"app.py":    "import requests\nimport os\n",
		"README.md": "not python",
	})

	opts := Options{CacheDir: t.TempDir(), Offline: true}
	result, err := Infer(context.Background(), dir, opts)
	require.NoError(t, err)

	require.Len(t, result.Dependencies, 1)
	assert.Equal(t, DistributionName("requests"), result.Dependencies[0].Name)
	assert.Contains(t, result.Timings, "scan")
	assert.Contains(t, result.Timings, "parse")
	assert.Contains(t, result.Timings, "resolve")
}

func TestInfer_EmptyProjectReturnsNoDependencies(t *testing.T) {
	dir := t.TempDir()
	result, err := Infer(context.Background(), dir, Options{Offline: true})
	require.NoError(t, err)
	assert.Empty(t, result.Dependencies)
}
