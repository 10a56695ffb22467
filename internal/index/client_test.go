package index

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullpx/pypm/internal/domain"
)

// newTestClient stands up an httptest.Server routed with gorilla/mux so
// the handler only ever sees requests shaped like the real index's
// /pypi/{name}/json endpoint, not every stray request a bare handler
// would also accept.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/pypi/{name}/json", handler).Methods(http.MethodGet)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c := Load(filepath.Join(t.TempDir(), "index.json"))
	return New(srv.URL, c, nil)
}

func TestExists_OKStatusReportsExists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":{"version":"2.31.0","provides_extra":["socks"]}}`))
	})

	lookup := client.Exists(context.Background(), "requests")
	assert.Equal(t, LookupExists, lookup)
}

func TestExists_NotFoundReportsAbsent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	lookup := client.Exists(context.Background(), "this-package-does-not-exist-xyz")
	assert.Equal(t, LookupAbsent, lookup)
}

func TestExists_ConsultsCacheBeforeNetwork(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte(`{"info":{"version":"1.0.0"}}`))
	})

	ctx := context.Background()
	first := client.Exists(ctx, "requests")
	second := client.Exists(ctx, "requests")

	assert.Equal(t, LookupExists, first)
	assert.Equal(t, LookupExists, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "second lookup should be served from cache")
}

func TestExists_ServerErrorRetriesThenReportsUnknown(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	lookup := client.Exists(context.Background(), "flaky-package")
	assert.Equal(t, LookupUnknown, lookup)
	assert.Equal(t, int32(maxRetries+1), atomic.LoadInt32(&requests))
}

func TestExists_UnknownIsNeverCached(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx := context.Background()
	client.Exists(ctx, "flaky-package")
	firstCount := atomic.LoadInt32(&requests)
	client.Exists(ctx, "flaky-package")
	secondCount := atomic.LoadInt32(&requests)

	assert.Greater(t, secondCount, firstCount, "an unknown lookup must hit the network again next time")
}

func TestExistsKnown_AdaptsLookupToBoolPair(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	exists, known := client.ExistsKnown(context.Background(), "missing-pkg")
	assert.False(t, exists)
	assert.True(t, known)
}

func TestMetadata_ExtractsVersionAndExtras(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":{"version":"3.1.0","provides_extra":["redis","dev"]}}`))
	})

	meta, ok := client.Metadata(context.Background(), "celery")
	require.True(t, ok)
	assert.Equal(t, "3.1.0", meta.LatestVersion)
	assert.Equal(t, []string{"redis", "dev"}, meta.Extras)
}

func TestMetadata_AbsentReportsNotOK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, ok := client.Metadata(context.Background(), "missing-pkg")
	assert.False(t, ok)
}

func TestFetch_OversizedResponseIsRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		huge := make([]byte, maxResponseSize+1024)
		for i := range huge {
			huge[i] = 'a'
		}
		w.Write(huge)
	})

	var warned domain.Warning
	client.warn = func(w domain.Warning) { warned = w }

	lookup := client.Exists(context.Background(), "bloated-package")
	assert.Equal(t, LookupUnknown, lookup)
	assert.Equal(t, domain.WarnTransient, warned.Kind)
}

func TestURLFor_EscapesNameIntoPath(t *testing.T) {
	client := &Client{baseURL: "https://example.com/simple/"}
	u, err := client.urlFor("my pkg")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/simple/pypi/my%20pkg/json", u)
}
