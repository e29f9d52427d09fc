package queueapi_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rqueue/pkg/integrity"
	"github.com/dmitrymomot/rqueue/pkg/memlimit"
	"github.com/dmitrymomot/rqueue/pkg/queue"
	"github.com/dmitrymomot/rqueue/pkg/ratelimiter"
	"github.com/dmitrymomot/rqueue/pkg/stats"
	"github.com/dmitrymomot/rqueue/svc/queueapi"
)

const notFoundJSON = `{"status":"error","reason":"Resource was not found."}`

type fixture struct {
	store  *queue.Store
	stats  *stats.Registry
	router http.Handler
}

func newFixture(t *testing.T, ceiling int64, icfg integrity.Config, opts ...queueapi.Option) fixture {
	t.Helper()

	verifier, err := integrity.New(icfg)
	require.NoError(t, err)

	log := slog.New(slog.DiscardHandler)
	reg := stats.NewRegistry()
	store := queue.NewStore(memlimit.New(ceiling), verifier, queue.WithStats(reg), queue.WithLogger(log))

	opts = append([]queueapi.Option{queueapi.WithStats(reg), queueapi.WithLogger(log)}, opts...)
	svc := queueapi.New(store, opts...)

	return fixture{store: store, stats: reg, router: svc.Router()}
}

func (f fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

type submitted struct {
	ID       string `json:"id"`
	Accepted bool   `json:"accepted"`
}

type retrieved struct {
	ID        string `json:"id"`
	Contents  string `json:"contents"`
	Priority  int    `json:"priority"`
	Digest    string `json:"digest"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

func (f fixture) submit(t *testing.T, body string) submitted {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/", body)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var got submitted
	require.NoError(t, json.Unmarshal(parse(t, rec).Data, &got))
	require.True(t, got.Accepted)
	require.NotEmpty(t, got.ID)
	return got
}

func (f fixture) retrieve(t *testing.T, target string) retrieved {
	t.Helper()
	rec := f.do(t, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got retrieved
	require.NoError(t, json.Unmarshal(parse(t, rec).Data, &got))
	return got
}

func TestPriorityScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0, integrity.Config{})

	one := f.submit(t, `{"contents":"one"}`)
	two := f.submit(t, `{"contents":"two","priority":50}`)
	assert.NotEqual(t, one.ID, two.ID)

	first := f.retrieve(t, "/")
	assert.Equal(t, "two", first.Contents)
	assert.Equal(t, 50, first.Priority)
	assert.Equal(t, two.ID, first.ID)
	assert.GreaterOrEqual(t, first.ElapsedMS, int64(0))

	second := f.retrieve(t, "/")
	assert.Equal(t, "one", second.Contents)
	assert.Equal(t, 10, second.Priority)

	rec := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, notFoundJSON, rec.Body.String())

	view := f.stats.Snapshot()
	assert.Equal(t, uint64(2), view.QueueRequests)
	assert.Equal(t, uint64(2), view.Queued)
	assert.Equal(t, uint64(3), view.ProxyRequests)
	assert.Equal(t, uint64(2), view.Proxied)
	assert.Equal(t, uint64(1), view.ProxyEmpty)
	assert.Equal(t, 0, view.InQueue)
	assert.Equal(t, uint64(5), view.Requests)
}

func TestCeilingScenario(t *testing.T) {
	t.Parallel()
	ceiling := queue.SizeOf("a", "")
	f := newFixture(t, ceiling, integrity.Config{})

	f.submit(t, `{"contents":"a"}`)

	rec := f.do(t, http.MethodPost, "/", `{"contents":"b"}`)
	require.Equal(t, http.StatusInsufficientStorage, rec.Code)
	env := parse(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "queue_full", env.Error.Code)
	assert.EqualValues(t, ceiling, env.Meta["current_bytes"])
	assert.EqualValues(t, ceiling, env.Meta["ceiling_bytes"])
	assert.EqualValues(t, queue.SizeOf("b", ""), env.Meta["attempted_bytes"])
	assert.Equal(t, 1, f.store.Len())

	assert.Equal(t, "a", f.retrieve(t, "/").Contents)
	assert.Zero(t, f.store.Bytes())

	f.submit(t, `{"contents":"b"}`)
	assert.Equal(t, "b", f.retrieve(t, "/").Contents)

	assert.Equal(t, uint64(1), f.stats.Snapshot().RejectedFull)
}

func TestIntegrity(t *testing.T) {
	t.Parallel()

	plain := integrity.Digest([]byte("test"), "")

	t.Run("digest without secret is accepted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 0, integrity.Config{})

		f.submit(t, `{"contents":"test","digest":"`+plain+`"}`)
		got := f.retrieve(t, "/")
		assert.Equal(t, plain, got.Digest)
	})

	t.Run("uppercase digest is accepted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 0, integrity.Config{})

		f.submit(t, `{"contents":"test","digest":"`+strings.ToUpper(plain)+`"}`)
	})

	t.Run("same digest with a secret is a mismatch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 0, integrity.Config{SharedSecret: "s3cret"})

		rec := f.do(t, http.MethodPost, "/", `{"contents":"test","digest":"`+plain+`"}`)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "integrity_mismatch", parse(t, rec).Error.Code)
		assert.Zero(t, f.store.Len())

		salted := integrity.Digest([]byte("test"), "s3cret")
		f.submit(t, `{"contents":"test","digest":"`+salted+`"}`)
		assert.Equal(t, uint64(1), f.stats.Snapshot().RejectedIntegrity)
	})

	t.Run("malformed digest is a mismatch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 0, integrity.Config{})

		for _, digest := range []string{"abc", "zz", plain[:63]} {
			rec := f.do(t, http.MethodPost, "/", `{"contents":"test","digest":"`+digest+`"}`)
			require.Equal(t, http.StatusForbidden, rec.Code, digest)
			assert.Equal(t, "integrity_mismatch", parse(t, rec).Error.Code, digest)
		}

		assert.Zero(t, f.store.Len())
		view := f.stats.Snapshot()
		assert.Equal(t, uint64(3), view.RejectedIntegrity)
		assert.Zero(t, view.RejectedInvalid)
	})

	t.Run("required digest missing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 0, integrity.Config{Required: true})

		rec := f.do(t, http.MethodPost, "/", `{"contents":"test"}`)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "integrity_missing", parse(t, rec).Error.Code)
	})
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing contents", `{"priority":1}`, "contents"},
		{"empty contents", `{"contents":""}`, "contents"},
		{"priority above range", `{"contents":"x","priority":256}`, "priority"},
		{"negative priority", `{"contents":"x","priority":-1}`, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, 0, integrity.Config{})

			rec := f.do(t, http.MethodPost, "/", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			env := parse(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, "validation_error", env.Error.Code)
			assert.Contains(t, env.Error.Details, tt.field)
			assert.Zero(t, f.store.Len())

			view := f.stats.Snapshot()
			assert.Equal(t, uint64(1), view.RejectedInvalid)
			assert.Equal(t, uint64(1), view.QueueRequests)
			assert.Zero(t, view.Queued)
		})
	}
}

func TestSubmitBindErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0, integrity.Config{})

	rec := f.do(t, http.MethodPost, "/", `{"contents":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", parse(t, rec).Error.Code)

	rec = f.do(t, http.MethodPost, "/", `{"contents":"x","unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("contents=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = f.do(t, http.MethodPost, "/?priority=high", `{"contents":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, uint64(4), f.stats.Snapshot().RejectedInvalid)
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (w brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("client went away")
}

func TestSubmitWriteFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0, integrity.Config{})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"contents":"kept"}`))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(brokenWriter{httptest.NewRecorder()}, req)

	assert.Equal(t, 1, f.store.Len())

	view := f.stats.Snapshot()
	assert.Equal(t, uint64(1), view.Queued)
	assert.Equal(t, uint64(1), view.QueueRequests)
	assert.Zero(t, view.RejectedInvalid)
}

func TestSubmitBodyLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0, integrity.Config{}, queueapi.WithMaxBodyBytes(32))

	rec := f.do(t, http.MethodPost, "/", `{"contents":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestQueryPriority(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0, integrity.Config{})

	f.submit(t, `{"contents":"from-query"}`)
	f.do(t, http.MethodPost, "/?priority=99", `{"contents":"query-only"}`)
	f.do(t, http.MethodPost, "/?priority=200", `{"contents":"body-wins","priority":1}`)

	assert.Equal(t, "query-only", f.retrieve(t, "/").Contents)
	assert.Equal(t, "from-query", f.retrieve(t, "/").Contents)

	last := f.retrieve(t, "/")
	assert.Equal(t, "body-wins", last.Contents)
	assert.Equal(t, 1, last.Priority)
}

func TestDefaultPriorityOption(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0, integrity.Config{}, queueapi.WithDefaultPriority(77))

	f.submit(t, `{"contents":"x"}`)
	assert.Equal(t, 77, f.retrieve(t, "/").Priority)
}

func TestRetrieveMinPriority(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0, integrity.Config{})

	f.submit(t, `{"contents":"low","priority":5}`)
	f.submit(t, `{"contents":"high","priority":20}`)

	rec := f.do(t, http.MethodGet, "/?min_priority=30", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, notFoundJSON, rec.Body.String())

	assert.Equal(t, "high", f.retrieve(t, "/?min_priority=10").Contents)

	rec = f.do(t, http.MethodGet, "/?min_priority=10", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, f.store.Len())

	rec = f.do(t, http.MethodGet, "/?min_priority=300", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/?min_priority=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, "low", f.retrieve(t, "/?min_priority=0").Contents)
}

func TestStatsRoute(t *testing.T) {
	t.Parallel()

	t.Run("hidden without debug", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 0, integrity.Config{})

		rec := f.do(t, http.MethodGet, "/stats", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, notFoundJSON, rec.Body.String())
	})

	t.Run("snapshot in debug", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 0, integrity.Config{}, queueapi.WithDebug(true))

		f.submit(t, `{"contents":"x","priority":3}`)

		rec := f.do(t, http.MethodGet, "/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var view stats.View
		require.NoError(t, json.Unmarshal(parse(t, rec).Data, &view))
		assert.Equal(t, uint64(1), view.Queued)
		assert.Equal(t, 1, view.InQueue)
		assert.Equal(t, queue.SizeOf("x", ""), view.QueueSizeBytes)
		assert.GreaterOrEqual(t, view.Requests, uint64(1))
	})
}

func TestRouting(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 0, integrity.Config{})

	rec := f.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, notFoundJSON, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method_not_allowed", parse(t, rec).Error.Code)

	rec = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSubmitThrottle(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)
	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	require.NoError(t, err)

	f := newFixture(t, 0, integrity.Config{},
		queueapi.WithSubmitLimit(bucket),
		queueapi.WithTrustProxyHeaders(true),
	)

	post := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"contents":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusAccepted, post("198.51.100.1").Code)

	rec := post("198.51.100.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too_many_requests", parse(t, rec).Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusAccepted, post("198.51.100.2").Code, "buckets are per client")

	// Retrieval is never throttled.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/", "").Code)
	assert.Equal(t, 1, f.store.Len())
}
