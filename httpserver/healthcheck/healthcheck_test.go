package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/zetteln/server/system"
	"github.com/zetteln/server/testing/testcontext"
)

func ok(context.Context) error { return nil }

func TestAPI_Healthy(t *testing.T) {
	baseurl := startAPI(t, &fakeChecks{ready: ok, live: ok})

	body, status := get(t, baseurl, "live")
	assert.Check(t, cmp.Equal(status, http.StatusOK))
	assert.Check(t, cmp.Contains(body, `"status":"OK"`))

	body, status = get(t, baseurl, "ready")
	assert.Check(t, cmp.Equal(status, http.StatusOK))
	assert.Check(t, cmp.Contains(body, `"status":"OK"`))
}

func TestAPI_NotLive(t *testing.T) {
	baseurl := startAPI(t, &fakeChecks{
		ready: ok,
		live: func(context.Context) error {
			return errors.New("dead")
		},
	})

	body, status := get(t, baseurl, "live")
	assert.Check(t, cmp.Equal(status, http.StatusServiceUnavailable))
	assert.Check(t, cmp.Contains(body, `"status":"Unavailable"`))

	_, status = get(t, baseurl, "ready")
	assert.Check(t, cmp.Equal(status, http.StatusOK))
}

func TestAPI_NotReady(t *testing.T) {
	baseurl := startAPI(t, &fakeChecks{
		ready: func(context.Context) error {
			return errors.New("database unreachable")
		},
	})

	_, status := get(t, baseurl, "live")
	assert.Check(t, cmp.Equal(status, http.StatusOK))

	body, status := get(t, baseurl, "ready")
	assert.Check(t, cmp.Equal(status, http.StatusServiceUnavailable))
	assert.Check(t, cmp.Contains(body, `"status":"Unavailable"`))
	assert.Check(t, cmp.Contains(body, "database unreachable"))
}

func TestAPI_Debug(t *testing.T) {
	baseurl := startAPI(t)

	t.Run("index", func(t *testing.T) {
		body, status := get(t, baseurl, "debug/pprof/")
		assert.Check(t, cmp.Equal(status, http.StatusOK))
		assert.Check(t, cmp.Contains(body, `Types of profiles available`))

		body, status = get(t, baseurl, "debug/pprof/heap")
		assert.Check(t, cmp.Equal(status, http.StatusOK))
		assert.Check(t, len(body) > 100)
	})

	for _, p := range []string{"cmdline", "profile", "symbol", "trace"} {
		p := p
		t.Run(p, func(t *testing.T) {
			_, status := get(t, baseurl, fmt.Sprintf("debug/pprof/%s?seconds=1", p))
			assert.Check(t, cmp.Equal(status, http.StatusOK))
		})
	}

	t.Run("not-found", func(t *testing.T) {
		_, status := get(t, baseurl, "debug/pprof/nowt")
		assert.Check(t, cmp.Equal(status, http.StatusNotFound))
	})
}

func TestLoad(t *testing.T) {
	ctx := testcontext.Background()
	sys := system.New()
	sys.AddHealthCheck(&fakeChecks{ready: ok})

	srv, err := Load(ctx, "localhost:0", sys)
	assert.Assert(t, err)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		assert.Check(t, <-done)
	})

	body, status := get(t, "http://"+srv.Addr(), "ready")
	assert.Check(t, cmp.Equal(status, http.StatusOK))
	assert.Check(t, cmp.Contains(body, `"status":"OK"`))
}

type fakeChecks struct {
	ready, live func(ctx context.Context) error
}

func (f *fakeChecks) HealthChecks() (name string, ready, live func(ctx context.Context) error) {
	return "database", f.ready, f.live
}

func startAPI(t *testing.T, checked ...system.HealthChecker) string {
	t.Helper()

	api, err := New(testcontext.Background(), checked)
	assert.Assert(t, err)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func get(t *testing.T, baseurl, path string) (string, int) {
	t.Helper()

	r, err := http.Get(fmt.Sprintf("%s/%s", baseurl, path))
	assert.Assert(t, err)
	defer func() {
		assert.Check(t, r.Body.Close())
	}()

	b, err := io.ReadAll(r.Body)
	assert.Assert(t, err)
	return string(b), r.StatusCode
}
