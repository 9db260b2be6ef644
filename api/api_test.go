package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/v3/assert"
)

type fixture struct {
	url string
}

func startAPI(ctx context.Context, t testing.TB, versions VersionGetter) *fixture {
	t.Helper()

	api := New(ctx, Options{
		Versions: versions,
	})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &fixture{
		url: srv.URL,
	}
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (f *fixture) get(t testing.TB, path string) response {
	t.Helper()

	resp, err := http.Get(f.url + path)
	assert.Assert(t, err)

	defer func() {
		assert.Check(t, resp.Body.Close())
	}()

	body, err := io.ReadAll(resp.Body)
	assert.Assert(t, err)

	return response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}
}

func (r response) decode(t testing.TB, v interface{}) {
	t.Helper()
	assert.Assert(t, json.Unmarshal(r.body, v))
}
