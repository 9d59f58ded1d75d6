package offline

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Transport is an http.RoundTripper with the service-worker contract:
// GET responses are cached and replayed only when the live fetch fails;
// everything else passes through untouched. It takes effect for all
// requests from the moment it is installed.
type Transport struct {
	base       http.RoundTripper
	cache      *Cache
	bypassHost string
}

// NewTransport wraps base with the cache. Requests whose host contains
// bypassHost are never cached — the remote data service must always be
// hit live.
func NewTransport(base http.RoundTripper, cache *Cache, bypassHost string) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, cache: cache, bypassHost: bypassHost}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}
	if t.bypassHost != "" && strings.Contains(req.URL.Host, t.bypassHost) {
		return t.base.RoundTrip(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return t.fromCache(req, err)
	}

	// Refresh the cached copy from the live response.
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return t.fromCache(req, readErr)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if putErr := t.cache.Put(req.URL.String(), resp.StatusCode, resp.Header.Get("Content-Type"), body); putErr != nil {
		// A failed cache write must not break the live response.
		return resp, nil
	}
	return resp, nil
}

// fromCache replays the stored response; the original fetch error is
// returned when nothing was cached.
func (t *Transport) fromCache(req *http.Request, fetchErr error) (*http.Response, error) {
	status, contentType, body, err := t.cache.Get(req.URL.String())
	if err != nil {
		return nil, fetchErr
	}

	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	header.Set("X-Served-From", "offline-cache")

	return &http.Response{
		StatusCode:    status,
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
