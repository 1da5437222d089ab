package main

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/karagenc/jsonwalk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	o, err := jsonwalk.NewOptions()
	require.NoError(t, err)
	h, err := newHandler(o, 0)
	require.NoError(t, err)
	s := httptest.NewServer(h)
	t.Cleanup(s.Close)
	return s
}

func post(t *testing.T, url, body string, gzipped bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/normalize", strings.NewReader(body))
	require.NoError(t, err)
	if gzipped {
		req.Header.Set("Accept-Encoding", "gzip")
	}
	// Transport would otherwise decompress transparently.
	resp, err := (&http.Transport{DisableCompression: true}).RoundTrip(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNormalize(t *testing.T) {
	s := newTestServer(t)
	resp := post(t, s.URL, sampleIn+"\n[3, 2]", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get("Content-Encoding"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, sampleOut+"[3,2]\n", string(body))
}

func TestNormalizeGzip(t *testing.T) {
	s := newTestServer(t)
	resp := post(t, s.URL, sampleIn, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, sampleOut, string(body))
}

func TestNormalizeBadRequest(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{`{"a":`, ``, `[1,]`} {
		resp := post(t, s.URL, body, false)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
}

func TestNormalizeMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	resp, err := http.Get(s.URL + "/normalize")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}
