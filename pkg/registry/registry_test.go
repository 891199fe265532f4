package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credtally/credtally/pkg/errors"
)

const pyyamlJSON = `{
  "info": {
    "name": "PyYAML",
    "version": "5.4.1",
    "license": "MIT",
    "home_page": "https://pyyaml.org/",
    "author": "Kirill Simonov",
    "summary": "YAML parser and emitter for Python"
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestLookupExactVersion(t *testing.T) {
	var gotPath, gotAgent string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pyyamlJSON))
	})

	info, err := client.Lookup(context.Background(), "PyYAML", "==5.4.1")
	require.NoError(t, err)

	assert.Equal(t, "/PyYAML/5.4.1/json", gotPath, "pinned specs query the exact release")
	assert.Contains(t, gotAgent, "credtally")
	assert.Equal(t, "PyYAML", info.Name)
	assert.Equal(t, "5.4.1", info.Version)
	assert.Equal(t, "MIT", info.License)
	assert.Equal(t, "https://pyyaml.org/", info.HomePage)
}

func TestLookupRangeFallsBackToLatest(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(pyyamlJSON))
	})

	for _, spec := range []string{">=5.0", "==5.*", ">=5.0,<6.0", "unknown", ""} {
		_, err := client.Lookup(context.Background(), "PyYAML", spec)
		require.NoError(t, err, spec)
		assert.Equal(t, "/PyYAML/json", gotPath, spec)
	}
}

func TestLookupNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Lookup(context.Background(), "no-such-package", "")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestLookupServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Lookup(context.Background(), "pyyaml", "")
	require.Error(t, err)
	assert.True(t, errors.IsRegistryUnavailable(err))
}

func TestLookupEmptyName(t *testing.T) {
	client := New()
	_, err := client.Lookup(context.Background(), "  ", "")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLookupBadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.Lookup(context.Background(), "pyyaml", "")
	assert.Error(t, err)
}

func TestLookupLicenseFromClassifiers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
  "info": {
    "name": "thing",
    "version": "1.0",
    "license": "",
    "classifiers": ["Development Status :: 5 - Production/Stable", "License :: OSI Approved :: Apache Software License"]
  }
}`))
	})

	info, err := client.Lookup(context.Background(), "thing", "")
	require.NoError(t, err)
	assert.Equal(t, "Apache Software License", info.License)
}

func TestLookupHomePageFromProjectURLs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
  "info": {
    "name": "thing",
    "version": "1.0",
    "project_urls": {"Homepage": "https://example.com/thing"}
  }
}`))
	})

	info, err := client.Lookup(context.Background(), "thing", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/thing", info.HomePage)
}

func TestExactVersion(t *testing.T) {
	tests := []struct {
		spec, want string
	}{
		{"==5.4.1", "5.4.1"},
		{"== 5.4.1", "5.4.1"},
		{"===5.4.1", ""},
		{"==5.*", ""},
		{">=5.0", ""},
		{"==5.0,<6.0", ""},
		{"unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exactVersion(tt.spec), tt.spec)
	}
}
