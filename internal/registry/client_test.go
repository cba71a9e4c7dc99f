package registry_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/depscan-io/depscan/internal/config"
	"github.com/depscan-io/depscan/internal/domain"
	"github.com/depscan-io/depscan/internal/registry"
)

func newTestClient(t *testing.T, handler http.Handler) *registry.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.RegistryConfig{
		MaxConcurrentCalls: 10,
		RequestTimeout:     5,
		RequestDelayMs:     0,
	}
	client := registry.NewClient(cfg, zap.NewNop())
	client.PyPIBaseURL = srv.URL
	client.NPMBaseURL = srv.URL
	client.MavenBaseURL = srv.URL
	client.NuGetBaseURL = srv.URL
	return client
}

func TestLookup_PyPI(t *testing.T) {
	t.Run("license field set", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/pypi/requests/json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"info": {"license": "Apache-2.0", "project_urls": {"Homepage": "https://requests.dev"}}}`)
		})
		client := newTestClient(t, mux)

		info, err := client.Lookup(context.Background(), domain.EcosystemPython, "requests")
		require.NoError(t, err)
		assert.Equal(t, "Apache-2.0", info.License)
		assert.Equal(t, "https://requests.dev", info.URL)
	})

	t.Run("falls back to trove classifier", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/pypi/flask/json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"info": {"license": "", "classifiers": ["Development Status :: 5", "License :: OSI Approved :: BSD License"], "home_page": "https://flask.dev"}}`)
		})
		client := newTestClient(t, mux)

		info, err := client.Lookup(context.Background(), domain.EcosystemPython, "flask")
		require.NoError(t, err)
		assert.Equal(t, "BSD License", info.License)
		assert.Equal(t, "https://flask.dev", info.URL)
	})

	t.Run("missing package is an error", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler())

		_, err := client.Lookup(context.Background(), domain.EcosystemPython, "nope")
		assert.Error(t, err)
	})
}

func TestLookup_NPM(t *testing.T) {
	t.Run("string license", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/react", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"license": "MIT", "homepage": "https://react.dev"}`)
		})
		client := newTestClient(t, mux)

		info, err := client.Lookup(context.Background(), domain.EcosystemJavaScript, "react")
		require.NoError(t, err)
		assert.Equal(t, "MIT", info.License)
		assert.Equal(t, "https://react.dev", info.URL)
	})

	t.Run("object license and repository fallback", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/left-pad", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"license": {"type": "WTFPL"}, "repository": {"url": "git+https://github.com/left-pad/left-pad.git"}}`)
		})
		client := newTestClient(t, mux)

		info, err := client.Lookup(context.Background(), domain.EcosystemJavaScript, "left-pad")
		require.NoError(t, err)
		assert.Equal(t, "WTFPL", info.License)
		assert.Equal(t, "https://github.com/left-pad/left-pad", info.URL)
	})
}

func TestLookup_Maven(t *testing.T) {
	t.Run("found coordinate", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/solrsearch/select", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"response": {"numFound": 1, "docs": [{"homepage": ""}]}}`)
		})
		client := newTestClient(t, mux)

		info, err := client.Lookup(context.Background(), domain.EcosystemJava, "org.slf4j:slf4j-api")
		require.NoError(t, err)
		assert.Equal(t, "See URL", info.License)
		assert.Equal(t, "https://mvnrepository.com/artifact/org.slf4j/slf4j-api", info.URL)
	})

	t.Run("invalid coordinate", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler())

		info, err := client.Lookup(context.Background(), domain.EcosystemJava, "not-a-coordinate")
		require.NoError(t, err)
		assert.Equal(t, "Unknown", info.License)
	})

	t.Run("no results", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/solrsearch/select", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"response": {"numFound": 0, "docs": []}}`)
		})
		client := newTestClient(t, mux)

		info, err := client.Lookup(context.Background(), domain.EcosystemJava, "com.example:missing")
		require.NoError(t, err)
		assert.Equal(t, "Unknown", info.License)
	})
}

func TestLookup_NuGet(t *testing.T) {
	mux := http.NewServeMux()
	var catalogURL string
	mux.HandleFunc("/v3/registration5-semver1/newtonsoft.json/index.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"items": [{"items": [{"catalogEntry": {"@id": %q}}]}]}`, catalogURL)
	})
	mux.HandleFunc("/catalog/newtonsoft.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"licenseExpression": "MIT", "projectUrl": "https://www.newtonsoft.com/json"}`)
	})
	client := newTestClient(t, mux)
	catalogURL = client.NuGetBaseURL + "/catalog/newtonsoft.json"

	info, err := client.Lookup(context.Background(), domain.EcosystemDotNet, "Newtonsoft.Json")
	require.NoError(t, err)
	assert.Equal(t, "MIT", info.License)
	assert.Equal(t, "https://www.newtonsoft.com/json", info.URL)
}

func TestLookup_UnsupportedEcosystem(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.Lookup(context.Background(), domain.Ecosystem("rust"), "serde")
	assert.Error(t, err)
}
