package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietdv277/secops/internal/chronicle"
	"github.com/vietdv277/secops/internal/config"
	"github.com/vietdv277/secops/internal/gcp"
	"golang.org/x/oauth2"
)

// recorder captures the requests received by the fake Chronicle API.
type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   string
}

func (r *recorder) add(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Auth:   req.Header.Get("Authorization"),
		Body:   string(body),
	})
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

// setup isolates the test from the user's config and environment, installs
// a static token source and starts a fake API.
func setup(t *testing.T, h http.HandlerFunc) (*recorder, string) {
	t.Helper()
	for _, k := range append(config.Keys, "endpoint", "context", "config", "timeout") {
		t.Setenv("SECOPS_"+strings.ToUpper(k), "")
	}
	t.Setenv("HOME", t.TempDir())

	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	setTokenSource(t, func(ctx context.Context, project string) (oauth2.TokenSource, error) {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}), nil
	})
	return rec, srv.URL
}

func setTokenSource(t *testing.T, fn func(ctx context.Context, project string) (oauth2.TokenSource, error)) {
	t.Helper()
	old := tokenSource
	tokenSource = fn
	t.Cleanup(func() { tokenSource = old })
}

func executeCommand(args ...string) (stdout, stderr string, err error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(normalizeArgs(args))
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		_, _ = w.Write([]byte(`{"name":"projects/proj1/locations/us/instances/cust1/feeds/feed1"}`))
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func demoArgs(endpoint string) []string {
	return []string{
		"--endpoint", endpoint,
		"-l", "us", "-p", "proj1", "-c", "cust1", "-f", "feed1",
		"-fw", "fw1", "-lg", "WINEVTLOG",
	}
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"separate value", []string{"-fw", "x", "-lg", "y"}, []string{"--forwarderid", "x", "--logtype", "y"}},
		{"inline value", []string{"-fw=x", "-lg=y"}, []string{"--forwarderid=x", "--logtype=y"}},
		{"single letter untouched", []string{"-f", "feed", "-l", "us"}, []string{"-f", "feed", "-l", "us"}},
		{"after terminator", []string{"-p", "x", "--", "-fw"}, []string{"-p", "x", "--", "-fw"}},
		{"empty", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.in))
		})
	}
}

func TestRoot_RunsBothDemos(t *testing.T) {
	rec, endpoint := setup(t, okHandler)

	stdout, _, err := executeCommand(demoArgs(endpoint)...)
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 2)

	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/v1alpha/projects/proj1/locations/us/instances/cust1/feeds/feed1", reqs[0].Path)
	assert.Equal(t, "Bearer test-token", reqs[0].Auth)

	assert.Equal(t, http.MethodPost, reqs[1].Method)
	assert.Equal(t, "/v1alpha/projects/proj1/locations/us/instances/cust1/logTypes/WINEVTLOG/logs:import", reqs[1].Path)
	assert.Equal(t, "Bearer test-token", reqs[1].Auth)
	assert.Contains(t, reqs[1].Body, `"forwarder": "projects/proj1/locations/us/instances/cust1/forwarders/fw1"`)

	assert.Contains(t, stdout, "=========DEMO 1 HTTP GET to fetch Feed Details===========")
	assert.Contains(t, stdout, "Request details for feed with ID = feed1")
	assert.Contains(t, stdout, `{"name":"projects/proj1/locations/us/instances/cust1/feeds/feed1"}`)
	assert.Contains(t, stdout, "=========DEMO 2 HTTP POST to import log entries==========")
	assert.Contains(t, stdout, "Sent the following JSON to Chronicle API")
	assert.Contains(t, stdout, reqs[1].Body, "the printed payload is the one sent")
	assert.Contains(t, stdout, "Received HTTP status code = 200")

	assert.Less(t, strings.Index(stdout, "DEMO 1"), strings.Index(stdout, "DEMO 2"))
}

func TestDemo_Subcommand(t *testing.T) {
	rec, endpoint := setup(t, okHandler)

	_, _, err := executeCommand(append([]string{"demo"}, demoArgs(endpoint)...)...)
	require.NoError(t, err)
	assert.Len(t, rec.all(), 2)
}

func TestFeedGet_NotFoundPrintedVerbatim(t *testing.T) {
	_, endpoint := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})

	stdout, stderr, err := executeCommand("feed", "get", "--endpoint", endpoint, "-l", "us", "-p", "proj1", "-c", "cust1", "missing")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Request details for feed with ID = missing\n")
	assert.Contains(t, stdout, "\n{\"error\":\"not found\"}\n")
	assert.Contains(t, stderr, "feed request was not successful")
}

func TestLogsImport_Records(t *testing.T) {
	rec, endpoint := setup(t, okHandler)

	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`records:
  - dim1: host-a
    metric1: "1"
    entry_time: 2025-01-02T03:04:05Z
    collection_time: 2025-01-02T03:05:05Z
`), 0600))

	stdout, _, err := executeCommand("logs", "import", "--records", path, "--endpoint", endpoint,
		"-l", "eu", "-p", "proj2", "-c", "cust2", "-fw", "fw2", "-lg", "OKTA")
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/v1alpha/projects/proj2/locations/eu/instances/cust2/logTypes/OKTA/logs:import", reqs[0].Path)
	assert.Contains(t, reqs[0].Body, `"logEntryTime": "2025-01-02T03:04:05Z"`)
	assert.Equal(t, 1, strings.Count(reqs[0].Body, `"data"`))
	assert.Contains(t, stdout, "Received HTTP status code = 200")
}

func TestLogsImport_BadRecordsFile(t *testing.T) {
	rec, endpoint := setup(t, okHandler)

	_, _, err := executeCommand("logs", "import", "--records", filepath.Join(t.TempDir(), "nope.yaml"), "--endpoint", endpoint)
	require.Error(t, err)
	assert.ErrorIs(t, err, chronicle.ErrConfig)
	assert.Empty(t, rec.all())
}

func TestLogsImport_RejectedIsNotAnError(t *testing.T) {
	_, endpoint := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"unknown log type"}}`))
	})

	stdout, stderr, err := executeCommand("logs", "import", "--endpoint", endpoint, "-lg", "NOPE")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Received HTTP status code = 400")
	assert.Contains(t, stderr, "unknown log type")
}

func TestCredentialFailure_NoRequest(t *testing.T) {
	rec, endpoint := setup(t, okHandler)
	setTokenSource(t, func(ctx context.Context, project string) (oauth2.TokenSource, error) {
		return nil, errors.New("could not find default credentials")
	})

	stdout, _, err := executeCommand(demoArgs(endpoint)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, chronicle.ErrAuth)
	assert.Contains(t, err.Error(), "could not find default credentials")
	assert.Empty(t, rec.all())
	assert.NotContains(t, stdout, "DEMO 1")
}

func TestTransportFailure(t *testing.T) {
	setup(t, okHandler)
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, _, err := executeCommand(demoArgs(srv.URL)...)
	assert.ErrorIs(t, err, chronicle.ErrTransport)
}

func TestMissingSettingsWarnOnly(t *testing.T) {
	rec, endpoint := setup(t, okHandler)

	_, stderr, err := executeCommand("--endpoint", endpoint)
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/v1alpha/projects//locations//instances//feeds/", reqs[0].Path)
	assert.Contains(t, stderr, "setting=location")
	assert.Contains(t, stderr, "setting=logtype")
}

func TestEnvironmentSettings(t *testing.T) {
	rec, endpoint := setup(t, okHandler)
	t.Setenv("SECOPS_LOCATION", "europe")
	t.Setenv("SECOPS_PROJECT", "env-proj")
	t.Setenv("SECOPS_CUSTOMERID", "env-cust")
	t.Setenv("SECOPS_ENDPOINT", endpoint)

	_, _, err := executeCommand("feed", "get", "-p", "flag-proj", "f1")
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/v1alpha/projects/flag-proj/locations/europe/instances/env-cust/feeds/f1", reqs[0].Path)
}

func TestContexts_Lifecycle(t *testing.T) {
	rec, endpoint := setup(t, okHandler)
	cfg := filepath.Join(t.TempDir(), "secops.yaml")

	stdout, _, err := executeCommand("contexts", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No contexts configured.")

	_, _, err = executeCommand("use", "add", "prod", "--config", cfg, "-l", "us", "-p", "proj1", "-c", "cust1", "-fw", "fw1")
	require.NoError(t, err)
	stdout, _, err = executeCommand("use", "add", "prod", "--config", cfg, "-lg", "WINEVTLOG")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Context saved: prod")

	ctx, err := config.NewStore(cfg).Get("prod")
	require.NoError(t, err)
	assert.Equal(t, &config.Context{Location: "us", Project: "proj1", CustomerID: "cust1", ForwarderID: "fw1", LogType: "WINEVTLOG"}, ctx)

	stdout, _, err = executeCommand("use", "prod", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Switched to context: prod")

	stdout, _, err = executeCommand("contexts", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "* prod")

	// The current context supplies the identifiers; flags override it.
	_, _, err = executeCommand("feed", "get", "--config", cfg, "--endpoint", endpoint, "-c", "cust9", "feed7")
	require.NoError(t, err)
	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/v1alpha/projects/proj1/locations/us/instances/cust9/feeds/feed7", reqs[0].Path)

	stdout, _, err = executeCommand("use", "missing", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, `Context "missing" not found.`)
	assert.Contains(t, stdout, "* prod")

	_, _, err = executeCommand("use", "delete", "prod", "--config", cfg)
	require.NoError(t, err)
	_, _, err = executeCommand("use", "delete", "prod", "--config", cfg)
	assert.Error(t, err)
}

func TestUseAdd_NothingToSave(t *testing.T) {
	setup(t, okHandler)
	_, _, err := executeCommand("use", "add", "empty", "--config", filepath.Join(t.TempDir(), "c.yaml"))
	assert.Error(t, err)
}

func TestContextFlag(t *testing.T) {
	rec, endpoint := setup(t, okHandler)
	cfg := filepath.Join(t.TempDir(), "secops.yaml")
	store := config.NewStore(cfg)
	require.NoError(t, store.Add("a", &config.Context{Location: "us", Project: "pa", CustomerID: "ca"}))
	require.NoError(t, store.Add("b", &config.Context{Location: "eu", Project: "pb", CustomerID: "cb"}))
	require.NoError(t, store.SetCurrent("a"))

	_, _, err := executeCommand("feed", "get", "x", "--config", cfg, "--context", "b", "--endpoint", endpoint)
	require.NoError(t, err)
	assert.Equal(t, "/v1alpha/projects/pb/locations/eu/instances/cb/feeds/x", rec.all()[0].Path)

	_, _, err = executeCommand("feed", "get", "x", "--config", cfg, "--context", "zzz", "--endpoint", endpoint)
	assert.ErrorIs(t, err, chronicle.ErrConfig)
}

func TestMalformedConfig(t *testing.T) {
	rec, endpoint := setup(t, okHandler)
	cfg := filepath.Join(t.TempDir(), "secops.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("current_context: [oops"), 0600))

	_, _, err := executeCommand("--config", cfg, "--endpoint", endpoint)
	assert.ErrorIs(t, err, chronicle.ErrConfig)
	assert.Empty(t, rec.all())
}

func TestStatus(t *testing.T) {
	setup(t, okHandler)
	old := callerIdentity
	t.Cleanup(func() { callerIdentity = old })

	callerIdentity = func(ctx context.Context, project string) (*gcp.CallerIdentity, error) {
		return &gcp.CallerIdentity{
			Email:     "sa@proj1.iam.gserviceaccount.com",
			ProjectID: project,
			TokenType: "service_account",
			Expiry:    time.Now().Add(time.Hour),
		}, nil
	}
	stdout, _, err := executeCommand("status", "-p", "proj1", "-l", "us")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Application default credentials valid")
	assert.Contains(t, stdout, "sa@proj1.iam.gserviceaccount.com")
	assert.Contains(t, stdout, "proj1")

	callerIdentity = func(ctx context.Context, project string) (*gcp.CallerIdentity, error) {
		return nil, errors.New("no GCP application default credentials found")
	}
	stdout, _, err = executeCommand("status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Not authenticated")
	assert.Contains(t, stdout, "gcloud auth application-default login")
}

func TestVersion(t *testing.T) {
	stdout, _, err := executeCommand("version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Version:    dev")
}

func TestUnknownFlag(t *testing.T) {
	setup(t, okHandler)
	_, _, err := executeCommand("--nope")
	assert.Error(t, err)
}
