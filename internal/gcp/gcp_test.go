package gcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeADC(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adc.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	return path
}

const authorizedUserADC = `{
  "type": "authorized_user",
  "client_id": "client.apps.googleusercontent.com",
  "client_secret": "secret",
  "refresh_token": "refresh",
  "project_id": "adc-project"
}`

func TestNewClient_ProjectFromCredentials(t *testing.T) {
	writeADC(t, authorizedUserADC)

	c, err := NewClient(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "adc-project", c.Project())
	assert.NotNil(t, c.TokenSource())
}

func TestNewClient_ExplicitProjectWins(t *testing.T) {
	writeADC(t, authorizedUserADC)

	c, err := NewClient(context.Background(), WithProject("flag-project"))
	require.NoError(t, err)
	assert.Equal(t, "flag-project", c.Project())
}

func TestNewClient_MissingCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "nope.json"))

	_, err := NewClient(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcloud auth application-default login")
}

func TestReadADCFile(t *testing.T) {
	path := writeADC(t, `{"type":"service_account","client_email":"sa@proj.iam.gserviceaccount.com"}`)

	adc, err := readADCFile(path)
	require.NoError(t, err)
	assert.Equal(t, credTypeServiceAccount, adc.Type)
	assert.Equal(t, "sa@proj.iam.gserviceaccount.com", adc.ClientEmail)
	assert.Equal(t, path, defaultADCPath())

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0600))
	_, err = readADCFile(bad)
	assert.Error(t, err)
}

func TestFetchUserEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			_, _ = w.Write([]byte(`{"error":"invalid_token","error_description":"Invalid Value"}`))
			return
		}
		_, _ = w.Write([]byte(`{"email":"analyst@example.com"}`))
	}))
	defer srv.Close()

	old := userinfoURL
	userinfoURL = srv.URL
	defer func() { userinfoURL = old }()

	email, err := fetchUserEmail(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "analyst@example.com", email)

	_, err = fetchUserEmail(context.Background(), "bad")
	assert.EqualError(t, err, "invalid_token: Invalid Value")
}
