package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/go-condo-client/apiclient"
	"github.com/jrsteele09/go-condo-client/internal/config"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
	"github.com/jrsteele09/go-condo-client/mockapi"
	"github.com/jrsteele09/go-condo-client/users"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api *mockapi.Server
	dir string
}

// newHarness points the CLI at a seeded mock API with a file session in a temp folder.
func newHarness(t *testing.T) *harness {
	t.Helper()
	api, err := mockapi.New(config.MockAPI{})
	require.NoError(t, err)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	h := &harness{api: api, dir: t.TempDir()}
	t.Setenv("CONDO_API_URL", srv.URL)
	t.Setenv("CONDO_SESSION_STORE", "file")
	t.Setenv("FOLDER", h.dir)
	t.Setenv("ENV", "TEST")
	t.Setenv("LOG_LEVEL", "error")
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := &cli{in: strings.NewReader(stdin), out: &out, errOut: &errOut}
	err := execute(context.Background(), c, args)
	require.Nil(t, c.app, "session storage left open")
	return out.String(), errOut.String(), err
}

func (h *harness) login(t *testing.T, seed mockapi.UserSeed) {
	t.Helper()
	_, _, err := h.run(t, "", "login", "-e", seed.User.Email, "-p", seed.Password)
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, "condoctl version "+Version)
}

func TestLoginStatusLogout(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(t, "", "login", "-e", mockapi.SeedAdmin.User.Email, "-p", mockapi.SeedAdmin.Password)
	require.NoError(t, err)
	require.Equal(t, "Logged in as admin@condo.test (admin)\n", out)
	require.FileExists(t, filepath.Join(h.dir, "auth-storage.json"))

	out, _, err = h.run(t, "", "status", "-o", "json")
	require.NoError(t, err)
	var status statusView
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	require.True(t, status.Authenticated)
	require.Equal(t, "admin", status.Role)
	require.True(t, strings.HasPrefix(status.TokenExpires, "in "))

	out, _, err = h.run(t, "", "users", "list", "-o", "json")
	require.NoError(t, err)
	var page apiclient.Page[users.User]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 4)

	out, _, err = h.run(t, "", "logout")
	require.NoError(t, err)
	require.Equal(t, "Logged out\n", out)

	out, _, err = h.run(t, "", "status")
	require.NoError(t, err)
	require.Contains(t, out, "authenticated  no")
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	h := newHarness(t)

	out, errOut, err := h.run(t, mockapi.SeedResident.Password+"\n", "login", "-e", mockapi.SeedResident.User.Email)
	require.NoError(t, err)
	require.Contains(t, errOut, "Password: ")
	require.Contains(t, out, "(resident)")

	_, _, err = h.run(t, "wrong\n", "login", "-e", mockapi.SeedResident.User.Email)
	require.Error(t, err)
}

func TestForcedLogoutTellsUserToLogIn(t *testing.T) {
	h := newHarness(t)
	h.login(t, mockapi.SeedResident)

	h.api.ExpireAccessTokens()
	require.NoError(t, h.api.RevokeRefreshTokens())

	_, errOut, err := h.run(t, "", "units", "list")
	require.Error(t, err)
	require.Contains(t, errOut, "session expired, run `condoctl login`")

	out, _, err := h.run(t, "", "status", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"authenticated": false`)
}

func TestExpiredTokenIsRefreshedAcrossInvocations(t *testing.T) {
	h := newHarness(t)
	h.login(t, mockapi.SeedAdmin)
	h.api.ExpireAccessTokens()

	out, _, err := h.run(t, "", "units", "list")
	require.NoError(t, err)
	require.Contains(t, out, "S01")
	require.Equal(t, 1, h.api.Hits("POST "+mockapi.RouteAuthRefresh))

	// The rotated pair was persisted, so the next process does not refresh again.
	_, _, err = h.run(t, "", "areas", "list")
	require.NoError(t, err)
	require.Equal(t, 1, h.api.Hits("POST "+mockapi.RouteAuthRefresh))
}

func TestYAMLUsesAPIFieldNames(t *testing.T) {
	h := newHarness(t)
	h.login(t, mockapi.SeedResident)

	out, _, err := h.run(t, "", "reservations", "list", "-o", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "common_area_id: area-party")
}

func TestUnknownOutputFormat(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(t, "", "status", "-o", "xml")
	require.ErrorContains(t, err, "unknown output format")
}

func TestImportUpload(t *testing.T) {
	h := newHarness(t)
	h.login(t, mockapi.SeedAdmin)
	file := filepath.Join(t.TempDir(), "units.csv")
	require.NoError(t, os.WriteFile(file, []byte("number,type,area\n501,apartment,80\n502,apartment,\n"), 0o600))

	out, _, err := h.run(t, "", "imports", "upload", file, "--type", "units")
	require.NoError(t, err)
	require.Contains(t, out, "completed")
	require.Contains(t, out, "row 3 area: area must be a number")

	out, _, err = h.run(t, "", "imports", "upload", file, "--preview")
	require.NoError(t, err)
	require.Contains(t, out, "501")
}

func TestDocumentDownloadAndChat(t *testing.T) {
	h := newHarness(t)
	h.login(t, mockapi.SeedResident)
	target := filepath.Join(t.TempDir(), "rules.txt")

	_, _, err := h.run(t, "", "documents", "download", "doc-regulation", "-f", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Contains(t, string(data), "Quiet hours")

	out, _, err := h.run(t, "", "chat", "--ask", "quiet", "hours?")
	require.NoError(t, err)
	require.Contains(t, out, "source: internal-regulation.txt")

	out, _, err = h.run(t, "", "notifications", "unread-count")
	require.NoError(t, err)
	require.Equal(t, "2\n", out)
}

func TestDashboardNeedsAdmin(t *testing.T) {
	h := newHarness(t)
	h.login(t, mockapi.SeedResident)
	_, _, err := h.run(t, "", "dashboard")
	require.True(t, apiclient.IsStatus(err, 403))

	h.login(t, mockapi.SeedAdmin)
	out, _, err := h.run(t, "", "dashboard", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, out, `"total_areas": 3`)
}

func TestFailedCommandStillClosesSessionStorage(t *testing.T) {
	h := newHarness(t)
	t.Setenv("CONDO_SESSION_STORE", "sqlite")
	h.login(t, mockapi.SeedResident)

	var out, errOut bytes.Buffer
	c := &cli{in: strings.NewReader(""), out: &out, errOut: &errOut}
	err := execute(context.Background(), c, []string{"users", "get", mockapi.SeedAdmin.User.ID})
	require.True(t, apiclient.IsStatus(err, 403))
	require.Nil(t, c.app)

	// The store is usable again by the next invocation.
	stdout, _, err := h.run(t, "", "whoami", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, stdout, mockapi.SeedResident.User.Email)
}

func TestRawAPIRequestUsesSessionToken(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "", "api", "/units")
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)

	h.login(t, mockapi.SeedAdmin)
	out, _, err := h.run(t, "", "api", "units")
	require.NoError(t, err)
	require.Contains(t, out, `"number"`)

	_, _, err = h.run(t, "", "api", "/users/missing")
	require.ErrorContains(t, err, "404")
}
