package app_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/filestore"
	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/internal/app"
	"github.com/rise-and-shine/tabletop/observability/logger"
	"github.com/rise-and-shine/tabletop/sqlitedb"
	"github.com/rise-and-shine/tabletop/token"
)

const seedsDir = "../../seeds"

func newApp(t *testing.T) *app.App {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "error", Encoding: "json", Disable: true})
	require.NoError(t, err)

	cfg := app.Config{
		Service: app.ServiceConfig{Name: "tabletop", Version: "test"},
		HTTP: server.Config{
			Host:          "127.0.0.1",
			Port:          0,
			HandleTimeout: 5 * time.Second,
			BodyLimit:     4 << 20,
		},
		Database: app.DatabaseConfig{
			Driver: app.DriverSQLite,
			SQLite: sqlitedb.Config{Path: filepath.Join(t.TempDir(), "tabletop.db"), BusyTimeout: time.Second},
		},
		Auth: token.Config{HMACSecret: "0123456789abcdef0123"},
	}

	a, err := app.New(t.Context(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Migrate(t.Context()))
	return a
}

func get(t *testing.T, a *app.App, path string) (int, []byte) {
	t.Helper()

	resp, err := a.HTTP().App().Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestApp_Routes(t *testing.T) {
	a := newApp(t)

	status, raw := get(t, a, "/health")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, string(raw))

	for _, path := range []string{"/sources", "/spells", "/classes", "/game-systems", "/game-sessions"} {
		status, raw = get(t, a, app.APIPrefix+path)
		assert.Equal(t, http.StatusOK, status, path)
		assert.JSONEq(t, `[]`, string(raw), path)
	}

	req := httptest.NewRequest(http.MethodPost, app.APIPrefix+"/sources", strings.NewReader(`{"name":"PHB"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := a.HTTP().App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

func TestApp_Seed(t *testing.T) {
	a := newApp(t)
	store := filestore.NewDir(seedsDir)

	var out bytes.Buffer
	totals, err := a.Seed(t.Context(), store, &out)
	require.NoError(t, err, out.String())
	assert.Equal(t, bulkload.Totals{Created: 25}, totals)
	assert.Contains(t, out.String(), "spells.csv")
	assert.Contains(t, out.String(), "spell-to-class.json")

	status, raw := get(t, a, app.APIPrefix+"/spells/query?name=fireball&exact=true")
	require.Equal(t, http.StatusOK, status, string(raw))
	var page struct {
		Entities []struct {
			CreatedBy  string `json:"created_by"`
			SourcePage *int   `json:"source_page"`
		} `json:"entities"`
	}
	require.NoError(t, json.Unmarshal(raw, &page))
	require.Len(t, page.Entities, 0, "exact matching is case sensitive")

	status, raw = get(t, a, app.APIPrefix+"/spells/query?name=Fireball&exact=true")
	require.Equal(t, http.StatusOK, status, string(raw))
	require.NoError(t, json.Unmarshal(raw, &page))
	require.Len(t, page.Entities, 1)
	assert.Equal(t, app.SystemActor, page.Entities[0].CreatedBy)
	require.NotNil(t, page.Entities[0].SourcePage)
	assert.Equal(t, 241, *page.Entities[0].SourcePage)

	out.Reset()
	totals, err = a.Seed(t.Context(), store, &out)
	require.NoError(t, err, out.String())
	assert.Equal(t, bulkload.Totals{Warning: 25}, totals)
}

func TestApp_SeedFailure(t *testing.T) {
	a := newApp(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classes.csv"),
		[]byte("name,dnd_version,dnd_version_year\nWizard,5e,2014\nBard,5e,long ago\n"), 0o600))

	var out bytes.Buffer
	totals, err := a.Seed(t.Context(), filestore.NewDir(dir), &out)
	require.Error(t, err)
	assert.Equal(t, app.CodeSeedFailed, errx.AsErrorX(err).Code())
	assert.Equal(t, bulkload.Totals{Created: 1, Errored: 1}, totals)
	assert.Contains(t, out.String(), "row 1 [Bard]: dnd_version_year: Must be an integer")

	status, raw := get(t, a, app.APIPrefix+"/classes")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw), "a failed batch is rolled back")
}
