package crud_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/http/server/middleware"
	"github.com/rise-and-shine/tabletop/internal/crud"
	"github.com/rise-and-shine/tabletop/pg"
	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/sqlitedb"
	"github.com/rise-and-shine/tabletop/sqlitedb/sqlitedbtest"
	"github.com/rise-and-shine/tabletop/token"
	"github.com/rise-and-shine/tabletop/uow"
)

const secret = "0123456789abcdef0123"

type Scroll struct {
	bun.BaseModel `bun:"table:scrolls,alias:scroll"`

	ID    uuid.UUID `bun:"id,pk,type:uuid"     json:"id"`
	Name  string    `bun:"name,notnull,unique" json:"name"`
	Level int       `bun:"level,notnull"       json:"level"`
	pg.BookkeepingModel
}

type ScrollCreate struct {
	Name  string `json:"name"  validate:"required"`
	Level int    `json:"level" validate:"gte=0,lte=9"`
	pg.AuditStamp
}

func (c *ScrollCreate) NewEntity() *Scroll {
	return &Scroll{ID: uuid.New(), Name: c.Name, Level: c.Level, BookkeepingModel: c.Bookkeeping()}
}

func (c *ScrollCreate) NaturalKey() string { return c.Name }

type ScrollFilters struct {
	Name  string `query:"name"`
	Level *int   `query:"level"`
}

type unit struct {
	uow.Session
	Scrolls *repogen.Repo[Scroll, uuid.UUID]
}

type env struct {
	app   *fiber.App
	token string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := sqlitedbtest.New(t, (*Scroll)(nil))
	bind := func(s uow.Session) unit {
		return unit{
			Session: s,
			Scrolls: repogen.NewBuilder[Scroll, uuid.UUID](s.DB()).
				WithSchemaName(sqlitedb.Schema).
				WithEntityName("scroll").
				Build(),
		}
	}

	res := crud.New[unit, Scroll, uuid.UUID, ScrollFilters, ScrollCreate](crud.Config[unit, Scroll, uuid.UUID]{
		Name:     "scrolls",
		Entity:   "Scroll",
		KeyField: "name",
		Read:     uow.NewFactory(uow.ReadOpener(db), bind),
		Write:    uow.NewFactory(uow.TxOpener(db, nil), bind),
		Repo:     func(u unit) *repogen.Repo[Scroll, uuid.UUID] { return u.Scrolls },
		ParseID:  uuid.Parse,
	})

	verifier, err := token.NewVerifier(token.Config{HMACSecret: secret})
	require.NoError(t, err)
	maker, err := token.NewMaker(secret, "")
	require.NoError(t, err)
	signed, _, err := maker.CreateToken("user-1", "scribe", time.Hour)
	require.NoError(t, err)

	srv := server.NewHTTPServer(server.Config{BodyLimit: 4 << 20}, []server.Middleware{
		middleware.NewErrorHandlerMW(false),
		middleware.NewAuthMW(verifier),
	})
	srv.RegisterRouter(func(r fiber.Router) { res.Register(r.Group("/api/v1")) })

	return &env{app: srv.App(), token: signed}
}

func (e *env) do(t *testing.T, method, target, contentType string, body io.Reader, auth bool) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if auth {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+e.token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *env) create(t *testing.T, name string, level int) Scroll {
	t.Helper()

	body := strings.NewReader(`{"name":"` + name + `","level":` + jsonInt(level) + `}`)
	status, raw := e.do(t, http.MethodPost, "/api/v1/scrolls", fiber.MIMEApplicationJSON, body, true)
	require.Equal(t, http.StatusOK, status, string(raw))

	var s Scroll
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func jsonInt(n int) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	return payload.Error.Code
}

type listResponse struct {
	Entities           []Scroll       `json:"entities"`
	EntitiesCount      int            `json:"entities_count"`
	TotalEntitiesCount int            `json:"total_entities_count"`
	Limit              int            `json:"limit"`
	Offset             int            `json:"offset"`
	Filters            map[string]any `json:"filters"`
}

func TestResource_WritesRequireCaller(t *testing.T) {
	e := newEnv(t)

	status, raw := e.do(t, http.MethodPost, "/api/v1/scrolls", fiber.MIMEApplicationJSON,
		strings.NewReader(`{"name":"light","level":0}`), false)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, token.CodeMissingToken, errorCode(t, raw))

	status, _ = e.do(t, http.MethodGet, "/api/v1/scrolls", "", nil, false)
	assert.Equal(t, http.StatusOK, status)
}

func TestResource_CreateStampsCaller(t *testing.T) {
	e := newEnv(t)

	s := e.create(t, "fireball", 3)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, "user-1", s.CreatedBy)
	assert.Equal(t, "user-1", s.UpdatedBy)
	assert.False(t, s.CreatedAt.IsZero())

	status, raw := e.do(t, http.MethodPost, "/api/v1/scrolls", fiber.MIMEApplicationJSON,
		strings.NewReader(`{"name":"fireball","level":3}`), true)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, repogen.CodeDuplicateKey, errorCode(t, raw))

	status, raw = e.do(t, http.MethodPost, "/api/v1/scrolls", fiber.MIMEApplicationJSON,
		strings.NewReader(`{"name":"wish","level":10}`), true)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, raw))
}

func TestResource_Query(t *testing.T) {
	e := newEnv(t)
	e.create(t, "fireball", 3)
	e.create(t, "acid splash", 0)
	e.create(t, "shield", 1)

	tests := []struct {
		name      string
		query     string
		wantNames []string
		wantTotal int
	}{
		{name: "substring alternatives", query: "name=acid,fire&order_by=name", wantNames: []string{"acid splash", "fireball"}, wantTotal: 2},
		{name: "case insensitive", query: "name=SHIELD", wantNames: []string{"shield"}, wantTotal: 1},
		{name: "integer equality", query: "level=0", wantNames: []string{"acid splash"}, wantTotal: 1},
		{name: "page keeps total", query: "order_by=name:desc&limit=1&offset=1", wantNames: []string{"fireball"}, wantTotal: 3},
		{name: "exact match", query: "name=fire&exact=true", wantNames: []string{}, wantTotal: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := e.do(t, http.MethodGet, "/api/v1/scrolls/query?"+tc.query, "", nil, false)
			require.Equal(t, http.StatusOK, status, string(raw))

			var resp listResponse
			require.NoError(t, json.Unmarshal(raw, &resp))

			names := make([]string, 0, len(resp.Entities))
			for _, s := range resp.Entities {
				names = append(names, s.Name)
			}
			assert.Equal(t, tc.wantNames, names)
			assert.Equal(t, len(tc.wantNames), resp.EntitiesCount)
			assert.Equal(t, tc.wantTotal, resp.TotalEntitiesCount)
		})
	}

	t.Run("unknown filter", func(t *testing.T) {
		status, raw := e.do(t, http.MethodGet, "/api/v1/scrolls/query?color=red", "", nil, false)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, repogen.CodeUnknownFilterField, errorCode(t, raw))
	})

	t.Run("unknown sort field", func(t *testing.T) {
		status, raw := e.do(t, http.MethodGet, "/api/v1/scrolls/query?order_by=color", "", nil, false)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, repogen.CodeUnknownSortField, errorCode(t, raw))
	})
}

func TestResource_ReadUpdateDelete(t *testing.T) {
	e := newEnv(t)
	s := e.create(t, "fireball", 3)
	path := "/api/v1/scrolls/" + s.ID.String()

	status, raw := e.do(t, http.MethodGet, path, "", nil, false)
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = e.do(t, http.MethodPatch, path, fiber.MIMEApplicationJSON,
		strings.NewReader(`{"level":4,"created_by":"mallory","id":"`+uuid.NewString()+`"}`), true)
	require.Equal(t, http.StatusOK, status, string(raw))

	var updated Scroll
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, s.ID, updated.ID)
	assert.Equal(t, "fireball", updated.Name)
	assert.Equal(t, 4, updated.Level)
	assert.Equal(t, "user-1", updated.CreatedBy)

	status, raw = e.do(t, http.MethodDelete, path, "", nil, true)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.JSONEq(t, `{"id":"`+s.ID.String()+`"}`, string(raw))

	status, raw = e.do(t, http.MethodGet, path, "", nil, false)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SCROLL_NOT_FOUND", errorCode(t, raw))

	status, raw = e.do(t, http.MethodDelete, path, "", nil, true)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SCROLL_NOT_FOUND", errorCode(t, raw))

	status, raw = e.do(t, http.MethodGet, "/api/v1/scrolls/not-a-uuid", "", nil, false)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, crud.CodeInvalidID, errorCode(t, raw))
}

func upload(t *testing.T, filename, content string) (string, io.Reader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return w.FormDataContentType(), &buf
}

func (e *env) bulk(t *testing.T, filename, content string) bulkload.Report {
	t.Helper()

	contentType, body := upload(t, filename, content)
	status, raw := e.do(t, http.MethodPost, "/api/v1/scrolls/bulk", contentType, body, true)
	require.Equal(t, http.StatusOK, status, string(raw))

	var report bulkload.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	return report
}

func (e *env) count(t *testing.T) int {
	t.Helper()

	status, raw := e.do(t, http.MethodGet, "/api/v1/scrolls?limit=0", "", nil, false)
	require.Equal(t, http.StatusOK, status, string(raw))

	var items []Scroll
	require.NoError(t, json.Unmarshal(raw, &items))
	return len(items)
}

func TestResource_Bulk(t *testing.T) {
	e := newEnv(t)
	csv := "name,level\nmagic missile,1\nlight,0\n"

	first := e.bulk(t, "scrolls.csv", csv)
	assert.Equal(t, bulkload.Totals{Created: 2}, first.Totals)
	assert.Equal(t, []string{"magic missile", "light"}, first.Created)
	assert.Equal(t, 2, e.count(t))

	second := e.bulk(t, "scrolls.csv", csv)
	assert.Equal(t, bulkload.Totals{Warning: 2}, second.Totals)
	assert.Equal(t, "Scroll with name 'light' already exists, skipping.", second.Warnings[1])

	broken := e.bulk(t, "more.json", `[{"name":"sleep","level":1},{"name":"haste","level":"three"}]`)
	assert.Equal(t, bulkload.Totals{Created: 1, Errored: 1}, broken.Totals)
	require.Len(t, broken.Errors, 1)
	assert.True(t, strings.HasPrefix(broken.Errors[0], "row 1 [haste]: "), broken.Errors[0])
	assert.Equal(t, 2, e.count(t))

	contentType, body := upload(t, "scrolls.txt", csv)
	status, raw := e.do(t, http.MethodPost, "/api/v1/scrolls/bulk", contentType, body, true)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, bulkload.CodeUnsupportedFormat, errorCode(t, raw))
}
