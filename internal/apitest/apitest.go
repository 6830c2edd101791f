// Package apitest drives feature routes through a fiber app the way the
// service mounts them: error handler and auth middleware, routes under /api/v1.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/http/server/middleware"
	"github.com/rise-and-shine/tabletop/token"
)

// Secret signs the tokens of every test caller.
const Secret = "0123456789abcdef0123"

// API is a mounted app plus a signed token per caller.
type API struct {
	app    *fiber.App
	maker  *token.Maker
	tokens map[string]string
}

// New mounts register under /api/v1.
func New(t testing.TB, register func(fiber.Router)) *API {
	t.Helper()

	verifier, err := token.NewVerifier(token.Config{HMACSecret: Secret})
	require.NoError(t, err)
	maker, err := token.NewMaker(Secret, "")
	require.NoError(t, err)

	srv := server.NewHTTPServer(server.Config{BodyLimit: 4 << 20}, []server.Middleware{
		middleware.NewErrorHandlerMW(false),
		middleware.NewAuthMW(verifier),
	})
	srv.RegisterRouter(func(r fiber.Router) { register(r.Group("/api/v1")) })

	return &API{app: srv.App(), maker: maker, tokens: make(map[string]string)}
}

// Request is one call. An empty As sends no token.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        io.Reader
	As          string
}

// Do sends req and returns the status and raw body.
func (a *API) Do(t testing.TB, req Request) (int, []byte) {
	t.Helper()

	r := httptest.NewRequest(req.Method, "/api/v1"+req.Path, req.Body)
	if req.ContentType != "" {
		r.Header.Set(fiber.HeaderContentType, req.ContentType)
	}
	if req.As != "" {
		r.Header.Set(fiber.HeaderAuthorization, "Bearer "+a.token(t, req.As))
	}

	resp, err := a.app.Test(r, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// JSON sends body encoded as JSON and decodes a 200 response into out.
func (a *API) JSON(t testing.TB, method, path, as string, body, out any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	status, raw := a.Do(t, Request{Method: method, Path: path, ContentType: fiber.MIMEApplicationJSON, Body: r, As: as})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

// Upload sends content as the multipart "file" field named filename.
func (a *API) Upload(t testing.TB, path, as, filename, content string) (int, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return a.Do(t, Request{Method: fiber.MethodPost, Path: path, ContentType: w.FormDataContentType(), Body: &buf, As: as})
}

// ErrorCode extracts error.code from an error body.
func ErrorCode(t testing.TB, raw []byte) string {
	t.Helper()

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	return payload.Error.Code
}

func (a *API) token(t testing.TB, sub string) string {
	t.Helper()

	if signed, ok := a.tokens[sub]; ok {
		return signed
	}
	signed, _, err := a.maker.CreateToken(sub, sub+"-name", time.Hour)
	require.NoError(t, err)
	a.tokens[sub] = signed
	return signed
}
