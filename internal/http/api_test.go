package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devlogger/internal/repository/sqlite"
	"devlogger/internal/service"
	"devlogger/internal/token"
)

func newTestServer(t *testing.T) *httptest.Server {
	return newTestServerWith(t, nil)
}

// newTestServerWith lets a test tweak the handler options, e.g. to wire
// an export archive, before the routes are registered.
func newTestServerWith(t *testing.T, configure func(*Options)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	logRepo := sqlite.NewLogRepository(db)
	require.NoError(t, userRepo.Init(t.Context()))
	require.NoError(t, logRepo.Init(t.Context()))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	opts := Options{
		Users:       service.NewUserService(userRepo),
		Logs:        service.NewLogService(logRepo),
		Tokens:      token.NewService("test-secret", time.Hour),
		ExportTitle: "DevLogger Export",
		Logger:      logger,
	}
	if configure != nil {
		configure(&opts)
	}
	handler := NewHandler(opts)

	router := gin.New()
	handler.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, bearer string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func registerUser(t *testing.T, srv *httptest.Server, name, email string) AuthResponse {
	t.Helper()

	resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	auth := decode[AuthResponse](t, resp)
	require.NotEmpty(t, auth.Token)
	return auth
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	auth := registerUser(t, srv, "Ann", "ann@x.com")
	assert.Equal(t, "Ann", auth.User.Name)
	assert.Equal(t, "ann@x.com", auth.User.Email)
	assert.NotEmpty(t, auth.User.ID)

	// duplicate email
	resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Other", "email": "ann@x.com", "password": "xyz",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// missing fields
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// login round trip resolves the same identity
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ann@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[AuthResponse](t, resp)
	assert.Equal(t, auth.User.ID, login.User.ID)

	// wrong password
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ann@x.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/logs"},
		{http.MethodPost, "/api/logs"},
		{http.MethodGet, "/api/logs/some-id"},
		{http.MethodPut, "/api/logs/some-id"},
		{http.MethodDelete, "/api/logs/some-id"},
		{http.MethodPost, "/api/export/markdown"},
		{http.MethodPost, "/api/export/pdf"},
	} {
		resp := doJSON(t, srv, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	resp := doJSON(t, srv, http.MethodGet, "/api/logs", "not-a-valid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogLifecycle(t *testing.T) {
	srv := newTestServer(t)
	auth := registerUser(t, srv, "Ann", "ann@x.com")

	// create
	resp := doJSON(t, srv, http.MethodPost, "/api/logs", auth.Token, gin.H{
		"title": "Day 1", "content": "Learned X", "tags": []string{"go"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[LogResponse](t, resp)
	assert.Equal(t, "Day 1", created.Title)
	assert.Equal(t, []string{"go"}, created.Tags)
	assert.Equal(t, auth.User.ID, created.OwnerID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	// validation
	resp = doJSON(t, srv, http.MethodPost, "/api/logs", auth.Token, gin.H{"title": "no content"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// list
	resp = doJSON(t, srv, http.MethodGet, "/api/logs", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := decode[[]LogResponse](t, resp)
	require.Len(t, logs, 1)
	assert.Equal(t, created.ID, logs[0].ID)

	// update replaces wholesale
	resp = doJSON(t, srv, http.MethodPut, "/api/logs/"+created.ID, auth.Token, gin.H{
		"title": "Day 1 (edited)", "content": "Learned Y",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[LogResponse](t, resp)
	assert.Equal(t, "Day 1 (edited)", updated.Title)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	// delete, then gone
	resp = doJSON(t, srv, http.MethodDelete, "/api/logs/"+created.ID, auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/logs/"+created.ID, auth.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/api/logs/"+created.ID, auth.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCrossOwnerIsolation(t *testing.T) {
	srv := newTestServer(t)
	ann := registerUser(t, srv, "Ann", "ann@x.com")
	bob := registerUser(t, srv, "Bob", "bob@x.com")

	resp := doJSON(t, srv, http.MethodPost, "/api/logs", ann.Token, gin.H{
		"title": "private", "content": "secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	annLog := decode[LogResponse](t, resp)

	// Bob never sees Ann's log, and ownership mismatch reads as 404.
	resp = doJSON(t, srv, http.MethodGet, "/api/logs", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]LogResponse](t, resp))

	resp = doJSON(t, srv, http.MethodGet, "/api/logs/"+annLog.ID, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPut, "/api/logs/"+annLog.ID, bob.Token, gin.H{
		"title": "hijack", "content": "hijack",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/api/logs/"+annLog.ID, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportMarkdownEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	ann := registerUser(t, srv, "Ann", "ann@x.com")
	bob := registerUser(t, srv, "Bob", "bob@x.com")

	resp := doJSON(t, srv, http.MethodPost, "/api/logs", ann.Token, gin.H{
		"title": "Day 1", "content": "Learned X", "tags": []string{"go"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	annLog := decode[LogResponse](t, resp)

	resp = doJSON(t, srv, http.MethodPost, "/api/logs", bob.Token, gin.H{
		"title": "Bob secret", "content": "do not leak",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bobLog := decode[LogResponse](t, resp)

	// Ann exports her own id plus Bob's; Bob's silently drops out.
	resp = doJSON(t, srv, http.MethodPost, "/api/export/markdown", ann.Token, gin.H{
		"logs": []string{annLog.ID, bobLog.ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "devlogger-export.md")

	body := new(bytes.Buffer)
	_, err := body.ReadFrom(resp.Body)
	require.NoError(t, err)
	doc := body.String()
	assert.Contains(t, doc, "Day 1")
	assert.Contains(t, doc, "Learned X")
	assert.Contains(t, doc, "**Tags:** go")
	assert.NotContains(t, doc, "Bob secret")
	assert.NotContains(t, doc, "do not leak")

	// Empty selection still yields a well-formed document.
	resp = doJSON(t, srv, http.MethodPost, "/api/export/markdown", ann.Token, gin.H{
		"logs": []string{},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body.Reset()
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "# DevLogger Export")
}

func TestExportPDFFallsBackToHTML(t *testing.T) {
	srv := newTestServer(t)
	ann := registerUser(t, srv, "Ann", "ann@x.com")

	resp := doJSON(t, srv, http.MethodPost, "/api/logs", ann.Token, gin.H{
		"title": "Day 1", "content": "line one\nline two",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	annLog := decode[LogResponse](t, resp)

	// no render service configured in the test handler
	resp = doJSON(t, srv, http.MethodPost, "/api/export/pdf", ann.Token, gin.H{
		"logs": []string{annLog.ID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body := new(bytes.Buffer)
	_, err := body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "<h2>Day 1</h2>")
	assert.Contains(t, body.String(), "line one<br>line two")
}

func TestTagFilterQuery(t *testing.T) {
	srv := newTestServer(t)
	ann := registerUser(t, srv, "Ann", "ann@x.com")

	for _, entry := range []gin.H{
		{"title": "go day", "content": "x", "tags": []string{"go"}},
		{"title": "sql day", "content": "x", "tags": []string{"sql"}},
	} {
		resp := doJSON(t, srv, http.MethodPost, "/api/logs", ann.Token, entry)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := doJSON(t, srv, http.MethodGet, "/api/logs?tags=go", ann.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := decode[[]LogResponse](t, resp)
	require.Len(t, logs, 1)
	assert.Equal(t, "go day", logs[0].Title)

	resp = doJSON(t, srv, http.MethodGet, "/api/logs?tags=go,sql", ann.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]LogResponse](t, resp), 2)
}

func TestArchiveNotConfigured(t *testing.T) {
	srv := newTestServer(t)
	ann := registerUser(t, srv, "Ann", "ann@x.com")

	resp := doJSON(t, srv, http.MethodGet, "/api/export/archive", ann.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
