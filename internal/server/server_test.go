package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TechTitans1233/FORUMweb-sub000/config"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/database"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/dedupe"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/forum"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/images"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t   *testing.T
	srv *Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AdminSecret = "admin-pass"
	cfg.Server.StaticDir = filepath.Join(dir, "static")
	cfg.Images.Dir = filepath.Join(dir, "uploads")
	cfg.Images.MaxUploadBytes = 1024
	cfg.RateLimit.Requests = 10000

	require.NoError(t, os.MkdirAll(cfg.Server.StaticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.StaticDir, "index.html"), []byte("<h1>DWS</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.StaticDir, "app.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.StaticDir, "notes.txt"), []byte("private"), 0o644))

	db, err := database.Open(filepath.Join(dir, "dws.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.UserTokenTTL, cfg.Auth.AdminTokenTTL)
	img, err := images.NewLocalStore(cfg.Images.Dir, tokens, cfg.Images.URLTTL, cfg.Images.MaxUploadBytes)
	require.NoError(t, err)
	svc := forum.New(forum.Deps{
		Store:       store.New(db),
		Identity:    auth.NewLocalProvider(db),
		Tokens:      tokens,
		Guard:       dedupe.NewMemoryGuard(cfg.Dedupe.Window, cfg.Dedupe.MaxEntries),
		AdminSecret: cfg.Auth.AdminSecret,
	})
	return &testServer{t: t, srv: New(Deps{Config: cfg, Service: svc, Tokens: tokens, Images: img})}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (ts *testServer) register(name, email string) string {
	ts.t.Helper()
	rec := ts.do("POST", "/api/users", "", map[string]string{"name": name, "email": email, "password": "secret123"})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(ts.t, rec)["id"].(string)
}

func (ts *testServer) login(email string) string {
	ts.t.Helper()
	rec := ts.do("POST", "/api/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(ts.t, rec)["token"].(string)
}

var samplePublication = map[string]any{"title": "T", "body": "B", "address": "Addr", "lat": 1, "lon": 2}

func TestAnaScenario(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register("Ana", "ana@x.com")
	token := ts.login("ana@x.com")

	rec := ts.do("POST", "/api/publicacoes", token, samplePublication)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pub := decodeBody(t, rec)
	assert.Equal(t, "Ana", pub["authorName"])
	pubID := pub["id"].(string)

	rec = ts.do("POST", "/api/publicacoes", token, samplePublication)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do("PUT", "/api/users/"+id, token, map[string]string{"name": "Ana2", "currentPassword": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do("GET", "/api/publicacoes/"+pubID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ana2", decodeBody(t, rec)["authorName"])
}

func TestStatusCodes(t *testing.T) {
	ts := newTestServer(t)
	ts.register("Ana", "ana@x.com")
	ts.register("Bia", "bia@x.com")
	ana := ts.login("ana@x.com")
	bia := ts.login("bia@x.com")

	rec := ts.do("POST", "/api/publicacoes", ana, samplePublication)
	require.Equal(t, http.StatusCreated, rec.Code)
	pubID := decodeBody(t, rec)["id"].(string)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"duplicate email", "POST", "/api/users", "", map[string]string{"name": "X", "email": "ana@x.com", "password": "secret123"}, http.StatusConflict},
		{"missing fields", "POST", "/api/users", "", map[string]string{"email": "c@x.com"}, http.StatusBadRequest},
		{"malformed body", "POST", "/api/login", "", "{", http.StatusBadRequest},
		{"wrong password", "POST", "/api/login", "", map[string]string{"email": "ana@x.com", "password": "nope-nope"}, http.StatusUnauthorized},
		{"anonymous publish", "POST", "/api/publicacoes", "", samplePublication, http.StatusUnauthorized},
		{"forged token", "POST", "/api/publicacoes", "a.b.c", samplePublication, http.StatusForbidden},
		{"blank comment", "POST", "/api/comentarios", bia, map[string]string{"publicacaoId": pubID, "comentario": "  "}, http.StatusBadRequest},
		{"comment", "POST", "/api/comentarios", bia, map[string]string{"publicacaoId": pubID, "comentario": "cuidado"}, http.StatusCreated},
		{"unknown publication", "GET", "/api/publicacoes/nope", "", nil, http.StatusNotFound},
		{"like", "POST", "/api/publicacoes/" + pubID + "/curtir", bia, nil, http.StatusOK},
		{"like again", "POST", "/api/publicacoes/" + pubID + "/curtir", bia, nil, http.StatusConflict},
		{"unlike", "DELETE", "/api/publicacoes/" + pubID + "/descurtir", bia, nil, http.StatusOK},
		{"unlike again", "DELETE", "/api/publicacoes/" + pubID + "/descurtir", bia, nil, http.StatusNotFound},
		{"edit others", "PUT", "/api/publicacoes/" + pubID, bia, map[string]string{"title": "x"}, http.StatusForbidden},
		{"list users as user", "GET", "/api/users", ana, nil, http.StatusForbidden},
		{"bulk delete as user", "DELETE", "/api/publicacoes", ana, map[string]any{"ids": []string{pubID}}, http.StatusForbidden},
		{"admin wrong secret", "POST", "/api/admin/login", "", map[string]string{"password": "guess"}, http.StatusUnauthorized},
		{"health", "GET", "/health", "", nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if s, ok := tc.body.(string); ok {
				req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(s))
				rec = httptest.NewRecorder()
				ts.srv.Handler().ServeHTTP(rec, req)
			} else {
				rec = ts.do(tc.method, tc.path, tc.token, tc.body)
			}
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
			if rec.Code >= 400 {
				assert.NotEmpty(t, decodeBody(t, rec)["message"])
			}
		})
	}
}

func TestAdminBulkDelete(t *testing.T) {
	ts := newTestServer(t)
	ts.register("Ana", "ana@x.com")
	ana := ts.login("ana@x.com")
	rec := ts.do("POST", "/api/publicacoes", ana, samplePublication)
	require.Equal(t, http.StatusCreated, rec.Code)
	pubID := decodeBody(t, rec)["id"].(string)

	rec = ts.do("POST", "/api/admin/login", "", map[string]string{"password": "admin-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	admin := decodeBody(t, rec)["token"].(string)

	rec = ts.do("GET", "/api/users", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do("DELETE", "/api/publicacoes", admin, map[string]any{"ids": []string{pubID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["deleted"])
}

func TestCookieSession(t *testing.T) {
	ts := newTestServer(t)
	ts.register("Ana", "ana@x.com")

	rec := ts.do("POST", "/api/login", "", map[string]string{"email": "ana@x.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.UserCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest("GET", "/api/verify", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ana", decodeBody(t, rec)["name"])

	rec = ts.do("POST", "/api/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge)
	}
}

func upload(ts *testServer, token string, data []byte) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "photo")
	require.NoError(ts.t, err)
	_, err = fw.Write(data)
	require.NoError(ts.t, err)
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest("POST", "/api/images/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestImageUploadAndServe(t *testing.T) {
	ts := newTestServer(t)
	ts.register("Ana", "ana@x.com")
	token := ts.login("ana@x.com")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	rec := upload(ts, token, png)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	url := decodeBody(t, rec)["url"].(string)

	rec = ts.do("GET", url, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())

	rec = ts.do("GET", strings.Split(url, "?")[0]+"?token=bogus", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, http.StatusUnsupportedMediaType, upload(ts, token, []byte("plain text")).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, upload(ts, token, bytes.Repeat([]byte("a"), 2048)).Code)
}

func TestStaticFiles(t *testing.T) {
	ts := newTestServer(t)
	cases := []struct {
		path string
		want int
	}{
		{"/", http.StatusOK},
		{"/static/app.js", http.StatusOK},
		{"/static/", http.StatusNotFound},
		{"/static/notes.txt", http.StatusNotFound},
		{"/index.html", http.StatusMovedPermanently},
	}
	for _, tc := range cases {
		rec := ts.do("GET", tc.path, "", nil)
		assert.Equal(t, tc.want, rec.Code, tc.path)
	}
	rec := ts.do("GET", "/", "", nil)
	assert.Contains(t, rec.Body.String(), "DWS")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRoutesAreUnique(t *testing.T) {
	ts := newTestServer(t)
	seen := map[string]bool{}
	for _, r := range ts.srv.Routes() {
		key := r.Method + " " + r.Path
		assert.False(t, seen[key], key)
		seen[key] = true
	}
	assert.Len(t, seen, len(ts.srv.Routes()))
}
