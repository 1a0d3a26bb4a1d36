package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/dreamvision/internal/domain/auth"
	"github.com/yanqian/dreamvision/internal/domain/dream"
	"github.com/yanqian/dreamvision/internal/infra/config"
	"github.com/yanqian/dreamvision/internal/infra/dreamrepo"
	"github.com/yanqian/dreamvision/internal/infra/userrepo"
)

func TestRouter_DreamLifecycle(t *testing.T) {
	server := newRouterUnderTest(t)
	token := registerAndLogin(t, server, "dreamer@example.com")

	rec := performRequest(server, http.MethodPost, "/api/v1/dreams", token, `{
		"title": "Night flight",
		"content": "I was flying over a quiet house",
		"date": "2024-08-10",
		"mood": 4,
		"lucidity": 2,
		"tags": ["sky", "sky", " home "],
		"requestInterpretation": true
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created dream.EntryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.True(t, created.Interpreted)
	require.NotNil(t, created.Entitlement)
	require.Equal(t, 1, created.Entitlement.Used)
	require.Equal(t, []string{"sky", "home"}, created.Entry.Tags)
	require.Equal(t, []string{"flying", "house"}, created.Entry.Symbols)
	id := created.Entry.ID.String()

	rec = performRequest(server, http.MethodGet, "/api/v1/dreams/"+id+"/interpretation", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var interp struct {
		Interpretation dream.Interpretation `json:"interpretation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &interp))
	require.Equal(t, dream.SourceLocal, interp.Interpretation.Source)
	require.NotEmpty(t, interp.Interpretation.Overview)

	rec = performRequest(server, http.MethodPost, "/api/v1/dreams/"+id+"/interpretation", token, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, dream.CodeAlreadyInterpreted, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodGet, "/api/v1/dreams?limit=5", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page dream.EntryPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 1, page.Total)
	require.Equal(t, 5, page.Limit)

	rec = performRequest(server, http.MethodPost, "/api/v1/dreams/"+id+"/visualization", token, `{"style":"surreal"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = performRequest(server, http.MethodGet, "/api/v1/dreams/"+id+"/visualization", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "style=surreal")

	rec = performRequest(server, http.MethodGet, "/api/v1/users/stats", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats dream.AggregateStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 1, stats.TotalEntries)
	require.Equal(t, 4.0, stats.AverageMood)

	rec = performRequest(server, http.MethodGet, "/api/v1/users/export", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), dream.ExportFilename)
	var doc dream.ExportDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Dreams, 1)
	require.Equal(t, "Pisces", doc.User.Sign)

	rec = performRequest(server, http.MethodDelete, "/api/v1/dreams/"+id, token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = performRequest(server, http.MethodGet, "/api/v1/dreams/"+id, token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_EntitlementDeniedAfterTrial(t *testing.T) {
	server := newRouterUnderTest(t)
	token := registerAndLogin(t, server, "trial@example.com")

	ids := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		rec := performRequest(server, http.MethodPost, "/api/v1/dreams", token,
			`{"title":"Sea","content":"water everywhere","mood":3,"lucidity":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created dream.EntryResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.False(t, created.Interpreted)
		ids = append(ids, created.Entry.ID.String())
	}

	rec := performRequest(server, http.MethodPost, "/api/v1/dreams/"+ids[0]+"/interpretation", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/dreams/"+ids[1]+"/interpretation", token, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, dream.CodeEntitlementDenied, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodPost, "/api/v1/users/upgrade", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var decision dream.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	require.True(t, decision.Unlimited)

	rec = performRequest(server, http.MethodPost, "/api/v1/dreams/"+ids[1]+"/interpretation", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RejectsBadRequests(t *testing.T) {
	server := newRouterUnderTest(t)

	rec := performRequest(server, http.MethodGet, "/api/v1/dreams", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/dreams", "not-a-token", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	token := registerAndLogin(t, server, "bad@example.com")

	rec = performRequest(server, http.MethodPost, "/api/v1/dreams", token, `{"title":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodPost, "/api/v1/dreams", token, `{"title":"x","content":"y","mood":9,"lucidity":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, dream.CodeInvalidInput, body["error"]["code"])
	require.Equal(t, "mood must be at most 5", body["error"]["message"])

	rec = performRequest(server, http.MethodGet, "/api/v1/dreams/not-a-uuid", token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/auth/register", "", `{
		"email":"bad@example.com","password":"secret1",
		"name":"A","surname":"B","age":30,"sex":"male","sign":"Leo"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t)

	rec := performRequest(server, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func registerAndLogin(t *testing.T, server *http.Server, email string) string {
	t.Helper()
	rec := performRequest(server, http.MethodPost, "/api/v1/auth/register", "", `{
		"email":"`+email+`","password":"secret1",
		"name":"Ada","surname":"Lovelace","age":28,"sex":"female","sign":"Pisces"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = performRequest(server, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func performRequest(server *http.Server, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T) *http.Server {
	t.Helper()
	logger := newTestLogger()
	users := userrepo.NewMemoryRepository()
	authSvc := auth.NewService(auth.Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		TrialAllowance:  1,
	}, users, logger)
	dreamCfg := dream.Config{TrialAllowance: 1, RemoteTimeout: time.Second}
	engine := dream.NewEngine(dreamCfg, nil, logger)
	dreamSvc := dream.NewService(dreamCfg, dreamrepo.NewMemoryRepository(), users, engine, nil, nil, logger)

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, NewHandler(authSvc, dreamSvc, logger))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
