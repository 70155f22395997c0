package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookscope/bookscope/internal/config"
	"github.com/bookscope/bookscope/internal/handlers"
	"github.com/bookscope/bookscope/internal/middleware"
	"github.com/bookscope/bookscope/internal/repository"
	"github.com/bookscope/bookscope/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "unit-test-secret"

func newAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	cfg := &config.Config{JWTSecret: testSecret}
	users := repository.NewUserRepository(db)
	h := handlers.NewAuthHandler(cfg, users)

	app := fiber.New()
	app.Post("/api/auth/register", h.Register)
	app.Post("/api/auth/login", h.Login)
	app.Post("/api/auth/refresh", h.Refresh)
	api := app.Group("/api", middleware.JWTProtected(testSecret))
	api.Get("/auth/me", h.Me)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	parsed := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newAuthApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"email":     "Reader@Example.com",
		"password":  "correct horse",
		"full_name": "Avid Reader",
	}, "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "reader@example.com", body["email"], "emails are normalized")
	assert.NotContains(t, body, "hashed_password")

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "reader@example.com",
		"password": "correct horse",
	}, "")
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.Equal(t, "bearer", body["token_type"])
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newAuthApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"email": "not-an-email", "password": "long enough",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"email": "short@example.com", "password": "tiny",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := newAuthApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"email": "dup@example.com", "password": "correct horse",
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"email": "dup@example.com", "password": "another pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already registered", body["message"])
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := newAuthApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"email": "secure@example.com", "password": "correct horse",
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "secure@example.com", "password": "wrong horse",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "nobody@example.com", "password": "whatever",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRefreshAndMe(t *testing.T) {
	app, _ := newAuthApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", fiber.Map{
		"email": "whoami@example.com", "password": "correct horse",
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email": "whoami@example.com", "password": "correct horse",
	}, "")
	require.Equal(t, http.StatusOK, status)
	access := body["access_token"].(string)
	refresh := body["refresh_token"].(string)

	status, body = doJSON(t, app, http.MethodGet, "/api/auth/me", nil, access)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "whoami@example.com", body["email"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/refresh", fiber.Map{
		"refresh_token": refresh,
	}, "")
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/refresh", fiber.Map{
		"refresh_token": "garbage.token.value",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
