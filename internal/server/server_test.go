package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todoapi/internal/config"
	"todoapi/internal/logging"
	"todoapi/internal/server"
	"todoapi/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver, dsn string) *config.Config {
	t.Helper()
	return &config.Config{
		AppPort:        ":0",
		DBDriver:       driver,
		DatabaseDSN:    dsn,
		JWTSecret:      "secret",
		JWTAlgorithm:   "HS256",
		JWTExpire:      time.Hour,
		StorageDriver:  "local",
		StorageDir:     filepath.Join(t.TempDir(), "S3"),
		MaxUploadBytes: 1 << 20,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

func TestBuild_HealthAndAccessLog(t *testing.T) {
	var accessLog bytes.Buffer
	app, err := server.Build(context.Background(), testConfig(t, "memory", ""), logging.Discard(), &accessLog)
	require.NoError(t, err)
	defer app.Close()

	resp, err := app.HTTP.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "disabled", body["events"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Contains(t, accessLog.String(), "/health")
}

func TestBuild_SQLiteRoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "todo.db")
	app, err := server.Build(context.Background(), testConfig(t, "sqlite", dsn), logging.Discard(), nil)
	require.NoError(t, err)
	defer app.Close()

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"alice","password":"abc12345"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.HTTP.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestBuild_RejectsUnknownDriver(t *testing.T) {
	_, err := server.Build(context.Background(), testConfig(t, "oracle", "x"), logging.Discard(), nil)
	assert.Error(t, err)
}

func TestAuditHandler(t *testing.T) {
	var out bytes.Buffer
	logger := logging.New(&out, "info", "json")
	handle := server.AuditHandler(logger)

	body, err := rabbitmq.EncodeEvent("todo.created", map[string]any{"todo_id": 1}, time.Now())
	require.NoError(t, err)

	require.NoError(t, handle(amqp.Delivery{Body: body}))
	assert.Contains(t, out.String(), `"type":"todo.created"`)

	assert.Error(t, handle(amqp.Delivery{Body: []byte("garbage")}))
}

func TestApp_CloseIsIdempotent(t *testing.T) {
	app, err := server.Build(context.Background(), testConfig(t, "memory", ""), logging.Discard(), io.Discard)
	require.NoError(t, err)
	assert.NoError(t, app.Close())
	assert.NoError(t, app.Close())
}
