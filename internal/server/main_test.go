package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"devcircle/internal/config"
	"devcircle/internal/database"
	"devcircle/internal/events"
	"devcircle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

// mockPublisher is a testify mock of events.Publisher.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

func eventOfType(t events.Type) any {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == t })
}

type testServer struct {
	srv *Server
	app *fiber.App
	db  *gorm.DB
	pub *mockPublisher
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		JWTSecret:      testSecret,
		JWTTTL:         time.Hour,
		AllowedOrigins: "*",
		RequestTimeout: 5 * time.Second,
		Env:            "test",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:srv_%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func newTestServer(t *testing.T, cfg *config.Config, rdb *redis.Client) *testServer {
	t.Helper()
	db := setupTestDB(t)
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	srv, err := NewServerWithDeps(cfg, db, rdb, pub)
	require.NoError(t, err)
	return &testServer{srv: srv, app: srv.NewApp(), db: db, pub: pub}
}

// do sends a JSON request and decodes the response into out when non-nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp.StatusCode
}

// signup registers username over HTTP and returns its bearer token.
func (ts *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	var res service.AuthResult
	status := ts.do(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "Sup3r$ecretPass",
	}, &res)
	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, res.Token)
	return res.Token.Token
}
