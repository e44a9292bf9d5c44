package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestIssueAndParseToken(t *testing.T) {
	issued, err := IssueToken(testSecret, 42, "alice", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := ParseToken(testSecret, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, issued.ID, claims.ID)

	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)

	_, err = ParseToken("another-secret-another-secret-another", issued.Token)
	assert.Error(t, err)

	_, err = IssueToken("", 1, "x", time.Hour)
	assert.Error(t, err)
}

func TestAuthRequired(t *testing.T) {
	revokedJTI := ""
	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret, func(_ context.Context, jti string) bool {
		return jti == revokedJTI
	}), func(c *fiber.Ctx) error {
		uid, _ := UserIDFromContext(c.UserContext())
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID":    c.Locals("userID"),
			"ctxUserID": uid,
		})
	})

	valid, err := IssueToken(testSecret, 123, "bob", time.Hour)
	require.NoError(t, err)
	revoked, err := IssueToken(testSecret, 124, "eve", time.Hour)
	require.NoError(t, err)
	revokedJTI = revoked.ID

	foreignIssuer := func() string {
		claims := jwt.MapClaims{
			"sub": strconv.Itoa(123),
			"iss": "someone-else",
			"aud": tokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		return s
	}
	expired := func() string {
		claims := jwt.MapClaims{
			"sub": "123",
			"iss": tokenIssuer,
			"aud": tokenAudience,
			"exp": time.Now().Add(-time.Hour).Unix(),
		}
		s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		return s
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"Happy Path", "Bearer " + valid.Token, http.StatusOK, 123},
		{"Missing Header", "", http.StatusUnauthorized, 0},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"Garbage Token", "Bearer not-a-token", http.StatusUnauthorized, 0},
		{"Expired Token", "Bearer " + expired(), http.StatusUnauthorized, 0},
		{"Foreign Issuer", "Bearer " + foreignIssuer(), http.StatusUnauthorized, 0},
		{"Revoked Token", "Bearer " + revoked.Token, http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.EqualValues(t, tt.expectedUserID, body["userID"])
				assert.EqualValues(t, tt.expectedUserID, body["ctxUserID"])
			}
		})
	}
}
