package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject, issuer string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter(issuer string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(StructuredLoggingMiddleware(slog.Default()))
	r.GET("/me", AuthMiddleware(testSecret, issuer), func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, "user-1", "ledger-migrator", time.Hour), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, "user-1", "ledger-migrator", -time.Hour), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signToken(t, "user-1", "someone-else", time.Hour), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, "", "ledger-migrator", time.Hour), http.StatusUnauthorized},
	}

	router := newAuthRouter("ledger-migrator")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_SetsUserID(t *testing.T) {
	router := newAuthRouter("")
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-42", "anyone", time.Hour))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":"user-42"}`, w.Body.String())
}

func TestStructuredLoggingMiddleware_PropagatesLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := slog.New(slog.NewTextHandler(&discard{}, nil))
	r := gin.New()
	r.Use(StructuredLoggingMiddleware(base))

	var fromCtx, fromGin *slog.Logger
	r.GET("/ping", func(c *gin.Context) {
		fromCtx = GetLoggerFromCtx(c.Request.Context())
		fromGin = GetLoggerFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.NotSame(t, slog.Default(), fromCtx)
	assert.Same(t, fromCtx, fromGin)
}

func TestGetLoggerFromCtx_Default(t *testing.T) {
	assert.Same(t, slog.Default(), GetLoggerFromCtx(context.Background()))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rate, err := limiter.NewRateFromFormatted("2-M")
	require.NoError(t, err)
	lim := limiter.New(memory.NewStore(), rate)

	r := gin.New()
	r.POST("/parse", RateLimit(lim), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/parse", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
