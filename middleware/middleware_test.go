package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"puckline/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString("userID")})
	}
	r.Use(mw)
	r.GET("/x", handler)
	r.OPTIONS("/x", handler)
	return r
}

func do(r *gin.Engine, method string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminPinMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name   string
		pin    string
		hash   string
		method string
		header string
		want   int
	}{
		{"plain pin ok", "1234", "", http.MethodGet, "1234", http.StatusOK},
		{"plain pin wrong", "1234", "", http.MethodGet, "0000", http.StatusUnauthorized},
		{"missing header", "1234", "", http.MethodGet, "", http.StatusUnauthorized},
		{"hash ok", "", string(hash), http.MethodGet, "4321", http.StatusOK},
		{"hash wins over plain", "1234", string(hash), http.MethodGet, "1234", http.StatusUnauthorized},
		{"preflight passes", "1234", "", http.MethodOptions, "", http.StatusOK},
		{"not configured", "", "", http.MethodGet, "1234", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers[AdminPinHeader] = tt.header
			}
			w := do(newRouter(AdminPinMiddleware(tt.pin, tt.hash)), tt.method, headers)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestJWTAuthUserMiddleware(t *testing.T) {
	const secret = "s3cret"
	userID := uuid.NewString()
	token, err := utils.GenerateToken(secret, userID, time.Hour)
	require.NoError(t, err)
	r := newRouter(JWTAuthUserMiddleware(secret))

	w := do(r, http.MethodGet, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)

	w = do(r, http.MethodGet, map[string]string{"Authorization": token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2))
	headers := map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, headers).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, headers).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, headers).Code)

	other := map[string]string{"X-Real-IP": "198.51.100.4"}
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, other).Code)
}
