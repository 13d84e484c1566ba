package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"movexa_cms/internal/metrics"
	"movexa_cms/internal/model"
	"movexa_cms/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(verifier TokenVerifier, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthMiddleware(verifier)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"id": c.MustGet(AuthUserKey), "role": c.MustGet(AuthRoleKey), "username": claims.Username})
	})
	r.GET("/protected", handlers...)
	return r
}

func doRequest(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Basic abc", "", false},
		{"Bearer a b", "", false},
	}
	for _, tt := range tests {
		token, ok := ExtractBearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	r := newAuthRouter(jwtUtil)

	token, err := jwtUtil.GenerateToken(7, "ana", model.RoleEditor)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/protected", "Bearer "+token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":7,"role":"editor","username":"ana"}`, rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"No token provided"}`, rec.Body.String())
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/protected", "Token "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"No token provided"}`, rec.Body.String())
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/protected", "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := utils.NewJWTUtil("secret", -time.Minute).GenerateToken(7, "ana", model.RoleEditor)
		require.NoError(t, err)
		rec := doRequest(r, http.MethodGet, "/protected", "Bearer "+expired)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Token expired"}`, rec.Body.String())
	})
}

func TestRoleMiddleware(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	r := newAuthRouter(jwtUtil, AdminMiddleware())

	editor, _ := jwtUtil.GenerateToken(1, "ana", model.RoleEditor)
	admin, _ := jwtUtil.GenerateToken(2, "root", model.RoleAdmin)

	rec := doRequest(r, http.MethodGet, "/protected", "Bearer "+editor)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "message")

	rec = doRequest(r, http.MethodGet, "/protected", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	// without the auth middleware there is no role to check
	bare := gin.New()
	bare.GET("/x", EditorMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec = doRequest(bare, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := doRequest(r, http.MethodOptions, "/api", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = doRequest(r, http.MethodGet, "/api", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRequestLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) {
		Logger(c, logrus.New()).Info("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	rec := doRequest(r, http.MethodGet, "/ok", "")
	requestID := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, requestID)
	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, requestID, hook.AllEntries()[0].Data["request_id"])
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLoggerFallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := logrus.New()
	assert.Equal(t, fallback, Logger(c, fallback))
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(MetricsMiddleware(m))
	r.GET("/api/services/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	doRequest(r, http.MethodGet, "/api/services/1", "")
	doRequest(r, http.MethodGet, "/api/services/2", "")
	doRequest(r, http.MethodGet, "/nope", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/services/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
