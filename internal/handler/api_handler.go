package handler

import (
	"context"
	"net/http"
	"time"

	"movexa_cms/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const apiVersion = "2.0.0"

// Pinger reports whether the storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// APIHandler serves the API index and health check
type APIHandler struct {
	store   Pinger
	backend string
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewAPIHandler(store Pinger, backend string, log logrus.FieldLogger) *APIHandler {
	return &APIHandler{store: store, backend: backend, log: log, now: time.Now}
}

func (h *APIHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Movexa Admin Panel API",
		"version":  apiVersion,
		"database": h.backend,
		"endpoints": gin.H{
			"auth": gin.H{
				"register": "POST /api/auth/register",
				"login":    "POST /api/auth/login",
				"verify":   "GET /api/auth/verify",
			},
			"profile": gin.H{
				"getProfile":     "GET /api/profile (auth required)",
				"updateProfile":  "PUT /api/profile (auth required)",
				"changePassword": "PUT /api/profile/password (auth required)",
			},
			"services": gin.H{
				"getAll": "GET /api/services",
				"getOne": "GET /api/services/:id",
				"create": "POST /api/services (auth required)",
				"update": "PUT /api/services/:id (auth required)",
				"delete": "DELETE /api/services/:id (admin required)",
			},
			"content": gin.H{
				"getAll":        "GET /api/content",
				"getSection":    "GET /api/content/:section",
				"updateSection": "PUT /api/content/:section (auth required)",
			},
		},
	})
}

// Health answers 503 when the backend does not respond within two seconds
func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	timestamp := h.now().UTC().Format(time.RFC3339)
	if err := h.store.Ping(ctx); err != nil {
		middleware.Logger(c, h.log).WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "error",
			"database":  h.backend,
			"timestamp": timestamp,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"database":  h.backend,
		"timestamp": timestamp,
	})
}

// RegisterAPIRoutes registers the index and health routes
func (h *APIHandler) RegisterAPIRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Index)
	rg.GET("/health", h.Health)
}
