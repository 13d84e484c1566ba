package handler

import (
	"net/http"
	"strings"

	"movexa_cms/internal/metrics"
	"movexa_cms/internal/middleware"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterDeps is everything the HTTP layer needs
type RouterDeps struct {
	Store   *repository.Store
	Auth    service.AuthService
	Profile service.ProfileService
	Catalog service.CatalogService
	Content service.ContentService
	Tokens  middleware.TokenVerifier
	Metrics *metrics.Metrics
	Log     logrus.FieldLogger

	// StaticDir, when set, serves the public site and admin panel for
	// unmatched non-API GET requests.
	StaticDir string
}

// NewRouter assembles the gin engine with all routes and middleware
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(d.Log),
		middleware.MetricsMiddleware(d.Metrics),
		middleware.CORSMiddleware(),
	)

	jwtAuthMW := middleware.JWTAuthMiddleware(d.Tokens)
	editorRoleMW := middleware.EditorMiddleware()
	adminRoleMW := middleware.AdminMiddleware()

	apiGroup := router.Group("/api")
	NewAPIHandler(d.Store, d.Store.Backend, d.Log).RegisterAPIRoutes(apiGroup)
	NewAuthHandler(d.Auth, d.Log).RegisterAuthRoutes(apiGroup)
	NewProfileHandler(d.Profile, d.Log).RegisterProfileRoutes(apiGroup, jwtAuthMW)
	NewServiceHandler(d.Catalog, d.Log).RegisterServiceRoutes(apiGroup, jwtAuthMW, editorRoleMW, adminRoleMW)
	NewContentHandler(d.Content, d.Log).RegisterContentRoutes(apiGroup, jwtAuthMW, editorRoleMW)

	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	router.NoRoute(noRoute(d.StaticDir))
	return router
}

func noRoute(staticDir string) gin.HandlerFunc {
	var files http.Handler
	if staticDir != "" {
		files = http.FileServer(http.Dir(staticDir))
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		isRead := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if files == nil || !isRead || path == "/api" || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
