package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tutorauth/adapters/tokenizer"
	"github.com/layer-3/tutorauth/internal/metrics"
	"github.com/layer-3/tutorauth/ports"
	"github.com/layer-3/tutorauth/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// RouterConfig wires the router's dependencies
type RouterConfig struct {
	Guard     *service.Guard
	Catalog   *service.CatalogService
	Publisher ports.EventPublisher // optional

	Metrics  *metrics.Metrics    // optional
	Gatherer prometheus.Gatherer // serves /metrics when set

	CookieDomain string
	Logger       zerolog.Logger
}

// SetupRouter sets up the Gin router
func SetupRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger, cfg.Metrics))

	auth := NewAuthHandlers(cfg.Guard, cfg.Publisher, cfg.CookieDomain, cfg.Logger)
	catalog := NewCatalogHandlers(cfg.Catalog, cfg.Logger)
	session := SessionMiddleware(tokenizer.NewBearerTokenizer(), cfg.Logger)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	// Session routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/session", auth.Establish)
		authGroup.POST("/logout", auth.Logout)
		authGroup.GET("/me", session, auth.Me)
	}

	// Public catalog reads
	router.GET("/courses", catalog.ListCourses)
	router.GET("/courses/:id", catalog.GetCourse)
	router.GET("/courses/:id/lessons", catalog.ListLessons)
	router.GET("/profiles/:address", catalog.GetProfile)

	// Privileged catalog writes
	private := router.Group("/")
	private.Use(session)
	{
		private.POST("/courses", catalog.CreateCourse)
		private.PUT("/courses/:id", catalog.UpdateCourse)
		private.DELETE("/courses/:id", catalog.DeleteCourse)
		private.POST("/courses/:id/lessons", catalog.CreateLesson)
		private.PUT("/lessons/:id", catalog.UpdateLesson)
		private.DELETE("/lessons/:id", catalog.DeleteLesson)
		private.PUT("/profiles/:address", catalog.SaveProfile)
		private.DELETE("/profiles/:address", catalog.DeleteProfile)
	}

	return router
}
