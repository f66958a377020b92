package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/servir-hc/internal/handler"
	promhandler "github.com/jwalitptl/servir-hc/internal/handler/prometheus"
	"github.com/jwalitptl/servir-hc/internal/middleware"
	"github.com/jwalitptl/servir-hc/internal/session"
	"github.com/jwalitptl/servir-hc/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	session  *session.Session
	healthH  Handler
	authH    Handler
	patientH Handler
	backupH  Handler
	promH    *promhandler.Handler
}

type RouterConfig struct {
	MaxBodyBytes   int64
	AllowedOrigins []string
}

func NewRouter(
	sess *session.Session,
	healthH Handler,
	authH Handler,
	patientH Handler,
	backupH Handler,
	promH *promhandler.Handler,
	log *logger.Logger,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		session:  sess,
		healthH:  healthH,
		authH:    authH,
		patientH: patientH,
		backupH:  backupH,
		promH:    promH,
	}

	// Add core middlewares
	engine.Use(
		middleware.Logger(log),
		middleware.Recovery(log),
		promH.Middleware(),
		middleware.SecurityHeaders(),
		middleware.CORS(middleware.DefaultCORSConfig(config.AllowedOrigins)),
		middleware.SizeLimit(config.MaxBodyBytes),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("route not found"))
	})

	return r
}

func (r *Router) Setup() {
	r.healthH.RegisterRoutes(&r.engine.RouterGroup)
	r.engine.GET("/metrics", r.promH.Handler())

	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	}, middleware.RequireJSON())

	// Public routes
	r.authH.RegisterRoutes(api)

	// Routes that need a logged-in practitioner
	protected := api.Group("")
	protected.Use(middleware.RequireSession(r.session))
	r.patientH.RegisterRoutes(protected)
	r.backupH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
