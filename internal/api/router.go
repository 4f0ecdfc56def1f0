package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/tickprobe/internal/middleware"
)

// requestTimeout bounds every request context.
const requestTimeout = 10 * time.Second

// NewRouter creates a Gin engine with the stub API routes.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, CORS, ErrorHandler, RateLimiter, Timeout).
//   - Mounts /api/auth (public) and /api/symbols, /api/prices (bearer token required).
//   - Mounts Swagger docs (/swagger/*any), served from the docs package the binary imports.
//
// Note:
//   - Health and readiness endpoints are registered in app.InitializeStub().
//
// rateLimit is requests per minute per client IP; 0 disables it.
func NewRouter(handler *Handler, verifier middleware.TokenVerifier, rateLimit int) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		cors.New(corsConfig()),
		middleware.ErrorHandler,
		middleware.RateLimiter(rateLimit, time.Minute),
		middleware.Timeout(requestTimeout),
	)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)

		protected := api.Group("", middleware.RequireAuth(verifier))
		protected.POST("/symbols", handler.CreateSymbol)
		protected.POST("/prices/:symbol", handler.AddPrice)
		protected.GET("/prices/:symbol", handler.GetPrices)
	}

	return router
}

// corsConfig lets a browser dashboard on any origin call the stub with a bearer token.
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders("Authorization", middleware.RequestIDHeader)
	cfg.AddExposeHeaders(middleware.RequestIDHeader)
	return cfg
}
