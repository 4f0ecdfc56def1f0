package app

import (
	"errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/guttosm/tickprobe/config"
	"github.com/guttosm/tickprobe/internal/api"
	"github.com/guttosm/tickprobe/internal/service"
	"github.com/guttosm/tickprobe/internal/token"
)

// stubHashCost is the bcrypt cost of stub accounts; overridden in tests.
var stubHashCost = bcrypt.DefaultCost

// InitializeStub sets up the stub price API and returns a fully configured
// Gin router, a cleanup function for graceful shutdown, and any error
// encountered during initialization.
//
// Responsibilities:
//   - Creates the in-memory market service.
//   - Creates the JWT issuer from cfg.Stub.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness endpoints.
func InitializeStub(cfg config.Config) (*gin.Engine, func(), error) {
	if cfg.Stub.JWTSecret == "" {
		return nil, nil, errors.New("stub jwt secret is empty")
	}

	svc := service.NewMarketService(stubHashCost)
	issuer := token.NewIssuer(cfg.Stub.JWTSecret, cfg.Stub.TokenTTL)

	handler := api.NewHandler(svc, issuer)
	router := api.NewRouter(handler, issuer, cfg.Stub.RateLimit)

	// nothing external to check; /readyz reports ready as soon as routes are up
	api.NewHealthHandler(nil).Register(router)

	// the store is in memory; nothing to release
	cleanup := func() {}

	return router, cleanup, nil
}
