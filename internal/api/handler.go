package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/guttosm/tickprobe/internal/domain/dto"
	"github.com/guttosm/tickprobe/internal/domain/models"
	"github.com/guttosm/tickprobe/internal/middleware"
	"github.com/guttosm/tickprobe/internal/service"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// Handler provides the HTTP handlers of the stub price API.
//
// Responsibilities:
//   - Bind and validate JSON bodies
//   - Delegate to the market service
//   - Map service sentinel errors to HTTP status codes
type Handler struct {
	svc    service.MarketService
	tokens TokenIssuer
}

// NewHandler constructs a Handler around svc and tokens.
func NewHandler(svc service.MarketService, tokens TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// Register handles POST /api/auth/register.
//
// Responses:
//   - 201 Created: account created.
//   - 400 Bad Request: missing username or password.
//   - 409 Conflict: username already taken.
//
// Register godoc
// @Summary      Register a user
// @Description  Creates an account the load and seed tools can log in with
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.Credentials    true  "Username and password"
// @Success      201   {object}  dto.AuthResponse   "Created"
// @Failure      400   {object}  dto.ErrorResponse  "Bad Request"
// @Failure      409   {object}  dto.ErrorResponse  "Conflict"
// @Failure      500   {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req dto.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "username and password are required", err)
		return
	}

	err := h.svc.Register(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrUserExists):
		middleware.AbortWithError(c, http.StatusConflict, "username already exists", err)
		return
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to register user", err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{Message: "user registered", Username: req.Username, Success: true})
}

// Login handles POST /api/auth/login.
//
// Responses:
//   - 200 OK: {token, username, type}.
//   - 400 Bad Request: missing username or password.
//   - 401 Unauthorized: unknown user or wrong password.
//
// Login godoc
// @Summary      Log in
// @Description  Returns a bearer token for the protected routes
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.Credentials    true  "Username and password"
// @Success      200   {object}  dto.LoginResponse  "Success"
// @Failure      400   {object}  dto.ErrorResponse  "Bad Request"
// @Failure      401   {object}  dto.ErrorResponse  "Unauthorized"
// @Failure      500   {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req dto.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "username and password are required", err)
		return
	}

	if err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password); err != nil {
		middleware.AbortWithError(c, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	tok, err := h.tokens.Issue(req.Username)
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: tok, Username: req.Username, Type: "Bearer"})
}

// CreateSymbol handles POST /api/symbols.
//
// Responses:
//   - 201 Created: the stored symbol.
//   - 400 Bad Request: symbolCode, name or type missing.
//   - 409 Conflict: symbol already exists.
//
// CreateSymbol godoc
// @Summary      Create a symbol
// @Description  Registers a tradable symbol so prices can be posted for it
// @Tags         symbols
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.SymbolRequest  true  "Symbol definition"
// @Success      201   {object}  dto.SymbolRequest  "Created"
// @Failure      400   {object}  dto.ErrorResponse  "Bad Request"
// @Failure      401   {object}  dto.ErrorResponse  "Unauthorized"
// @Failure      403   {object}  dto.ErrorResponse  "Forbidden"
// @Failure      409   {object}  dto.ErrorResponse  "Conflict"
// @Router       /api/symbols [post]
func (h *Handler) CreateSymbol(c *gin.Context) {
	var req dto.SymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "symbolCode, name and type are required", err)
		return
	}

	sym, err := h.svc.CreateSymbol(c.Request.Context(), req.Symbol())
	switch {
	case errors.Is(err, service.ErrSymbolExists):
		middleware.AbortWithError(c, http.StatusConflict, "symbol already exists", err)
		return
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to create symbol", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSymbolRequest(sym))
}

// AddPrice handles POST /api/prices/:symbol.
//
// Responses:
//   - 201 Created: the stored price with its ID.
//   - 400 Bad Request: invalid body, non-positive price, bad timestamp or unknown symbol.
//
// AddPrice godoc
// @Summary      Add a price
// @Description  Stores one price observation for a known symbol
// @Tags         prices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        symbol  path      string             true  "Symbol code" example(AAPL)
// @Param        body    body      dto.PriceRequest   true  "Price observation"
// @Success      201     {object}  dto.PriceResponse  "Created"
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Failure      401     {object}  dto.ErrorResponse  "Unauthorized"
// @Failure      403     {object}  dto.ErrorResponse  "Forbidden"
// @Failure      500     {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/prices/{symbol} [post]
func (h *Handler) AddPrice(c *gin.Context) {
	var req dto.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid price body", err)
		return
	}

	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid price", err)
		return
	}
	ts, err := dto.ParseTimestamp(req.Timestamp)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid timestamp, expected "+dto.TimestampLayout, err)
		return
	}
	if req.Volume < 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "volume must not be negative", nil)
		return
	}

	stored, err := h.svc.AddPrice(c.Request.Context(), models.Price{
		SymbolCode: c.Param("symbol"),
		Price:      price,
		Volume:     req.Volume,
		Timestamp:  ts,
	})
	switch {
	case errors.Is(err, service.ErrUnknownSymbol), errors.Is(err, service.ErrInvalidPrice):
		middleware.AbortWithError(c, http.StatusBadRequest, "price rejected", err)
		return
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to store price", err)
		return
	}

	c.JSON(http.StatusCreated, toPriceResponse(stored))
}

// GetPrices handles GET /api/prices/:symbol.
//
// Responses:
//   - 200 OK: stored prices in submission order.
//   - 404 Not Found: unknown symbol or no prices yet.
//
// GetPrices godoc
// @Summary      List prices
// @Description  Returns the stored prices of a symbol in submission order
// @Tags         prices
// @Produce      json
// @Security     BearerAuth
// @Param        symbol  path      string               true  "Symbol code" example(AAPL)
// @Success      200     {array}   dto.PriceResponse    "Success"
// @Failure      401     {object}  dto.ErrorResponse    "Unauthorized"
// @Failure      403     {object}  dto.ErrorResponse    "Forbidden"
// @Failure      404     {object}  dto.ErrorResponse    "Not Found"
// @Failure      500     {object}  dto.ErrorResponse    "Internal Error"
// @Router       /api/prices/{symbol} [get]
func (h *Handler) GetPrices(c *gin.Context) {
	prices, err := h.svc.Prices(c.Request.Context(), c.Param("symbol"))
	switch {
	case errors.Is(err, service.ErrUnknownSymbol):
		middleware.AbortWithError(c, http.StatusNotFound, "symbol not found", err)
		return
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch prices", err)
		return
	case len(prices) == 0:
		middleware.AbortWithError(c, http.StatusNotFound, "no prices found", nil)
		return
	}

	out := make([]dto.PriceResponse, 0, len(prices))
	for _, p := range prices {
		out = append(out, toPriceResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func toPriceResponse(p models.Price) dto.PriceResponse {
	return dto.PriceResponse{
		ID:         p.ID,
		SymbolCode: p.SymbolCode,
		Price:      json.Number(p.Price.StringFixed(2)),
		Volume:     p.Volume,
		Timestamp:  p.Timestamp.Format(dto.TimestampLayout),
	}
}
