package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/guttosm/tickprobe/internal/domain/models"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSymbolExists       = errors.New("symbol already exists")
	ErrUnknownSymbol      = errors.New("unknown symbol")
	ErrInvalidPrice       = errors.New("price must be positive")
)

// MarketService is the in-memory backend of the stub price API.
type MarketService interface {
	Register(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) error
	CreateSymbol(ctx context.Context, s models.Symbol) (models.Symbol, error)
	AddPrice(ctx context.Context, p models.Price) (models.Price, error)
	Prices(ctx context.Context, code string) ([]models.Price, error)
}

type marketService struct {
	mu      sync.RWMutex
	cost    int
	users   map[string][]byte
	symbols map[string]models.Symbol
	prices  map[string][]models.Price
	nextID  int64
}

// NewMarketService returns an empty store. hashCost below bcrypt.MinCost
// selects bcrypt.DefaultCost.
func NewMarketService(hashCost int) MarketService {
	if hashCost < bcrypt.MinCost {
		hashCost = bcrypt.DefaultCost
	}
	return &marketService{
		cost:    hashCost,
		users:   make(map[string][]byte),
		symbols: make(map[string]models.Symbol),
		prices:  make(map[string][]models.Price),
	}
}

func (s *marketService) Register(_ context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	s.users[username] = hash
	return nil
}

func (s *marketService) Authenticate(_ context.Context, username, password string) error {
	s.mu.RLock()
	hash, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *marketService) CreateSymbol(_ context.Context, sym models.Symbol) (models.Symbol, error) {
	sym.Code = normalizeCode(sym.Code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.symbols[sym.Code]; ok {
		return models.Symbol{}, ErrSymbolExists
	}
	s.symbols[sym.Code] = sym
	return sym, nil
}

// AddPrice stores p under its symbol and assigns it an ID.
func (s *marketService) AddPrice(_ context.Context, p models.Price) (models.Price, error) {
	p.SymbolCode = normalizeCode(p.SymbolCode)
	if !p.Price.IsPositive() {
		return models.Price{}, ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.symbols[p.SymbolCode]; !ok {
		return models.Price{}, ErrUnknownSymbol
	}
	s.nextID++
	p.ID = s.nextID
	s.prices[p.SymbolCode] = append(s.prices[p.SymbolCode], p)
	return p, nil
}

// Prices returns a copy of the stored history in insertion order.
func (s *marketService) Prices(_ context.Context, code string) ([]models.Price, error) {
	code = normalizeCode(code)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.symbols[code]; !ok {
		return nil, ErrUnknownSymbol
	}
	out := make([]models.Price, len(s.prices[code]))
	copy(out, s.prices[code])
	return out, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
