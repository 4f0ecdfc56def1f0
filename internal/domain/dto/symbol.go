package dto

import "github.com/guttosm/tickprobe/internal/domain/models"

// SymbolRequest is the body of POST /symbols.
type SymbolRequest struct {
	SymbolCode string `json:"symbolCode" binding:"required" example:"AAPL"`
	Name       string `json:"name" binding:"required" example:"Apple Inc."`
	Type       string `json:"type" binding:"required" example:"STOCK"`
}

// NewSymbolRequest converts a symbol into its wire form.
func NewSymbolRequest(s models.Symbol) SymbolRequest {
	return SymbolRequest{SymbolCode: s.Code, Name: s.Name, Type: s.Type}
}

// Symbol converts the request back into the domain model.
func (r SymbolRequest) Symbol() models.Symbol {
	return models.Symbol{Code: r.SymbolCode, Name: r.Name, Type: r.Type}
}
