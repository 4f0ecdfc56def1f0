package models

// Symbol identifies a tradable instrument known to the price API.
type Symbol struct {
	Code string `json:"symbolCode" example:"AAPL"`
	Name string `json:"name" example:"Apple Inc."`
	Type string `json:"type" example:"STOCK"`
}
