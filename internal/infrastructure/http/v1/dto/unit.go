package dto

import "github.com/shopspring/decimal"

// ConvertUnitRequest is the body of POST /units/convert.
type ConvertUnitRequest struct {
	Value decimal.Decimal `json:"value"`
	From  string          `json:"from" binding:"required"`
	To    string          `json:"to" binding:"required"`
}

type ConvertUnitResponse struct {
	Value decimal.Decimal `json:"value"`
	From  string          `json:"from"`
	To    string          `json:"to"`
}

type CompatibleQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

type CompatibleResponse struct {
	From          string `json:"from"`
	To            string `json:"to"`
	FromDimension string `json:"fromDimension"`
	ToDimension   string `json:"toDimension"`
	Compatible    bool   `json:"compatible"`
}
