package dto

import "github.com/shopspring/decimal"

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Code   string `form:"code"`
	Name   string `form:"name"`
	Kind   string `form:"kind"` // physical | reservable | service
	Active string `form:"active"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateProductRequest struct {
	Code        string          `json:"code"        validate:"required,min=3"`
	Name        string          `json:"name"        validate:"required,min=2"`
	Description *string         `json:"description"`
	Kind        string          `json:"kind"        validate:"omitempty,oneof=physical reservable service"`
	CostPrice   decimal.Decimal `json:"cost_price"  validate:"min=0"`
	SalePrice   decimal.Decimal `json:"sale_price"  validate:"required"`
	StockQty    int             `json:"stock_qty"   validate:"min=0"`
	MinStock    int             `json:"min_stock"   validate:"min=0"`
}

type AdjustStockRequest struct {
	Delta int    `json:"delta" validate:"required"`
	Note  string `json:"note"  validate:"required,min=3"`
}

type ProductResponse struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	SalePrice decimal.Decimal `json:"sale_price"`
	StockQty  int             `json:"stock_qty"`
	Active    bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
