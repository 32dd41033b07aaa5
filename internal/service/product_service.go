package service

import (
	"context"

	"counterdesk/internal/dto"
	"counterdesk/internal/model"
	"counterdesk/internal/repository"

	"github.com/google/uuid"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) error
}

type productService struct {
	repo      repository.ProductRepository
	inventory InventoryService
}

func NewProductService(repo repository.ProductRepository, inventory InventoryService) ProductService {
	return &productService{repo: repo, inventory: inventory}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	kind := req.Kind
	if kind == "" {
		kind = model.ProductPhysical
	}
	minStock := req.MinStock
	if minStock == 0 {
		minStock = 5
	}
	p := &model.Product{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Kind:        kind,
		CostPrice:   req.CostPrice,
		SalePrice:   req.SalePrice,
		StockQty:    req.StockQty,
		MinStock:    minStock,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) error {
	return s.inventory.ManualAdjust(ctx, id, req.Delta, req.Note)
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID.String(),
		Code:      p.Code,
		Name:      p.Name,
		Kind:      p.Kind,
		SalePrice: p.SalePrice,
		StockQty:  p.StockQty,
		Active:    p.Active,
	}
}
