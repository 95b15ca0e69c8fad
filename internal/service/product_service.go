package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductService interface {
	Create(ctx context.Context, req *model.Product, actor string) error
	Update(ctx context.Context, id uuid.UUID, req *model.Product, actor string) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter repository.ProductFilter, page repository.Page) ([]model.Product, int64, error)
}

type productService struct {
	productRepo repository.ProductRepository
	notifier    Notifier
	log         *zap.Logger
}

func NewProductService(pRepo repository.ProductRepository, notifier Notifier, log *zap.Logger) ProductService {
	return &productService{
		productRepo: pRepo,
		notifier:    orNop(notifier),
		log:         log.Named("products"),
	}
}

func (s *productService) Create(ctx context.Context, req *model.Product, actor string) error {
	if err := validator.Check(req); err != nil {
		return err
	}

	req.ID = uuid.Nil
	req.CreatedBy = actor
	req.UpdatedBy = actor
	if err := s.productRepo.Create(ctx, req); err != nil {
		return err
	}

	s.notifier.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "product_created",
		Actor:   actor,
		Message: fmt.Sprintf("%s created product '%s'", actor, req.Name),
		Data:    map[string]interface{}{"id": req.ID, "name": req.Name, "stock": req.Stock},
	})
	return nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.Product, actor string) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStock := existing.Stock

	existing.Name = req.Name
	existing.ProductCode = req.ProductCode
	existing.Barcode = req.Barcode
	existing.ImageURL = req.ImageURL
	existing.CostPrice = req.CostPrice
	existing.SellingPrice = req.SellingPrice
	existing.UnitPrice = req.UnitPrice
	existing.Supplier = req.Supplier
	existing.Stock = req.Stock
	existing.Memo = req.Memo
	existing.UpdatedBy = actor

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	if oldStock != existing.Stock {
		s.log.Info("stock edited by hand",
			zap.String("product_id", id.String()),
			zap.Int("old_stock", oldStock),
			zap.Int("new_stock", existing.Stock),
			zap.String("actor", actor))
	}
	s.notifier.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "product_updated",
		Actor:   actor,
		Message: fmt.Sprintf("%s updated product '%s'", actor, existing.Name),
		Data:    map[string]interface{}{"id": existing.ID, "old_stock": oldStock, "new_stock": existing.Stock},
	})
	return existing, nil
}

// Delete removes a product nothing refers to.
func (s *productService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	inUse, err := s.productRepo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrProductInUse
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.String("product_id", id.String()), zap.String("actor", actor))
	return nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter, page repository.Page) ([]model.Product, int64, error) {
	return s.productRepo.FindPage(ctx, filter, page)
}
