package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/supplysathi/marketplace/internal/logging"
	"github.com/supplysathi/marketplace/internal/models"
	"github.com/supplysathi/marketplace/internal/repo"
	"github.com/supplysathi/marketplace/internal/search"
	"github.com/supplysathi/marketplace/internal/util"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// Service manages the product catalog. ES is optional; when nil products
// are simply not indexed.
type Service struct {
	Repo *repo.GormRepo
	ES   *elasticsearch.Client
}

type ProductInput struct {
	Name        string
	Description string
	Unit        string
	Price       int64
	Stock       int
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, page, size int) (int64, []models.Product, error) {
	offset, limit := util.Calculate(page, size)
	return s.Repo.ListProducts(ctx, offset, limit)
}

func (s *Service) ListSupplierProducts(ctx context.Context, supplierID uuid.UUID) ([]models.Product, error) {
	return s.Repo.ListProductsBySupplier(ctx, supplierID)
}

func (s *Service) CreateProduct(ctx context.Context, supplierID uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Product{
		ID:          uuid.New(),
		SupplierID:  supplierID,
		Name:        in.Name,
		Description: in.Description,
		Unit:        in.Unit,
		Price:       in.Price,
		Stock:       in.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	return p, nil
}

func (s *Service) PatchProduct(ctx context.Context, supplierID, id uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	p, err := s.ownedProduct(ctx, supplierID, id)
	if err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Unit = in.Unit
	p.Price = in.Price
	p.Stock = in.Stock
	p.UpdatedAt = time.Now().UTC()

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, p)
	return p, nil
}

// Restock increments stock; orders placed meanwhile are unaffected.
func (s *Service) Restock(ctx context.Context, supplierID, id uuid.UUID, qty int) (*models.Product, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: restock quantity must be >= 1", ErrValidation)
	}
	if _, err := s.ownedProduct(ctx, supplierID, id); err != nil {
		return nil, err
	}

	p, err := s.Repo.IncrementStock(ctx, id, qty)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}

	s.index(ctx, p)
	return p, nil
}

// DeleteProduct retires a product. Existing orders keep their own
// price/name snapshot, so nothing else changes.
func (s *Service) DeleteProduct(ctx context.Context, supplierID, id uuid.UUID) error {
	if _, err := s.ownedProduct(ctx, supplierID, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.ES != nil {
		if err := search.RemoveProduct(ctx, s.ES, id.String()); err != nil {
			logging.FromContext(ctx).Error("product deindex failed", "product_id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) ownedProduct(ctx context.Context, supplierID, id uuid.UUID) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SupplierID != supplierID {
		return nil, fmt.Errorf("%w: product belongs to another supplier", ErrForbidden)
	}
	return p, nil
}

func (s *Service) index(ctx context.Context, p *models.Product) {
	if s.ES == nil {
		return
	}
	if err := search.IndexProduct(ctx, s.ES, p); err != nil {
		logging.FromContext(ctx).Error("product index failed", "product_id", p.ID, "error", err)
	}
}

func validateInput(in ProductInput) error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name required", ErrValidation)
	case in.Unit == "":
		return fmt.Errorf("%w: unit required", ErrValidation)
	case in.Price < 0:
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	return nil
}
