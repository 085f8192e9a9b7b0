package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tiendita/tiendita-backend/internal/app/model"
	"github.com/tiendita/tiendita-backend/internal/app/repository"
	"github.com/tiendita/tiendita-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductReferenced = errors.New("product is referenced by cart or order items")
	ErrInvalidPrice      = errors.New("price must be non-negative")
	ErrInvalidStock      = errors.New("stock must be non-negative")
)

type ProductService interface {
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(product *model.Product) error
	UpdateProduct(product *model.Product) error
	DeleteProduct(id uint) error
	ExportXLSX() ([]byte, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"search": filter.Search,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})

	products, err := s.productRepo.FindAll(filter)
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}

	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	logger.Debug("Fetching product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	return product, nil
}

func (s *productService) CreateProduct(product *model.Product) error {
	logger.Info("Creating product", map[string]interface{}{
		"name":  product.Name,
		"price": product.Price,
		"stock": product.Stock,
	})

	if err := validateProduct(product); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"name":  product.Name,
			"error": err.Error(),
		})
		return err
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (s *productService) UpdateProduct(product *model.Product) error {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := validateProduct(product); err != nil {
		logger.Warn("Product validation failed", map[string]interface{}{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		return err
	}

	existing, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.Stock = product.Stock
	if product.ImageURL != "" {
		existing.ImageURL = product.ImageURL
	}

	if err := s.productRepo.Update(existing); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	*product = *existing

	logger.Info("Product updated successfully", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

// DeleteProduct refuses to delete a product that cart or order items still
// reference. Order history must survive catalog changes.
func (s *productService) DeleteProduct(id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	refs, err := s.productRepo.CountReferences(id)
	if err != nil {
		logger.Error("Failed to count product references", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	if refs > 0 {
		logger.Warn("Cannot delete product: still referenced", map[string]interface{}{
			"product_id": id,
			"references": refs,
		})
		return ErrProductReferenced
	}

	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// ExportXLSX renders the full catalog as a spreadsheet for back-office use.
func (s *productService) ExportXLSX() ([]byte, error) {
	logger.Info("Exporting product catalog to XLSX")

	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		logger.Error("Failed to fetch products for export", err)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Name", "Description", "Price", "Stock", "ImageURL", "CreatedAt"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, p := range products {
		values := []interface{}{
			p.ID,
			p.Name,
			p.Description,
			strconv.FormatInt(p.Price, 10),
			p.Stock,
			p.ImageURL,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to serialize XLSX export", err)
		return nil, fmt.Errorf("failed to serialize export: %w", err)
	}

	logger.Info("Product catalog exported", map[string]interface{}{
		"product_count": len(products),
	})
	return buf.Bytes(), nil
}

func validateProduct(product *model.Product) error {
	if product.Price < 0 {
		return ErrInvalidPrice
	}
	if product.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}
