package repository

import (
	"github.com/tiendita/tiendita-backend/internal/app/model"
	"github.com/tiendita/tiendita-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Search      string
	MinPrice    *int64
	MaxPrice    *int64
	InStockOnly bool
	SortBy      string // price, created_at, name
	SortAsc     bool
	Limit       int
	Offset      int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindAll(filter ProductFilter) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	CountReferences(productID uint) (int64, error)
	BulkCreate(products []model.Product, batchSize int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":  product.Name,
		"price": product.Price,
		"stock": product.Stock,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	return &product, nil
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Listing products in database", map[string]interface{}{
		"search": filter.Search,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})

	query := r.db.Model(&model.Product{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.InStockOnly {
		query = query.Where("stock > 0")
	}

	order := "created_at DESC"
	switch filter.SortBy {
	case "price":
		order = "price DESC"
		if filter.SortAsc {
			order = "price ASC"
		}
	case "name":
		order = "name DESC"
		if filter.SortAsc {
			order = "name ASC"
		}
	case "created_at":
		if filter.SortAsc {
			order = "created_at ASC"
		}
	}
	query = query.Order(order)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to list products in database", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products listed in database", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"stock":      product.Stock,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// CountReferences counts live cart items and order items pointing at the
// product. A non-zero count blocks deletion.
func (r *productRepository) CountReferences(productID uint) (int64, error) {
	var cartRefs int64
	if err := r.db.Model(&model.CartItem{}).
		Where("product_id = ?", productID).
		Count(&cartRefs).Error; err != nil {
		logger.Error("Failed to count cart item references", err, map[string]interface{}{
			"product_id": productID,
		})
		return 0, err
	}

	var orderRefs int64
	if err := r.db.Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&orderRefs).Error; err != nil {
		logger.Error("Failed to count order item references", err, map[string]interface{}{
			"product_id": productID,
		})
		return 0, err
	}

	return cartRefs + orderRefs, nil
}

// BulkCreate inserts products in batches. Used by the seed tool.
func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	logger.Debug("Bulk creating products in database", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products in database", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}

	return nil
}
