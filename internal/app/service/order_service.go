package service

import (
	"errors"
	"fmt"

	"github.com/tiendita/tiendita-backend/internal/app/model"
	"github.com/tiendita/tiendita-backend/internal/app/repository"
	"github.com/tiendita/tiendita-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyCart     = errors.New("cart is empty")
)

type OrderService interface {
	Checkout(userID uint) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	ListAllOrders() ([]model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	db        *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		db:        db,
	}
}

// Checkout materializes an order from the cart's current contents in a
// single transaction: products are row-locked, stock is decremented with a
// compare-and-decrement guard, unit prices are snapshotted into order items,
// and the cart is emptied. Any failure rolls the whole thing back.
func (s *orderService) Checkout(userID uint) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id": userID,
	})

	cart, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot checkout: no cart", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrEmptyCart
		}
		logger.Error("Failed to fetch cart for checkout", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if len(cart.Items) == 0 {
		logger.Warn("Cannot checkout: cart is empty", map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, ErrEmptyCart
	}

	logger.Debug("Processing cart items for checkout", map[string]interface{}{
		"user_id":    userID,
		"cart_id":    cart.ID,
		"item_count": len(cart.Items),
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	// Re-read the items under row locks so two checkouts of the same cart
	// serialize here; the loser sees the emptied cart, not its stale
	// pre-transaction snapshot, and cannot create a second order.
	var items []model.CartItem
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ?", cart.ID).
		Find(&items).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to read cart items during checkout", err, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, err
	}
	if len(items) == 0 {
		tx.Rollback()
		logger.Warn("Cannot checkout: cart is empty", map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, ErrEmptyCart
	}

	var (
		totalPrice int64
		orderItems []model.OrderItem
	)

	for _, cartItem := range items {
		// Lock the product row so concurrent checkouts serialize on it
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product disappeared during checkout", map[string]interface{}{
					"user_id":    userID,
					"product_id": cartItem.ProductID,
				})
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch product during checkout", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		if product.Stock < cartItem.Quantity {
			tx.Rollback()
			logger.Warn("Checkout failed: insufficient stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
				"requested":  cartItem.Quantity,
				"available":  product.Stock,
			})
			return nil, ErrInsufficientStock
		}

		// Compare-and-decrement: the stock guard re-checks inside the
		// UPDATE so checkouts on other carts cannot oversell this product
		result := tx.Model(&model.Product{}).
			Where("id = ? AND stock >= ?", product.ID, cartItem.Quantity).
			Update("stock", gorm.Expr("stock - ?", cartItem.Quantity))
		if result.Error != nil {
			tx.Rollback()
			logger.Error("Failed to decrement product stock", result.Error, map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			logger.Warn("Checkout failed: stock raced to zero", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, ErrInsufficientStock
		}

		// Snapshot quantity and unit price; later price changes must not
		// rewrite this order
		orderItems = append(orderItems, model.OrderItem{
			ProductID: cartItem.ProductID,
			Quantity:  cartItem.Quantity,
			Price:     product.Price,
		})
		totalPrice += product.Price * int64(cartItem.Quantity)
	}

	order := &model.Order{
		UserID:     userID,
		TotalPrice: totalPrice,
		Items:      orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id":     userID,
			"total_price": totalPrice,
		})
		return nil, err
	}

	cleared := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{})
	if cleared.Error != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after order creation", cleared.Error, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, cleared.Error
	}
	if cleared.RowsAffected != int64(len(items)) {
		// The locked items must still be there; anything else means the
		// cart changed under us and the order no longer matches it.
		tx.Rollback()
		err := fmt.Errorf("cart changed during checkout: cleared %d of %d items", cleared.RowsAffected, len(items))
		logger.Error("Checkout aborted", err, map[string]interface{}{
			"user_id": userID,
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":     userID,
		"order_id":    order.ID,
		"total_price": totalPrice,
		"item_count":  len(orderItems),
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})

	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return orders, nil
}

// GetOrderByID enforces ownership: another user's order reports not-found.
func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	logger.Debug("Fetching order", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"order_id": orderID,
			})
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) ListAllOrders() ([]model.Order, error) {
	logger.Debug("Listing all orders")

	orders, err := s.orderRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, err
	}

	return orders, nil
}
