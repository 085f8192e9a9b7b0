package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/tiendita/tiendita-backend/internal/app/model"
	"github.com/tiendita/tiendita-backend/internal/app/repository"
	"github.com/tiendita/tiendita-backend/internal/db"
)

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(testDB)
	return NewProductService(productRepo), testDB
}

func TestProductService_CreateProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	tests := []struct {
		name    string
		product *model.Product
		wantErr error
	}{
		{
			name:    "Valid product",
			product: &model.Product{Name: "Espresso Beans", Price: 1599, Stock: 20},
			wantErr: nil,
		},
		{
			name:    "Negative price",
			product: &model.Product{Name: "Bad Price", Price: -1, Stock: 5},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "Negative stock",
			product: &model.Product{Name: "Bad Stock", Price: 100, Stock: -3},
			wantErr: ErrInvalidStock,
		},
		{
			name:    "Free product is allowed",
			product: &model.Product{Name: "Sample Sachet", Price: 0, Stock: 100},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := productService.CreateProduct(tt.product)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, tt.product.ID)
			}
		})
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product := &model.Product{Name: "Espresso Beans", Price: 1599, Stock: 20}
	require.NoError(t, productService.CreateProduct(product))

	t.Run("Valid update", func(t *testing.T) {
		update := &model.Product{ID: product.ID, Name: "Espresso Beans 500g", Price: 1499, Stock: 15}
		require.NoError(t, productService.UpdateProduct(update))

		found, err := productService.GetProductByID(product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Espresso Beans 500g", found.Name)
		assert.Equal(t, int64(1499), found.Price)
	})

	t.Run("Unknown product", func(t *testing.T) {
		update := &model.Product{ID: 9999, Name: "Ghost", Price: 1, Stock: 1}
		err := productService.UpdateProduct(update)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Invalid price", func(t *testing.T) {
		update := &model.Product{ID: product.ID, Name: "Espresso Beans", Price: -5, Stock: 15}
		err := productService.UpdateProduct(update)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	productService, testDB := setupProductServiceTest(t)

	t.Run("Unreferenced product deletes cleanly", func(t *testing.T) {
		product := &model.Product{Name: "Ceramic Mug", Price: 899, Stock: 10}
		require.NoError(t, productService.CreateProduct(product))

		require.NoError(t, productService.DeleteProduct(product.ID))

		_, err := productService.GetProductByID(product.ID)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Referenced product is protected", func(t *testing.T) {
		product := &model.Product{Name: "Espresso Beans", Price: 1599, Stock: 20}
		require.NoError(t, productService.CreateProduct(product))

		user := &model.User{Email: "maria@example.com", PasswordHash: "x", IsActive: true, Role: model.RoleUser}
		require.NoError(t, testDB.Create(user).Error)
		order := &model.Order{UserID: user.ID, TotalPrice: 1599}
		require.NoError(t, testDB.Create(order).Error)
		require.NoError(t, testDB.Create(&model.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 1, Price: 1599}).Error)

		err := productService.DeleteProduct(product.ID)
		assert.ErrorIs(t, err, ErrProductReferenced)

		// Product survives the refused delete
		_, err = productService.GetProductByID(product.ID)
		assert.NoError(t, err)
	})

	t.Run("Unknown product", func(t *testing.T) {
		err := productService.DeleteProduct(9999)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestProductService_ExportXLSX(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	require.NoError(t, productService.CreateProduct(&model.Product{Name: "Espresso Beans", Price: 1599, Stock: 20}))
	require.NoError(t, productService.CreateProduct(&model.Product{Name: "Ceramic Mug", Price: 899, Stock: 10}))

	data, err := productService.ExportXLSX()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	// Header plus one row per product
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])

	names := []string{rows[1][1], rows[2][1]}
	assert.ElementsMatch(t, []string{"Espresso Beans", "Ceramic Mug"}, names)
}
