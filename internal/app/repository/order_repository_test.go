package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tiendita/tiendita-backend/internal/app/model"
	"github.com/tiendita/tiendita-backend/internal/db"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewOrderRepository(testDB)
	return testDB, repo
}

func TestOrderRepository_Create(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createCartTestUser(t, testDB, "maria@example.com")
	product := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)

	order := &model.Order{
		UserID:     user.ID,
		TotalPrice: 3198,
		Items: []model.OrderItem{
			{ProductID: product.ID, Quantity: 2, Price: 1599},
		},
	}
	err := repo.Create(order)
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	// Items are created alongside the order
	assert.NotZero(t, order.Items[0].ID)
}

func TestOrderRepository_FindByID(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	user := createCartTestUser(t, testDB, "maria@example.com")
	product := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)

	order := &model.Order{
		UserID:     user.ID,
		TotalPrice: 1599,
		Items: []model.OrderItem{
			{ProductID: product.ID, Quantity: 1, Price: 1599},
		},
	}
	require.NoError(t, repo.Create(order))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, int64(1599), found.Items[0].Price)
	assert.Equal(t, "Espresso Beans", found.Items[0].Product.Name)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByUserID(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	maria := createCartTestUser(t, testDB, "maria@example.com")
	diego := createCartTestUser(t, testDB, "diego@example.com")
	product := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)

	for _, userID := range []uint{maria.ID, maria.ID, diego.ID} {
		order := &model.Order{
			UserID:     userID,
			TotalPrice: 1599,
			Items: []model.OrderItem{
				{ProductID: product.ID, Quantity: 1, Price: 1599},
			},
		}
		require.NoError(t, repo.Create(order))
	}

	orders, err := repo.FindByUserID(maria.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, maria.ID, o.UserID)
	}

	orders, err = repo.FindByUserID(9999)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepository_FindAll(t *testing.T) {
	testDB, repo := setupOrderTest(t)
	defer db.CleanupTestDB(testDB)

	maria := createCartTestUser(t, testDB, "maria@example.com")
	diego := createCartTestUser(t, testDB, "diego@example.com")
	product := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)

	for _, userID := range []uint{maria.ID, diego.ID} {
		order := &model.Order{
			UserID:     userID,
			TotalPrice: 1599,
			Items: []model.OrderItem{
				{ProductID: product.ID, Quantity: 1, Price: 1599},
			},
		}
		require.NoError(t, repo.Create(order))
	}

	orders, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
