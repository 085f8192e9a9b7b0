package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tiendita/tiendita-backend/internal/app/model"
	"github.com/tiendita/tiendita-backend/internal/db"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCartRepository(testDB)
	return testDB, repo
}

func createCartTestUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		IsActive:     true,
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createCartTestProduct(t *testing.T, testDB *gorm.DB, name string, price int64, stock int) *model.Product {
	product := &model.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func TestCartRepository_FindOrCreateByUserID(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	user := createCartTestUser(t, testDB, "maria@example.com")

	// First call creates the cart
	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Equal(t, user.ID, cart.UserID)
	assert.Empty(t, cart.Items)

	// Second call returns the same cart
	again, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartRepository_FindByUserID(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	user := createCartTestUser(t, testDB, "maria@example.com")
	product := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)

	_, err := repo.FindByUserID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, repo.CreateItem(item))

	found, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	// Items come back with their product preloaded
	assert.Equal(t, "Espresso Beans", found.Items[0].Product.Name)
	assert.Equal(t, int64(3198), found.TotalPrice())
}

func TestCartRepository_FindItemByCartAndProduct(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	user := createCartTestUser(t, testDB, "maria@example.com")
	product := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	_, err = repo.FindItemByCartAndProduct(cart.ID, product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(item))

	found, err := repo.FindItemByCartAndProduct(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
}

func TestCartRepository_UpdateAndDeleteItem(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	user := createCartTestUser(t, testDB, "maria@example.com")
	product := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(item))

	item.Quantity = 5
	require.NoError(t, repo.UpdateItem(item))

	found, err := repo.FindItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)

	require.NoError(t, repo.DeleteItem(item.ID))

	_, err = repo.FindItemByID(item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_DeleteItemsByCartID(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	user := createCartTestUser(t, testDB, "maria@example.com")
	beans := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)
	mug := createCartTestProduct(t, testDB, "Ceramic Mug", 899, 10)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: beans.ID, Quantity: 1}))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: mug.ID, Quantity: 2}))

	require.NoError(t, repo.DeleteItemsByCartID(cart.ID))

	found, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}

func TestCartRepository_DeleteStaleItems(t *testing.T) {
	testDB, repo := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	user := createCartTestUser(t, testDB, "maria@example.com")
	beans := createCartTestProduct(t, testDB, "Espresso Beans", 1599, 20)
	mug := createCartTestProduct(t, testDB, "Ceramic Mug", 899, 10)

	cart, err := repo.FindOrCreateByUserID(user.ID)
	require.NoError(t, err)

	stale := &model.CartItem{CartID: cart.ID, ProductID: beans.ID, Quantity: 1}
	fresh := &model.CartItem{CartID: cart.ID, ProductID: mug.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(stale))
	require.NoError(t, repo.CreateItem(fresh))

	// Age the first item past the cutoff
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, testDB.Model(&model.CartItem{}).
		Where("id = ?", stale.ID).
		Update("updated_at", old).Error)

	removed, err := repo.DeleteStaleItems(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	found, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, fresh.ID, found.Items[0].ID)
}
