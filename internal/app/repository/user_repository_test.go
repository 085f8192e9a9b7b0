package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tiendita/tiendita-backend/internal/app/model"
	"github.com/tiendita/tiendita-backend/internal/db"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func TestUserRepository_Create(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name: "Valid user",
			user: &model.User{
				Email:        "maria@example.com",
				PasswordHash: "hashedpassword",
				FirstName:    "Maria",
				LastName:     "Lopez",
				IsActive:     true,
				Role:         model.RoleUser,
			},
			wantErr: false,
		},
		{
			name: "Duplicate email",
			user: &model.User{
				Email:        "maria@example.com",
				PasswordHash: "hashedpassword",
				FirstName:    "Other",
				LastName:     "Maria",
				IsActive:     true,
				Role:         model.RoleUser,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		Email:        "maria@example.com",
		PasswordHash: "hashedpassword",
		FirstName:    "Maria",
		LastName:     "Lopez",
		IsActive:     true,
		Role:         model.RoleUser,
	}
	err := repo.Create(user)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      uint
		wantErr bool
	}{
		{
			name:    "Existing user",
			id:      user.ID,
			wantErr: false,
		},
		{
			name:    "Non-existing user",
			id:      9999,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByID(tt.id)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, user.Email, found.Email)
				assert.Equal(t, user.FirstName, found.FirstName)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		Email:        "maria@example.com",
		PasswordHash: "hashedpassword",
		FirstName:    "Maria",
		LastName:     "Lopez",
		IsActive:     true,
		Role:         model.RoleUser,
	}
	err := repo.Create(user)
	require.NoError(t, err)

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "Existing email",
			email:   "maria@example.com",
			wantErr: false,
		},
		{
			name:    "Non-existing email",
			email:   "nobody@example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByEmail(tt.email)

			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
			} else {
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, user.ID, found.ID)
			}
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		Email:        "maria@example.com",
		PasswordHash: "hashedpassword",
		FirstName:    "Maria",
		LastName:     "Lopez",
		IsActive:     true,
		Role:         model.RoleUser,
	}
	err := repo.Create(user)
	require.NoError(t, err)

	user.FirstName = "Mariana"
	err = repo.Update(user)
	require.NoError(t, err)

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mariana", found.FirstName)
}

func TestUserRepository_Deactivate(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		Email:        "maria@example.com",
		PasswordHash: "hashedpassword",
		FirstName:    "Maria",
		LastName:     "Lopez",
		IsActive:     true,
		Role:         model.RoleUser,
	}
	err := repo.Create(user)
	require.NoError(t, err)

	err = repo.Deactivate(user.ID)
	require.NoError(t, err)

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	// Deactivating a missing user reports not found
	err = repo.Deactivate(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
