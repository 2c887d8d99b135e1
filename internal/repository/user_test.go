package repository

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{FirstName: "Grace", LastName: "Hopper", Email: "  Grace@Example.com ", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, "grace@example.com", user.Email)

	byEmail, err := repo.GetByEmail(ctx, "GRACE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hopper", byID.LastName)

	dup := &models.User{FirstName: "G", LastName: "H", Email: "grace@example.com", Password: "hash"}
	err = repo.Create(ctx, dup)
	assert.True(t, models.HasCode(err, models.CodeConflict))

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_GetByID_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "email"}).AddRow(1, "Ada", "ada@example.com"))

	user, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
