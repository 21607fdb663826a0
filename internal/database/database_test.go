package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/accounts-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateUser_AssignsIDAndTimestamps(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.CreateUser(ctx, models.User{ID: "caller-supplied", Name: "Ana", Email: "ana@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "caller-supplied", u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
	assert.Equal(t, "h", u.PasswordHash)

	other, err := db.CreateUser(ctx, models.User{Name: "Bo", Email: "bo@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, u.ID, other.ID)
}

func TestFind_MissingReturnsNil(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.FindUserByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = db.FindUserByEmail(ctx, "nope@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindUserByEmail_IsCaseSensitive(t *testing.T) {
	db := New()
	ctx := context.Background()
	_, err := db.CreateUser(ctx, models.User{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	u, err := db.FindUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)

	u, err = db.FindUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	db := New()
	ctx := context.Background()
	created, err := db.CreateUser(ctx, models.User{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	found, err := db.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	found.Name = "Mutated"

	again, err := db.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.Name)
}

func TestUpdateUser(t *testing.T) {
	db := New()
	ctx := context.Background()

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return fixed }

	created, err := db.CreateUser(ctx, models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "old"})
	require.NoError(t, err)

	updated, err := db.UpdateUser(ctx, created.ID, models.UserChanges{PasswordHash: strPtr("new")})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)
	assert.Equal(t, "new", updated.PasswordHash)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "UpdatedAt must advance even with a frozen clock")

	missing, err := db.UpdateUser(ctx, "nope", models.UserChanges{Name: strPtr("X")})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteUser(t *testing.T) {
	db := New()
	ctx := context.Background()
	created, err := db.CreateUser(ctx, models.User{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	ok, err := db.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetAllUsers(t *testing.T) {
	db := New()
	ctx := context.Background()

	all, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := db.CreateUser(ctx, models.User{Name: "User", Email: e})
		require.NoError(t, err)
	}

	all, err = db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestConcurrentCreates(t *testing.T) {
	db := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = db.CreateUser(ctx, models.User{Name: "User", Email: "u@example.com"})
		}()
	}
	wg.Wait()

	n, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}
