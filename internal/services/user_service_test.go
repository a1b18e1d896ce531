package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	for _, email := range []string{"ann@example.com", "bob@example.com", "annette@corp.io"} {
		register(t, env, email)
	}

	resp, err := env.users.List(dto.UserListQuery{Search: "ANN"})
	require.NoError(t, err)
	assert.Len(t, resp.Users, 2)
	assert.EqualValues(t, 2, resp.Pagination.TotalUsers)
	assert.Equal(t, 12, resp.Pagination.Limit)

	resp, err = env.users.List(dto.UserListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Users, 1)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
}

func TestAdminUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	target := env.newUser(t, models.RoleUser)

	user, err := env.users.Update(admin, target.UserID, &dto.AdminUpdateUserRequest{Role: ptr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	_, err = env.users.Update(admin, admin.UserID, &dto.AdminUpdateUserRequest{Role: ptr(models.RoleUser)})
	assert.ErrorIs(t, err, ErrCannotModifySelf)
	_, err = env.users.Update(admin, admin.UserID, &dto.AdminUpdateUserRequest{IsActive: ptr(false)})
	assert.ErrorIs(t, err, ErrCannotModifySelf)

	_, err = env.users.Update(admin, uuid.New(), &dto.AdminUpdateUserRequest{IsActive: ptr(true)})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	owner := env.newUser(t, models.RoleUser)
	keeper := env.newUser(t, models.RoleUser)

	tour := env.newTour(t, owner, "Doomed")
	p1 := env.upload(t, owner, tour.ID, "P1")
	kept := env.newTour(t, keeper, "Kept")

	assert.ErrorIs(t, env.users.Delete(admin, admin.UserID), ErrCannotModifySelf)
	require.NoError(t, env.users.Delete(admin, owner.UserID))
	assert.ErrorIs(t, env.users.Delete(admin, owner.UserID), ErrUserNotFound)

	_, err := env.tours.Get(admin, tour.ID)
	assert.ErrorIs(t, err, ErrTourNotFound)
	assert.False(t, env.store.Exists(p1.Filename))

	_, err = env.tours.Get(keeper, kept.ID)
	assert.NoError(t, err)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 12},
		{-3, 5, 1, 5},
		{4, 500, 4, 100},
	}
	for _, tt := range tests {
		page, limit := normalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}
