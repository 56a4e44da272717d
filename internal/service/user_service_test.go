package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acqplan/internal/apperr"
	"acqplan/internal/testutil"
)

func TestUserService_CreateAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.users.CreateUser(ctx, env.admin, CreateUserRequest{
		Name:         "Maria",
		Email:        "Maria@Example.com",
		Password:     "secret123",
		Role:         "MANAGER",
		DepartmentID: env.deptA.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", created.Email)
	assert.True(t, created.IsActive)
	require.NotNil(t, created.Department)
	assert.Equal(t, "A", created.Department.Code)

	_, err = env.users.CreateUser(ctx, env.admin, CreateUserRequest{
		Name: "Other", Email: "maria@example.com", Password: "secret123", Role: "USER", DepartmentID: env.deptA.ID.String(),
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = env.users.Login(ctx, LoginUserRequest{Email: "maria@example.com", Password: "wrong"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	login, err := env.users.Login(ctx, LoginUserRequest{Email: "maria@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotNil(t, login.User.LastLogin)

	claims := &SessionClaims{}
	_, err = jwt.ParseWithClaims(login.Token, claims, func(*jwt.Token) (any, error) {
		return []byte(testutil.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), claims.Subject)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, env.deptA.ID.String(), claims.DepartmentID)
}

func TestUserService_CreateValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, env.admin, CreateUserRequest{
		Name: "X", Email: "x@example.com", Password: "secret123", Role: "SUPERUSER", DepartmentID: env.deptA.ID.String(),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = env.users.CreateUser(ctx, env.admin, CreateUserRequest{
		Name: "X", Email: "x@example.com", Password: "secret123", Role: "USER", DepartmentID: uuid.NewString(),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUserService_DeactivateBlocksLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	u, err := env.users.CreateUser(ctx, env.admin, CreateUserRequest{
		Name: "Joao", Email: "joao@example.com", Password: "secret123", Role: "USER", DepartmentID: env.deptB.ID.String(),
	})
	require.NoError(t, err)

	assert.True(t, apperr.Is(env.users.DeactivateUser(ctx, env.admin, env.admin.ID), apperr.KindConflict))
	require.NoError(t, env.users.DeactivateUser(ctx, env.admin, u.ID))

	got, err := env.users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = env.users.Login(ctx, LoginUserRequest{Email: "joao@example.com", Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestUserService_ListAndUpdate(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	managers, total, err := env.users.ListUsers(ctx, UserListQuery{Role: "MANAGER"}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, managers, 2)

	_, total, err = env.users.ListUsers(ctx, UserListQuery{DepartmentID: env.deptA.ID.String()}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	updated, err := env.users.UpdateUser(ctx, env.admin, env.colleague.ID, UpdateUserRequest{
		Role: "MANAGER", DepartmentID: env.deptB.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", updated.Role)
	assert.Equal(t, env.deptB.ID, updated.DepartmentID)

	_, err = env.users.UpdateUser(ctx, env.admin, uuid.New(), UpdateUserRequest{Name: "nobody"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
