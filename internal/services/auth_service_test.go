package services

import (
	"testing"
	"time"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"
	"factory_crm_backend/pkg/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUserRepo struct {
	users  map[string]models.User
	hashes map[string]string
}

func (r *memoryUserRepo) CreateUser(_ repositories.SQLExecutor, u *models.User, hash string) (int64, error) {
	if _, ok := r.users[u.Username]; ok {
		return 0, repositories.ErrDuplicateKey
	}
	u.ID = int64(len(r.users) + 1)
	u.IsActive = true
	r.users[u.Username] = *u
	r.hashes[u.Username] = hash
	return u.ID, nil
}

func (r *memoryUserRepo) FindByUsername(username string) (*models.User, string, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, "", repositories.ErrNotFound
	}
	return &u, r.hashes[username], nil
}

func (r *memoryUserRepo) FindByID(id int64) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryUserRepo) ListActiveByRoles(roles []string) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		for _, role := range roles {
			if u.IsActive && u.Role == role {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func TestAuthCreateUserAndLogin(t *testing.T) {
	require.NoError(t, utils.ConfigureJWT("test-secret-with-enough-length", time.Hour))
	repo := &memoryUserRepo{users: map[string]models.User{}, hashes: map[string]string{}}
	svc := &authService{userRepo: repo, tx: fakeTx{}, hashCost: bcrypt.MinCost}

	user, err := svc.CreateUser(CreateUserRequest{Username: "dana", Password: "s3cret-pass", Role: "Designer"})
	require.NoError(t, err)
	require.Equal(t, models.RoleDesigner, user.Role)

	_, err = svc.CreateUser(CreateUserRequest{Username: "dana", Password: "s3cret-pass", Role: "worker"})
	require.ErrorIs(t, err, ErrUsernameExists)
	_, err = svc.CreateUser(CreateUserRequest{Username: "eve", Password: "s3cret-pass", Role: "owner"})
	require.ErrorIs(t, err, ErrRoleNotFound)

	resp, err := svc.Login(LoginRequest{Username: "dana", Password: "s3cret-pass"})
	require.NoError(t, err)
	claims, err := utils.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, models.RoleDesigner, claims.Role)

	_, err = svc.Login(LoginRequest{Username: "dana", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(LoginRequest{Username: "nobody", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	profile, err := svc.GetUserProfile(user.ID)
	require.NoError(t, err)
	require.Equal(t, "dana", profile.Username)
	_, err = svc.GetUserProfile(99)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	require.NoError(t, utils.ConfigureJWT("test-secret-with-enough-length", time.Hour))

	t.Run("seeds the first admin once", func(t *testing.T) {
		repo := &memoryUserRepo{users: map[string]models.User{}, hashes: map[string]string{}}
		svc := &authService{userRepo: repo, tx: fakeTx{}, hashCost: bcrypt.MinCost}

		created, err := svc.EnsureAdmin("root", "bootstrap-pass")
		require.NoError(t, err)
		require.True(t, created)
		require.Equal(t, models.RoleAdmin, repo.users["root"].Role)

		resp, err := svc.Login(LoginRequest{Username: "root", Password: "bootstrap-pass"})
		require.NoError(t, err)
		require.Equal(t, models.RoleAdmin, resp.User.Role)

		created, err = svc.EnsureAdmin("other", "another-pass")
		require.NoError(t, err)
		require.False(t, created)
		require.NotContains(t, repo.users, "other")
	})

	t.Run("not configured", func(t *testing.T) {
		repo := &memoryUserRepo{users: map[string]models.User{}, hashes: map[string]string{}}
		svc := &authService{userRepo: repo, tx: fakeTx{}, hashCost: bcrypt.MinCost}

		created, err := svc.EnsureAdmin("  ", "")
		require.NoError(t, err)
		require.False(t, created)
		require.Empty(t, repo.users)
	})

	t.Run("short password", func(t *testing.T) {
		repo := &memoryUserRepo{users: map[string]models.User{}, hashes: map[string]string{}}
		svc := &authService{userRepo: repo, tx: fakeTx{}, hashCost: bcrypt.MinCost}

		_, err := svc.EnsureAdmin("root", "short")
		require.ErrorIs(t, err, ErrValidation)
		require.Empty(t, repo.users)
	})

	t.Run("blank username rejected on create", func(t *testing.T) {
		repo := &memoryUserRepo{users: map[string]models.User{}, hashes: map[string]string{}}
		svc := &authService{userRepo: repo, tx: fakeTx{}, hashCost: bcrypt.MinCost}

		_, err := svc.CreateUser(CreateUserRequest{Username: "   ", Password: "s3cret-pass", Role: models.RoleWorker})
		require.ErrorIs(t, err, ErrValidation)
	})
}
