package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitrina/internal/core/auth"
	"vitrina/internal/core/config"
	"vitrina/internal/domain"
	"vitrina/internal/repo"
	"vitrina/pkg/utils"
)

func fixture(t *testing.T) (*Service, *repo.Stores, *auth.JWTer) {
	t.Helper()
	st := repo.NewStores(repo.NewMemoryBackend(), time.Second)
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "vitrina", TTL: time.Hour}
	hash, err := utils.HashPassword("secreto123")
	require.NoError(t, err)
	for _, u := range []domain.User{
		{ID: "ana.perez", Username: "ana.perez", Email: "Ana@Mail.cl", PasswordHash: hash, Role: domain.RoleUser},
		{ID: "eva", Username: "eva", Email: "eva@mail.cl", PasswordHash: hash, Role: domain.RoleUser},
	} {
		require.NoError(t, st.Users.Put(context.Background(), &u))
	}
	return NewService(st, j, zap.NewNop()), st, j
}

func TestLogin(t *testing.T) {
	s, _, j := fixture(t)
	ctx := context.Background()

	for _, login := range []string{"ana@mail.cl", "ANA@MAIL.CL", "ana.perez", "Ana.Perez"} {
		sess, err := s.Login(ctx, login, "secreto123")
		require.NoError(t, err, login)
		c, err := j.Parse(sess.Token)
		require.NoError(t, err)
		assert.Equal(t, "ana.perez", c.UID)
		assert.Equal(t, domain.RoleUser, c.Role)
		assert.Equal(t, "ana.perez", sess.Account.ID)
	}
}

func TestLogin_WrongCredentialsAreUnauthorized(t *testing.T) {
	s, _, _ := fixture(t)
	ctx := context.Background()

	_, err := s.Login(ctx, "ana@mail.cl", "otra-clave")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = s.Login(ctx, "nadie@mail.cl", "secreto123")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMe(t *testing.T) {
	s, _, _ := fixture(t)
	a, err := s.Me(context.Background(), "eva")
	require.NoError(t, err)
	assert.Equal(t, "eva@mail.cl", a.Email)

	_, err = s.Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsureAdmin(t *testing.T) {
	s, st, _ := fixture(t)
	ctx := context.Background()
	c := config.Admin{Email: "admin@vitrina.local", Username: "Admin", Password: "admin-pass"}

	require.NoError(t, s.EnsureAdmin(ctx, c))
	u, err := st.Users.Get(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, utils.CheckPassword("admin-pass", u.PasswordHash))

	// 再次执行不覆盖密码
	c.Password = "changed"
	require.NoError(t, s.EnsureAdmin(ctx, c))
	u, err = st.Users.Get(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("admin-pass", u.PasswordHash))

	// 已存在的普通用户被提升
	require.NoError(t, s.EnsureAdmin(ctx, config.Admin{Username: "eva", Password: "x"}))
	u, err = st.Users.Get(ctx, "eva")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	require.NoError(t, s.EnsureAdmin(ctx, config.Admin{}))
}

func TestList(t *testing.T) {
	s, _, _ := fixture(t)
	all, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	admins, err := s.List(context.Background(), domain.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, admins)

	_, err = s.List(context.Background(), "root")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSaveUsers_PartialFailure(t *testing.T) {
	s, st, _ := fixture(t)
	ctx := context.Background()

	n, err := s.SaveUsers(ctx, []UserUpdate{
		{ID: "eva", DisplayName: "Eva R.", Phone: "+56 9 1111"},
		{ID: "ghost", DisplayName: "x"},
		{ID: "ana.perez", Email: "EVA@mail.cl"},
		{ID: "ana.perez", Role: "root"},
	})
	assert.Equal(t, 1, n)
	var be *domain.BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, []string{"ana.perez", "ghost"}, be.IDs())
	assert.ErrorIs(t, be.Failed["ghost"], domain.ErrNotFound)
	assert.ErrorIs(t, be.Failed["ana.perez"], domain.ErrValidation)

	eva, err := st.Users.Get(ctx, "eva")
	require.NoError(t, err)
	assert.Equal(t, "Eva R.", eva.DisplayName)
	assert.Equal(t, "+56 9 1111", eva.Phone)
}

func TestSaveUsers_EmailConflict(t *testing.T) {
	s, _, _ := fixture(t)
	_, err := s.SaveUsers(context.Background(), []UserUpdate{{ID: "ana.perez", Email: "EVA@mail.cl"}})
	var be *domain.BatchError
	require.ErrorAs(t, err, &be)
	assert.ErrorIs(t, be.Failed["ana.perez"], domain.ErrConflict)
}

func TestPublicHidesHash(t *testing.T) {
	a := Public(&domain.User{ID: "x", PasswordHash: "h"})
	assert.Equal(t, "x", a.ID)
}
