package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("successful", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.users.CreateUser(ctx, "test@email.com", "Testpass123", "Tester")
		require.NoError(t, err)

		assert.Equal(t, "test@email.com", u.Email)
		assert.Equal(t, "Tester", u.Name)
		assert.NotEqual(t, "Testpass123", u.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("Testpass123")))
		assert.True(t, u.IsActive)
		assert.False(t, u.IsStaff)
		assert.False(t, u.IsSuperuser)
		assert.Nil(t, u.Token)
	})

	t.Run("email normalized", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.users.CreateUser(ctx, " Test@EMAIL.com ", "testpass123", "")
		require.NoError(t, err)
		assert.Equal(t, "test@email.com", u.Email)
	})

	t.Run("empty email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.CreateUser(ctx, "", "testpass123", "")
		verr, ok := err.(*models.ValidationError)
		require.True(t, ok)
		assert.Equal(t, []string{models.MsgRequired}, verr.Fields["email"])
	})

	t.Run("duplicate email differing in case", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, "test@email.com")

		_, err := f.users.CreateUser(ctx, "TEST@email.com", "testpass123", "")
		verr, ok := err.(*models.ValidationError)
		require.True(t, ok)
		assert.Equal(t, []string{models.MsgEmailTaken}, verr.Fields["email"])
	})

	t.Run("superuser", func(t *testing.T) {
		f := newFixture(t)
		u, err := f.users.CreateSuperuser(ctx, "test@email.com", "testpass123", "")
		require.NoError(t, err)
		assert.True(t, u.IsStaff)
		assert.True(t, u.IsSuperuser)
	})
}

func TestUpdateSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "test@email.com")

	name := "diffname"
	pass := "newpassword"
	got, err := f.users.UpdateSelf(ctx, u, &name, &pass)
	require.NoError(t, err)

	assert.Equal(t, "diffname", got.Name)
	assert.Equal(t, "test@email.com", got.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("newpassword")))

	// nothing supplied leaves the record alone
	same, err := f.users.UpdateSelf(ctx, got, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, got.Password, same.Password)
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()

	t.Run("successful and stable", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, "test@email.com")

		token, err := f.users.IssueToken(ctx, "Test@Email.com", "testpass123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		again, err := f.users.IssueToken(ctx, "test@email.com", "testpass123")
		require.NoError(t, err)
		assert.Equal(t, token, again)

		u, err := f.users.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "test@email.com", u.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		f.user(t, "test@email.com")

		_, err := f.users.IssueToken(ctx, "test@email.com", "wrongpassword")
		assert.ErrorIs(t, err, ErrLoginPasswordDoesNotMatch)
		assert.True(t, IsLoginFailure(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.users.IssueToken(ctx, "test@email.com", "testpass123")
		assert.ErrorIs(t, err, ErrLoginUserNotFound)
		assert.True(t, IsLoginFailure(err))

		// a miss is checked against a hash of the configured cost
		cost, err := bcrypt.Cost([]byte(f.users.dummyHash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost, cost)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newFixture(t)
		u := f.user(t, "test@email.com")
		require.NoError(t, f.db.Model(&db.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)

		_, err := f.users.IssueToken(ctx, "test@email.com", "testpass123")
		assert.ErrorIs(t, err, ErrLoginUserInactive)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.users.Resolve(ctx, "no-such-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
