package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
)

func testAuthService(t *testing.T) (*Service, *inventory.MemoryStore) {
	t.Helper()
	store := inventory.NewMemoryStore()
	svc := NewService(store, NewTokenManager("test-secret", time.Hour, "textile-api"))
	return svc, store
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := testAuthService(t)
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Alice", "Alice@Example.COM", "hunter22", "")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.Equal(t, inventory.RoleBuyer, sess.User.Role)
	assert.NotEmpty(t, sess.Token)

	// login is case-insensitive on email
	logged, err := svc.Login(ctx, "ALICE@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, logged.User.ID)

	claims, err := svc.Verify(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)
	assert.Equal(t, "buyer", claims.Role)
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := testAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "", "a@b.com", "pw", "")
	var ve *inventory.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Name, email, and password required", ve.Msg)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := testAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Alice", "a@b.com", "pw1", "")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Alice Again", "A@B.com", "pw2", "")
	assert.ErrorIs(t, err, inventory.ErrEmailTaken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := testAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Alice", "a@b.com", "right-password", "")
	require.NoError(t, err)

	// wrong password and unknown user produce the same error
	_, err = svc.Login(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, store := testAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "Admin User", "admin@intellitextile.com", "admin123"))
	require.NoError(t, svc.EnsureAdmin(ctx, "Admin User", "admin@intellitextile.com", "admin123"))

	n, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	u, err := store.GetUserByEmail(ctx, "admin@intellitextile.com")
	require.NoError(t, err)
	assert.Equal(t, inventory.RoleAdmin, u.Role)

	sess, err := svc.Login(ctx, "admin@intellitextile.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, inventory.RoleAdmin, sess.User.Role)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, VerifyPassword("s3cret", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}
