package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret", time.Hour)
	token, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	sub, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestJWTRejectsForeignAndExpired(t *testing.T) {
	t.Parallel()

	issuer := NewJWTManager("secret", time.Hour)
	token, err := issuer.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewJWTManager("secret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "hunter22"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", MaxPasswordBytes)))
	assert.Error(t, ValidatePassword(strings.Repeat("x", MaxPasswordBytes+1)))

	_, err := HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}
