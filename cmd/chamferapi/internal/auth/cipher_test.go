package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sharedCipherOnce sync.Once
	sharedCipher     *Cipher
)

// testCipher returns one cipher per test binary; RSA generation is slow.
func testCipher(t *testing.T) *Cipher {
	t.Helper()
	sharedCipherOnce.Do(func() {
		c, err := NewCipher("test-secret")
		require.NoError(t, err)
		sharedCipher = c
	})
	require.NotNil(t, sharedCipher)
	return sharedCipher
}

func TestNewCipher_RequiresSecret(t *testing.T) {
	_, err := NewCipher("")
	assert.Error(t, err)
}

func TestCipher_PrivateKeyPEMRoundTrip(t *testing.T) {
	keyPEM, err := GeneratePrivateKeyPEM()
	require.NoError(t, err)

	a, err := NewCipher("secret", WithPrivateKeyPEM(keyPEM))
	require.NoError(t, err)
	b, err := NewCipher("secret", WithPrivateKeyPEM(keyPEM))
	require.NoError(t, err)

	assert.Equal(t, a.PublicKeyPEM(), b.PublicKeyPEM())
	assert.Equal(t, a.KeyID(), b.KeyID())

	token, err := a.SignToken(map[string]any{"id": "u1"})
	require.NoError(t, err)
	_, err = b.VerifyToken(token)
	assert.NoError(t, err)

	_, err = NewCipher("secret", WithPrivateKeyPEM([]byte("not pem")))
	assert.Error(t, err)
}

func TestCipher_PublicKeyPEM(t *testing.T) {
	c := testCipher(t)
	block, _ := pem.Decode([]byte(c.PublicKeyPEM()))
	require.NotNil(t, block)
	assert.Equal(t, "RSA PUBLIC KEY", block.Type)
}

func TestCipher_PublicJWKS(t *testing.T) {
	c := testCipher(t)
	set := c.PublicJWKS()
	require.Len(t, set.Keys, 1)
	assert.Equal(t, c.KeyID(), set.Keys[0].KeyID)
	assert.Equal(t, "RS256", set.Keys[0].Algorithm)
	assert.Equal(t, "sig", set.Keys[0].Use)
	assert.True(t, set.Keys[0].IsPublic())
}

func TestCipher_Digest(t *testing.T) {
	c := testCipher(t)

	d1 := c.Digest("password")
	assert.Equal(t, d1, c.Digest("password"))
	assert.NotEqual(t, d1, c.Digest("Password"))

	raw, err := base64.StdEncoding.DecodeString(d1)
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	other, err := NewCipher("other-secret", WithPrivateKeyPEM(mustKeyPEM(t)))
	require.NoError(t, err)
	assert.NotEqual(t, d1, other.Digest("password"))

	raw, err = base64.StdEncoding.DecodeString(c.DigestWith(sha256.New, "password"))
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	assert.True(t, c.DigestMatches("password", d1))
	assert.False(t, c.DigestMatches("password", "nope"))
}

func TestCipher_EncryptDecrypt(t *testing.T) {
	c := testCipher(t)

	sealed, err := c.Encrypt("hello")
	require.NoError(t, err)
	opened, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", opened)

	other, err := NewCipher("test-secret", WithPrivateKeyPEM(mustKeyPEM(t)))
	require.NoError(t, err)
	_, err = other.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = c.Decrypt("!!not base64!!")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestCipher_Symmetric(t *testing.T) {
	c := testCipher(t)

	a, err := c.SealSymmetric("k", "payload")
	require.NoError(t, err)
	b, err := c.SealSymmetric("k", "payload")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ per call")

	opened, err := c.OpenSymmetric("k", a)
	require.NoError(t, err)
	assert.Equal(t, "payload", opened)

	_, err = c.OpenSymmetric("wrong", a)
	assert.ErrorIs(t, err, ErrDecrypt)

	raw, _ := base64.StdEncoding.DecodeString(a)
	raw[len(raw)-1] ^= 0xff
	_, err = c.OpenSymmetric("k", base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = c.OpenSymmetric("k", base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestCipher_SignVerify(t *testing.T) {
	c := testCipher(t)

	t.Run("round trip", func(t *testing.T) {
		token, err := c.SignToken(map[string]any{"id": "u1"}, WithSubject("u1"))
		require.NoError(t, err)

		parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
		require.NoError(t, err)
		assert.Equal(t, c.KeyID(), parsed.Header["kid"])
		assert.Equal(t, "RS256", parsed.Header["alg"])

		claims, err := c.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims["id"])
		assert.Equal(t, "u1", claims["sub"])
		_, hasExp := claims["exp"]
		assert.False(t, hasExp)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := c.SignToken(map[string]any{"id": "u1"}, WithExpiry(time.Nanosecond))
		require.NoError(t, err)
		time.Sleep(1100 * time.Millisecond)
		_, err = c.VerifyToken(token)
		assert.ErrorIs(t, err, ErrVerify)
	})

	t.Run("foreign key", func(t *testing.T) {
		other, err := NewCipher("test-secret", WithPrivateKeyPEM(mustKeyPEM(t)))
		require.NoError(t, err)
		token, err := other.SignToken(map[string]any{"id": "u1"})
		require.NoError(t, err)
		_, err = c.VerifyToken(token)
		assert.ErrorIs(t, err, ErrVerify)
	})

	t.Run("HS256 signed with the public key is rejected", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1"})
		token, err := forged.SignedString([]byte(c.PublicKeyPEM()))
		require.NoError(t, err)
		_, err = c.VerifyToken(token)
		assert.ErrorIs(t, err, ErrVerify)
	})

	t.Run("alg none is rejected", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "u1"})
		token, err := forged.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = c.VerifyToken(token)
		assert.ErrorIs(t, err, ErrVerify)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := c.VerifyToken(strings.Repeat("x", 20))
		assert.ErrorIs(t, err, ErrVerify)
	})
}

func mustKeyPEM(t *testing.T) []byte {
	t.Helper()
	keyPEM, err := GeneratePrivateKeyPEM()
	require.NoError(t, err)
	return keyPEM
}
