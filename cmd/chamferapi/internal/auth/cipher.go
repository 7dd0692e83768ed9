package auth

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"hash"
	"io"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	rsaKeyBits = 2048

	symmetricKeyInfo = "chamfer symmetric key"
)

var (
	// ErrDecrypt is returned when ciphertext cannot be opened with the instance keys.
	ErrDecrypt = errors.New("decrypt failed")

	// ErrVerify is returned for any token that is not a valid RS256 JWT signed by this instance.
	ErrVerify = errors.New("token verification failed")
)

// Cipher holds the process key pair and the HMAC secret. It is immutable after
// construction and safe for concurrent use.
type Cipher struct {
	secret []byte
	key    *rsa.PrivateKey
	kid    string
}

type cipherOptions struct {
	keyPEM []byte
}

// CipherOption customises NewCipher.
type CipherOption func(*cipherOptions)

// WithPrivateKeyPEM loads the key pair from a PKCS#1 or PKCS#8 PEM block instead of generating one.
func WithPrivateKeyPEM(data []byte) CipherOption {
	return func(o *cipherOptions) {
		o.keyPEM = data
	}
}

// NewCipher builds a Cipher keyed by secret. Without options a fresh RSA key pair is generated.
func NewCipher(secret string, opts ...CipherOption) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("cipher secret is required")
	}

	var o cipherOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		key *rsa.PrivateKey
		err error
	)
	if len(o.keyPEM) > 0 {
		key, err = parsePrivateKeyPEM(o.keyPEM)
	} else {
		key, err = rsa.GenerateKey(rand.Reader, rsaKeyBits)
	}
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	jwk := jose.JSONWebKey{Key: &key.PublicKey}
	thumb, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("compute key thumbprint: %w", err)
	}

	return &Cipher{
		secret: []byte(secret),
		key:    key,
		kid:    base64.RawURLEncoding.EncodeToString(thumb),
	}, nil
}

// GeneratePrivateKeyPEM creates a new RSA key in the PKCS#1 PEM form accepted by WithPrivateKeyPEM.
func GeneratePrivateKeyPEM() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}

func parsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("invalid PEM block in signing key")
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("signing key is %T, want RSA", parsed)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
	}
}

// KeyID is the RFC 7638 thumbprint of the public key, used as the JWT kid.
func (c *Cipher) KeyID() string {
	return c.kid
}

// PublicKeyPEM returns the public key as a PKCS#1 "RSA PUBLIC KEY" PEM block.
func (c *Cipher) PublicKeyPEM() string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&c.key.PublicKey),
	}))
}

// PublicJWKS returns the public key as a one-entry JWK set.
func (c *Cipher) PublicJWKS() jose.JSONWebKeySet {
	return jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &c.key.PublicKey,
		KeyID:     c.kid,
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}}}
}

// Digest is the base64 HMAC-SHA512 of data keyed by the secret.
func (c *Cipher) Digest(data string) string {
	return c.DigestWith(sha512.New, data)
}

// DigestWith is Digest with another hash.
func (c *Cipher) DigestWith(h func() hash.Hash, data string) string {
	mac := hmac.New(h, c.secret)
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// DigestMatches reports whether digest is Digest(data), comparing in constant time.
func (c *Cipher) DigestMatches(data, digest string) bool {
	return hmac.Equal([]byte(c.Digest(data)), []byte(digest))
}

// Encrypt seals data with RSA-OAEP (SHA-256) under the public key.
func (c *Cipher) Encrypt(data string) (string, error) {
	out, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &c.key.PublicKey, []byte(data), nil)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (c *Cipher) Decrypt(data string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", ErrDecrypt
	}
	out, err := rsa.DecryptOAEP(sha256.New(), nil, c.key, raw, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(out), nil
}

// SealSymmetric encrypts data with AES-256-GCM under a key derived from key.
// The random nonce is prefixed to the returned ciphertext.
func (c *Cipher) SealSymmetric(key, data string) (string, error) {
	aead, err := symmetricAEAD(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(data), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenSymmetric reverses SealSymmetric.
func (c *Cipher) OpenSymmetric(key, data string) (string, error) {
	aead, err := symmetricAEAD(key)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(raw) < aead.NonceSize() {
		return "", ErrDecrypt
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	out, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(out), nil
}

func symmetricAEAD(key string) (cipher.AEAD, error) {
	derived := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(key), nil, []byte(symmetricKeyInfo)), derived); err != nil {
		return nil, fmt.Errorf("derive symmetric key: %w", err)
	}
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("create block cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

type signOptions struct {
	expiry  time.Duration
	subject string
	now     func() time.Time
}

// SignOption customises SignToken.
type SignOption func(*signOptions)

// WithExpiry sets exp to now+d. Zero leaves the token without expiry.
func WithExpiry(d time.Duration) SignOption {
	return func(o *signOptions) {
		o.expiry = d
	}
}

// WithSubject sets the sub claim.
func WithSubject(sub string) SignOption {
	return func(o *signOptions) {
		o.subject = sub
	}
}

// SignToken signs claims as an RS256 JWT with the kid header set.
func (c *Cipher) SignToken(claims map[string]any, opts ...SignOption) (string, error) {
	o := signOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	now := o.now()
	mc["iat"] = now.Unix()
	if o.expiry > 0 {
		mc["exp"] = now.Add(o.expiry).Unix()
	}
	if o.subject != "" {
		mc["sub"] = o.subject
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, mc)
	token.Header["kid"] = c.kid
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks an RS256 JWT against the public key and returns its claims.
// Every failure, including another signing algorithm, is ErrVerify.
func (c *Cipher) VerifyToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return &c.key.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithIssuedAt())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerify, err)
	}
	return claims, nil
}
