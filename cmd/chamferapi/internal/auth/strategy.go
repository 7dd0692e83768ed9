package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/mapstructure"
)

// CredentialKey names both the cookie and the header carrying "<scheme> <token>".
const CredentialKey = "Authorization"

const (
	defaultDomain    = "localhost"
	defaultCacheSize = 1024
)

// Payload is the typed body of a verified token.
type Payload struct {
	ID string `mapstructure:"id"`
}

// AuthState is a credential that survived parsing and verification.
type AuthState struct {
	Type       string // lowercased scheme
	Credential string // raw token
	Payload    Payload
}

// Outcome classifies one Resolve call.
type Outcome string

const (
	OutcomeAbsent    Outcome = "absent"
	OutcomeMalformed Outcome = "malformed"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeVerified  Outcome = "verified"
	OutcomeCached    Outcome = "cached"
)

type verified struct {
	payload Payload
	expires time.Time // zero when the token never expires
}

// Strategy reads, verifies and issues credentials. It never touches storage.
type Strategy struct {
	cipher  *Cipher
	domain  string
	ttl     time.Duration
	secure  bool
	cache   *lru.Cache[string, verified]
	observe func(Outcome)
	now     func() time.Time
}

type strategyOptions struct {
	domain    string
	ttl       time.Duration
	secure    bool
	cacheSize int
	observe   func(Outcome)
}

// StrategyOption customises NewStrategy.
type StrategyOption func(*strategyOptions)

// WithDomain sets the cookie domain. Empty keeps the default "localhost".
func WithDomain(domain string) StrategyOption {
	return func(o *strategyOptions) {
		if domain != "" {
			o.domain = domain
		}
	}
}

// WithTokenTTL sets the lifetime of issued tokens. Zero issues tokens without expiry.
func WithTokenTTL(ttl time.Duration) StrategyOption {
	return func(o *strategyOptions) {
		o.ttl = ttl
	}
}

// WithSecureCookie marks issued cookies Secure.
func WithSecureCookie(secure bool) StrategyOption {
	return func(o *strategyOptions) {
		o.secure = secure
	}
}

// WithCacheSize bounds the verified-token cache.
func WithCacheSize(size int) StrategyOption {
	return func(o *strategyOptions) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// WithObserver is called with the outcome of every Resolve.
func WithObserver(fn func(Outcome)) StrategyOption {
	return func(o *strategyOptions) {
		o.observe = fn
	}
}

// NewStrategy builds a Strategy around cipher.
func NewStrategy(cipher *Cipher, opts ...StrategyOption) (*Strategy, error) {
	if cipher == nil {
		return nil, fmt.Errorf("strategy requires a cipher")
	}
	o := strategyOptions{domain: defaultDomain, cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := lru.New[string, verified](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create token cache: %w", err)
	}

	observe := o.observe
	if observe == nil {
		observe = func(Outcome) {}
	}

	return &Strategy{
		cipher:  cipher,
		domain:  o.domain,
		ttl:     o.ttl,
		secure:  o.secure,
		cache:   cache,
		observe: observe,
		now:     time.Now,
	}, nil
}

// Resolve extracts, parses and verifies the request credential. Any failure yields nil.
func (s *Strategy) Resolve(r *http.Request) *AuthState {
	raw := extractCredential(r)
	if raw == "" {
		s.observe(OutcomeAbsent)
		return nil
	}

	scheme, token, ok := parseCredential(raw)
	if !ok {
		s.observe(OutcomeMalformed)
		return nil
	}

	payload, outcome := s.verify(token)
	s.observe(outcome)
	if outcome != OutcomeVerified && outcome != OutcomeCached {
		return nil
	}

	return &AuthState{
		Type:       strings.ToLower(scheme),
		Credential: token,
		Payload:    payload,
	}
}

func (s *Strategy) verify(token string) (Payload, Outcome) {
	if hit, ok := s.cache.Get(token); ok {
		if hit.expires.IsZero() || s.now().Before(hit.expires) {
			return hit.payload, OutcomeCached
		}
		s.cache.Remove(token)
		return Payload{}, OutcomeInvalid
	}

	claims, err := s.cipher.VerifyToken(token)
	if err != nil {
		return Payload{}, OutcomeInvalid
	}

	var payload Payload
	if err := mapstructure.Decode(map[string]interface{}(claims), &payload); err != nil {
		return Payload{}, OutcomeInvalid
	}

	entry := verified{payload: payload}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		entry.expires = exp.Time
	}
	s.cache.Add(token, entry)

	return payload, OutcomeVerified
}

// extractCredential prefers the cookie and falls back to the header.
func extractCredential(r *http.Request) string {
	if c, err := r.Cookie(CredentialKey); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(CredentialKey)
}

// parseCredential accepts exactly "<scheme> <token>".
func parseCredential(raw string) (scheme, token string, ok bool) {
	parts := strings.Split(raw, " ")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// CookieOption adjusts the cookie written by IssueToken.
type CookieOption func(*http.Cookie)

// WithCookieMaxAge sets Max-Age on the issued cookie.
func WithCookieMaxAge(d time.Duration) CookieOption {
	return func(c *http.Cookie) {
		c.MaxAge = int(d.Seconds())
	}
}

// IssueToken signs payload, stores "<scheme> <token>" in the credential cookie and returns the token.
func (s *Strategy) IssueToken(w http.ResponseWriter, scheme string, payload Payload, opts ...CookieOption) (string, error) {
	token, err := s.cipher.SignToken(
		map[string]any{"id": payload.ID},
		WithSubject(payload.ID),
		WithExpiry(s.ttl),
	)
	if err != nil {
		return "", err
	}

	cookie := s.cookie(scheme + " " + token)
	if s.ttl > 0 {
		cookie.Expires = s.now().Add(s.ttl)
	}
	for _, opt := range opts {
		opt(cookie)
	}
	http.SetCookie(w, cookie)

	return token, nil
}

// RevokeToken clears the credential cookie.
func (s *Strategy) RevokeToken(w http.ResponseWriter) {
	cookie := s.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

func (s *Strategy) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CredentialKey,
		Value:    value,
		Domain:   s.domain,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
