package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CHAMFER_DATABASE_URL.
const EnvPrefix = "CHAMFER"

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN)
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool

	// APISecret keys the HMAC digests used for passwords and tombstones.
	// Changing it invalidates every stored password.
	APISecret string

	// Domain scopes the credential cookie.
	Domain string

	// WhiteList holds allowed CORS origins; "*" reflects any origin.
	WhiteList []string

	// GraphQLPath is where the API is mounted.
	GraphQLPath string

	// SigningKeyPath points to a PEM RSA key. Empty generates a fresh key on every start,
	// which signs out every session on restart.
	SigningKeyPath string

	// TokenTTL bounds issued tokens; zero issues tokens without expiry.
	TokenTTL time.Duration

	TokenCacheSize  int
	SchemaCacheSize int

	MetricsEnabled bool

	// Deus is the bootstrap super-administrator. Nil when not configured.
	Deus *DeusConfig

	// S3 is the upload bucket. Nil when uploads are disabled.
	S3 *S3Config

	RateLimit RateLimitConfig
}

// DeusConfig is the master account created on startup when missing.
type DeusConfig struct {
	Email    string
	Username string
	Password string
}

// S3Config holds upload bucket settings.
type S3Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	OriginAlt string
	Endpoint  string
}

// RateLimitConfig throttles sign-in attempts per client address.
type RateLimitConfig struct {
	SignInPerMinute int
	Burst           int
}

// SetDefaults registers every key with its default so environment variables bind
// even when no config file mentions them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server_addr", ":2800")
	v.SetDefault("database_url", "file:chamfer.db?cache=shared")
	v.SetDefault("max_db_connections", 25)
	v.SetDefault("debug", false)
	v.SetDefault("api_secret", "dev")
	v.SetDefault("domain", "localhost")
	v.SetDefault("white_list", []string{"*"})
	v.SetDefault("graphql_path", "/graphql")
	v.SetDefault("signing_key_path", "")
	v.SetDefault("token_ttl", time.Duration(0))
	v.SetDefault("token_cache_size", 1024)
	v.SetDefault("schema_cache_size", 128)
	v.SetDefault("metrics_enabled", true)

	v.SetDefault("deus.email", "")
	v.SetDefault("deus.username", "")
	v.SetDefault("deus.password", "")

	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.region", "ap-northeast-2")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.origin_alt", "")
	v.SetDefault("s3.endpoint", "")

	v.SetDefault("rate_limit.sign_in_per_minute", 10)
	v.SetDefault("rate_limit.burst", 5)
}

// Load reads configuration from the global viper instance: defaults, then the
// config file if one was read, then CHAMFER_ environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:      v.GetString("database_url"),
		ServerAddr:       v.GetString("server_addr"),
		MaxDBConnections: v.GetInt("max_db_connections"),
		Debug:            v.GetBool("debug"),
		APISecret:        v.GetString("api_secret"),
		Domain:           v.GetString("domain"),
		WhiteList:        splitList(v.GetStringSlice("white_list")),
		GraphQLPath:      v.GetString("graphql_path"),
		SigningKeyPath:   v.GetString("signing_key_path"),
		TokenTTL:         v.GetDuration("token_ttl"),
		TokenCacheSize:   v.GetInt("token_cache_size"),
		SchemaCacheSize:  v.GetInt("schema_cache_size"),
		MetricsEnabled:   v.GetBool("metrics_enabled"),
		RateLimit: RateLimitConfig{
			SignInPerMinute: v.GetInt("rate_limit.sign_in_per_minute"),
			Burst:           v.GetInt("rate_limit.burst"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("api_secret is required")
	}
	if !strings.HasPrefix(cfg.GraphQLPath, "/") {
		return nil, fmt.Errorf("graphql_path must start with /, got %q", cfg.GraphQLPath)
	}

	deus := DeusConfig{
		Email:    v.GetString("deus.email"),
		Username: v.GetString("deus.username"),
		Password: v.GetString("deus.password"),
	}
	switch {
	case deus.Email != "" && deus.Username != "" && deus.Password != "":
		cfg.Deus = &deus
	case deus.Email != "" || deus.Username != "" || deus.Password != "":
		return nil, fmt.Errorf("deus requires email, username and password together")
	}

	s3 := S3Config{
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		OriginAlt: v.GetString("s3.origin_alt"),
		Endpoint:  v.GetString("s3.endpoint"),
	}
	if s3.AccessKey != "" && s3.SecretKey != "" && s3.Bucket != "" {
		cfg.S3 = &s3
	}

	return cfg, nil
}

// AllowsAnyOrigin reports whether the white list is the "*" wildcard.
func (c *Config) AllowsAnyOrigin() bool {
	for _, origin := range c.WhiteList {
		if origin == "*" {
			return true
		}
	}
	return len(c.WhiteList) == 0
}

// splitList accepts both YAML lists and comma-separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
