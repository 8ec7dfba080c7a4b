package main

import (
	"os"
	"strconv"
)

// DefaultSigningKey is the documented development fallback. Anything other
// than local development must set SECRET_KEY.
const DefaultSigningKey = "dev-secret-change-me"

// AppConfig is the env driven configuration. It satisfies the tasks.Config
// interface consumed by the library.
type AppConfig struct {
	SigningKey      string
	CookieName      string
	SecureCookies   bool
	TokenExpiration int
	AdminSecret     string
	DBDriver        string
	DBDSN           string
	HTTPAddr        string
	CORSOrigins     string
	StaticDir       string
	Debug           bool
}

func LoadConfig() *AppConfig {
	return &AppConfig{
		SigningKey:      envString("SECRET_KEY", DefaultSigningKey),
		CookieName:      envString("COOKIE_NAME", "access_token"),
		SecureCookies:   envBool("SECURE_COOKIES", false),
		TokenExpiration: envInt("TOKEN_EXPIRATION_HOURS", 24),
		AdminSecret:     envString("ADMIN_SECRET", ""),
		DBDriver:        envString("DB_DRIVER", "sqlite"),
		DBDSN:           envString("DB_DSN", "file:tasks.db?cache=shared&_pragma=foreign_keys(1)"),
		HTTPAddr:        envString("HTTP_ADDR", ":8080"),
		CORSOrigins:     envString("CORS_ORIGINS", ""),
		StaticDir:       envString("STATIC_DIR", "./public"),
		Debug:           envBool("DEBUG", false),
	}
}

// UsingDefaultSigningKey reports whether the dev fallback secret is active
func (c *AppConfig) UsingDefaultSigningKey() bool {
	return c.SigningKey == DefaultSigningKey
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetCookieName() string {
	return c.CookieName
}

func (c *AppConfig) GetSecureCookies() bool {
	return c.SecureCookies
}

func (c *AppConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *AppConfig) GetAdminSecret() string {
	return c.AdminSecret
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
