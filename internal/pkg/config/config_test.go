package config

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_ACCESS_SECRET":  "access-secret",
		"JWT_REFRESH_SECRET": "refresh-secret",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(baseEnv()))
	require.NoError(t, err)

	assert.Equal(t, "5100", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 60*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 7, cfg.Auth.HashCost)
	assert.True(t, cfg.Auth.MaskLoginErrors)
	assert.Equal(t, "redis", cfg.Auth.RevocationBackend)

	assert.Equal(t, "refreshToken", cfg.Cookie.Name)
	assert.True(t, cfg.Cookie.HTTPOnly)
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cfg.Cookie.SameSiteMode())
	assert.Equal(t, int64(5184000000), cfg.Cookie.MaxAge.Milliseconds())

	assert.Equal(t, []string{"http://localhost:5000", "https://nikko-develop.space"}, cfg.CORSAllowedOrigins)
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	env := baseEnv()
	delete(env, "JWT_REFRESH_SECRET")

	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	require.Error(t, err)
}

func TestLoadFrom_SharedSecretRejected(t *testing.T) {
	env := baseEnv()
	env["JWT_REFRESH_SECRET"] = env["JWT_ACCESS_SECRET"]

	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"cost too low", "HASH_COST", "2"},
		{"cost too high", "HASH_COST", "40"},
		{"negative workers", "HASH_WORKERS", "-1"},
		{"unknown backend", "REVOCATION_BACKEND", "etcd"},
		{"unknown same site", "REFRESH_COOKIE_SAME_SITE", "sometimes"},
		{"same site none without secure", "REFRESH_COOKIE_SECURE", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			env[tt.key] = tt.val
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
