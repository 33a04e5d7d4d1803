package config_test

import (
	"testing"
	"time"

	"github.com/georgemunganga/vendor-categories/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vendors?sslmode=disable")
	t.Setenv("JWT_SECRET", "super-secret-key")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("STORE_BASE_URL", "https://market.example.com/store")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "https://market.example.com/store", cfg.Server.StoreBaseURL)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"JWT_SECRET": "super-secret-key"},
		},
		{
			name: "short jwt secret",
			env:  map[string]string{"DATABASE_URL": "postgres://localhost/db", "JWT_SECRET": "short"},
		},
		{
			name: "unknown log level",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/db",
				"JWT_SECRET":   "super-secret-key",
				"LOG_LEVEL":    "verbose",
			},
		},
		{
			name: "non numeric port",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/db",
				"JWT_SECRET":   "super-secret-key",
				"APP_PORT":     "http",
			},
		},
		{
			name: "relative store base url",
			env: map[string]string{
				"DATABASE_URL":   "postgres://localhost/db",
				"JWT_SECRET":     "super-secret-key",
				"STORE_BASE_URL": "store",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
