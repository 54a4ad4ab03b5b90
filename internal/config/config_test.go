package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Env:                "production",
		WorkerPoolSize:     5,
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		PhoneRegion:        "CO",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	c := validConfig()
	c.JWTSecret = "corto"
	assert.ErrorContains(t, c.Validate(), "32 characters")

	c.Env = "development"
	assert.NoError(t, c.Validate())

	c = validConfig()
	c.JWTSecret = ""
	c.WorkerPoolSize = 0
	err := c.Validate()
	assert.ErrorContains(t, err, "JWT_SECRET is required")
	assert.ErrorContains(t, err, "WORKER_POOL_SIZE")

	c = validConfig()
	c.JWTRefreshHours = 1
	assert.Error(t, c.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	c := &Config{}
	assert.Empty(t, c.AllowedOrigins())

	c.CORSOrigins = "https://app.creditapp.co, ,http://localhost:5173 "
	assert.Equal(t, []string{"https://app.creditapp.co", "http://localhost:5173"}, c.AllowedOrigins())
}
