package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProductionConfig() *Config {
	return &Config{
		Port:               "9000",
		JWTSecret:          strings.Repeat("s", 40),
		DBPassword:         "a-real-password",
		ModerationEndpoint: "https://moderation.internal/v1/screen",
		Env:                "production",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("development defaults pass", func(t *testing.T) {
		cfg := &Config{Port: "9000", JWTSecret: "your-secret-key-change-in-production"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := &Config{JWTSecret: "x"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		cfg := &Config{Port: "9000"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("production passes with hardened values", func(t *testing.T) {
		assert.NoError(t, validProductionConfig().Validate())
	})

	t.Run("production rejects the default jwt secret", func(t *testing.T) {
		cfg := validProductionConfig()
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects a short jwt secret", func(t *testing.T) {
		cfg := validProductionConfig()
		cfg.JWTSecret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects a weak db password", func(t *testing.T) {
		cfg := validProductionConfig()
		cfg.DBPassword = "password"
		assert.Error(t, cfg.Validate())

		cfg.DBPassword = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires a moderation endpoint", func(t *testing.T) {
		cfg := validProductionConfig()
		cfg.ModerationEndpoint = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("prod alias gets the same checks", func(t *testing.T) {
		cfg := validProductionConfig()
		cfg.Env = "prod"
		cfg.JWTSecret = "short"
		assert.Error(t, cfg.Validate())
	})
}
