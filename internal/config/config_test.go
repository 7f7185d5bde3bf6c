package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "admin", cfg.App.Role)
	assert.Equal(t, 20*time.Second, cfg.DataService.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Print.Timeout)
	assert.Equal(t, "web.whatsapp.com", cfg.Chat.Host)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_SERVICE_URL", "https://books.example.com/api")
	t.Setenv("DATA_SERVICE_TIMEOUT", "5s")
	t.Setenv("APP_ROLE", "customer")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://books.example.com/api", cfg.DataService.URL)
	assert.Equal(t, 5*time.Second, cfg.DataService.Timeout)
	assert.Equal(t, "customer", cfg.App.Role)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("PRINT_TIMEOUT", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}
