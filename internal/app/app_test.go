package app_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/app"
	"github.com/MrJamesThe3rd/invoicer/internal/config"
)

func TestNew(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := app.New(cfg, app.Overrides{Fs: afero.NewMemMapFs()})
	require.NoError(t, err)

	assert.NotNil(t, a.Client)
	assert.NotNil(t, a.Transactions)
	assert.NotNil(t, a.Export)
	assert.Contains(t, a.Orchestrator.Templates(), "classic")
}

func TestNew_InvalidURL(t *testing.T) {
	t.Setenv("DATA_SERVICE_URL", "not a url")

	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = app.New(cfg, app.Overrides{})
	assert.Error(t, err)
}
