package nami

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nami-dev/nami/pkg/config"
)

func mockConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Provider = "mock"
	return cfg
}

func TestNewAssemblesSystem(t *testing.T) {
	system, err := New(mockConfig(t))
	require.NoError(t, err)
	defer system.Close()

	defs := system.Strategies()
	require.Len(t, defs, 10)
	assert.Equal(t, 1, defs[0].ID)

	history, err := system.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Provider = "watson"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = mockConfig(t)
	cfg.History.Backend = "papyrus"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestRecommendDelegates(t *testing.T) {
	system, err := New(mockConfig(t))
	require.NoError(t, err)
	defer system.Close()

	assert.Equal(t, 9, system.Recommend("latest news on fusion energy"))
	assert.Equal(t, 10, system.Recommend("postgres versus mysql"))
}
