package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/applytrack/pkg/config"
)

type cachedConfig struct {
	Name string `env:"CONFIG_TEST_NAME" envDefault:"first"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_SECRET,required"`
}

type parsedConfig struct {
	Port int `env:"CONFIG_TEST_PORT" envDefault:"8080"`
}

func TestLoad(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "loaded")

	var cfg cachedConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "loaded", cfg.Name)

	t.Setenv("CONFIG_TEST_NAME", "changed")
	var again cachedConfig
	require.NoError(t, config.Load(&again))
	assert.Equal(t, "loaded", again.Name, "second load must come from cache")
}

func TestLoadErrors(t *testing.T) {
	var nilCfg *cachedConfig
	assert.ErrorIs(t, config.Load(nilCfg), config.ErrNilPointer)

	var cfg requiredConfig
	assert.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad(&requiredConfig{}) })
}

func TestParse(t *testing.T) {
	t.Setenv("CONFIG_TEST_PORT", "9090")

	var cfg parsedConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, 9090, cfg.Port)
}
