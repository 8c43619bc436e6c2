package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/bobby-s-dev/weather-paper/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"DEBUG", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"nonsense", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := newLogger(tt.level)
			assert.Equal(t, tt.wantDebug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.wantInfo, logger.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestOpenStoreBackends(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.Settings.Backend = "memory"
	store, closeStore, err := openStore(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	closeStore()

	cfg.Settings.Backend = "file"
	cfg.Settings.Path = filepath.Join(t.TempDir(), "settings.yaml")
	store, closeStore, err = openStore(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	closeStore()
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Settings.Backend = "etcd"

	store, _, err := openStore(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "etcd")
}
