package config_test

import (
	"testing"
	"time"

	"note-app/src/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := config.LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.JWTExpiresIn)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshExpiresIn)
	assert.Equal(t, "logs", cfg.Log.Directory)
	assert.Equal(t, 3*time.Second, cfg.Client.UndoWindow)
}

func TestLoadConfig_ClientUndoWindow(t *testing.T) {
	t.Setenv("CLIENT_UNDO_WINDOW", "5s")

	cfg := config.LoadConfig()
	assert.Equal(t, 5*time.Second, cfg.Client.UndoWindow)
}

func TestLoadConfig_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("CLIENT_UNDO_WINDOW", "soon")

	cfg := config.LoadConfig()
	assert.Equal(t, 3*time.Second, cfg.Client.UndoWindow)
}
