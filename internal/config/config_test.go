package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeConfig(t, "database_url: postgres://localhost/meetings\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/meetings", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, ModeDirect, cfg.Trigger.Mode)
	assert.False(t, cfg.Trigger.Deduplicate)
	assert.Equal(t, 7*24*time.Hour, cfg.Trigger.ScheduleOffset)
	assert.Equal(t, "invitation_updates", cfg.Listener.Channel)
	assert.True(t, cfg.Listener.Enabled)
	assert.Equal(t, "MEETING_TRIGGER", cfg.Temporal.TaskQueue)
	assert.EqualValues(t, 10, cfg.Temporal.MaxAttempts)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
database_url: postgres://db/meetings
server_port: "9000"
log:
  level: debug
  format: json
trigger:
  mode: Temporal
  deduplicate: true
  schedule_offset: 48h
temporal:
  host_port: temporal:7233
  max_attempts: 3
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ModeTemporal, cfg.Trigger.Mode)
	assert.True(t, cfg.Trigger.Deduplicate)
	assert.Equal(t, 48*time.Hour, cfg.Trigger.ScheduleOffset)
	assert.Equal(t, "temporal:7233", cfg.Temporal.HostPort)
	assert.EqualValues(t, 3, cfg.Temporal.MaxAttempts)
}

func TestLoadFileEnvOverride(t *testing.T) {
	path := writeConfig(t, "database_url: postgres://file/meetings\n")
	t.Setenv("MEETINGS_DATABASE_URL", "postgres://env/meetings")
	t.Setenv("MEETINGS_TRIGGER_DEDUPLICATE", "true")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/meetings", cfg.DatabaseURL)
	assert.True(t, cfg.Trigger.Deduplicate)
}

func TestLoadFileValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing database url", body: "server_port: \"8080\"\n"},
		{name: "unknown mode", body: "database_url: postgres://x\ntrigger:\n  mode: pubsub\n"},
		{name: "non-positive offset", body: "database_url: postgres://x\ntrigger:\n  schedule_offset: 0s\n"},
		{name: "blank listener channel", body: "database_url: postgres://x\nlistener:\n  channel: \"  \"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileChannelNotRequiredWhenListenerDisabled(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "database_url: postgres://x\nlistener:\n  enabled: false\n  channel: \"\"\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Listener.Enabled)
	assert.Empty(t, cfg.Listener.Channel)
}

func TestLoadFileMissingFileWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
