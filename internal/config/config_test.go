package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[host]
name = "arena"
frame_rate = "33ms"
max_entities = 0

[logging]
format = "json"
`))
	require.NoError(t, err)
	assert.Equal(t, "arena", cfg.Host.Name)
	assert.Equal(t, 33*time.Millisecond, cfg.Host.FrameRate)
	assert.Equal(t, 20*time.Millisecond, cfg.Host.FixedStep)
	assert.Equal(t, 0, cfg.Host.MaxEntities)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "scripts", cfg.Scripting.Dir)
}

func TestParseEmptyIsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParseRejectsBadHost(t *testing.T) {
	for name, doc := range map[string]string{
		"frame_rate":      "[host]\nframe_rate = \"0s\"",
		"fixed_step":      "[host]\nfixed_step = \"-1ms\"",
		"max_fixed_steps": "[host]\nmax_fixed_steps = 0",
		"max_entities":    "[host]\nmax_entities = -3",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorContains(t, err, name)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickpoll.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scripting]\ndir = \"lua\"\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lua", cfg.Scripting.Dir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[host\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config")
}
