package x_log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemeByName(t *testing.T) {
	dark := ThemeByName("dark")
	assert.Equal(t, darkTheme.Levels, dark.Levels)
	assert.Equal(t, ThemeByName("unknown"), dark)

	light := ThemeByName("LIGHT")
	assert.Equal(t, lightOverrides.Levels["info"], light.Levels["info"])
	assert.Equal(t, darkTheme.Levels["warn"], light.Levels["warn"])
	assert.Equal(t, lightOverrides.Text, light.Text)
	assert.Equal(t, darkTheme.Dim, light.Dim)
	for _, key := range []string{"tree", "depth", "req", "module"} {
		assert.Contains(t, light.Fields, key)
	}

	// themes are copies
	light.Levels["info"] = "#000000"
	assert.Equal(t, lightOverrides.Levels["info"], ThemeByName("light").Levels["info"])
	assert.Equal(t, "#4589ff", string(darkTheme.Levels["info"]))
}

func TestLevelLabel(t *testing.T) {
	assert.Equal(t, "WRN", levelLabel("warn"))
	assert.Equal(t, "DBG", levelLabel("debug"))
	assert.Equal(t, "???", levelLabel("loud"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "dark", cfg.Style)
	assert.True(t, cfg.Console)
	assert.Equal(t, "logs/qtree.log", cfg.File.Path)
	assert.Equal(t, 10, cfg.File.MaxSizeMB)
	assert.False(t, cfg.File.Enabled)
}
