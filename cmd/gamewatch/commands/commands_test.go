package commands

import (
	"testing"

	"github.com/bryanchriswhite/gamewatch/internal/config"
	"github.com/jezek/xgb/xproto"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    xproto.Window
		wantErr bool
	}{
		{"0x3a00007", 0x3a00007, false},
		{"60817415", 60817415, false},
		{"0", 0, true},
		{"window", 0, true},
		{"0x1ffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindow(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestApplyOverrides(t *testing.T) {
	v := viper.New()
	v.Set("marker_atom", "MY_GAME")
	v.Set("screen", 1)
	v.Set("log_level", "debug")

	cfg := config.Defaults()
	applyOverrides(v, cfg)

	assert.Equal(t, "MY_GAME", cfg.MarkerAtom)
	assert.Equal(t, 1, cfg.Screen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.Defaults().PIDAtom, cfg.PIDAtom)
	assert.Empty(t, cfg.Display)
}

func TestApplyOverridesKeepsFileValuesWhenUnset(t *testing.T) {
	cfg := config.Defaults()
	cfg.Display = ":1"
	applyOverrides(viper.New(), cfg)
	assert.Equal(t, ":1", cfg.Display)
	assert.Equal(t, -1, cfg.Screen)
}

func TestFormatConfig(t *testing.T) {
	cfg := *config.Defaults()

	out, err := formatConfig(cfg, "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "marker_atom: STEAM_GAME")

	out, err = formatConfig(cfg, "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"marker_atom": "STEAM_GAME"`)
	assert.Contains(t, out, `"poll_interval": "50ms"`)
	assert.Contains(t, out, `"timeout": "5s"`)

	_, err = formatConfig(cfg, "toml")
	assert.Error(t, err)
}
