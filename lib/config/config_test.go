package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	CfgFile = ""
	t.Cleanup(func() {
		viper.Reset()
		CfgFile = ""
	})
}

func TestCurrentConfigDefaultsRoundTrip(t *testing.T) {
	resetViper(t)
	setDefaults()

	assert.Equal(t, Defaults(), CurrentConfig())
}

func TestInitConfigReadsExplicitFile(t *testing.T) {
	resetViper(t)
	file := filepath.Join(t.TempDir(), "paramtune.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
document: /robot/User/xrobot.yaml
remote:
  host: 10.0.0.7
  port: 6000
  dial_timeout: 2s
modules:
  - tag: armor_detector
    id: ArmorDetector_1
`), 0o644))
	CfgFile = file

	require.NoError(t, InitConfig())
	cfg := CurrentConfig()

	assert.Equal(t, "/robot/User/xrobot.yaml", cfg.Document)
	assert.Equal(t, "10.0.0.7", cfg.Remote.Host)
	assert.Equal(t, 6000, cfg.Remote.Port)
	assert.Equal(t, 2*time.Second, cfg.Remote.DialTimeout)
	assert.Equal(t, 5*time.Second, cfg.Remote.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, []ModuleConfig{{Tag: "armor_detector", ID: "ArmorDetector_1"}}, cfg.Modules)
	assert.Equal(t, "127.0.0.1:5555", cfg.Server.ListenAddress)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	resetViper(t)
	CfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	assert.Error(t, InitConfig())
}

func TestInitConfigWithoutDefaultFile(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, InitConfig())
	assert.Equal(t, Defaults().Remote, CurrentConfig().Remote)
}

func TestEnvironmentOverrides(t *testing.T) {
	resetViper(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARAMTUNE_REMOTE_PORT", "7000")
	t.Setenv("PARAMTUNE_SERVER_MAX_LINES_PER_SECOND", "25")

	require.NoError(t, InitConfig())
	cfg := CurrentConfig()
	assert.Equal(t, 7000, cfg.Remote.Port)
	assert.Equal(t, 25.0, cfg.Server.MaxLinesPerSecond)
}

func TestCurrentConfigFallsBackToDefaultModules(t *testing.T) {
	resetViper(t)
	setDefaults()
	viper.Set("modules", "not a list")

	assert.Equal(t, Defaults().Modules, CurrentConfig().Modules)
}

func TestBuildParamTuneDirPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".paramtune"), BuildParamTuneDirPath())
}
