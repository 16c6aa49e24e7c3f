package flags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ruteri/ssh-key-server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runLoadSettings(t *testing.T, args ...string) *config.Settings {
	t.Helper()

	var settings *config.Settings
	app := &cli.App{
		Name: "test",
		Flags: append([]cli.Flag{
			KeyDirFlag,
			ConfigDirFlag,
			ListenAddrFlag,
			LogServiceFlagFn("keyserver"),
		}, CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			var err error
			settings, err = LoadSettings(cCtx)
			return err
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return settings
}

func TestLoadSettings_Defaults(t *testing.T) {
	settings := runLoadSettings(t)

	assert.Equal(t, "keys", settings.KeyDir)
	assert.Equal(t, "127.0.0.1:8080", settings.ListenAddr)
	assert.Equal(t, "keyserver", settings.Log.Service)
	assert.Equal(t, int64(45), settings.DrainSeconds)
}

func TestLoadSettings_FlagsOverrideFiles(t *testing.T) {
	dir := t.TempDir()
	conf := "key_dir: data\nlisten_addr: 0.0.0.0:80\npprof: true\nlog:\n  service: from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigBaseName+".yaml"), []byte(conf), 0644))

	settings := runLoadSettings(t, "--config-dir", dir, "--listen-addr", "127.0.0.1:9000")

	assert.Equal(t, filepath.Join(dir, "data"), settings.KeyDir, "file value beats flag default")
	assert.Equal(t, "127.0.0.1:9000", settings.ListenAddr, "explicit flag beats file value")
	assert.True(t, settings.EnablePprof)
	assert.Equal(t, "from-file", settings.Log.Service)
}

func TestConfigureServer(t *testing.T) {
	cfg := ConfigureServer(&config.Settings{ListenAddr: ":8080", DrainSeconds: 3}, nil)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "3s", cfg.DrainDuration.String())
}
