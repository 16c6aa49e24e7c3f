package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfFiles(t *testing.T) {
	dir := t.TempDir()

	files, err := ConfFiles(dir, "keyserver")
	require.NoError(t, err)
	assert.Empty(t, files)

	local := writeConf(t, dir, "keyserver.local.yaml", "pprof: true\n")
	mainConf := writeConf(t, dir, "keyserver.yaml", "pprof: false\n")
	writeConf(t, dir, "other.yaml", "pprof: false\n")

	files, err = ConfFiles(dir, "keyserver")
	require.NoError(t, err)
	assert.Equal(t, []string{mainConf, local}, files, "main file must come first")
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	mainConf := writeConf(t, dir, "keyserver.yaml", `
key_dir: keys
listen_addr: 0.0.0.0:8080
log:
  json: true
  service: keyserver
drain_seconds: 10
`)
	local := writeConf(t, dir, "keyserver.local.yaml", `
listen_addr: 127.0.0.1:9999
log:
  debug: true
`)

	defaults := Settings{
		KeyDir:       "/ignored",
		ListenAddr:   "127.0.0.1:8080",
		MetricsAddr:  "127.0.0.1:8090",
		DrainSeconds: 45,
	}

	settings, err := Load(defaults, mainConf, local)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "keys"), settings.KeyDir)
	assert.Equal(t, "127.0.0.1:9999", settings.ListenAddr)
	assert.Equal(t, "127.0.0.1:8090", settings.MetricsAddr, "defaults survive when no file sets them")
	assert.True(t, settings.Log.JSON)
	assert.True(t, settings.Log.Debug)
	assert.Equal(t, "keyserver", settings.Log.Service)
	assert.Equal(t, int64(10), settings.DrainSeconds)

	assert.Equal(t, "/ignored", defaults.KeyDir, "defaults are not modified")
}

func TestLoad_KeyDirResolution(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "local")
	require.NoError(t, os.Mkdir(sub, 0755))

	mainConf := writeConf(t, dir, "keyserver.yaml", "key_dir: /srv/keys\n")
	local := writeConf(t, sub, "keyserver.local.yaml", "key_dir: ../override\n")

	settings, err := Load(Settings{}, mainConf)
	require.NoError(t, err)
	assert.Equal(t, "/srv/keys", settings.KeyDir)

	settings, err = Load(Settings{}, mainConf, local)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "override"), settings.KeyDir)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(Settings{}, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeConf(t, dir, "bad.yaml", "listen_addr: [unterminated\n")
	_, err = Load(Settings{}, bad)
	assert.ErrorContains(t, err, "could not parse config file")
}
