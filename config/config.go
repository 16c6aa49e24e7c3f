// Package config loads key server settings from layered YAML files.
//
// A deployment ships <base>.yaml with the defaults and may drop a
// <base>.local.yaml next to it for host specific overrides:
//
//	key_dir: keys
//	listen_addr: 0.0.0.0:8080
//	metrics_addr: 127.0.0.1:8090
//	log:
//	  json: true
//	  service: keyserver
//
// Files are applied in order, each one overriding only the keys it sets. A
// relative key_dir is resolved against the directory of the file that set it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type LogSettings struct {
	JSON    bool   `yaml:"json"`
	Debug   bool   `yaml:"debug"`
	Service string `yaml:"service"`
}

// Settings are the values a key server process runs with.
type Settings struct {
	KeyDir       string      `yaml:"key_dir"`
	ListenAddr   string      `yaml:"listen_addr"`
	MetricsAddr  string      `yaml:"metrics_addr"`
	Log          LogSettings `yaml:"log"`
	EnablePprof  bool        `yaml:"pprof"`
	DrainSeconds int64       `yaml:"drain_seconds"`
}

// ConfFiles returns the absolute paths of <base>.yaml and <base>.local.yaml
// in dir, in that order, skipping the ones that do not exist.
func ConfFiles(dir, base string) ([]string, error) {
	var files []string
	for _, suffix := range []string{".yaml", ".local.yaml"} {
		path, err := filepath.Abs(filepath.Join(dir, base+suffix))
		if err != nil {
			return nil, err
		}

		_, err = os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not stat config file: %w", err)
		}
		files = append(files, path)
	}
	return files, nil
}

// Load applies files over defaults in order and returns the result.
func Load(defaults Settings, files ...string) (*Settings, error) {
	settings := defaults
	for _, file := range files {
		if err := loadFile(&settings, file); err != nil {
			return nil, err
		}
	}
	return &settings, nil
}

func loadFile(settings *Settings, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	// yaml.v3 leaves fields that are absent from the document untouched.
	if err := yaml.Unmarshal(data, settings); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", file, err)
	}

	var keyDir struct {
		KeyDir *string `yaml:"key_dir"`
	}
	if err := yaml.Unmarshal(data, &keyDir); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", file, err)
	}
	if keyDir.KeyDir != nil && *keyDir.KeyDir != "" && !filepath.IsAbs(*keyDir.KeyDir) {
		settings.KeyDir = filepath.Join(filepath.Dir(file), *keyDir.KeyDir)
	}
	return nil
}
