// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the pdcli settings from defaults, config files,
// environment variables and command line flags, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds every setting pdcli reads at startup.
type Config struct {
	Addr        string        `mapstructure:"addr" yaml:"addr"`
	Port        int           `mapstructure:"port" yaml:"port"`
	GUID        string        `mapstructure:"guid" yaml:"guid,omitempty"`
	Language    string        `mapstructure:"language" yaml:"language"`
	Prompt      string        `mapstructure:"prompt" yaml:"prompt"`
	HistorySize int           `mapstructure:"history_size" yaml:"history_size"`
	StateDir    string        `mapstructure:"state_dir" yaml:"state_dir,omitempty"`
	StateEnv    string        `mapstructure:"state_env" yaml:"state_env"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Verbose     bool          `mapstructure:"verbose" yaml:"-"`
}

// Defaults returns the built-in values for every key.
func Defaults() map[string]any {
	return map[string]any{
		"addr":         "paradrop.org",
		"port":         10000,
		"guid":         "",
		"language":     "en",
		"prompt":       "pd> ",
		"history_size": 20,
		"state_dir":    "",
		"state_env":    "PDPATH",
		"timeout":      "30s",
		"verbose":      false,
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "pdcli")
		default:
			configDir = "/etc/pdcli"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "pdcli")
	}

	return filepath.Join(configDir, "pdcli.yaml"), nil
}

// LoadConfig builds a T from defaults, the first pdcli.yaml found, a local
// .pdcli.yaml, PDCLI_* environment variables and the flags of cmd.
// additionalConfigFilePath, when set, replaces the search for pdcli.yaml.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths
	v.SetConfigName("pdcli")
	v.SetConfigType("yaml")

	// 3. An explicit --config file has the highest precedence among files.
	if additionalConfigFilePath != nil && *additionalConfigFilePath != "" {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	// 4. Standard locations
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	// 5. Read in the primary config file. A missing file is fine.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	// 6. Per-directory overrides
	mergeLocalConfig(v)

	// 7. Environment. DEVID is the historical name of the developer id.
	v.AutomaticEnv()
	v.AllowEmptyEnv(false)
	v.SetEnvPrefix("pdcli")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("guid", "PDCLI_GUID", "DEVID"); err != nil {
		return c, err
	}

	// 8. Flags
	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// mergeLocalConfig merges a `.pdcli.yaml` in the current directory on top of
// the file read so far, if one exists.
func mergeLocalConfig(v *viper.Viper) {
	localConfigFile := ".pdcli.yaml"
	if _, err := os.Stat(localConfigFile); err == nil {
		v.SetConfigFile(localConfigFile)
		// a malformed local file is ignored rather than blocking startup
		_ = v.MergeInConfig()
		v.SetConfigFile("")
	}
}

// WriteConfigFile stores c as YAML in the user or system config location.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0o600)
}
