// Copyright (c) 2026 Paradrop Team
// pdcli - ParaDrop command shell
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	cfg "github.com/paradrop/pdcli/internal/config"
)

// isolate points every config location at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("DEVID", "")
	t.Setenv("PDCLI_GUID", "")
	t.Chdir(tmp)
	return tmp
}

func flagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "pdcli"}
	cmd.Flags().StringP("addr", "a", "paradrop.org", "")
	cmd.Flags().IntP("port", "p", 10000, "")
	cmd.Flags().StringP("guid", "g", "", "")
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)
	got, err := cfg.LoadConfig[cfg.Config](flagCmd(), cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Addr != "paradrop.org" || got.Port != 10000 || got.Prompt != "pd> " {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.HistorySize != 20 || got.StateEnv != "PDPATH" || got.Timeout != 30*time.Second {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.GUID != "" {
		t.Fatalf("guid = %q without DEVID", got.GUID)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := isolate(t)
	yml := "addr: 10.0.0.1\nport: 8080\nlanguage: de\ntimeout: 5s\nhistory_size: 50\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Addr != "10.0.0.1" || got.Port != 8080 || got.Language != "de" {
		t.Fatalf("file values not applied: %+v", got)
	}
	if got.Timeout != 5*time.Second || got.HistorySize != 50 {
		t.Fatalf("file values not applied: %+v", got)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	tmp := isolate(t)
	missing := filepath.Join(tmp, "nope.yaml")
	if _, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &missing); err == nil {
		t.Fatalf("expected error for a missing --config file")
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("PDCLI_PORT", "9000")
	t.Setenv("DEVID", "dev-42")

	got, err := cfg.LoadConfig[cfg.Config](flagCmd(), cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Port != 9000 {
		t.Fatalf("port = %d, want 9000 from PDCLI_PORT", got.Port)
	}
	if got.GUID != "dev-42" {
		t.Fatalf("guid = %q, want dev-42 from DEVID", got.GUID)
	}
}

func TestLoadConfig_FlagsWin(t *testing.T) {
	isolate(t)
	t.Setenv("PDCLI_PORT", "9000")
	t.Setenv("DEVID", "dev-42")

	cmd := flagCmd()
	if err := cmd.Flags().Parse([]string{"-p", "7000", "-g", "dev-flag"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	got, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Port != 7000 || got.GUID != "dev-flag" {
		t.Fatalf("flags not preferred: %+v", got)
	}
}

func TestLoadConfig_LocalDotfile(t *testing.T) {
	tmp := isolate(t)
	if err := os.WriteFile(filepath.Join(tmp, ".pdcli.yaml"), []byte("prompt: \"lab> \"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Prompt != "lab> " {
		t.Fatalf("prompt = %q", got.Prompt)
	}
}

func TestWriteConfigFile_RoundTrip(t *testing.T) {
	isolate(t)

	c := cfg.Config{Addr: "pd.lab", Port: 9999, Language: "de", Prompt: "pd> ", HistorySize: 5, StateEnv: "PDPATH", Timeout: time.Minute}
	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Mode().Perm() != 0o600 {
		t.Fatalf("config file at %s: %v %v", path, fi, err)
	}

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Addr != "pd.lab" || got.Port != 9999 || got.HistorySize != 5 || got.Timeout != time.Minute {
		t.Fatalf("round trip lost values: %+v", got)
	}
}
