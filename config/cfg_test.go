package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rupor-github/gencfg"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
analysis:
  extra_media: ["amzn-kf8"]
  ignore:
    - ".keep-me"
    - "/^\\.js-/"
render:
  command: "google-chrome"
  args: ["--headless=new", "--dump-dom", "{input}"]
  timeout: 15
logging:
  console:
    level: normal
  file:
    level: debug
    destination: /tmp/test.log
    mode: append
reporting:
  destination: /tmp/test-report.zip
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}

	if cfg.Render.Command != "google-chrome" {
		t.Errorf("Render.Command = %q, want google-chrome", cfg.Render.Command)
	}

	if cfg.Render.Timeout != 15 {
		t.Errorf("Render.Timeout = %d, want 15", cfg.Render.Timeout)
	}

	if len(cfg.Analysis.Ignore) != 2 {
		t.Errorf("Analysis.Ignore length = %d, want 2", len(cfg.Analysis.Ignore))
	}

	if len(cfg.Analysis.ExtraMedia) != 1 || cfg.Analysis.ExtraMedia[0] != "amzn-kf8" {
		t.Errorf("Analysis.ExtraMedia = %v, want [amzn-kf8]", cfg.Analysis.ExtraMedia)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configWithUnknown := `version: 1
unknown_field: value
`

	if err := os.WriteFile(configPath, []byte(configWithUnknown), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_values.yaml")

	// Invalid version number
	configWithInvalidVersion := `version: 2
render:
  command: "chromium"
`

	if err := os.WriteFile(configPath, []byte(configWithInvalidVersion), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected validation error for invalid version")
	}
}

func TestLoadConfiguration_BadTimeout(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad_timeout.yaml")

	configWithBadTimeout := `version: 1
render:
  timeout: 0
`

	if err := os.WriteFile(configPath, []byte(configWithBadTimeout), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected validation error for zero timeout")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Analysis: AnalysisConfig{
			ExtraMedia: []string{"amzn-kf8"},
			Ignore:     []string{".keep-me"},
		},
		Render: RenderConfig{
			Command: "chromium",
			Args:    []string{"--dump-dom", "{input}"},
			Timeout: 30,
		},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Dump() returned empty data")
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, false)
	if err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Version != cfg.Version {
		t.Errorf("Version mismatch after dump/load: got %d, want %d", cfg2.Version, cfg.Version)
	}
	if cfg2.Render.Command != cfg.Render.Command {
		t.Errorf("Render.Command mismatch after dump/load: got %q, want %q", cfg2.Render.Command, cfg.Render.Command)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Render.Command == "" {
		t.Error("Render.Command should have a default")
	}

	if cfg.Render.Timeout < 1 {
		t.Errorf("Render.Timeout = %d, should be at least 1", cfg.Render.Timeout)
	}

	if len(cfg.Render.Args) == 0 {
		t.Error("Render.Args should have defaults")
	}

	var haveInput bool
	for _, a := range cfg.Render.Args {
		if a == "{input}" {
			haveInput = true
		}
	}
	if !haveInput {
		t.Error("default render args should pass {input} to the browser")
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.yaml")

	// Partial config that only overrides some values
	partialConfig := `version: 1
render:
  timeout: 7
`

	if err := os.WriteFile(configPath, []byte(partialConfig), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	// Check that explicitly set value is used
	if cfg.Render.Timeout != 7 {
		t.Errorf("Render.Timeout = %d, want 7 from config file", cfg.Render.Timeout)
	}

	// Check that default values are still present for unspecified fields
	if cfg.Render.Command == "" {
		t.Error("Render.Command should keep its default value")
	}
}
