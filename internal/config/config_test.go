// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"svbind-cli/internal/issue"
	"svbind-cli/internal/testutil"
	"svbind-cli/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ContainerEngine != ContainerEnginePodman {
		t.Errorf("expected default container engine to be podman, got %s", cfg.ContainerEngine)
	}

	if cfg.Build.InContainer {
		t.Error("expected default builds to run on the host")
	}

	if cfg.Build.Image != "" {
		t.Errorf("expected default build image to be empty (resolved lazily), got %q", cfg.Build.Image)
	}

	if cfg.Build.BuildImage() != DefaultBuildImage {
		t.Errorf("BuildImage() = %s, want %s", cfg.Build.BuildImage(), DefaultBuildImage)
	}

	if !cfg.Build.Locked {
		t.Error("expected locked builds by default")
	}

	if cfg.Android.NdkHome != "" {
		t.Errorf("expected default ndk_home to be empty, got %q", cfg.Android.NdkHome)
	}

	if cfg.Android.APILevel != DefaultAndroidAPILevel {
		t.Errorf("expected default api_level %d, got %d", DefaultAndroidAPILevel, cfg.Android.APILevel)
	}

	if cfg.Cargo.CargoExecutable() != "cargo" {
		t.Errorf("CargoExecutable() = %q, want cargo", cfg.Cargo.CargoExecutable())
	}

	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected default color scheme to be auto, got %s", cfg.UI.ColorScheme)
	}

	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}

	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config should be valid, got %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	// Reset environment for consistent testing
	originalXDGConfigHome := os.Getenv("XDG_CONFIG_HOME")
	defer func() {
		if originalXDGConfigHome != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", originalXDGConfigHome) // Test cleanup; error non-critical
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME") // Test cleanup; error non-critical
		}
	}()

	// Test with XDG_CONFIG_HOME set (on Linux)
	if runtime.GOOS == "linux" {
		testXDGPath := "/tmp/test-xdg-config"
		restoreXDG := testutil.MustSetenv(t, "XDG_CONFIG_HOME", testXDGPath)

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() returned error: %v", err)
		}

		expected := filepath.Join(testXDGPath, AppName)
		if dir != expected {
			t.Errorf("ConfigDir() = %s, want %s", dir, expected)
		}

		// Test with XDG_CONFIG_HOME unset
		restoreXDG()
		testutil.MustUnsetenv(t, "XDG_CONFIG_HOME")
		dir, err = ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() returned error: %v", err)
		}

		// Should use ~/.config/svbind
		home, _ := os.UserHomeDir()
		expected = filepath.Join(home, ".config", AppName)
		if dir != expected {
			t.Errorf("ConfigDir() = %s, want %s", dir, expected)
		}
	}
}

func TestEnsureConfigDir(t *testing.T) {
	// Use a temp directory for testing
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	// Use direct override instead of env vars (more reliable across platforms)
	SetConfigDirOverride(configDir)
	defer Reset()

	err := EnsureConfigDir()
	if err != nil {
		t.Fatalf("EnsureConfigDir() returned error: %v", err)
	}

	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Errorf("EnsureConfigDir() did not create directory %s", configDir)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	// Use a temp directory for testing
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	SetConfigDirOverride(configDir)
	defer Reset()

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() returned error: %v", err)
	}

	// Create a custom config
	cfg := &Config{
		ContainerEngine: ContainerEngineDocker,
		Build: BuildConfig{
			InContainer: true,
			Image:       "ghcr.io/example/cross:v1",
			Jobs:        4,
			Locked:      false,
		},
		Android: AndroidConfig{
			NdkHome:  "/opt/android-ndk-r26b",
			APILevel: 28,
		},
		Cargo: CargoConfig{
			Path: "/usr/local/bin/cargo",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeDark,
			Verbose:     true,
		},
	}

	// Save the config
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(configDir)})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// Verify loaded config matches what we saved
	if loaded.ContainerEngine != ContainerEngineDocker {
		t.Errorf("ContainerEngine = %s, want docker", loaded.ContainerEngine)
	}

	if !loaded.Build.InContainer {
		t.Error("Build.InContainer = false, want true")
	}

	if loaded.Build.Image != "ghcr.io/example/cross:v1" {
		t.Errorf("Build.Image = %q, want ghcr.io/example/cross:v1", loaded.Build.Image)
	}

	if loaded.Build.Jobs != 4 {
		t.Errorf("Build.Jobs = %d, want 4", loaded.Build.Jobs)
	}

	if loaded.Build.Locked {
		t.Error("Build.Locked = true, want false")
	}

	if loaded.Android.NdkHome != "/opt/android-ndk-r26b" {
		t.Errorf("Android.NdkHome = %q, want /opt/android-ndk-r26b", loaded.Android.NdkHome)
	}

	if loaded.Android.APILevel != 28 {
		t.Errorf("Android.APILevel = %d, want 28", loaded.Android.APILevel)
	}

	if loaded.Cargo.Path != "/usr/local/bin/cargo" {
		t.Errorf("Cargo.Path = %q, want /usr/local/bin/cargo", loaded.Cargo.Path)
	}

	if loaded.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("UI.ColorScheme = %s, want dark", loaded.UI.ColorScheme)
	}

	if !loaded.UI.Verbose {
		t.Error("UI.Verbose = false, want true")
	}
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(configDir)})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// Should return default values
	defaults := DefaultConfig()
	if cfg.ContainerEngine != defaults.ContainerEngine {
		t.Errorf("ContainerEngine = %s, want %s", cfg.ContainerEngine, defaults.ContainerEngine)
	}

	if cfg.Android.APILevel != defaults.Android.APILevel {
		t.Errorf("Android.APILevel = %d, want %d", cfg.Android.APILevel, defaults.Android.APILevel)
	}

	if cfg.Build.Locked != defaults.Build.Locked {
		t.Errorf("Build.Locked = %v, want %v", cfg.Build.Locked, defaults.Build.Locked)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)
	testutil.MustMkdirAll(t, configDir, 0o755)

	// Only override the engine; everything else must keep defaults.
	cfgPath := filepath.Join(configDir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cfgPath, []byte(`container_engine: "docker"`), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: types.FilesystemPath(configDir)})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.ContainerEngine != ContainerEngineDocker {
		t.Errorf("ContainerEngine = %s, want docker", cfg.ContainerEngine)
	}
	if cfg.Android.APILevel != DefaultAndroidAPILevel {
		t.Errorf("Android.APILevel = %d, want default %d", cfg.Android.APILevel, DefaultAndroidAPILevel)
	}
	if !cfg.Build.Locked {
		t.Error("Build.Locked should keep its default (true)")
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	// Use a temp directory for testing
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	SetConfigDirOverride(configDir)
	defer Reset()

	err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() returned error: %v", err)
	}

	// Check that file was created
	expectedPath := filepath.Join(configDir, ConfigFileName+"."+ConfigFileExt)
	if _, statErr := os.Stat(expectedPath); os.IsNotExist(statErr) {
		t.Errorf("CreateDefaultConfig() did not create file at %s", expectedPath)
	}

	// Read the file and verify it has content
	content, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	if len(content) == 0 {
		t.Error("config file is empty")
	}

	// The generated file must itself load cleanly.
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(expectedPath)})
	if err != nil {
		t.Fatalf("generated default config does not load: %v", err)
	}
	if cfg.ContainerEngine != ContainerEnginePodman {
		t.Errorf("generated config engine = %s, want podman", cfg.ContainerEngine)
	}

	// Calling again should not error (file already exists)
	err = CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() returned error on second call: %v", err)
	}
}

func TestConstants(t *testing.T) {
	if AppName != "svbind" {
		t.Errorf("AppName = %s, want svbind", AppName)
	}

	if ConfigFileName != "config" {
		t.Errorf("ConfigFileName = %s, want config", ConfigFileName)
	}

	if ConfigFileExt != "cue" {
		t.Errorf("ConfigFileExt = %s, want cue", ConfigFileExt)
	}
}

func TestLoad_CustomPath_Valid(t *testing.T) {
	tmpDir := t.TempDir()
	customConfigPath := filepath.Join(tmpDir, "custom-config.cue")

	validConfig := `container_engine: "docker"
build: {
	in_container: true
}
`
	if err := os.WriteFile(customConfigPath, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("failed to write custom config: %v", err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(customConfigPath)})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.ContainerEngine != ContainerEngineDocker {
		t.Errorf("ContainerEngine = %s, want docker", cfg.ContainerEngine)
	}
	if !cfg.Build.InContainer {
		t.Error("Build.InContainer = false, want true")
	}
}

func TestLoad_CustomPath_NotFound_ReturnsError(t *testing.T) {
	nonExistentPath := filepath.Join(t.TempDir(), "does-not-exist", "config.cue")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(nonExistentPath)})
	if err == nil {
		t.Fatal("expected Load() to return error for non-existent config file")
	}

	// Verify error contains actionable context
	errStr := err.Error()
	if !strings.Contains(errStr, "load configuration") {
		t.Errorf("error should contain 'load configuration', got: %s", errStr)
	}
	if !strings.Contains(errStr, nonExistentPath) {
		t.Errorf("error should contain the path, got: %s", errStr)
	}
	if !strings.Contains(errStr, "config file not found") {
		t.Errorf("error should contain 'config file not found', got: %s", errStr)
	}

	// Verify suggestions are present via ActionableError type
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("expected error to be *issue.ActionableError")
	}
	if len(ae.Suggestions) == 0 {
		t.Error("expected ActionableError to have suggestions")
	}
	foundSuggestion := false
	for _, s := range ae.Suggestions {
		if strings.Contains(s, "Verify the file path is correct") {
			foundSuggestion = true
			break
		}
	}
	if !foundSuggestion {
		t.Errorf("expected suggestion 'Verify the file path is correct', got: %v", ae.Suggestions)
	}
}

func TestLoad_CustomPath_InvalidCUE_ReturnsError(t *testing.T) {
	tmpDir := t.TempDir()
	customConfigPath := filepath.Join(tmpDir, "invalid-config.cue")

	invalidConfig := `this is not valid CUE syntax {{{{`
	if err := os.WriteFile(customConfigPath, []byte(invalidConfig), 0o644); err != nil {
		t.Fatalf("failed to write invalid config: %v", err)
	}

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(customConfigPath)})
	if err == nil {
		t.Fatal("expected Load() to return error for invalid CUE config file")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "load configuration") {
		t.Errorf("error should contain 'load configuration', got: %s", errStr)
	}
	if !strings.Contains(errStr, customConfigPath) {
		t.Errorf("error should contain the path, got: %s", errStr)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "wrong engine", content: `container_engine: "containerd"`},
		{name: "wrong type", content: `container_engine: 123`},
		{name: "negative jobs", content: "build: {jobs: -1}"},
		{name: "api level too low", content: "android: {api_level: 19}"},
		{name: "api level too high", content: "android: {api_level: 99}"},
		{name: "unknown field", content: `frobnicate: true`},
		{name: "empty ndk_home", content: `android: {ndk_home: ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			cfgPath := filepath.Join(tmpDir, "config.cue")
			if err := os.WriteFile(cfgPath, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: types.FilesystemPath(cfgPath)})
			if err == nil {
				t.Fatalf("expected Load() to reject %q", tt.content)
			}
		})
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: types.FilesystemPath(t.TempDir())})
	if err == nil {
		t.Fatal("expected Load() to fail with canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got %v", err)
	}
}

func TestGenerateCUE_OmitsEmptyOptionalFields(t *testing.T) {
	cfg := DefaultConfig()
	out := GenerateCUE(cfg)

	if strings.Contains(out, "ndk_home") {
		t.Error("GenerateCUE should omit empty ndk_home")
	}
	if strings.Contains(out, "image:") {
		t.Error("GenerateCUE should omit empty image")
	}
	if !strings.Contains(out, `container_engine: "podman"`) {
		t.Errorf("GenerateCUE missing engine line:\n%s", out)
	}
	if !strings.Contains(out, "api_level: 24") {
		t.Errorf("GenerateCUE missing api_level line:\n%s", out)
	}
}
