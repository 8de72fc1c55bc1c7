package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/renderer"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Version != 1 {
		t.Errorf("expected version 1, got %d", config.Version)
	}
	if config.Video.ViewMode != "normal" {
		t.Errorf("expected view mode 'normal', got '%s'", config.Video.ViewMode)
	}
	if config.Video.ScalingMethod != "nearest" {
		t.Errorf("expected scaling 'nearest', got '%s'", config.Video.ScalingMethod)
	}
	if config.Video.AdjustRefreshRate != "off" {
		t.Errorf("expected refresh 'off', got '%s'", config.Video.AdjustRefreshRate)
	}
	if errs := ValidateConfig(config, nil); len(errs) != 0 {
		t.Errorf("default config invalid: %v", errs)
	}
}

func TestAtomicWriteJSON(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "test.json")

	data := struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}{
		Name:  "test",
		Value: 42,
	}

	if err := AtomicWriteJSON(path, data); err != nil {
		t.Fatalf("AtomicWriteJSON failed: %v", err)
	}

	var result struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	if err := ReadJSON(path, &result); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	if result != data {
		t.Errorf("data mismatch: expected %+v, got %+v", data, result)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file was not cleaned up")
	}
}

func TestGetBaseDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG only applies to unix")
	}
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	Init("retrovideo-test")
	defer Init("retrovideo")

	base, err := GetBaseDir()
	if err != nil {
		t.Fatalf("GetBaseDir failed: %v", err)
	}
	if filepath.Base(base) != "retrovideo-test" {
		t.Errorf("expected app dir name in base dir, got %s", base)
	}
}

func TestLoadSaveConfig(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig on missing file: %v", err)
	}
	if config.Video.ViewMode != "normal" {
		t.Fatalf("expected defaults for missing file, got %+v", config.Video)
	}

	config.Video.ViewMode = "zoom"
	config.Video.VerticalShift = -1.5
	config.Window.Fullscreen = true
	if err := SaveConfig(config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Video != config.Video || loaded.Window != config.Window {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, config)
	}

	if err := DeleteConfig(); err != nil {
		t.Fatalf("DeleteConfig failed: %v", err)
	}
	if err := DeleteConfig(); err != nil {
		t.Errorf("DeleteConfig on missing file: %v", err)
	}
}

func TestCreateConfigIfMissing(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	if err := CreateConfigIfMissing(); err != nil {
		t.Fatalf("CreateConfigIfMissing failed: %v", err)
	}
	path, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not created: %v", err)
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	config.Video.ViewMode = "zoom"
	if err := SaveConfig(config); err != nil {
		t.Fatal(err)
	}

	// An existing file is left alone.
	if err := CreateConfigIfMissing(); err != nil {
		t.Fatalf("CreateConfigIfMissing on existing file: %v", err)
	}
	loaded, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Video.ViewMode != "zoom" {
		t.Errorf("existing config overwritten: viewMode %q", loaded.Video.ViewMode)
	}

	// Reset then recreate yields the defaults.
	if err := DeleteConfig(); err != nil {
		t.Fatal(err)
	}
	if err := CreateConfigIfMissing(); err != nil {
		t.Fatal(err)
	}
	loaded, err = LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Video.ViewMode != "normal" {
		t.Errorf("expected default viewMode after reset, got %q", loaded.Video.ViewMode)
	}
}

func TestLoadConfigFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected error for corrupt config")
	}
}

func TestLoadConfigFileKeepsZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"video": {"verticalShift": 0, "errorInAspect": 0, "viewMode": "stretch16x9"}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if config.Video.ViewMode != "stretch16x9" {
		t.Errorf("expected stretch16x9, got %s", config.Video.ViewMode)
	}
	if config.Video.ScalingMethod != "nearest" {
		t.Errorf("expected missing scaling to default, got %s", config.Video.ScalingMethod)
	}
	if config.Window.Width != 960 {
		t.Errorf("expected missing width to default, got %d", config.Window.Width)
	}
}

func TestGameSettings_ErrorInAspectPercent(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{20, 20},
		{50, 50},
		{100, 100},
		{101, 100},
		{-5, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			s := NewGameSettings(VideoConfig{ErrorInAspect: tt.in})
			if got := s.ErrorInAspect(); got != tt.want {
				t.Errorf("ErrorInAspect = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGameSettings(t *testing.T) {
	s := NewGameSettings(VideoConfig{
		ViewMode:          "widezoom",
		ScalingMethod:     "linear",
		ErrorInAspect:     150,
		AdjustRefreshRate: "onstart",
		VerticalShift:     3,
		Backend:           "opengl",
	})

	if s.ViewMode() != geometry.ViewModeWideZoom {
		t.Errorf("ViewMode = %v", s.ViewMode())
	}
	if s.ScalingMethod() != renderer.ScalingLinear {
		t.Errorf("ScalingMethod = %v", s.ScalingMethod())
	}
	if s.ErrorInAspect() != MaxErrorInAspect {
		t.Errorf("ErrorInAspect = %d, want clamped %d", s.ErrorInAspect(), MaxErrorInAspect)
	}
	if s.VerticalShift() != 2 {
		t.Errorf("VerticalShift = %v, want clamped 2", s.VerticalShift())
	}
	if s.RefreshPolicy() != RefreshOnStart {
		t.Errorf("RefreshPolicy = %v", s.RefreshPolicy())
	}
	if s.Backend() != "opengl" {
		t.Errorf("Backend = %q", s.Backend())
	}

	s.SetViewMode(geometry.ViewModeZoom)
	s.SetScalingMethod(renderer.ScalingNearest)
	cfg := s.VideoConfig()
	if cfg.ViewMode != "zoom" || cfg.ScalingMethod != "nearest" || cfg.AdjustRefreshRate != "onstart" {
		t.Errorf("VideoConfig = %+v", cfg)
	}
}

func TestGameSettingsInvalidNames(t *testing.T) {
	s := NewGameSettings(VideoConfig{ViewMode: "bogus", ScalingMethod: "bogus", AdjustRefreshRate: "bogus"})
	if s.ViewMode() != geometry.ViewModeNormal {
		t.Errorf("ViewMode = %v, want normal", s.ViewMode())
	}
	if s.ScalingMethod() != renderer.ScalingNearest {
		t.Errorf("ScalingMethod = %v, want nearest", s.ScalingMethod())
	}
	if s.RefreshPolicy() != RefreshOff {
		t.Errorf("RefreshPolicy = %v, want off", s.RefreshPolicy())
	}
}
