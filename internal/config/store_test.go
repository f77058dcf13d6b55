package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "sidbridge") {
		t.Errorf("GetConfigDir() = %v, should contain 'sidbridge'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(dir, "sidbridge"); got != want {
		t.Errorf("GetConfigDir() = %v, want %v", got, want)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", path)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Bus.Driver != "socketcan" || cfg.Display.Row != 2 {
		t.Errorf("LoadFile() of missing file should return defaults, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Bus.Driver = "virtual"
	cfg.Bus.Channel = "desk"
	cfg.Display.SelfID = 0x32
	cfg.Simulator.Enabled = true
	cfg.LogLevel = "debug"

	if err := cfg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# sidbridge configuration file") {
		t.Error("saved file should start with the header comment")
	}
	if !strings.Contains(string(data), "self_id: 0x32") {
		t.Errorf("self_id should be written in hex:\n%s", data)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if loaded.Bus.Driver != "virtual" || loaded.Bus.Channel != "desk" {
		t.Errorf("bus = %+v", loaded.Bus)
	}
	if loaded.Display.SelfID != 0x32 {
		t.Errorf("self_id = 0x%02X, want 0x32", byte(loaded.Display.SelfID))
	}
	if !loaded.Simulator.Enabled || loaded.LogLevel != "debug" {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.GPIO.PowerPins) != 2 {
		t.Errorf("power pins = %v", loaded.GPIO.PowerPins)
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "partial file keeps defaults",
			content: `version: 1
bus:
  driver: virtual
  channel: bench
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Bus.Driver != "virtual" {
					t.Errorf("driver = %q", cfg.Bus.Driver)
				}
				if cfg.Display == nil || cfg.Display.FrameGapMS != 10 {
					t.Errorf("display defaults missing: %+v", cfg.Display)
				}
				if cfg.Monitor == nil || cfg.Monitor.Listen != ":8787" {
					t.Errorf("monitor defaults missing: %+v", cfg.Monitor)
				}
			},
		},
		{
			name: "decimal self id",
			content: `version: 1
display:
  row: 1
  self_id: 50
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Display.SelfID != 0x32 {
					t.Errorf("self_id = 0x%02X, want 0x32", byte(cfg.Display.SelfID))
				}
			},
		},
		{
			name:    "wrong version",
			content: "version: 2\n",
			wantErr: "unsupported config version",
		},
		{
			name: "row out of range",
			content: `version: 1
display:
  row: 3
`,
			wantErr: "display.row",
		},
		{
			name: "self id too large",
			content: `version: 1
display:
  row: 2
  self_id: 0x1FF
`,
			wantErr: "invalid byte value",
		},
		{
			name:    "not yaml",
			content: "version: [1\n",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadFile() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := CreateDefaultConfig(false)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	if _, err := CreateDefaultConfig(false); err == nil {
		t.Error("CreateDefaultConfig() should refuse to overwrite")
	}
	if _, err := CreateDefaultConfig(true); err != nil {
		t.Errorf("CreateDefaultConfig(force) error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Display.SelfID != 0x19 {
		t.Errorf("self_id = 0x%02X, want 0x19", byte(cfg.Display.SelfID))
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}
