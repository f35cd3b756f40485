package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "avrctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'avrctl'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if !reg.Preferences.AutoDiscover {
		t.Error("AutoDiscover should default to true")
	}
	if reg.Preferences.DiscoverTimeout != 5 {
		t.Errorf("DiscoverTimeout = %v, want 5", reg.Preferences.DiscoverTimeout)
	}
	if reg.Preferences.PollInterval != 10 {
		t.Errorf("PollInterval = %v, want 10", reg.Preferences.PollInterval)
	}
}

func TestEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	device := reg.EnsureDevice("0009B0123456")
	if device == nil {
		t.Fatal("EnsureDevice returned nil")
	}
	if device.Port != 60128 {
		t.Errorf("new device port = %d, want 60128", device.Port)
	}

	device.Name = "Living Room"
	again := reg.EnsureDevice("0009B0123456")
	if again.Name != "Living Room" {
		t.Error("EnsureDevice replaced an existing entry")
	}
}

func TestUpdateDeviceSeen(t *testing.T) {
	reg := NewRegistry()
	reg.UpdateDeviceSeen("id1", "192.168.1.80", "TX-NR686", 60128)

	device := reg.GetDevice("id1")
	if device == nil {
		t.Fatal("device not recorded")
	}
	if device.Address != "192.168.1.80" || device.Model != "TX-NR686" {
		t.Errorf("device = %+v", device)
	}
	if device.LastSeen.IsZero() {
		t.Error("LastSeen not set")
	}

	// A later sighting without a model keeps the old one.
	reg.UpdateDeviceSeen("id1", "192.168.1.81", "", 60128)
	if got := reg.GetDevice("id1").Model; got != "TX-NR686" {
		t.Errorf("model after empty update = %q, want TX-NR686", got)
	}
}

func TestResolveDevice(t *testing.T) {
	reg := NewRegistry()
	reg.UpdateDeviceSeen("id1", "192.168.1.80", "TX-NR686", 60128)
	reg.SetDeviceName("id1", "Living Room")

	tests := []struct {
		name   string
		lookup string
		wantID string
	}{
		{"by identifier", "id1", "id1"},
		{"by friendly name", "Living Room", "id1"},
		{"unknown", "Kitchen", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, device := reg.ResolveDevice(tt.lookup)
			if id != tt.wantID {
				t.Errorf("ResolveDevice(%q) id = %q, want %q", tt.lookup, id, tt.wantID)
			}
			if (device == nil) != (tt.wantID == "") {
				t.Errorf("ResolveDevice(%q) device presence mismatch", tt.lookup)
			}
		})
	}
}

func TestDefaultDevice(t *testing.T) {
	t.Run("single entry wins", func(t *testing.T) {
		reg := NewRegistry()
		reg.UpdateDeviceSeen("only", "192.168.1.80", "", 60128)
		id, device := reg.DefaultDevice()
		if id != "only" || device == nil {
			t.Errorf("DefaultDevice() = %q, %v", id, device)
		}
	})

	t.Run("explicit preference wins over count", func(t *testing.T) {
		reg := NewRegistry()
		reg.UpdateDeviceSeen("a", "192.168.1.80", "", 60128)
		reg.UpdateDeviceSeen("b", "192.168.1.81", "", 60128)
		reg.SetDeviceName("b", "Bedroom")
		reg.Preferences.DefaultDevice = "Bedroom"

		id, _ := reg.DefaultDevice()
		if id != "b" {
			t.Errorf("DefaultDevice() id = %q, want b", id)
		}
	})

	t.Run("ambiguous without preference", func(t *testing.T) {
		reg := NewRegistry()
		reg.UpdateDeviceSeen("a", "192.168.1.80", "", 60128)
		reg.UpdateDeviceSeen("b", "192.168.1.81", "", 60128)

		if id, _ := reg.DefaultDevice(); id != "" {
			t.Errorf("DefaultDevice() id = %q, want empty", id)
		}
	})
}

func TestRegistryRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.UpdateDeviceSeen("0009B0AABBCC", "192.168.1.80", "TX-NR686", 60128)
	reg.SetDeviceName("0009B0AABBCC", "Living Room")
	reg.Devices["0009B0AABBCC"].AlwaysOn = true

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var loaded Registry
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	device := loaded.GetDevice("0009B0AABBCC")
	if device == nil {
		t.Fatal("device lost in round trip")
	}
	if device.Name != "Living Room" || device.Address != "192.168.1.80" || !device.AlwaysOn {
		t.Errorf("loaded device = %+v", device)
	}
}

func TestSaveAndLoadFromDisk(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	if runtime.GOOS != "linux" {
		t.Skip("XDG override only applies on Linux")
	}

	reg := NewRegistry()
	reg.UpdateDeviceSeen("id1", "192.168.1.80", "TX-NR686", 60128)
	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after save")
	}

	loaded, err := loadRegistryFromDisk()
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if loaded.GetDevice("id1") == nil {
		t.Error("device missing after reload")
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	if runtime.GOOS != "linux" {
		t.Skip("XDG override only applies on Linux")
	}

	configDir := filepath.Join(tmp, "avrctl")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatal(err)
	}
	bad := []byte("version: 99\n")
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), bad, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadRegistryFromDisk(); err == nil {
		t.Error("expected an error for unsupported version")
	}
}
