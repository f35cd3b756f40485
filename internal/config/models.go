package config

import (
	"time"

	"github.com/muurk/avrctl/internal/protocol"
)

// Registry represents the entire user configuration file.
// It stores the known receivers and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by receiver identifier (MAC)
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents one configured receiver. Entries are created by
// discovery or by hand and keyed by the receiver's identifier.
type Device struct {
	Name     string    `yaml:"name,omitempty"`      // User-friendly name
	Model    string    `yaml:"model,omitempty"`     // Reported model, e.g. TX-NR686
	Address  string    `yaml:"address"`             // Host or IP
	Port     int       `yaml:"port,omitempty"`      // Control port, defaults to 60128
	AlwaysOn bool      `yaml:"always_on,omitempty"` // Keep the control connection open in standby
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool   `yaml:"auto_discover"`         // Run discovery on startup when no device is named
	DiscoverTimeout int    `yaml:"discover_timeout"`      // Discovery timeout in seconds
	PollInterval    int    `yaml:"poll_interval"`         // Background refresh period in seconds
	VolumeStep      int    `yaml:"volume_step,omitempty"` // Units per volume up/down keypress
	DefaultDevice   string `yaml:"default_device,omitempty"`
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 5,
			PollInterval:    10,
			VolumeStep:      2,
		},
	}
}

// GetDevice retrieves a receiver entry by identifier.
// Returns nil if the receiver is not in the registry.
func (r *Registry) GetDevice(id string) *Device {
	return r.Devices[id]
}

// EnsureDevice returns the entry for an identifier, creating a default
// one if none exists yet.
func (r *Registry) EnsureDevice(id string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[id]; exists {
		return device
	}

	device := &Device{Port: protocol.Port}
	r.Devices[id] = device
	return device
}

// UpdateDeviceSeen records a fresh sighting of a receiver: its current
// address, model, and the time.
func (r *Registry) UpdateDeviceSeen(id, address, model string, port int) {
	device := r.EnsureDevice(id)
	device.Address = address
	device.Port = port
	if model != "" {
		device.Model = model
	}
	device.LastSeen = time.Now()
}

// SetDeviceName sets a user-friendly name for a receiver.
func (r *Registry) SetDeviceName(id, name string) {
	device := r.EnsureDevice(id)
	device.Name = name
}

// ResolveDevice finds an entry by identifier or by its user-friendly
// name, identifier match first. Returns the identifier and entry.
func (r *Registry) ResolveDevice(idOrName string) (string, *Device) {
	if device, ok := r.Devices[idOrName]; ok {
		return idOrName, device
	}
	for id, device := range r.Devices {
		if device.Name == idOrName {
			return id, device
		}
	}
	return "", nil
}

// DefaultDevice returns the configured default receiver, or the sole
// entry when exactly one receiver is known.
func (r *Registry) DefaultDevice() (string, *Device) {
	if r.Preferences != nil && r.Preferences.DefaultDevice != "" {
		if id, device := r.ResolveDevice(r.Preferences.DefaultDevice); device != nil {
			return id, device
		}
	}
	if len(r.Devices) == 1 {
		for id, device := range r.Devices {
			return id, device
		}
	}
	return "", nil
}
