package avr

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/avrctl/internal/logging"
)

// DefaultPollInterval is the period of the fleet's background refresh.
const DefaultPollInterval = 10 * time.Second

// Fleet owns a set of devices and gives them a shared lifecycle: one
// merged event stream, a periodic state poller, and standby handling.
// Devices stay fully independent; one device failing never aborts
// iteration over the rest.
type Fleet struct {
	pollInterval time.Duration

	mu      sync.Mutex
	devices map[string]*Device
	standby bool

	events chan Event
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewFleet creates an empty fleet. Poll interval zero disables the
// background poller.
func NewFleet(pollInterval time.Duration) *Fleet {
	f := &Fleet{
		pollInterval: pollInterval,
		devices:      make(map[string]*Device),
		events:       make(chan Event, eventBuffer),
		stop:         make(chan struct{}),
	}

	if pollInterval > 0 {
		f.wg.Add(1)
		go f.poll()
	}

	return f
}

// Events returns the merged notification stream of all fleet devices.
func (f *Fleet) Events() <-chan Event {
	return f.events
}

// Add registers a device and starts forwarding its events. Adding an
// already-present ID replaces nothing and reports false.
func (f *Fleet) Add(d *Device) bool {
	f.mu.Lock()
	if _, exists := f.devices[d.ID]; exists {
		f.mu.Unlock()
		logging.Warn("Device already in fleet", zap.String("device_id", d.ID))
		return false
	}
	f.devices[d.ID] = d
	f.mu.Unlock()

	f.wg.Add(1)
	go f.forward(d)
	return true
}

// Get returns a device by ID, or nil.
func (f *Fleet) Get(id string) *Device {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices[id]
}

// Remove disconnects a device and drops it from the fleet.
func (f *Fleet) Remove(id string) bool {
	f.mu.Lock()
	d, ok := f.devices[id]
	delete(f.devices, id)
	f.mu.Unlock()

	if !ok {
		return false
	}
	d.Disconnect()
	return true
}

// Devices returns a snapshot of the current device set.
func (f *Fleet) Devices() []*Device {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, d)
	}
	return out
}

// ConnectAll connects every device. Failures are per-device: each
// failed connect emits its own error event and the rest proceed.
func (f *Fleet) ConnectAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, d := range f.Devices() {
		if d.Active() {
			continue
		}
		wg.Add(1)
		go func(d *Device) {
			defer wg.Done()
			if err := d.Connect(ctx); err != nil {
				logging.Warn("Fleet connect failed",
					zap.String("device_id", d.ID), zap.Error(err))
			}
		}(d)
	}
	wg.Wait()
}

// DisconnectAll disconnects every device.
func (f *Fleet) DisconnectAll() {
	for _, d := range f.Devices() {
		d.Disconnect()
	}
}

// SetStandby suspends or resumes the fleet. Entering standby
// disconnects all devices and pauses polling; leaving it reconnects.
func (f *Fleet) SetStandby(ctx context.Context, standby bool) {
	f.mu.Lock()
	f.standby = standby
	f.mu.Unlock()

	if standby {
		f.DisconnectAll()
	} else {
		f.ConnectAll(ctx)
	}
}

// Close stops the poller and disconnects all devices. Final disconnect
// events land after the forwarders have stopped, so they are moved into
// the merged stream here, as far as its buffer has room. The merged
// channel stays open.
func (f *Fleet) Close() {
	close(f.stop)
	f.DisconnectAll()
	f.wg.Wait()

	for _, d := range f.Devices() {
	drain:
		for {
			select {
			case ev := <-d.Events():
				select {
				case f.events <- ev:
				default:
					break drain
				}
			default:
				break drain
			}
		}
	}
}

// poll periodically refreshes every active device. Each refresh runs in
// its own goroutine with panic isolation so one device cannot stall or
// abort the cycle for the others.
func (f *Fleet) poll() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
		}

		f.mu.Lock()
		standby := f.standby
		f.mu.Unlock()
		if standby {
			continue
		}

		var cycle sync.WaitGroup
		for _, d := range f.Devices() {
			cycle.Add(1)
			go func(d *Device) {
				defer cycle.Done()
				defer func() {
					if r := recover(); r != nil {
						logging.Error("Refresh panic",
							zap.String("device_id", d.ID), zap.Any("panic", r))
					}
				}()
				if !d.Active() {
					// Dropped connections are retried here; Connect kicks
					// off its own refresh on success.
					if err := d.Connect(context.Background()); err != nil {
						logging.Debug("Reconnect attempt failed",
							zap.String("device_id", d.ID), zap.Error(err))
					}
					return
				}
				d.Refresh()
			}(d)
		}
		cycle.Wait()
	}
}

// forward relays one device's events into the merged stream until the
// fleet stops.
func (f *Fleet) forward(d *Device) {
	defer f.wg.Done()

	for {
		select {
		case <-f.stop:
			return
		case ev := <-d.Events():
			select {
			case f.events <- ev:
			case <-f.stop:
				// An event already taken off the device queue is not
				// dropped on the floor during shutdown.
				select {
				case f.events <- ev:
				default:
				}
				return
			}
		}
	}
}
