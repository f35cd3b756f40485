package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/avrctl/internal/avr"
	"github.com/muurk/avrctl/internal/command"
	"github.com/muurk/avrctl/internal/config"
	"github.com/muurk/avrctl/internal/discovery"
	"github.com/muurk/avrctl/internal/protocol"
	"github.com/muurk/avrctl/internal/tui"
	"github.com/muurk/avrctl/internal/ui"
)

// Command flags
var (
	deviceName  string
	deviceHost  string
	devicePort  int
	scanTimeout int
	useMDNS     bool
	noSave      bool
	waitTime    int
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceName, "device", "", "Receiver name or identifier from the config file")
	rootCmd.PersistentFlags().StringVar(&deviceHost, "host", "", "Receiver IP address (skips config and discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", protocol.Port, "Receiver eISCP port")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(unmuteCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(doCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(monitorCmd)
}

// discoverCmd finds receivers on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover receivers on the network",
	Long: `Discover eISCP receivers using a UDP broadcast probe.

Every receiver on the local subnet answers with its model, control
port, and identifier. Discovered receivers are recorded in the config
file so later commands can address them by name.

With --mdns, an additional mDNS scan for AirPlay-advertising
receivers runs; this finds units whose broadcast reply is filtered by
the network but cannot report the eISCP port.`,
	Example: `  # Broadcast scan with the default 5 second timeout
  avrctl discover

  # Longer scan plus mDNS fallback
  avrctl discover --timeout 10 --mdns`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", 5, "Scan timeout in seconds")
	discoverCmd.Flags().BoolVar(&useMDNS, "mdns", false, "Also scan mDNS for AirPlay-advertising receivers")
	discoverCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not record discovered receivers in the config file")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	timeout := time.Duration(scanTimeout) * time.Second
	fmt.Printf("Scanning for receivers (timeout: %ds)...\n\n", scanTimeout)

	receivers, err := discovery.Discover(timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if useMDNS {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		extra, err := discovery.NewScanner().ScanAirPlay(ctx)
		cancel()
		if err != nil {
			fmt.Println(ui.MutedStyle.Render("mDNS scan failed: " + err.Error()))
		}
		for _, r := range extra {
			receivers = appendUnique(receivers, r)
		}
	}

	if len(receivers) == 0 {
		fmt.Println("No receivers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the receiver is powered on or in network standby")
		fmt.Println("  - Check that your computer is on the same subnet")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --host to specify the IP manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d receiver(s):\n\n", len(receivers))
	for i, r := range receivers {
		fmt.Printf("%d. %s\n", i+1, ui.DeviceNameStyle.Render(r.Model))
		fmt.Printf("   Address:    %s:%d\n", r.Host, r.Port)
		fmt.Printf("   Identifier: %s\n", r.Identifier)
		fmt.Println()
	}

	if !noSave {
		if err := saveDiscovered(receivers); err != nil {
			fmt.Println(ui.MutedStyle.Render("Could not update config: " + err.Error()))
		}
	}

	fmt.Println("Use 'avrctl status --host <ip>' to query a receiver")
	fmt.Println("Use 'avrctl monitor' for the interactive dashboard")
	return nil
}

func appendUnique(receivers []*discovery.Receiver, r *discovery.Receiver) []*discovery.Receiver {
	for _, have := range receivers {
		if have.Host == r.Host {
			return receivers
		}
	}
	return append(receivers, r)
}

func saveDiscovered(receivers []*discovery.Receiver) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}
	for _, r := range receivers {
		id := r.Identifier
		if id == "" {
			id = r.Host
		}
		registry.UpdateDeviceSeen(id, r.Host, r.Model, r.Port)
	}
	return registry.Save()
}

// devicesCmd lists and edits configured receivers
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage configured receivers",
	Long: `List the receivers recorded in the config file, with their last known
addresses. Subcommands add, name, or remove entries by hand; 'discover'
records receivers automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}

		if len(registry.Devices) == 0 {
			fmt.Println("No receivers configured. Run 'avrctl discover' first.")
			return nil
		}

		ids := make([]string, 0, len(registry.Devices))
		for id := range registry.Devices {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		defaultID, _ := registry.DefaultDevice()
		for _, id := range ids {
			device := registry.Devices[id]
			name := device.Name
			if name == "" {
				name = device.Model
			}
			if name == "" {
				name = id
			}
			marker := " "
			if id == defaultID {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, ui.DeviceNameStyle.Render(name))
			fmt.Printf("  %s %s\n", ui.LabelStyle.Render("Identifier"), id)
			fmt.Printf("  %s %s:%d\n", ui.LabelStyle.Render("Address"), device.Address, device.Port)
			if device.Model != "" {
				fmt.Printf("  %s %s\n", ui.LabelStyle.Render("Model"), device.Model)
			}
			if !device.LastSeen.IsZero() {
				fmt.Printf("  %s %s\n", ui.LabelStyle.Render("Last seen"), device.LastSeen.Format(time.RFC822))
			}
			fmt.Println()
		}
		return nil
	},
}

var (
	addName string
	addPort int
)

var devicesAddCmd = &cobra.Command{
	Use:   "add <identifier> <address>",
	Short: "Add a receiver by hand",
	Example: `  avrctl devices add 0009B0AABBCC 192.168.1.80 --name "Living Room"
  avrctl devices add bedroom 192.168.1.81 --port 60128`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		registry.UpdateDeviceSeen(args[0], args[1], "", addPort)
		if addName != "" {
			registry.SetDeviceName(args[0], addName)
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Printf("%s added %s (%s)\n", ui.OnStyle.Render(ui.SuccessMarker), args[0], args[1])
		return nil
	},
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <identifier|name>",
	Short: "Remove a configured receiver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		id, entry := registry.ResolveDevice(args[0])
		if entry == nil {
			return fmt.Errorf("no configured receiver %q", args[0])
		}
		delete(registry.Devices, id)
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Printf("%s removed %s\n", ui.OnStyle.Render(ui.SuccessMarker), id)
		return nil
	},
}

var devicesNameCmd = &cobra.Command{
	Use:   "name <identifier> <name>",
	Short: "Set a friendly name for a receiver",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if registry.GetDevice(args[0]) == nil {
			return fmt.Errorf("no configured receiver %q", args[0])
		}
		registry.SetDeviceName(args[0], args[1])
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Printf("%s %s is now %q\n", ui.OnStyle.Render(ui.SuccessMarker), args[0], args[1])
		return nil
	},
}

func init() {
	devicesAddCmd.Flags().StringVar(&addName, "name", "", "Friendly name for the receiver")
	devicesAddCmd.Flags().IntVar(&addPort, "port", protocol.Port, "eISCP control port")

	devicesCmd.AddCommand(devicesAddCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)
	devicesCmd.AddCommand(devicesNameCmd)
}

// statusCmd queries and prints the receiver state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show receiver state",
	Long: `Connect to a receiver, query its main attributes, and print them.

The receiver is addressed via --host, via --device with a configured
name, or the configured default when neither is given.`,
	Example: `  # Status of the default receiver
  avrctl status

  # Status of a specific unit
  avrctl status --host 192.168.1.80`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withDevice(func(device *avr.Device) error {
		waitForRefresh(device)

		snap := device.Snapshot()
		width := ui.GetTerminalWidth()

		var b strings.Builder
		b.WriteString(statusRow("State", ui.PowerLabel(string(snap.State))))
		b.WriteString(statusRow("Volume", volumeLabel(snap)))
		b.WriteString(statusRow("Source", snap.Source))
		b.WriteString(statusRow("Mode", snap.SoundMode))
		if snap.Title != "" {
			b.WriteString(statusRow("Playing", fmt.Sprintf("%s - %s", snap.Artist, snap.Title)))
		}

		fmt.Println(ui.HeaderStyle.Render(device.ID) + "  " + ui.MutedStyle.Render(device.Addr()))
		fmt.Println(ui.BoxStyle(width).Render(strings.TrimRight(b.String(), "\n")))
		return nil
	})
}

func statusRow(label, value string) string {
	if value == "" {
		value = "-"
	}
	return ui.LabelStyle.Render(label) + ui.ValueStyle.Render(value) + "\n"
}

func volumeLabel(snap avr.Snapshot) string {
	if snap.Muted {
		return "muted"
	}
	return strconv.Itoa(snap.Volume)
}

// waitForRefresh drains events until the startup queries have been
// answered or a short deadline passes.
func waitForRefresh(device *avr.Device) {
	deadline := time.After(2 * time.Second)
	seen := map[avr.Attribute]bool{}
	for {
		select {
		case ev := <-device.Events():
			if ev.Kind != avr.EventUpdate {
				continue
			}
			for attr := range ev.Changes {
				seen[attr] = true
			}
			if seen[avr.AttrState] && seen[avr.AttrVolume] &&
				seen[avr.AttrSource] && seen[avr.AttrSoundMode] {
				return
			}
		case <-deadline:
			return
		}
	}
}

// Power commands

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Power the receiver on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(device *avr.Device) error {
			return confirm(device.PowerOn(), "power on")
		})
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Put the receiver in standby",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(device *avr.Device) error {
			return confirm(device.PowerOff(), "standby")
		})
	},
}

// volumeCmd sets or steps the master volume
var volumeCmd = &cobra.Command{
	Use:   "volume [level|up|down]",
	Short: "Set or step the master volume",
	Long: `Set the master volume to an absolute level (0-80), or step it with
'up' or 'down'. Without an argument, prints the current level.`,
	Example: `  avrctl volume 35
  avrctl volume up
  avrctl volume`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(device *avr.Device) error {
			if len(args) == 0 {
				waitForRefresh(device)
				fmt.Println(volumeLabel(device.Snapshot()))
				return nil
			}

			switch strings.ToLower(args[0]) {
			case "up":
				return confirm(device.VolumeUp(), "volume up")
			case "down":
				return confirm(device.VolumeDown(), "volume down")
			default:
				level, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid volume %q (use 0-%d, up, or down)", args[0], avr.VolumeMax)
				}
				return confirm(device.SetVolume(level), fmt.Sprintf("volume %d", level))
			}
		})
	},
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Mute the receiver",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(device *avr.Device) error {
			return confirm(device.Mute(true), "mute")
		})
	},
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Unmute the receiver",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(func(device *avr.Device) error {
			return confirm(device.Mute(false), "unmute")
		})
	},
}

// sourceCmd switches input, or lists the known inputs
var sourceCmd = &cobra.Command{
	Use:   "source [name]",
	Short: "Switch input source",
	Long: `Switch to a named input source (e.g. "NET", "BD/DVD", "TV/CD").
Without an argument, lists the selectable source names.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, name := range command.SourceNames() {
				fmt.Println(name)
			}
			return nil
		}
		return withDevice(func(device *avr.Device) error {
			if !device.SelectSource(args[0]) {
				return fmt.Errorf("unknown source %q (run 'avrctl source' for the list)", args[0])
			}
			return confirm(true, "source "+strings.ToUpper(args[0]))
		})
	},
}

// modeCmd switches listening mode, or lists the known modes
var modeCmd = &cobra.Command{
	Use:   "mode [name]",
	Short: "Switch listening mode",
	Long: `Switch to a named listening mode (e.g. "STEREO", "DIRECT", "THX").
Without an argument, lists the selectable mode names.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, name := range command.ListeningModeNames() {
				fmt.Println(name)
			}
			return nil
		}
		return withDevice(func(device *avr.Device) error {
			if !device.SelectSoundMode(args[0]) {
				return fmt.Errorf("unknown mode %q (run 'avrctl mode' for the list)", args[0])
			}
			return confirm(true, "mode "+strings.ToUpper(args[0]))
		})
	},
}

// doCmd runs a named simple command from the registry
var doCmd = &cobra.Command{
	Use:   "do [name]",
	Short: "Run a named remote command",
	Long: `Run a named remote command such as "play", "pause", "next",
"menu", "up", "enter", or "volume_up". Without an argument, lists
every available command name.`,
	Example: `  avrctl do play
  avrctl do menu
  avrctl do`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, name := range command.SimpleNames(command.FeatureFull) {
				fmt.Println(name)
			}
			return nil
		}
		return withDevice(func(device *avr.Device) error {
			if !device.SimpleCommand(args[0]) {
				return fmt.Errorf("unknown command %q (run 'avrctl do' for the list)", args[0])
			}
			return confirm(true, args[0])
		})
	},
}

// sendCmd sends a raw eISCP command
var sendCmd = &cobra.Command{
	Use:   "send <code> [value]",
	Short: "Send a raw eISCP command",
	Long: `Send a raw three-letter eISCP command with an optional value, then
print every reply that arrives within the wait window.

Use QSTN as the value to query instead of set.`,
	Example: `  # Query the power state
  avrctl send PWR QSTN

  # Set volume to hex 28 (decimal 40)
  avrctl send MVL 28

  # Watch replies a little longer
  avrctl send NTM QSTN --wait 5`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().IntVar(&waitTime, "wait", 2, "Seconds to wait for replies")
}

func runSend(cmd *cobra.Command, args []string) error {
	code := strings.ToUpper(args[0])
	value := ""
	if len(args) == 2 {
		value = args[1]
	}

	return withDevice(func(device *avr.Device) error {
		if !device.SendRaw(code, value) {
			return fmt.Errorf("send %s%s failed", code, value)
		}

		deadline := time.After(time.Duration(waitTime) * time.Second)
		for {
			select {
			case ev := <-device.Events():
				if ev.Kind == avr.EventUpdate {
					for attr, val := range ev.Changes {
						fmt.Printf("%s = %v\n", attr, val)
					}
				}
			case <-deadline:
				return nil
			}
		}
	})
}

// monitorCmd launches the interactive dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Launch the interactive monitor",
	Long: `Launch a live dashboard for one receiver.

The monitor mirrors every state change the receiver pushes and maps
key presses onto controls: power, volume, mute, and playback.`,
	Example: `  # Monitor the default receiver
  avrctl monitor
  # Or simply (monitor is default):
  avrctl

  # Monitor a specific unit
  avrctl monitor --host 192.168.1.80`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	device, err := resolveDevice()
	if err != nil {
		return err
	}

	// The monitor model owns connect and disconnect.
	p := tea.NewProgram(tui.NewMonitorModel(device))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}
	return nil
}

// confirm prints the standard success marker or reports the failure.
func confirm(ok bool, action string) error {
	if !ok {
		return fmt.Errorf("%s failed: receiver not reachable", action)
	}
	fmt.Printf("%s %s\n", ui.OnStyle.Render(ui.SuccessMarker), action)
	return nil
}

// resolveDevice picks the target receiver: --host first, then the
// config file by --device name, then the configured default, then a
// quick discovery scan when exactly one receiver answers.
func resolveDevice() (*avr.Device, error) {
	if deviceHost != "" {
		return avr.NewDevice(deviceHost, deviceHost, devicePort), nil
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}

	if deviceName != "" {
		id, entry := registry.ResolveDevice(deviceName)
		if entry == nil {
			return nil, fmt.Errorf("no configured receiver named %q (run 'avrctl devices')", deviceName)
		}
		return deviceFromEntry(id, entry), nil
	}

	if id, entry := registry.DefaultDevice(); entry != nil {
		return deviceFromEntry(id, entry), nil
	}

	if registry.Preferences != nil && registry.Preferences.AutoDiscover {
		fmt.Println("No receiver configured, attempting discovery...")
		timeout := 5 * time.Second
		if registry.Preferences.DiscoverTimeout > 0 {
			timeout = time.Duration(registry.Preferences.DiscoverTimeout) * time.Second
		}
		receivers, err := discovery.Discover(timeout)
		if err != nil {
			return nil, fmt.Errorf("discovery failed: %w", err)
		}
		switch len(receivers) {
		case 0:
			return nil, fmt.Errorf("no receivers found; use --host to specify one")
		case 1:
			r := receivers[0]
			fmt.Printf("Found %s at %s\n\n", r.Model, r.Host)
			return avr.NewDevice(r.Model, r.Host, r.Port), nil
		default:
			return nil, fmt.Errorf("%d receivers found; use --device or --host to pick one", len(receivers))
		}
	}

	return nil, fmt.Errorf("no receiver specified; use --host, --device, or run 'avrctl discover'")
}

func deviceFromEntry(id string, entry *config.Device) *avr.Device {
	name := entry.Name
	if name == "" {
		name = id
	}
	port := entry.Port
	if port == 0 {
		port = protocol.Port
	}
	return avr.NewDevice(name, entry.Address, port)
}

// withDevice resolves the target, connects, runs the action, and
// always disconnects.
func withDevice(action func(*avr.Device) error) error {
	device, err := resolveDevice()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := device.Connect(ctx); err != nil {
		return fmt.Errorf("cannot connect to %s: %w", device.Addr(), err)
	}
	defer device.Disconnect()

	return action(device)
}
