// Avrctl is a command line controller for Onkyo, Integra and Pioneer
// network receivers.
//
// It discovers receivers on the local network, sends control commands
// over the eISCP protocol, and provides a live interactive monitor.
//
// Usage:
//
//	avrctl [command] [flags]
//
// Running without arguments launches the interactive monitor against
// the default receiver. See 'avrctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/avrctl/internal/logging"
	"github.com/muurk/avrctl/internal/version"
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "avrctl",
	Short: "Network AV Receiver Controller",
	Long: `A command line controller for network AV receivers speaking eISCP
(Onkyo, Integra, and matching Pioneer models).

Provides UDP broadcast discovery, power, volume, input and listening
mode control, raw command access, and a live interactive monitor.

If no command is specified, the interactive monitor will launch
against the default receiver.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, args)
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("avrctl %s\n", version.Full())
	},
}
