// Package logging provides structured logging for avrctl.
//
// This package wraps zap with convenience functions for the logging
// patterns used throughout the tool. It is silent by default so that
// CLI output stays clean; set AVRCTL_LOG_LEVEL to enable output.
//
// # Log Levels
//
//   - Debug: Detailed debugging info (hex dumps, frame parsing, command echo)
//   - Info: Normal operations (connections, discovery hits, state changes)
//   - Warn: Non-fatal issues (connection drops, malformed frames)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Receiver connected",
//	    zap.String("remote_addr", "192.168.1.100:60128"),
//	    zap.String("device_id", "living_room"),
//	)
//
// # Specialized Logging
//
// Connection lifecycle:
//
//	logging.LogConnection(remoteAddr, "connected")
//	logging.LogConnection(remoteAddr, "disconnected")
//
// Wire traffic:
//
//	logging.LogCommand(remoteAddr, "sent", "PWR", "01")
//	logging.LogRawBytes("discovery reply", datagram)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
