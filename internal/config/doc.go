// Package config provides user configuration management for avrctl.
//
// It manages a YAML configuration file that stores the known receivers
// (address, port, friendly name, last sighting) plus application
// preferences such as discovery timeout and poll interval. The file
// lives in the platform-appropriate location:
//   - Linux: $XDG_CONFIG_HOME/avrctl/config.yaml or $HOME/.config/avrctl/config.yaml
//   - macOS: $HOME/.config/avrctl/config.yaml
//   - Windows: %LOCALAPPDATA%\avrctl\config.yaml
//
// The global registry uses sync.Once for safe initialization across
// goroutines, and saves go through a temp-file-plus-rename so a crash
// never leaves a half-written file behind.
package config
