// Package command holds the static ISCP command tables.
//
// It maps 3-character wire codes to human-readable names for input
// sources and listening modes, and exposes named "simple command"
// macros for scripting. All tables are data-only and read-only after
// load; lookups never fail. Unknown codes produce a synthesized label
// ("INPUT 2X", "MODE 7F") so an unrecognized device response always
// stays usable, and unknown names report a plain miss for the caller
// to handle.
//
// Name lookups are case-insensitive. Code lookups expect the exact
// 2-hex-digit uppercase form the wire uses.
//
// Simple commands carry a minimum FeatureSet tier because receiver
// models support different command subsets: entry-level models take
// Basic, network models add Extended, and THX/multi-zone models add
// Full.
package command
