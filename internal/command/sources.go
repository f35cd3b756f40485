package command

import (
	"fmt"
	"strings"
)

// InputSources maps SLI selector codes (2 hex digits, uppercase) to
// human-readable source names. The table covers the selector space used
// across Onkyo receiver generations; individual models expose a subset.
var InputSources = map[string]string{
	// Standard video/audio inputs (0x00-0x0F)
	"00": "VIDEO1",
	"01": "CBL/SAT",
	"02": "GAME",
	"03": "AUX",
	"04": "AUX2",
	"05": "PC",
	"06": "VIDEO6",
	"07": "VIDEO7",

	// BD/DVD and streaming (0x10-0x1F)
	"10": "BD/DVD",
	"11": "STRM BOX",
	"12": "TV",
	"13": "TAPE1",
	"14": "TAPE2",
	"15": "VIDEO9",
	"16": "VIDEO10",

	// Audio inputs (0x20-0x2F)
	"20": "PHONO",
	"21": "TV/CD",
	"22": "TUNER",
	"23": "CD",
	"24": "FM",
	"25": "AM",
	"26": "TUNER",
	"27": "MUSIC SERVER",
	"28": "INTERNET RADIO",
	"29": "USB FRONT",
	"2A": "USB REAR",
	"2B": "NETWORK",
	"2C": "USB TOGGLE",
	"2D": "BLUETOOTH",
	"2E": "AIRPLAY",
	"2F": "USB DAC",

	// Multi-channel and special (0x30-0x3F)
	"30": "MULTI CH",
	"31": "XM",
	"32": "SIRIUS",
	"33": "DAB",
	"34": "WIDE FM",
	"35": "SOURCE",

	// Universal port (0x40-0x4F)
	"40": "UNIVERSAL PORT",
	"41": "LINE",
	"42": "LINE2",

	// HDMI inputs (0x50-0x5F), present on some models
	"50": "HDMI1",
	"51": "HDMI2",
	"52": "HDMI3",
	"53": "HDMI4",
	"54": "HDMI5",
	"55": "HDMI6",
	"56": "HDMI7",

	// Selector position names (0x80+)
	"80": "SOURCE",
}

// sourceToCode is the reverse mapping, keyed by uppercased name.
// Duplicate names (TUNER appears twice) keep the first code encountered
// in a deterministic pass over ascending codes.
var sourceToCode = reverseTable(InputSources)

// SourceName translates a selector code to its human-readable name.
// Unknown codes synthesize a usable label so an unrecognized device
// response never fails.
func SourceName(code string) string {
	if name, ok := InputSources[strings.ToUpper(code)]; ok {
		return name
	}
	return fmt.Sprintf("INPUT %s", code)
}

// SourceCode looks up the selector code for a source name,
// case-insensitively. ok is false when the name is unknown.
func SourceCode(name string) (string, bool) {
	code, ok := sourceToCode[strings.ToUpper(name)]
	return code, ok
}

// SourceNames returns all known source names, for presentation lists.
func SourceNames() []string {
	return tableNames(InputSources)
}
