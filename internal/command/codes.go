package command

// eISCP command codes. Each code is exactly 3 ASCII characters on the wire.

// Main zone
const (
	Power         = "PWR" // System power
	Volume        = "MVL" // Master volume
	Mute          = "AMT" // Audio muting
	Input         = "SLI" // Input selector
	ListeningMode = "LMD" // Listening mode
	LateNight     = "LTN" // Late night mode
	Audyssey      = "ADY" // Audyssey
	AudysseyEQ    = "ADQ" // Audyssey dynamic EQ
	AudysseyVol   = "ADV" // Audyssey dynamic volume
	ReEQ          = "RAS" // Re-EQ / academy filter
	ToneBass      = "TFR" // Tone front bass
	ToneTreble    = "TFT" // Tone front treble
	Sleep         = "SLP" // Sleep timer
	Display       = "DIF" // Display mode
	Dimmer        = "DIM" // Dimmer level
	HDMIOutput    = "HDO" // HDMI output selector
	HDMIAudio     = "HAO" // HDMI audio output
	VideoWide     = "VWM" // Video wide mode
	VideoRes      = "RES" // Video resolution
)

// Information queries
const (
	AudioInfo = "IFA"
	VideoInfo = "IFV"
)

// Speakers
const (
	SpeakerA     = "SPA"
	SpeakerB     = "SPB"
	SpeakerLevel = "SPL"
)

// Tuner
const (
	TunerFreq   = "TUN"
	TunerPreset = "PRS"
	TunerMode   = "TUM"
)

// Network/USB playback
const (
	NetTitle    = "NTI" // Title name
	NetArtist   = "NAT" // Artist name
	NetAlbum    = "NAL" // Album name
	NetTime     = "NTM" // Time info, "mm:ss/mm:ss"
	NetTrack    = "NTR" // Track info
	NetControl  = "NTC" // Transport control (PLAY/PAUSE/STOP/TRUP/TRDN/...)
	NetStatus   = "NST" // Play status, first char P/p/S
	NetService  = "NSV"
	NetKeyboard = "NKY"
	NetPreset   = "NPR"
)

// OSD menu navigation. All navigation goes through the single OSD code
// with a direction token as the value.
const OSDMenu = "OSD"

// Zone 2
const (
	Zone2Power = "ZPW"
	Zone2Vol   = "ZVL"
	Zone2Mute  = "ZMT"
	Zone2Input = "SLZ"
	Zone2Tone  = "ZTN"
)

// Zone 3
const (
	Zone3Power = "PW3"
	Zone3Vol   = "VL3"
	Zone3Mute  = "MT3"
	Zone3Input = "SL3"
)

// Misc
const (
	Memory       = "MEM"
	Firmware     = "FWV"
	DeviceMemory = "DMS"
)

// QueryValue is the wire value meaning "report the current value of this
// attribute" rather than "set it".
const QueryValue = "QSTN"

// Power and mute values shared by main zone and sub-zones
const (
	ValueOff = "00"
	ValueOn  = "01"
)

// logOnlyCodes are recognized codes whose updates carry no modeled state.
// They are logged for diagnostics and reserved for future extension.
var logOnlyCodes = []string{
	Dimmer, Display, LateNight, Sleep, HDMIOutput,
	SpeakerA, SpeakerB,
	Zone2Power, Zone2Vol, Zone2Mute,
}

// LogOnlyCodes returns the codes a device should subscribe to for
// diagnostics only, without deriving state from them.
func LogOnlyCodes() []string {
	out := make([]string, len(logOnlyCodes))
	copy(out, logOnlyCodes)
	return out
}
