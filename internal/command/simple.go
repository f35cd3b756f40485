package command

import (
	"sort"
	"strings"
)

// FeatureSet is the model tier a receiver must support for a simple
// command to work. Entry-level models accept Basic commands only;
// network-capable models add Extended; THX/multi-zone models add Full.
type FeatureSet int

const (
	FeatureBasic FeatureSet = iota
	FeatureExtended
	FeatureFull
)

func (f FeatureSet) String() string {
	switch f {
	case FeatureBasic:
		return "basic"
	case FeatureExtended:
		return "extended"
	case FeatureFull:
		return "full"
	default:
		return "unknown"
	}
}

// SimpleCommand is a named macro bound to one fixed (code, value) pair,
// exposed for scripting and automation.
type SimpleCommand struct {
	Code     string
	Value    string
	Requires FeatureSet
}

// simpleCommands maps macro names to their wire commands.
var simpleCommands = map[string]SimpleCommand{
	// Power
	"POWER_ON":  {Power, "01", FeatureBasic},
	"POWER_OFF": {Power, "00", FeatureBasic},

	// Volume
	"VOLUME_UP":   {Volume, "UP", FeatureBasic},
	"VOLUME_DOWN": {Volume, "DOWN", FeatureBasic},
	"MUTE_ON":     {Mute, "01", FeatureBasic},
	"MUTE_OFF":    {Mute, "00", FeatureBasic},
	"MUTE_TOGGLE": {Mute, "TG", FeatureBasic},

	// Input selection
	"INPUT_BD_DVD":         {Input, "10", FeatureBasic},
	"INPUT_CBL_SAT":        {Input, "01", FeatureBasic},
	"INPUT_GAME":           {Input, "02", FeatureBasic},
	"INPUT_AUX":            {Input, "03", FeatureBasic},
	"INPUT_PC":             {Input, "05", FeatureBasic},
	"INPUT_TV":             {Input, "12", FeatureBasic},
	"INPUT_STRM_BOX":       {Input, "11", FeatureBasic},
	"INPUT_CD":             {Input, "23", FeatureBasic},
	"INPUT_PHONO":          {Input, "22", FeatureBasic},
	"INPUT_TUNER":          {Input, "26", FeatureBasic},
	"INPUT_FM":             {Input, "24", FeatureBasic},
	"INPUT_AM":             {Input, "25", FeatureBasic},
	"INPUT_USB":            {Input, "29", FeatureExtended},
	"INPUT_NETWORK":        {Input, "2B", FeatureExtended},
	"INPUT_BLUETOOTH":      {Input, "2D", FeatureExtended},
	"INPUT_AIRPLAY":        {Input, "2E", FeatureExtended},
	"INPUT_MUSIC_SERVER":   {Input, "27", FeatureExtended},
	"INPUT_INTERNET_RADIO": {Input, "28", FeatureExtended},

	// Listening modes
	"LISTENING_MODE_STEREO":        {ListeningMode, "00", FeatureBasic},
	"LISTENING_MODE_DIRECT":        {ListeningMode, "01", FeatureBasic},
	"LISTENING_MODE_SURROUND":      {ListeningMode, "02", FeatureBasic},
	"LISTENING_MODE_FILM":          {ListeningMode, "03", FeatureBasic},
	"LISTENING_MODE_MUSIC":         {ListeningMode, "06", FeatureBasic},
	"LISTENING_MODE_GAME":          {ListeningMode, "05", FeatureBasic},
	"LISTENING_MODE_THX":           {ListeningMode, "04", FeatureFull},
	"LISTENING_MODE_ALL_CH_STEREO": {ListeningMode, "0C", FeatureBasic},
	"LISTENING_MODE_PURE_AUDIO":    {ListeningMode, "11", FeatureExtended},
	"LISTENING_MODE_AUTO":          {ListeningMode, "FF", FeatureBasic},
	"LISTENING_MODE_UP":            {ListeningMode, "UP", FeatureBasic},
	"LISTENING_MODE_DOWN":          {ListeningMode, "DOWN", FeatureBasic},

	// Dimmer
	"DIMMER_BRIGHT": {Dimmer, "00", FeatureBasic},
	"DIMMER_DIM":    {Dimmer, "01", FeatureBasic},
	"DIMMER_DARK":   {Dimmer, "02", FeatureBasic},
	"DIMMER_OFF":    {Dimmer, "03", FeatureBasic},
	"DIMMER_TOGGLE": {Dimmer, "DIM", FeatureBasic},

	// Display
	"DISPLAY_TOGGLE": {Display, "TG", FeatureBasic},

	// Late night mode
	"LATE_NIGHT_OFF":  {LateNight, "00", FeatureBasic},
	"LATE_NIGHT_LOW":  {LateNight, "01", FeatureBasic},
	"LATE_NIGHT_HIGH": {LateNight, "02", FeatureBasic},
	"LATE_NIGHT_AUTO": {LateNight, "03", FeatureBasic},

	// Audyssey
	"AUDYSSEY_OFF":          {Audyssey, "00", FeatureFull},
	"AUDYSSEY_MOVIE":        {Audyssey, "01", FeatureFull},
	"AUDYSSEY_MUSIC":        {Audyssey, "02", FeatureFull},
	"DYNAMIC_EQ_ON":         {AudysseyEQ, "01", FeatureFull},
	"DYNAMIC_EQ_OFF":        {AudysseyEQ, "00", FeatureFull},
	"DYNAMIC_VOLUME_OFF":    {AudysseyVol, "00", FeatureFull},
	"DYNAMIC_VOLUME_LIGHT":  {AudysseyVol, "01", FeatureFull},
	"DYNAMIC_VOLUME_MEDIUM": {AudysseyVol, "02", FeatureFull},
	"DYNAMIC_VOLUME_HEAVY":  {AudysseyVol, "03", FeatureFull},

	// HDMI output
	"HDMI_OUT_MAIN": {HDMIOutput, "01", FeatureExtended},
	"HDMI_OUT_SUB":  {HDMIOutput, "02", FeatureExtended},
	"HDMI_OUT_BOTH": {HDMIOutput, "03", FeatureExtended},
	"HDMI_OUT_OFF":  {HDMIOutput, "00", FeatureExtended},

	// OSD / menu navigation
	"MENU":        {OSDMenu, "MENU", FeatureBasic},
	"EXIT":        {OSDMenu, "EXIT", FeatureBasic},
	"UP":          {OSDMenu, "UP", FeatureBasic},
	"DOWN":        {OSDMenu, "DOWN", FeatureBasic},
	"LEFT":        {OSDMenu, "LEFT", FeatureBasic},
	"RIGHT":       {OSDMenu, "RIGHT", FeatureBasic},
	"ENTER":       {OSDMenu, "ENTER", FeatureBasic},
	"RETURN":      {OSDMenu, "RETURN", FeatureBasic},
	"HOME":        {OSDMenu, "HOME", FeatureBasic},
	"QUICK_SETUP": {OSDMenu, "QUICK", FeatureBasic},
	"AUDIO_INFO":  {AudioInfo, QueryValue, FeatureBasic},
	"VIDEO_INFO":  {VideoInfo, QueryValue, FeatureBasic},

	// Playback control (network/USB)
	"PLAY":         {NetControl, "PLAY", FeatureExtended},
	"PAUSE":        {NetControl, "PAUSE", FeatureExtended},
	"STOP":         {NetControl, "STOP", FeatureExtended},
	"PREVIOUS":     {NetControl, "TRDN", FeatureExtended},
	"NEXT":         {NetControl, "TRUP", FeatureExtended},
	"FAST_FORWARD": {NetControl, "FF", FeatureExtended},
	"REWIND":       {NetControl, "REW", FeatureExtended},
	"REPEAT":       {NetControl, "REPEAT", FeatureExtended},
	"SHUFFLE":      {NetControl, "RANDOM", FeatureExtended},

	// Tuner
	"TUNER_PRESET_UP":   {TunerPreset, "UP", FeatureBasic},
	"TUNER_PRESET_DOWN": {TunerPreset, "DOWN", FeatureBasic},
	"TUNER_FREQ_UP":     {TunerFreq, "UP", FeatureBasic},
	"TUNER_FREQ_DOWN":   {TunerFreq, "DOWN", FeatureBasic},
	"TUNER_MODE_FM":     {TunerMode, "00", FeatureBasic},
	"TUNER_MODE_AM":     {TunerMode, "01", FeatureBasic},

	// Zone 2
	"ZONE2_POWER_ON":    {Zone2Power, "01", FeatureFull},
	"ZONE2_POWER_OFF":   {Zone2Power, "00", FeatureFull},
	"ZONE2_VOLUME_UP":   {Zone2Vol, "UP", FeatureFull},
	"ZONE2_VOLUME_DOWN": {Zone2Vol, "DOWN", FeatureFull},
	"ZONE2_MUTE_TOGGLE": {Zone2Mute, "TG", FeatureFull},

	// Sleep timer (minutes, 2-digit hex)
	"SLEEP_OFF": {Sleep, "OFF", FeatureBasic},
	"SLEEP_30":  {Sleep, "1E", FeatureBasic},
	"SLEEP_60":  {Sleep, "3C", FeatureBasic},
	"SLEEP_90":  {Sleep, "5A", FeatureBasic},

	// Memory
	"MEMORY_SETUP": {Memory, "STR", FeatureBasic},
}

// Simple looks up a simple command macro by name, case-insensitively.
// ok is false when the name is unknown.
func Simple(name string) (SimpleCommand, bool) {
	cmd, ok := simpleCommands[strings.ToUpper(name)]
	return cmd, ok
}

// SimpleNames returns the names of all simple commands supported at the
// given feature tier, sorted.
func SimpleNames(tier FeatureSet) []string {
	names := make([]string, 0, len(simpleCommands))
	for name, cmd := range simpleCommands {
		if cmd.Requires <= tier {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
