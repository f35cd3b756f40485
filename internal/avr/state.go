package avr

// PowerState is the receiver's logical power/transport state.
type PowerState string

const (
	StateOn          PowerState = "ON"
	StateOff         PowerState = "OFF"
	StatePlaying     PowerState = "PLAYING"
	StatePaused      PowerState = "PAUSED"
	StateUnknown     PowerState = "UNKNOWN"
	StateUnavailable PowerState = "UNAVAILABLE"
)

// Attribute names an entry in a state-change update.
type Attribute string

const (
	AttrState     Attribute = "state"
	AttrVolume    Attribute = "volume"
	AttrMuted     Attribute = "muted"
	AttrSource    Attribute = "source"
	AttrSoundMode Attribute = "sound_mode"
	AttrTitle     Attribute = "title"
	AttrArtist    Attribute = "artist"
	AttrAlbum     Attribute = "album"
	AttrPosition  Attribute = "position"
	AttrDuration  Attribute = "duration"
)

// VolumeMax is the receiver-native volume ceiling (0-80).
const VolumeMax = 80

// Snapshot is a copy of one receiver's logical state at a point in
// time. Volume is in device-native units; position and duration are
// seconds of the current network/USB track.
type Snapshot struct {
	State     PowerState
	Volume    int
	Muted     bool
	Source    string
	SoundMode string
	Title     string
	Artist    string
	Album     string
	Position  int
	Duration  int
}
