package telemetry

// AppState is the application activation state at snapshot time. The three
// values are a serialization contract; analytics consumers match on them.
type AppState string

const (
	AppStateForeground AppState = "Foreground"
	AppStateInactive   AppState = "Inactive"
	AppStateBackground AppState = "Background"
)

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
	// OrientationUnknown covers face-up/face-down and sensor failures;
	// neither time bucket is extended while it holds.
	OrientationUnknown Orientation = "unknown"
)

// AudioPort identifies one active audio output route on the device.
type AudioPort string

const (
	AudioPortBluetoothA2DP   AudioPort = "bluetooth-a2dp"
	AudioPortBluetoothHFP    AudioPort = "bluetooth-hfp"
	AudioPortBluetoothLE     AudioPort = "bluetooth-le"
	AudioPortHeadphones      AudioPort = "headphones"
	AudioPortLineOut         AudioPort = "line-out"
	AudioPortAirPlay         AudioPort = "airplay"
	AudioPortHDMI            AudioPort = "hdmi"
	AudioPortBuiltInSpeaker  AudioPort = "builtin-speaker"
	AudioPortBuiltInReceiver AudioPort = "builtin-receiver"
)

// AudioType is the reported output class.
type AudioType string

const (
	AudioTypeBluetooth  AudioType = "bluetooth"
	AudioTypeHeadphones AudioType = "headphones"
	AudioTypeSpeaker    AudioType = "speaker"
	AudioTypeUnknown    AudioType = "unknown"
)

// ClassifyAudioOutputs maps the active output ports to an output class.
// Priority: bluetooth, then wired/accessory outputs, then the built-in
// speaker or receiver. First match wins.
func ClassifyAudioOutputs(ports []AudioPort) AudioType {
	for _, p := range ports {
		switch p {
		case AudioPortBluetoothA2DP, AudioPortBluetoothHFP, AudioPortBluetoothLE:
			return AudioTypeBluetooth
		}
	}
	for _, p := range ports {
		switch p {
		case AudioPortHeadphones, AudioPortLineOut, AudioPortAirPlay, AudioPortHDMI:
			return AudioTypeHeadphones
		}
	}
	for _, p := range ports {
		switch p {
		case AudioPortBuiltInSpeaker, AudioPortBuiltInReceiver:
			return AudioTypeSpeaker
		}
	}
	return AudioTypeUnknown
}

// SourceKind classifies the active location provider.
type SourceKind string

const (
	SourceLive      SourceKind = "live"
	SourceReplay    SourceKind = "replay"
	SourceSimulated SourceKind = "simulated"
	SourceOther     SourceKind = "other"
)

// LocationSource describes the provider feeding position updates. Name
// carries a human-readable provider tag for SourceOther; AccuracyM is the
// configured accuracy setting when the provider exposes one.
type LocationSource struct {
	Kind      SourceKind `json:"kind"`
	Name      string     `json:"name,omitempty"`
	AccuracyM *float64   `json:"accuracy_m,omitempty"`
}

// Simulated reports whether the source replays or synthesizes positions
// rather than reading hardware.
func (s LocationSource) Simulated() bool {
	return s.Kind == SourceReplay || s.Kind == SourceSimulated
}

// EngineName returns the provider tag for reporting, or "" when unknown.
func (s LocationSource) EngineName() string {
	if s.Name != "" {
		return s.Name
	}
	switch s.Kind {
	case SourceLive, SourceReplay, SourceSimulated:
		return string(s.Kind)
	}
	return ""
}

// BatteryLevelUnknown is the sentinel reported when the battery sensor
// cannot be read. It survives serialization as the literal -1.
const BatteryLevelUnknown = -1

// DeviceStateProvider exposes instantaneous device facts. Build reads each
// method exactly once per snapshot so one event never mixes two sensor
// generations.
type DeviceStateProvider interface {
	VolumeLevel() int      // 0-100
	ScreenBrightness() int // 0-100
	BatteryPluggedIn() bool
	BatteryLevel() int // 0-100, or BatteryLevelUnknown
	ApplicationState() AppState
	Orientation() Orientation
	AudioOutputs() []AudioPort
	LocationSource() LocationSource
}

// DeviceSnapshot is a device state read captured on the client and shipped
// with the report request. It satisfies DeviceStateProvider, so the builder
// never touches host state directly.
type DeviceSnapshot struct {
	Volume            int            `json:"volume"`
	Brightness        int            `json:"brightness"`
	PluggedIn         bool           `json:"plugged_in"`
	Battery           int            `json:"battery"`
	AppState          AppState       `json:"app_state"`
	DeviceOrientation Orientation    `json:"orientation"`
	Outputs           []AudioPort    `json:"audio_outputs,omitempty"`
	Source            LocationSource `json:"location_source"`
}

func (d DeviceSnapshot) VolumeLevel() int               { return d.Volume }
func (d DeviceSnapshot) ScreenBrightness() int          { return d.Brightness }
func (d DeviceSnapshot) BatteryPluggedIn() bool         { return d.PluggedIn }
func (d DeviceSnapshot) BatteryLevel() int              { return d.Battery }
func (d DeviceSnapshot) ApplicationState() AppState     { return d.AppState }
func (d DeviceSnapshot) Orientation() Orientation       { return d.DeviceOrientation }
func (d DeviceSnapshot) AudioOutputs() []AudioPort      { return d.Outputs }
func (d DeviceSnapshot) LocationSource() LocationSource { return d.Source }
