package cloud

// DeviceInfo is the cloud's description of a device.
//
// Field names are case-sensitive and must round-trip unchanged; the
// cloud rejects unknown casings on writes.
type DeviceInfo struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	Model        string      `json:"model"`
	Location     string      `json:"location"`
	State        DeviceState `json:"state"`
	Capabilities []string    `json:"capabilities"`
	Status       string      `json:"status"`
	LastUpdated  string      `json:"last_updated"`
}

// DeviceState is the cloud's device state shape, shared by reads and
// writes. All control fields are pointers: a PUT carries only the fields
// being changed, and a nil field means "not reported" on reads.
type DeviceState struct {
	Power            *string  `json:"power,omitempty"`
	Brightness       *int     `json:"brightness,omitempty"`
	ColorTemperature *int     `json:"color_temperature,omitempty"`
	Hue              *float64 `json:"hue,omitempty"`
	Saturation       *float64 `json:"saturation,omitempty"`
	OnOff            *bool    `json:"on_off,omitempty"`
	Timestamp        string   `json:"timestamp,omitempty"`
}

// Clone returns a deep copy of the state. The copy shares no pointers
// with the original.
func (s DeviceState) Clone() DeviceState {
	out := DeviceState{Timestamp: s.Timestamp}
	if s.Power != nil {
		v := *s.Power
		out.Power = &v
	}
	if s.Brightness != nil {
		v := *s.Brightness
		out.Brightness = &v
	}
	if s.ColorTemperature != nil {
		v := *s.ColorTemperature
		out.ColorTemperature = &v
	}
	if s.Hue != nil {
		v := *s.Hue
		out.Hue = &v
	}
	if s.Saturation != nil {
		v := *s.Saturation
		out.Saturation = &v
	}
	if s.OnOff != nil {
		v := *s.OnOff
		out.OnOff = &v
	}
	return out
}

// Equal reports whether two states carry the same reported values.
// Timestamps are ignored; the cloud refreshes them on every response.
func (s DeviceState) Equal(other DeviceState) bool {
	return eqString(s.Power, other.Power) &&
		eqInt(s.Brightness, other.Brightness) &&
		eqInt(s.ColorTemperature, other.ColorTemperature) &&
		eqFloat(s.Hue, other.Hue) &&
		eqFloat(s.Saturation, other.Saturation) &&
		eqBool(s.OnOff, other.OnOff)
}

func eqString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Device type strings used by the cloud.
const (
	TypeSwitch = "switch"
	TypeDimmer = "dimmer"
	TypeFan    = "fan"
)

// Device status strings used by the cloud.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// String returns a pointer to s, for building partial DeviceState values.
func String(s string) *string { return &s }

// Int returns a pointer to n, for building partial DeviceState values.
func Int(n int) *int { return &n }

// Float returns a pointer to f, for building partial DeviceState values.
func Float(f float64) *float64 { return &f }

// Bool returns a pointer to b, for building partial DeviceState values.
func Bool(b bool) *bool { return &b }
