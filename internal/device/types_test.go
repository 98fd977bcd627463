package device

import (
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/cloudbridge/internal/cloud"
)

func TestFromCloud(t *testing.T) {
	info := cloud.DeviceInfo{
		ID:           "lamp-01",
		Name:         "Desk Lamp",
		Type:         cloud.TypeDimmer,
		Model:        "DL-200",
		Location:     "office",
		Status:       cloud.StatusOnline,
		Capabilities: []string{"power", "brightness"},
		State: cloud.DeviceState{
			Power:      cloud.String("on"),
			Brightness: cloud.Int(80),
		},
		LastUpdated: "2026-03-10T09:30:00Z",
	}

	d := FromCloud(info)

	if d.ID != "lamp-01" || d.Name != "Desk Lamp" || d.Type != cloud.TypeDimmer {
		t.Errorf("unexpected identity fields: %+v", d)
	}
	if !d.Online() {
		t.Error("Online() = false for online status")
	}
	want := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	if !d.LastUpdated.Equal(want) {
		t.Errorf("LastUpdated = %v, want %v", d.LastUpdated, want)
	}
	if d.State.Brightness == nil || *d.State.Brightness != 80 {
		t.Errorf("State.Brightness = %v, want 80", d.State.Brightness)
	}

	// The conversion must not share pointers with the source.
	*info.State.Brightness = 10
	if *d.State.Brightness != 80 {
		t.Error("FromCloud shares state pointers with the source")
	}
}

func TestFromCloudBadTimestamp(t *testing.T) {
	d := FromCloud(cloud.DeviceInfo{ID: "x", Name: "x", Type: "switch", LastUpdated: "not-a-time"})
	if d.LastUpdated.IsZero() {
		t.Error("LastUpdated should fall back to now for unparseable input")
	}
}

func TestDeviceValidate(t *testing.T) {
	tests := []struct {
		name    string
		device  Device
		wantErr bool
	}{
		{"valid", Device{ID: "a", Name: "b", Type: "switch"}, false},
		{"missing id", Device{Name: "b", Type: "switch"}, true},
		{"missing name", Device{ID: "a", Type: "switch"}, true},
		{"missing type", Device{ID: "a", Name: "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.device.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDevice) {
				t.Errorf("Validate() error = %v, want ErrInvalidDevice", err)
			}
		})
	}
}

func TestDeviceDeepCopy(t *testing.T) {
	original := Device{
		ID:           "fan-01",
		Name:         "Ceiling Fan",
		Type:         cloud.TypeFan,
		Capabilities: []string{"power"},
		State:        cloud.DeviceState{Power: cloud.String("on")},
	}

	copied := original.DeepCopy()
	copied.Capabilities[0] = "changed"
	*copied.State.Power = "off"

	if original.Capabilities[0] != "power" {
		t.Error("DeepCopy shares the capabilities slice")
	}
	if *original.State.Power != "on" {
		t.Error("DeepCopy shares state pointers")
	}
}
