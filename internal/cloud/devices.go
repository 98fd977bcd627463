package cloud

import (
	"context"
	"fmt"
	"net/url"
)

// ListDevices fetches every device registered to the account.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - []DeviceInfo: All devices, possibly empty
//   - error: Session errors or ErrRequestFailed
func (c *Client) ListDevices(ctx context.Context) ([]DeviceInfo, error) {
	var devices []DeviceInfo
	if err := c.get(ctx, "/v1/devices", &devices); err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []DeviceInfo{}
	}
	return devices, nil
}

// GetDevice fetches a single device description by ID.
func (c *Client) GetDevice(ctx context.Context, id string) (*DeviceInfo, error) {
	var info DeviceInfo
	if err := c.get(ctx, devicePath(id), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetDeviceState fetches the current state of a device.
func (c *Client) GetDeviceState(ctx context.Context, id string) (*DeviceState, error) {
	var state DeviceState
	if err := c.get(ctx, devicePath(id)+"/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SetDeviceState writes a (possibly partial) state to a device and
// returns the state the cloud reports after applying it.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - id: Cloud device ID
//   - state: Fields to change; nil fields are left untouched
//
// Returns:
//   - *DeviceState: The applied state as echoed by the cloud
//   - error: Session errors, ErrDeviceNotFound, or ErrRequestFailed
func (c *Client) SetDeviceState(ctx context.Context, id string, state DeviceState) (*DeviceState, error) {
	var applied DeviceState
	if err := c.put(ctx, devicePath(id)+"/state", state, &applied); err != nil {
		return nil, err
	}
	return &applied, nil
}

// devicePath builds the URL path for a device, escaping the ID.
func devicePath(id string) string {
	return fmt.Sprintf("/v1/devices/%s", url.PathEscape(id))
}
