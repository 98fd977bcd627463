package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the cloudbridge message bus.
//
// All topics use the scheme: cloudbridge/{category}/...
const (
	// TopicPrefixDevices is the base for per-device topics.
	TopicPrefixDevices = "cloudbridge/devices"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "cloudbridge/system"
)

// Topics provides builders for cloudbridge MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("lamp-01")
//	// Returns: "cloudbridge/devices/lamp-01/state"
type Topics struct{}

// DeviceState returns the topic for device state updates published by
// the bridge after each poll or command.
//
// Example: cloudbridge/devices/lamp-01/state
func (Topics) DeviceState(deviceID string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixDevices, deviceID)
}

// DeviceSet returns the topic on which external systems request a
// state change for a device.
//
// Example: cloudbridge/devices/lamp-01/set
func (Topics) DeviceSet(deviceID string) string {
	return fmt.Sprintf("%s/%s/set", TopicPrefixDevices, deviceID)
}

// DeviceAvailability returns the topic for device online/offline
// transitions.
//
// Example: cloudbridge/devices/lamp-01/availability
func (Topics) DeviceAvailability(deviceID string) string {
	return fmt.Sprintf("%s/%s/availability", TopicPrefixDevices, deviceID)
}

// SystemStatus returns the bridge status topic. Used for the online
// message, graceful shutdown, and the Last Will and Testament.
//
// Example: cloudbridge/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceSets returns a pattern matching set requests for any device.
//
// Pattern: cloudbridge/devices/+/set
func (Topics) AllDeviceSets() string {
	return fmt.Sprintf("%s/+/set", TopicPrefixDevices)
}

// AllDeviceStates returns a pattern matching state updates for any device.
//
// Pattern: cloudbridge/devices/+/state
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefixDevices)
}

// AllTopics returns a pattern matching all cloudbridge topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: cloudbridge/#
func (Topics) AllTopics() string {
	return "cloudbridge/#"
}

// DeviceIDFromTopic extracts the device ID from a per-device topic
// such as cloudbridge/devices/lamp-01/set. Returns "" if the topic
// does not match the device scheme.
func DeviceIDFromTopic(topic string) string {
	rest, ok := strings.CutPrefix(topic, TopicPrefixDevices+"/")
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return id
}
