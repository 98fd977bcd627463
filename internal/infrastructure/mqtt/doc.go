// Package mqtt provides MQTT client connectivity for cloudbridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// cloudbridge publishes device state changes to the local MQTT broker
// so other building systems can react to cloud devices, and accepts
// set requests on per-device command topics:
//
//	cloudbridge/devices/{id}/state         state updates (retained)
//	cloudbridge/devices/{id}/availability  online/offline transitions
//	cloudbridge/devices/{id}/set           inbound state change requests
//	cloudbridge/system/status              bridge status and LWT
//
// MQTT is optional; when disabled in config the bridge runs with the
// local HTTP API only.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to set requests for all devices
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceSets(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a retained state update
//	topic := mqtt.Topics{}.DeviceState("lamp-01")
//	client.PublishRetained(topic, []byte(`{"power":"on"}`))
package mqtt
