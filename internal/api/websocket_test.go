package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/cloudbridge/internal/cloud"
	"github.com/nerrad567/cloudbridge/internal/device"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/config"
	"github.com/nerrad567/cloudbridge/internal/infrastructure/logging"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{Path: "/ws", PingInterval: 30, PongTimeout: 10}
}

func testLogger() *logging.Logger {
	return logging.Default()
}

// dialWS opens an authenticated WebSocket connection to the test server.
func dialWS(t *testing.T, ts *httptest.Server, key string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	if key != "" {
		url += "?api_key=" + key
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp != nil {
		resp.Body.Close() //nolint:errcheck // test cleanup
	}
	t.Cleanup(func() { conn.Close() }) //nolint:errcheck // test cleanup
	return conn
}

// readMessage reads one WebSocket message with a deadline.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()

	//nolint:errcheck // Best-effort deadline in tests
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshalling message: %v", err)
	}
	return msg
}

// subscribe sends a subscribe request and waits for the acknowledgement.
func subscribe(t *testing.T, conn *websocket.Conn, channels ...string) {
	t.Helper()

	msg := WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "sub-1",
		Payload: WSSubscribePayload{Channels: channels},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	ack := readMessage(t, conn)
	if ack.Type != WSTypeResponse {
		t.Fatalf("ack type = %q, want %q", ack.Type, WSTypeResponse)
	}
}

func TestWebSocketRejectsBadKey(t *testing.T) {
	ts, _ := newTestServer(t, nil, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Dial() without key should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("handshake response = %v, want 401", resp)
	}
	resp.Body.Close() //nolint:errcheck // test cleanup
}

func TestWebSocketPingPong(t *testing.T) {
	ts, _ := newTestServer(t, nil, nil)
	conn := dialWS(t, ts, testAPIKey)

	if err := conn.WriteJSON(WSMessage{Type: WSTypePing, ID: "p-1"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != WSTypePong {
		t.Errorf("type = %q, want %q", msg.Type, WSTypePong)
	}
	if msg.ID != "p-1" {
		t.Errorf("id = %q, want p-1", msg.ID)
	}
}

func TestWebSocketReceivesStateEvents(t *testing.T) {
	ts, registry := newTestServer(t, nil, nil)
	seedDevices(t, registry, cloudDevice("dev-1", "Hall Light", cloud.TypeDimmer, cloud.StatusOnline))

	conn := dialWS(t, ts, testAPIKey)
	subscribe(t, conn, ChannelStateChanged)

	state := cloud.DeviceState{Power: cloud.String("on"), Brightness: cloud.Int(50)}
	if err := registry.ApplyState(context.Background(), "dev-1", state, device.SourceCommand); err != nil {
		t.Fatalf("ApplyState() error = %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != WSTypeEvent {
		t.Fatalf("type = %q, want %q", msg.Type, WSTypeEvent)
	}
	if msg.EventType != ChannelStateChanged {
		t.Errorf("event_type = %q, want %q", msg.EventType, ChannelStateChanged)
	}

	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		t.Fatalf("re-marshalling payload: %v", err)
	}
	var ev device.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("unmarshalling event: %v", err)
	}
	if ev.Device.ID != "dev-1" {
		t.Errorf("event device = %q, want dev-1", ev.Device.ID)
	}
	if ev.Source != device.SourceCommand {
		t.Errorf("event source = %q, want %q", ev.Source, device.SourceCommand)
	}
}

func TestWebSocketUnsubscribedClientGetsNothing(t *testing.T) {
	ts, registry := newTestServer(t, nil, nil)
	seedDevices(t, registry, cloudDevice("dev-1", "Hall Light", cloud.TypeDimmer, cloud.StatusOnline))

	conn := dialWS(t, ts, testAPIKey)
	// Subscribed to removals only; state changes must not arrive.
	subscribe(t, conn, ChannelDeviceRemoved)

	state := cloud.DeviceState{Power: cloud.String("on")}
	if err := registry.ApplyState(context.Background(), "dev-1", state, device.SourcePoll); err != nil {
		t.Fatalf("ApplyState() error = %v", err)
	}

	//nolint:errcheck // Best-effort deadline in tests
	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read timeout, got a message")
	}
}

func TestEventChannelMapping(t *testing.T) {
	tests := []struct {
		eventType device.EventType
		want      string
	}{
		{device.EventAdded, ChannelDeviceAdded},
		{device.EventRemoved, ChannelDeviceRemoved},
		{device.EventStateChanged, ChannelStateChanged},
		{device.EventAvailabilityChanged, ChannelAvailability},
	}

	for _, tt := range tests {
		if got := eventChannel(tt.eventType); got != tt.want {
			t.Errorf("eventChannel(%q) = %q, want %q", tt.eventType, got, tt.want)
		}
	}
}

func TestHubBroadcastRespectsSubscriptions(t *testing.T) {
	hub := NewHub(testWSConfig(), testLogger())

	subscribed := &WSClient{hub: hub, send: make(chan []byte, 1), subscriptions: map[string]struct{}{ChannelStateChanged: {}}}
	ignored := &WSClient{hub: hub, send: make(chan []byte, 1), subscriptions: map[string]struct{}{}}
	hub.Register(subscribed)
	hub.Register(ignored)

	hub.Broadcast(ChannelStateChanged, map[string]string{"device_id": "dev-1"})

	select {
	case <-subscribed.send:
	default:
		t.Error("subscribed client did not receive broadcast")
	}
	select {
	case <-ignored.send:
		t.Error("unsubscribed client received broadcast")
	default:
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	hub := NewHub(testWSConfig(), testLogger())

	client := &WSClient{hub: hub, send: make(chan []byte, 1), subscriptions: map[string]struct{}{ChannelStateChanged: {}}}
	hub.Register(client)

	// A read pump exiting and a hub shutdown can both tear down the same
	// client; neither path may panic or double-close the send channel.
	hub.Unregister(client)
	hub.Unregister(client)

	hub.Broadcast(ChannelStateChanged, map[string]string{"device_id": "dev-1"})

	if _, ok := <-client.send; ok {
		t.Error("disconnected client received broadcast")
	}
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
}
