// Package testhelpers provides shared utilities for exercising the relay
// over real WebSocket connections in integration tests.
package testhelpers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// ConnectWebSocket dials the relay endpoint with a permissive test origin.
func ConnectWebSocket(url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	headers := http.Header{}
	headers.Set("Origin", "http://localhost:8080")

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// SendFrame writes one JSON frame to the connection.
func SendFrame(conn *websocket.Conn, frame any) error {
	return conn.WriteJSON(frame)
}

// SendRawFrame writes raw bytes as a single text message, used to exercise
// the malformed-frame path.
func SendRawFrame(conn *websocket.Conn, payload []byte) error {
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// CloseWebSocket performs a clean close handshake.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}

// FrameReader drains a connection in the background so tests can assert on
// received frames without poisoning the connection with read deadlines.
type FrameReader struct {
	frames chan map[string]any
}

// NewFrameReader starts reading frames from the connection. The reader stops
// silently on the first read error (normal close included).
func NewFrameReader(conn *websocket.Conn) *FrameReader {
	r := &FrameReader{frames: make(chan map[string]any, 64)}
	go func() {
		defer close(r.frames)
		for {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			r.frames <- frame
		}
	}()
	return r
}

// Next returns the next frame or fails the test after the timeout.
func (r *FrameReader) Next(t *testing.T, timeout time.Duration) map[string]any {
	t.Helper()
	select {
	case frame, ok := <-r.frames:
		if !ok {
			t.Fatal("connection closed while waiting for frame")
		}
		return frame
	case <-time.After(timeout):
		t.Fatal("timed out waiting for frame")
	}
	return nil
}

// NextOfType discards frames until one of the wanted type arrives.
func (r *FrameReader) NextOfType(t *testing.T, frameType string, timeout time.Duration) map[string]any {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case frame, ok := <-r.frames:
			if !ok {
				t.Fatalf("connection closed while waiting for %q frame", frameType)
			}
			if frame["type"] == frameType {
				return frame
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q frame", frameType)
		}
	}
}

// ExpectNone asserts no frame arrives within the window.
func (r *FrameReader) ExpectNone(t *testing.T, window time.Duration) {
	t.Helper()
	select {
	case frame, ok := <-r.frames:
		if ok {
			t.Fatalf("unexpected frame: %v", frame)
		}
	case <-time.After(window):
	}
}

// AssertFrameField checks a single field of a received frame.
func AssertFrameField(t *testing.T, frame map[string]any, field string, want any) {
	t.Helper()
	if got := frame[field]; got != want {
		t.Errorf("frame field %q = %v, want %v", field, got, want)
	}
}
