// Package stream provides the concrete write-only sinks behind the
// "stream" value kind (§3, §6 PushStreamSink): a file sink and a WebSocket
// sink, chosen by URL scheme the same way a session front end picks a
// transport by address shape.
package stream

import (
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"gsm/internal/value"
)

// fileSink writes each OUTPUT line to an open *os.File.
type fileSink struct {
	f *os.File
}

// Open opens a file sink for a plain filesystem destination, appending if
// the file already exists.
func Open(path string) (*fileSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f}, nil
}

func (s *fileSink) WriteString(line string) error {
	_, err := s.f.WriteString(line)
	return err
}

func (s *fileSink) Close() error { return s.f.Close() }

// wsSink writes each OUTPUT line as a WebSocket text message, grounded on
// the teacher's WebSocketConnect/WebSocketSend dial-then-write pattern but
// collapsed to the synchronous write path a write-only Sink needs (no
// reader goroutine: GSM streams never receive).
type wsSink struct {
	conn *websocket.Conn
}

// Dial opens a WebSocket sink for ws:// and wss:// destinations.
func Dial(url string) (*wsSink, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	return &wsSink{conn: conn}, nil
}

func (s *wsSink) WriteString(line string) error {
	return s.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (s *wsSink) Close() error {
	return s.conn.Close()
}

// OpenByDestination picks a sink by the shape of dest: a ws:// or wss://
// URL dials a WebSocket, anything else opens (or creates) a file at that
// path.
func OpenByDestination(dest string) (value.Sink, error) {
	if len(dest) >= 5 && (dest[:5] == "ws://" || (len(dest) >= 6 && dest[:6] == "wss://")) {
		return Dial(dest)
	}
	return Open(dest)
}
