package stream

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestOpenByDestinationWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	sink, err := OpenByDestination(path)
	if err != nil {
		t.Fatalf("OpenByDestination: %v", err)
	}
	if err := sink.WriteString("hello\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello\n" {
		t.Fatalf("file contents = %q, want %q", got, "hello\n")
	}
}

func TestOpenByDestinationAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	first, _ := OpenByDestination(path)
	first.WriteString("a\n")
	first.Close()

	second, _ := OpenByDestination(path)
	second.WriteString("b\n")
	second.Close()

	got, _ := os.ReadFile(path)
	if string(got) != "a\nb\n" {
		t.Fatalf("file contents = %q, want %q", got, "a\nb\n")
	}
}

func TestOpenByDestinationDialsWebSocket(t *testing.T) {
	var upgrader websocket.Upgrader
	received := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("server upgrade: %v", err)
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		received <- string(msg)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	sink, err := OpenByDestination(url)
	if err != nil {
		t.Fatalf("OpenByDestination(%s): %v", url, err)
	}
	defer sink.Close()

	if err := sink.WriteString("ping"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}

	select {
	case msg := <-received:
		if msg != "ping" {
			t.Fatalf("server received %q, want %q", msg, "ping")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server never received the message")
	}
}
