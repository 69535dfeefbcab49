package serve

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}
	if cmd.Name != "serve" {
		t.Errorf("command name = %q; want %q", cmd.Name, "serve")
	}
	if cmd.Action == nil {
		t.Error("command action should not be nil")
	}
}

func TestGetFlags(t *testing.T) {
	t.Parallel()

	flagNames := make(map[string]bool)
	for _, flag := range getFlags() {
		if names := flag.Names(); len(names) > 0 {
			flagNames[names[0]] = true
		}
	}

	for _, name := range []string{"verbose", "timeout", "mode", "prefix", "max-connections", "metrics"} {
		if !flagNames[name] {
			t.Errorf("expected flag %q not found", name)
		}
	}
	if flagNames["insecure"] {
		t.Error("serve should not offer the insecure flag")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	nl, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer nl.Close()
	return nl.Addr().(*net.TCPAddr).Port
}

func TestServe_Echo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- GetCommand().Run(ctx, []string{"serve", "--prefix", "> ", fmt.Sprintf("ws://127.0.0.1:%d/echo", port)})
	}()

	url := fmt.Sprintf("ws://127.0.0.1:%d/echo", port)
	var c *websocket.Conn
	deadline := time.Now().Add(5 * time.Second)
	for {
		dctx, dcancel := context.WithTimeout(context.Background(), time.Second)
		var err error
		c, _, err = websocket.Dial(dctx, url, nil)
		dcancel()
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("websocket.Dial(%s): %v", url, err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	defer c.CloseNow()

	rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rcancel()
	if err := c.Write(rctx, websocket.MessageText, []byte("hi")); err != nil {
		t.Fatalf("Write(): %v", err)
	}
	_, data, err := c.Read(rctx)
	if err != nil {
		t.Fatalf("Read(): %v", err)
	}
	if string(data) != "> hi" {
		t.Errorf("Read() = %q, want %q", data, "> hi")
	}

	cancel()
	if _, _, err := c.Read(rctx); err == nil {
		t.Error("Read() after cancellation succeeded, want connection closed")
	}
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestServe_UnknownMode(t *testing.T) {
	err := GetCommand().Run(context.Background(), []string{"serve", "--mode", "karaoke", "ws://127.0.0.1:1"})
	if err == nil {
		t.Error("Run() error = nil, want error for unknown mode")
	}
}
