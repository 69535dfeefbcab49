package connect

import (
	"bytes"
	"context"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"dominicbreuker/wscat/cmd/shared"
	"dominicbreuker/wscat/pkg/config"
	"dominicbreuker/wscat/pkg/handler/console"
	"dominicbreuker/wscat/pkg/handler/echo"
	"dominicbreuker/wscat/pkg/node"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}
	if cmd.Name != "connect" {
		t.Errorf("command name = %q; want %q", cmd.Name, "connect")
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

	for _, name := range []string{"verbose", "timeout", "insecure", "transcript"} {
		if !flagNames[name] {
			t.Errorf("expected flag %q not found", name)
		}
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun_SendsLinesAndPrintsReplies(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	nl, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := nl.Addr().(*net.TCPAddr).Port

	server := node.New[*echo.Handler](&config.Node{Protocol: config.ProtoWS}, echo.New("echo: ", nil))
	sctx, scancel := context.WithCancel(context.Background())
	defer scancel()
	go server.Serve(sctx, nl)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	var out syncBuffer
	cfg := &config.Node{Protocol: config.ProtoWS, Host: "127.0.0.1", Port: port, Timeout: 5 * time.Second}
	f := console.New(&out, nil, nil)
	n := node.New[*console.Handler](cfg, f)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, &shared.Settings{Node: cfg}, n, f, r) }()

	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "echo: hello") {
		if time.Now().After(deadline) {
			t.Fatalf("output = %q, want echoed line", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	w.Close() // end of input closes the connection normally
	if err := <-done; err != nil {
		t.Errorf("run() error = %v", err)
	}
	if got := f.Received(); got != 1 {
		t.Errorf("Received() = %d, want 1", got)
	}
}

func TestRun_ConnectionRefused(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	cfg := &config.Node{Protocol: config.ProtoWS, Host: "127.0.0.1", Port: 1, Timeout: time.Second}
	f := console.New(&bytes.Buffer{}, nil, nil)

	if err := run(context.Background(), &shared.Settings{Node: cfg}, node.New[*console.Handler](cfg, f), f, r); err == nil {
		t.Error("run() error = nil, want connection error")
	}
}
