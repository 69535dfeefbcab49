package shared

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dominicbreuker/wscat/pkg/config"

	"github.com/urfave/cli/v3"
)

func TestGetBaseDescription(t *testing.T) {
	t.Parallel()

	desc := GetBaseDescription()

	for _, proto := range []string{"ws", "wss", "kcp"} {
		if !strings.Contains(desc, proto) {
			t.Errorf("description should mention %s protocol", proto)
		}
	}
}

func TestGetArgsUsage(t *testing.T) {
	t.Parallel()

	if !strings.Contains(GetArgsUsage(), "transport") {
		t.Error("usage should mention transport")
	}
}

func flagNames(flags []cli.Flag) map[string]bool {
	names := make(map[string]bool)
	for _, flag := range flags {
		if n := flag.Names(); len(n) > 0 {
			names[n[0]] = true
		}
	}
	return names
}

func TestFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags []cli.Flag
		want  []string
	}{
		{"common", GetCommonFlags(), []string{VerboseFlag, TimeoutFlag, ConfigFlag, LogFormatFlag, QueueSizeFlag, ReadLimitFlag, MetricsFlag}},
		{"serve", GetServeFlags(), []string{MaxConnectionsFlag, ModeFlag, PrefixFlag}},
		{"connect", GetConnectFlags(), []string{InsecureFlag, TranscriptFlag}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			names := flagNames(tt.flags)
			for _, name := range tt.want {
				if !names[name] {
					t.Errorf("expected flag %q not found", name)
				}
			}
		})
	}
}

// parse runs ParseSettings inside a command with all flags defined.
func parse(t *testing.T, args ...string) (*Settings, string, error) {
	t.Helper()

	var (
		settings *Settings
		stderr   bytes.Buffer
	)
	flags := append(GetCommonFlags(), GetServeFlags()...)
	flags = append(flags, GetConnectFlags()...)
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var err error
			settings, err = ParseSettings(cmd, &stderr)
			return err
		},
	}

	err := cmd.Run(context.Background(), append([]string{"test"}, args...))
	return settings, stderr.String(), err
}

func TestParseSettings_Defaults(t *testing.T) {
	s, _, err := parse(t, "ws://*:8080")
	if err != nil {
		t.Fatalf("ParseSettings() error = %v", err)
	}

	want := config.Node{
		Protocol:       config.ProtoWS,
		Port:           8080,
		Timeout:        config.DefaultTimeout,
		QueueSize:      config.DefaultQueueSize,
		MaxConnections: config.DefaultMaxConnections,
		ReadLimit:      config.DefaultReadLimit,
	}
	got := *s.Node
	got.Logger = nil
	if got != want {
		t.Errorf("ParseSettings() = %+v, want %+v", got, want)
	}
	if s.Metrics != "" {
		t.Errorf("Metrics = %q, want empty", s.Metrics)
	}
}

func TestParseSettings_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wscat.yaml")
	content := "timeout: 3s\nqueue_size: 8\nmax_connections: 2\nmetrics: 127.0.0.1:9100\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, _, err := parse(t, "--config", path, "--queue-size", "16", "--insecure", "wss://example.com:443/feed")
	if err != nil {
		t.Fatalf("ParseSettings() error = %v", err)
	}

	n := s.Node
	if n.Timeout != 3*time.Second {
		t.Errorf("Timeout = %s, want 3s from file", n.Timeout)
	}
	if n.QueueSize != 16 {
		t.Errorf("QueueSize = %d, want 16 from flag", n.QueueSize)
	}
	if n.MaxConnections != 2 {
		t.Errorf("MaxConnections = %d, want 2 from file", n.MaxConnections)
	}
	if !n.Insecure || n.Path != "/feed" || n.Host != "example.com" {
		t.Errorf("ParseSettings() = %+v", n)
	}
	if s.Metrics != "127.0.0.1:9100" {
		t.Errorf("Metrics = %q, want from file", s.Metrics)
	}
}

func TestParseSettings_Errors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"bad transport", []string{"tcp://localhost:1"}, ""},
		{"bad log format", []string{"--log-format", "xml", "ws://localhost:1"}, ""},
		{"insecure without tls", []string{"--insecure", "ws://localhost:1"}, "insecure"},
		{"zero queue", []string{"--queue-size", "0", "ws://localhost:1"}, "queue size"},
		{"missing config", []string{"--config", "/does/not/exist.yaml", "ws://localhost:1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := parse(t, tt.args...)
			if err == nil {
				t.Fatal("ParseSettings() error = nil, want error")
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestStartMetrics_Disabled(t *testing.T) {
	t.Parallel()

	c, err := StartMetrics(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("StartMetrics() error = %v", err)
	}
	c.ConnectionOpened("server") // noop
}

func TestStartMetrics_InvalidAddr(t *testing.T) {
	t.Parallel()

	if _, err := StartMetrics(context.Background(), "256.0.0.1:bad", nil); err == nil {
		t.Error("StartMetrics() error = nil, want error")
	}
}
