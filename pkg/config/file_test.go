package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wscat.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("os.WriteFile(): %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}

	if f.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %s, want %s", f.Timeout, DefaultTimeout)
	}
	if f.QueueSize != DefaultQueueSize {
		t.Errorf("QueueSize = %d, want %d", f.QueueSize, DefaultQueueSize)
	}
	if f.MaxConnections != DefaultMaxConnections {
		t.Errorf("MaxConnections = %d, want %d", f.MaxConnections, DefaultMaxConnections)
	}
	if f.ReadLimit != DefaultReadLimit {
		t.Errorf("ReadLimit = %d, want %d", f.ReadLimit, DefaultReadLimit)
	}
	if f.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", f.LogFormat)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
timeout: 3s
queue_size: 8
max_connections: 2
read_limit: 1024
verbose: true
log_format: json
metrics: 127.0.0.1:9100
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}

	want := File{
		Timeout:        3 * time.Second,
		QueueSize:      8,
		MaxConnections: 2,
		ReadLimit:      1024,
		Verbose:        true,
		LogFormat:      "json",
		Metrics:        "127.0.0.1:9100",
	}
	if *f != want {
		t.Errorf("Load() = %+v, want %+v", *f, want)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("WSCAT_QUEUE_SIZE", "5")

	f, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if f.QueueSize != 5 {
		t.Errorf("QueueSize = %d, want 5", f.QueueSize)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{"bad log format", func(t *testing.T) string { return writeFile(t, "log_format: xml\n") }},
		{"bad yaml", func(t *testing.T) string { return writeFile(t, "queue_size: [\n") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(tc.path(t)); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestFile_Apply(t *testing.T) {
	f := &File{Timeout: time.Second, QueueSize: 1, MaxConnections: 2, ReadLimit: 3, Verbose: true}
	n := &Node{Protocol: ProtoWS, Port: 80}

	f.Apply(n)

	if n.Timeout != time.Second || n.QueueSize != 1 || n.MaxConnections != 2 || n.ReadLimit != 3 || !n.Verbose {
		t.Errorf("Apply() produced %+v", n)
	}
	if n.Protocol != ProtoWS || n.Port != 80 {
		t.Errorf("Apply() touched transport fields: %+v", n)
	}
}
