package log

import (
	"fmt"
	"os"
	"sync"
)

// Direction marks a transcript entry as received or sent.
type Direction string

const (
	Inbound  Direction = "<"
	Outbound Direction = ">"
)

// Transcript appends the payload of every message passing through a
// connection to a file. A nil *Transcript records nothing.
type Transcript struct {
	mu   sync.Mutex
	file *os.File
}

// OpenTranscript creates or appends to the transcript file at path.
func OpenTranscript(path string) (*Transcript, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", path, err)
	}
	return &Transcript{file: f}, nil
}

// Record writes one line for data, prefixed with its direction.
func (t *Transcript) Record(dir Direction, data []byte) error {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintf(t.file, "%s %s\n", dir, data); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}
	return t.file.Close()
}
