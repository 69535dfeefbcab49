// Package pipeio reads line oriented input for the connect command.
package pipeio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/muesli/cancelreader"
)

// MaxLine is the longest line Lines accepts.
const MaxLine = 1 << 20

// Stdin reads from a file, usually os.Stdin. Reads can be interrupted via
// Close when the platform supports it.
type Stdin struct {
	in               io.Reader
	cancellableStdin cancelreader.CancelReader
}

// NewStdin wraps f, or os.Stdin if f is nil.
func NewStdin(f *os.File) *Stdin {
	if f == nil {
		f = os.Stdin
	}
	out := Stdin{in: f}

	cancellableStdin, err := cancelreader.NewReader(f)
	if err != nil {
		return &out
	}

	out.cancellableStdin = cancellableStdin
	return &out
}

// Read reads from the file, using the cancelable reader if available.
func (s *Stdin) Read(p []byte) (n int, err error) {
	if s.cancellableStdin != nil {
		return s.cancellableStdin.Read(p)
	}

	return s.in.Read(p)
}

// Close cancels any pending read. The underlying file stays open.
func (s *Stdin) Close() error {
	if s.cancellableStdin != nil {
		s.cancellableStdin.Cancel()
	}
	return nil
}

// Lines calls fn with every line of r, without the line ending, until r is
// exhausted or cancelled or fn fails. Cancellation is not an error.
func Lines(r io.Reader, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxLine)

	for sc.Scan() {
		if err := fn(sc.Text()); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil && !errors.Is(err, cancelreader.ErrCanceled) {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
