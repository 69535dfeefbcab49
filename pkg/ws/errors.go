package ws

import (
	"errors"
	"fmt"
)

// Kind classifies failures reported by handler callbacks and senders. The
// runtime uses it to pick the close code when a callback fails.
type Kind int

const (
	KindInternal Kind = iota
	KindIO
	KindProtocol
	KindCapacity
	KindEncoding
	KindQueue
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	case KindCapacity:
		return "capacity"
	case KindEncoding:
		return "encoding"
	case KindQueue:
		return "queue"
	case KindCustom:
		return "custom"
	default:
		return "internal"
	}
}

// CloseCode is the close code the runtime sends when a handler fails with k.
func (k Kind) CloseCode() CloseCode {
	switch k {
	case KindProtocol:
		return CloseProtocol
	case KindCapacity:
		return CloseSize
	case KindEncoding:
		return CloseInvalid
	case KindCustom:
		return ClosePolicy
	default:
		return CloseError
	}
}

var (
	ErrQueueFull        = errors.New("outbound queue full")
	ErrConnectionClosed = errors.New("connection closed")
	ErrNoOutbound       = errors.New("sender is not bound to a connection")
	ErrShutdown         = errors.New("runtime is shutting down")
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Details string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Details == "" && e.Err == nil:
		return fmt.Sprintf("ws %s error", e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("ws %s error: %s", e.Kind, e.Details)
	case e.Details == "":
		return fmt.Sprintf("ws %s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("ws %s error: %s: %v", e.Kind, e.Details, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewError returns an error of the given kind.
func NewError(kind Kind, details string) *Error {
	return &Error{Kind: kind, Details: details}
}

// Wrap classifies err.
func Wrap(kind Kind, details string, err error) *Error {
	return &Error{Kind: kind, Details: details, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain. Unclassified
// errors are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
