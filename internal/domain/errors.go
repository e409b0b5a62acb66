package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyQuery     = errors.New("please provide input for the search")
	ErrNoInstructions = errors.New("no instructions available")
	ErrSessionActive  = errors.New("voice session already active")
)

// Kind classifies an Error by where it came from and how the caller
// should react to it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is the only kind shown to the user as an alert.
	KindValidation
	// KindRemote covers transport, status and payload failures of the recipe API.
	KindRemote
	// KindVoice covers capture start/stop and recognition failures.
	KindVoice
	// KindPersistence covers encode/decode and storage backend failures.
	KindPersistence
)

// String returns a human-readable kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRemote:
		return "remote request"
	case KindVoice:
		return "voice session"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError wraps err as a KindValidation error.
func ValidationError(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// RemoteRequestError wraps err as a KindRemote error.
func RemoteRequestError(op string, err error) error {
	return &Error{Kind: KindRemote, Op: op, Err: err}
}

// VoiceSessionError wraps err as a KindVoice error.
func VoiceSessionError(op string, err error) error {
	return &Error{Kind: KindVoice, Op: op, Err: err}
}

// PersistenceError wraps err as a KindPersistence error.
func PersistenceError(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == k
	}
	return false
}
