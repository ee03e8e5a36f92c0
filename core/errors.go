package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a pipeline that has been closed.
	ErrClosed = errors.New("pipeline closed")
	// ErrNotRunning is returned when audio or prompts arrive before Run.
	ErrNotRunning = errors.New("pipeline not running")
)

// ErrorKind buckets failures by how they are handled.
type ErrorKind string

const (
	// ErrorKindCapability covers capture or output device acquisition
	// failures. Fatal to the current turn, no automatic retry.
	ErrorKindCapability ErrorKind = "capability"
	// ErrorKindTransport covers model stream and synthesis fetch transport
	// failures. Recoverable, the affected unit is abandoned.
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindMalformed covers undecodable synthesis audio and unparsable
	// stream events. Recoverable at chunk granularity.
	ErrorKindMalformed ErrorKind = "malformed"
)

// Phase names where in the pipeline a failure occurred.
type Phase string

const (
	PhaseListening  Phase = "listening"
	PhaseResponding Phase = "responding"
	PhaseTTSFetch   Phase = "tts_fetch"
	PhaseDecode     Phase = "decode"
	PhasePlayback   Phase = "playback"
)

// Error carries enough context to reproduce a pipeline failure. Cancellation
// is not an error and never produces one.
type Error struct {
	Kind  ErrorKind
	Phase Phase
	// ChunkIndex is the chunk the failure applies to, or -1 when the failure
	// is not chunk-scoped.
	ChunkIndex int
	Err        error
}

func (e Error) Error() string {
	if e.ChunkIndex >= 0 {
		return fmt.Sprintf("%s failure in %s (chunk %d): %v", e.Kind, e.Phase, e.ChunkIndex, e.Err)
	}
	return fmt.Sprintf("%s failure in %s: %v", e.Kind, e.Phase, e.Err)
}

func (e Error) Unwrap() error { return e.Err }
