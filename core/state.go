package pipeline

// State is the single source of truth for what phase the pipeline is in.
// Exactly one state is active at any instant; all transitions happen on the
// control goroutine.
type State string

const (
	// StateIdle means no turn is active.
	StateIdle State = "idle"
	// StateListening means capture is running and transcription accumulates.
	StateListening State = "listening"
	// StateResponding means the model stream and synthesis dispatch are
	// running but nothing is audible yet.
	StateResponding State = "responding"
	// StateSpeaking means the first audible frame has reached the output
	// device.
	StateSpeaking State = "speaking"
	// StateError means an unrecoverable failure occurred and explicit user
	// action is required to retry.
	StateError State = "error"
)

func (s State) String() string { return string(s) }
