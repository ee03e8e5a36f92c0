package events

// KindPipelineError identifies a pipeline failure event.
const KindPipelineError Kind = "pipeline.error"

// PipelineError carries a failure with enough context to reproduce it.
// Cancellation never produces this event.
type PipelineError struct {
	Base
	// ErrorKind is the taxonomy bucket ("capability", "transport", "malformed").
	ErrorKind string
	// Phase names the pipeline phase the failure occurred in.
	Phase string
	// ChunkIndex is the chunk the failure applies to, or -1 when not
	// chunk-scoped.
	ChunkIndex int
	// Detail is a human-readable description.
	Detail string
}

// NewPipelineError creates a pipeline error event.
func NewPipelineError(errorKind, phase string, chunkIndex int, detail string) PipelineError {
	return PipelineError{
		Base:       NewBase(KindPipelineError),
		ErrorKind:  errorKind,
		Phase:      phase,
		ChunkIndex: chunkIndex,
		Detail:     detail,
	}
}
