package events

import (
	"sync/atomic"
	"time"
)

type Kind string

func (k Kind) String() string { return string(k) }

// Event is the common contract of all pipeline lifecycle events. Sequence
// numbers are process-global and strictly increasing, so events from a single
// pipeline can be totally ordered even when timestamps collide.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
	Sequence() uint64
}

var sequenceCounter atomic.Uint64

type Base struct {
	kind      Kind
	timestamp time.Time
	sequence  uint64
}

func NewBase(kind Kind) Base {
	return Base{
		kind:      kind,
		timestamp: time.Now(),
		sequence:  sequenceCounter.Add(1),
	}
}

func (b Base) Kind() Kind { return b.kind }

func (b Base) Timestamp() time.Time { return b.timestamp }

func (b Base) Sequence() uint64 { return b.sequence }
