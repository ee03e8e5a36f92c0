package events

const (
	// KindTurnListeningStarted identifies the start of the listening phase.
	KindTurnListeningStarted Kind = "turn_state.listening_started"
	// KindTurnListeningEnded identifies the end of the listening phase.
	KindTurnListeningEnded Kind = "turn_state.listening_ended"
	// KindTurnCompleted identifies natural turn completion.
	KindTurnCompleted Kind = "turn_state.completed"
	// KindTurnCancelled identifies turn cancellation.
	KindTurnCancelled Kind = "turn_state.cancelled"
)

// TurnListeningStarted marks the start of the listening phase.
type TurnListeningStarted struct {
	Base
	TurnID string
}

// NewTurnListeningStarted creates a listening started event.
func NewTurnListeningStarted(turnID string) TurnListeningStarted {
	return TurnListeningStarted{Base: NewBase(KindTurnListeningStarted), TurnID: turnID}
}

// TurnListeningEnded marks the end of the listening phase.
type TurnListeningEnded struct {
	Base
	TurnID     string
	Transcript string
}

// NewTurnListeningEnded creates a listening ended event.
func NewTurnListeningEnded(turnID, transcript string) TurnListeningEnded {
	return TurnListeningEnded{Base: NewBase(KindTurnListeningEnded), TurnID: turnID, Transcript: transcript}
}

// TurnCompleted marks natural completion of the current turn.
type TurnCompleted struct {
	Base
	TurnID string
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(turnID string) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), TurnID: turnID}
}

// TurnCancelled marks cancellation of the current turn.
type TurnCancelled struct {
	Base
	TurnID string
}

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled(turnID string) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), TurnID: turnID}
}
