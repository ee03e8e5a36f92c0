package events

const (
	// KindUserAudioFrame identifies raw audio captured from the user's input
	// device.
	KindUserAudioFrame Kind = "user_input.audio_frame"
	// KindUserSpeechStarted identifies the start of user speech activity.
	KindUserSpeechStarted Kind = "user_input.speech_started"
	// KindUserSpeechEnded identifies the end of user speech activity.
	KindUserSpeechEnded Kind = "user_input.speech_ended"
	// KindUserTranscriptInterimUpdated identifies interim transcript updates.
	KindUserTranscriptInterimUpdated Kind = "user_input.transcript_interim_updated"
	// KindUserTranscriptFinal identifies the final transcript of an utterance.
	KindUserTranscriptFinal Kind = "user_input.transcript_final"
)

// UserAudioFrame carries one captured chunk of user input audio on its way to
// the recognizer.
type UserAudioFrame struct {
	Base
	Audio []byte
}

// NewUserAudioFrame creates a user input audio frame event.
func NewUserAudioFrame(audio []byte) UserAudioFrame {
	return UserAudioFrame{
		Base:  NewBase(KindUserAudioFrame),
		Audio: audio,
	}
}

// UserSpeechStarted marks the recognizer reporting that the user started
// speaking.
type UserSpeechStarted struct{ Base }

// NewUserSpeechStarted creates a user speech started event.
func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

// UserSpeechEnded marks the recognizer reporting that the user stopped
// speaking.
type UserSpeechEnded struct{ Base }

// NewUserSpeechEnded creates a user speech ended event.
func NewUserSpeechEnded() UserSpeechEnded {
	return UserSpeechEnded{Base: NewBase(KindUserSpeechEnded)}
}

// UserTranscriptInterimUpdated carries an interim transcript snapshot. Each
// update replaces the previous one; the text is not stable until the final
// transcript arrives.
type UserTranscriptInterimUpdated struct {
	Base
	Transcript string
}

// NewUserTranscriptInterimUpdated creates an interim transcript update event.
func NewUserTranscriptInterimUpdated(transcript string) UserTranscriptInterimUpdated {
	return UserTranscriptInterimUpdated{
		Base:       NewBase(KindUserTranscriptInterimUpdated),
		Transcript: transcript,
	}
}

// UserTranscriptFinal carries the settled transcript of one utterance, the
// text the turn's model request is built from.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

// NewUserTranscriptFinal creates a final transcript event.
func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{
		Base:       NewBase(KindUserTranscriptFinal),
		Transcript: transcript,
	}
}
