// Package events defines the typed turn-lifecycle event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_input.*
//   - assistant_response.*
//   - assistant_speech.*
//   - assistant_playback.*
//   - turn_state.*
//   - pipeline.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Final: terminal immutable text/state for the current stream/turn phase.
//   - Ended: lifecycle boundary indicating stream or phase completion.
//
// user_input events
//
//   - UserAudioFrame (user_input.audio_frame): raw user input audio frame.
//   - UserSpeechStarted (user_input.speech_started): speech activity began.
//   - UserSpeechEnded (user_input.speech_ended): speech activity ended.
//   - UserTranscriptInterimUpdated (user_input.transcript_interim_updated):
//     mutable interim full transcript snapshot.
//   - UserTranscriptFinal (user_input.transcript_final): terminal full
//     transcript for the utterance.
//
// assistant_response events
//
//   - AssistantResponseSegment (assistant_response.segment): streamed response
//     text segment.
//   - AssistantResponseFinal (assistant_response.final): response text stream
//     is complete.
//
// assistant_speech events
//
//   - AssistantSpeechChunk (assistant_speech.chunk): synthesized audio payload
//     for one text chunk, exposed for optional persistence.
//   - AssistantSpeechFinal (assistant_speech.final): synthesis dispatch ended
//     for the current turn.
//
// assistant_playback events
//
//   - AssistantPlaybackStarted (assistant_playback.started): first audible
//     frame reached the output device.
//   - AssistantPlaybackEnded (assistant_playback.ended): playback fully
//     drained; includes the spoken transcript known to the scheduler.
//
// turn_state events
//
//   - TurnListeningStarted (turn_state.listening_started): listening began.
//   - TurnListeningEnded (turn_state.listening_ended): listening finished.
//   - TurnCompleted (turn_state.completed): turn finished naturally.
//   - TurnCancelled (turn_state.cancelled): turn was cancelled; cancellation
//     is a first-class transition, never reported as an error.
//
// pipeline events
//
//   - PipelineError (pipeline.error): a failure with taxonomy kind, phase,
//     and human-readable detail.
package events
