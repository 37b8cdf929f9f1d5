package interview

import (
	"context"
	"strings"
	"time"
)

// Speaker identifies who produced a transcript line.
type Speaker string

const (
	SpeakerAssistant   Speaker = "assistant"
	SpeakerParticipant Speaker = "participant"
)

// Message is one transcript fragment delivered by a voice-agent client.
// Fragments arrive in delivery order, which is not necessarily utterance
// order, and may repeat (at-least-once delivery from the vendor).
type Message struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Handlers is the event subscription set for a voice-agent client.
// All handlers are registered before the client starts, so no event can
// be dropped to a registration race. Nil handlers are skipped.
type Handlers struct {
	// OnVolumeLevel receives the current input level in [0,1]. Values
	// overwrite each other; there is no history.
	OnVolumeLevel func(level float64)

	// OnCallStart fires once when the call is connected.
	OnCallStart func()

	// OnCallEnd fires when the remote side terminates the call.
	OnCallEnd func()

	// OnSpeechStart and OnSpeechEnd bracket assistant speech.
	OnSpeechStart func()
	OnSpeechEnd   func()

	// OnMessage receives transcript fragments.
	OnMessage func(msg Message)

	// OnError receives mid-session errors. An error does not by itself
	// end the call; only OnCallEnd or an explicit Stop does.
	OnError func(err error)
}

// AgentClient is the narrow contract every voice-agent client honors.
// The vendor SDK's request/response shape has churned repeatedly, so
// nothing outside this package's adapters may depend on its wire types.
type AgentClient interface {
	// Start connects the client and begins event delivery. Handler
	// registration has already happened by construction time.
	Start(ctx context.Context) error

	// Stop tears the client down and cancels every timer it owns.
	// Safe to call more than once.
	Stop()

	// SetMuted records the client-side mute flag. No vendor
	// confirmation is required or awaited.
	SetMuted(muted bool)
}

// ClientFactory builds a real vendor client for a live session id with
// the given handlers already registered.
type ClientFactory func(sessionID string, h Handlers) AgentClient

// DefaultPlaceholderPrefix marks backend-generated stand-in session ids
// that must be served by the simulated agent instead of the vendor.
const DefaultPlaceholderPrefix = "sim-"

// IsPlaceholderID reports whether the session id names a simulated
// session rather than a live vendor one.
func IsPlaceholderID(sessionID, prefix string) bool {
	if prefix == "" {
		prefix = DefaultPlaceholderPrefix
	}
	return strings.HasPrefix(sessionID, prefix)
}

// Entry is one attributed, timestamped transcript line accumulated
// during a session. Timestamp is time of receipt, not of utterance.
type Entry struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
