package interview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/insightlab/insightlab/pkg/core"
)

// Status is the lifecycle state of one interview session.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusActive
	// StatusEnded is terminal. A new interview requires a new Controller.
	StatusEnded
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusActive:
		return "active"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EndReason says why a session terminated. All reasons route to the
// same persistence decision.
type EndReason string

const (
	ReasonUserRequested EndReason = "user-requested"
	ReasonRemoteEnded   EndReason = "remote-ended"
	ReasonUnmounted     EndReason = "component-unmounted"
)

// SessionProvisioner obtains a session id from the backend, which asks
// the voice-agent vendor or falls back to a placeholder id.
type SessionProvisioner interface {
	CreateSession(ctx context.Context) (string, error)
}

// TranscriptRecord is the payload handed to the storage collaborator
// when a session's transcript is persisted.
type TranscriptRecord struct {
	ProjectID       int
	AssistantID     string
	ParticipantName string
	Entries         []Entry
	// Duration is last entry timestamp minus first, floored to whole
	// seconds. Zero when the transcript has fewer than two entries.
	Duration int
}

// TranscriptSink persists a finished transcript.
type TranscriptSink interface {
	SaveTranscript(ctx context.Context, rec TranscriptRecord) error
}

// Notice is a user-facing notification. Failures in this package are
// terminal to the attempted operation and reported here; none are
// re-thrown to a global handler.
type Notice struct {
	Message string
	Err     error
}

// ControllerConfig configures a Controller. Provisioner, Sink, and
// NewClient are injected explicitly; if a needed collaborator is
// missing the relevant operation fails fast with a distinguishable
// error instead of silently retrying.
type ControllerConfig struct {
	ProjectID   int
	Provisioner SessionProvisioner
	Sink        TranscriptSink

	// NewClient builds the real vendor client. May be nil when only
	// simulated sessions are expected.
	NewClient ClientFactory

	// Simulated tunes the simulated agent attached for placeholder ids.
	Simulated SimulatedAgentConfig

	// PlaceholderPrefix overrides DefaultPlaceholderPrefix.
	PlaceholderPrefix string

	OnNotice func(n Notice)
	Logger   *slog.Logger

	// Now is the wall clock for transcript timestamps. Tests inject it.
	Now func() time.Time
}

// Controller owns the lifecycle of one interview session: it requests
// session creation, wires up event subscriptions, tracks transcript and
// volume state, and guarantees the transcript is persisted at most once.
//
// A Controller instance is owned by a single view; it is never reused
// after StatusEnded.
type Controller struct {
	cfg    ControllerConfig
	logger *slog.Logger
	now    func() time.Time

	mu              sync.Mutex
	status          Status
	sessionID       string
	client          AgentClient
	muted           bool
	volume          float64
	speaking        bool
	entries         []Entry
	saved           bool
	saving          bool
	participantName string
}

// NewController creates an idle Controller.
func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		cfg:    cfg,
		logger: logger,
		now:    now,
		status: StatusIdle,
	}
}

// CreateSession asks the backend for a session id. A provisioner
// failure is surfaced as a notice and returned; there is no automatic
// retry.
func (c *Controller) CreateSession(ctx context.Context) (string, error) {
	if c.cfg.Provisioner == nil {
		err := core.NewAPIError("session provisioner not configured")
		c.notify("failed to create interview", err)
		return "", err
	}
	id, err := c.cfg.Provisioner.CreateSession(ctx)
	if err != nil {
		c.notify("failed to create interview", err)
		return "", err
	}
	return id, nil
}

// Start attaches a client for the session id and begins event delivery.
// Placeholder ids always attach the simulated agent, even when a real
// client factory is configured. Handlers are registered at client
// construction time, before the client's Start call, so no event can be
// dropped to a registration race.
func (c *Controller) Start(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	if c.status != StatusIdle {
		c.mu.Unlock()
		return core.NewInvalidRequestError("session already started")
	}
	c.status = StatusConnecting
	c.sessionID = sessionID
	c.mu.Unlock()

	h := Handlers{
		OnVolumeLevel: c.handleVolume,
		OnCallStart:   c.handleCallStart,
		OnCallEnd:     c.handleCallEnd,
		OnSpeechStart: c.handleSpeechStart,
		OnSpeechEnd:   c.handleSpeechEnd,
		OnMessage:     c.handleMessage,
		OnError:       c.handleError,
	}

	simulated := IsPlaceholderID(sessionID, c.cfg.PlaceholderPrefix)
	var client AgentClient
	switch {
	case simulated:
		client = NewSimulatedAgent(c.cfg.Simulated, h)
	case c.cfg.NewClient == nil:
		c.mu.Lock()
		c.status = StatusIdle
		c.mu.Unlock()
		err := core.NewAPIError("voice agent client not configured")
		c.notify("failed to start interview", err)
		return err
	default:
		client = c.cfg.NewClient(sessionID, h)
	}

	c.mu.Lock()
	c.client = client
	if simulated {
		// No network handshake to wait for.
		c.status = StatusActive
	}
	c.mu.Unlock()

	if err := client.Start(ctx); err != nil {
		client.Stop()
		c.mu.Lock()
		c.status = StatusEnded
		c.mu.Unlock()
		c.notify("failed to start interview", err)
		return err
	}

	c.logger.Info("interview started", "session_id", sessionID, "simulated", simulated)
	return nil
}

// ToggleMute flips the client-side mute flag and forwards it. A silent
// no-op when no client is attached or the session is not active.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	if c.status != StatusActive || c.client == nil {
		c.mu.Unlock()
		return
	}
	c.muted = !c.muted
	muted := c.muted
	client := c.client
	c.mu.Unlock()

	client.SetMuted(muted)
}

// End terminates the session. It stops the attached client
// synchronously, so no timer the client owns can fire afterwards, then
// runs the persistence decision. Repeated calls are no-ops; the
// storage write happens at most once per Controller regardless of how
// many times or for which reasons End fires.
func (c *Controller) End(ctx context.Context, reason EndReason) {
	c.mu.Lock()
	if c.status == StatusEnded {
		c.mu.Unlock()
		return
	}
	c.status = StatusEnded
	client := c.client
	c.mu.Unlock()

	if client != nil {
		client.Stop()
	}

	c.logger.Info("interview ended", "session_id", c.SessionID(), "reason", string(reason))
	c.persistIfNeeded(ctx, "")
}

// SaveWithParticipant persists the transcript with a participant name
// attached. It shares the at-most-once guard with the automatic save on
// End: whichever path reaches the store first wins, and a save that is
// already in flight is never doubled.
func (c *Controller) SaveWithParticipant(ctx context.Context, name string) {
	c.persistIfNeeded(ctx, name)
}

// persistIfNeeded submits the transcript when it is non-empty and no
// write has succeeded or is in flight. On failure the saved flag stays
// false and the failure is reported; the session still counts as ended.
func (c *Controller) persistIfNeeded(ctx context.Context, participantName string) {
	c.mu.Lock()
	if c.saved || c.saving || len(c.entries) == 0 {
		c.mu.Unlock()
		return
	}
	if c.cfg.Sink == nil {
		c.mu.Unlock()
		c.notify("failed to save transcript", core.NewAPIError("transcript sink not configured"))
		return
	}
	c.saving = true
	if participantName != "" {
		c.participantName = participantName
	}
	rec := TranscriptRecord{
		ProjectID:       c.cfg.ProjectID,
		AssistantID:     c.sessionID,
		ParticipantName: c.participantName,
		Entries:         append([]Entry(nil), c.entries...),
		Duration:        durationSeconds(c.entries),
	}
	c.mu.Unlock()

	err := c.cfg.Sink.SaveTranscript(ctx, rec)

	c.mu.Lock()
	c.saving = false
	if err == nil {
		c.saved = true
	}
	c.mu.Unlock()

	if err != nil {
		c.notify("failed to save transcript", err)
		return
	}
	c.logger.Info("transcript saved", "session_id", rec.AssistantID, "entries", len(rec.Entries), "duration_s", rec.Duration)
}

// durationSeconds floors the span between the first and last entry to
// whole seconds. Fewer than two entries yields 0.
func durationSeconds(entries []Entry) int {
	if len(entries) < 2 {
		return 0
	}
	span := entries[len(entries)-1].Timestamp.Sub(entries[0].Timestamp)
	if span < 0 {
		return 0
	}
	return int(span / time.Second)
}

func (c *Controller) handleVolume(level float64) {
	c.mu.Lock()
	if c.status != StatusEnded {
		c.volume = level
	}
	c.mu.Unlock()
}

func (c *Controller) handleCallStart() {
	c.mu.Lock()
	if c.status == StatusConnecting {
		c.status = StatusActive
	}
	c.mu.Unlock()
}

func (c *Controller) handleCallEnd() {
	c.End(context.Background(), ReasonRemoteEnded)
}

func (c *Controller) handleSpeechStart() {
	c.mu.Lock()
	if c.status != StatusEnded {
		c.speaking = true
	}
	c.mu.Unlock()
}

func (c *Controller) handleSpeechEnd() {
	c.mu.Lock()
	c.speaking = false
	c.mu.Unlock()
}

// handleMessage appends a transcript entry for every fragment carrying
// non-empty text, in callback-invocation order. Repeated identical
// fragments are both kept; the vendor delivers at least once.
func (c *Controller) handleMessage(msg Message) {
	if msg.Text == "" {
		return
	}
	c.mu.Lock()
	if c.status == StatusEnded {
		c.mu.Unlock()
		return
	}
	c.entries = append(c.entries, Entry{
		ID:        uuid.NewString(),
		Speaker:   msg.Speaker,
		Text:      msg.Text,
		Timestamp: c.now(),
	})
	c.mu.Unlock()
}

// handleError surfaces a mid-session error. The interview is assumed to
// continue unless the client also reports call-end.
func (c *Controller) handleError(err error) {
	c.notify("interview error", err)
}

func (c *Controller) notify(message string, err error) {
	c.logger.Warn(message, "error", err)
	if c.cfg.OnNotice != nil {
		c.cfg.OnNotice(Notice{Message: message, Err: err})
	}
}

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SessionID returns the attached session id, empty before Start.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// VolumeLevel returns the last observed input level in [0,1].
func (c *Controller) VolumeLevel() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Muted returns the client-side mute flag.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// AssistantSpeaking reports whether the assistant is mid-utterance.
func (c *Controller) AssistantSpeaking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speaking
}

// Saved reports whether a persistence write has succeeded.
func (c *Controller) Saved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

// Transcript returns a copy of the accumulated entries in append order.
func (c *Controller) Transcript() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}
