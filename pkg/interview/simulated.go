package interview

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// SimulatedAgentConfig tunes the simulated agent's cadence. Zero values
// fall back to the reference cadence; tests shorten them.
type SimulatedAgentConfig struct {
	// VolumeInterval is how often a pseudo-random volume level in
	// [0, 0.5) is emitted. Default: 1s.
	VolumeInterval time.Duration

	// ConnectDelay is how long after construction the call-start
	// callback fires, emulating connection latency. Default: 500ms.
	ConnectDelay time.Duration

	// LineInterval is the gap between scripted transcript lines after
	// the opening line. Default: 8s.
	LineInterval time.Duration

	// Script is the ordered utterance sequence. Default: DefaultScript.
	Script []ScriptLine
}

func (c SimulatedAgentConfig) withDefaults() SimulatedAgentConfig {
	if c.VolumeInterval <= 0 {
		c.VolumeInterval = time.Second
	}
	if c.ConnectDelay <= 0 {
		c.ConnectDelay = 500 * time.Millisecond
	}
	if c.LineInterval <= 0 {
		c.LineInterval = 8 * time.Second
	}
	if c.Script == nil {
		c.Script = DefaultScript()
	}
	return c
}

// SimulatedAgent stands in for the vendor voice-agent client when no
// live session exists. It honors the same AgentClient contract and
// emits the same event sequence, so the Controller never branches on
// which implementation is attached.
//
// Volume emission begins at construction time (the Go analog of
// registering a volume handler), independent of Start. Stop cancels
// every timer this instance created; a stopped agent never invokes
// another callback.
type SimulatedAgent struct {
	cfg      SimulatedAgentConfig
	handlers Handlers

	mu       sync.Mutex
	started  bool
	stopped  bool
	muted    bool
	nextLine int

	volumeTicker *time.Ticker
	connectTimer *time.Timer
	lineTicker   *time.Ticker
	done         chan struct{}
}

// NewSimulatedAgent constructs a simulated agent with the given
// handlers registered. The volume ticker and the call-start timer begin
// immediately when their handlers are present.
func NewSimulatedAgent(cfg SimulatedAgentConfig, h Handlers) *SimulatedAgent {
	a := &SimulatedAgent{
		cfg:      cfg.withDefaults(),
		handlers: h,
		done:     make(chan struct{}),
	}

	if h.OnVolumeLevel != nil {
		a.volumeTicker = time.NewTicker(a.cfg.VolumeInterval)
		go a.volumeLoop(a.volumeTicker)
	}
	if h.OnCallStart != nil {
		a.connectTimer = time.AfterFunc(a.cfg.ConnectDelay, a.fireCallStart)
	}

	return a
}

var _ AgentClient = (*SimulatedAgent)(nil)

// Start begins the scripted transcript: the opening assistant line is
// emitted synchronously, then one line per LineInterval until the
// script is exhausted.
func (a *SimulatedAgent) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started || a.stopped {
		a.mu.Unlock()
		return nil
	}
	a.started = true
	a.lineTicker = time.NewTicker(a.cfg.LineInterval)
	ticker := a.lineTicker
	a.mu.Unlock()

	a.emitNextLine()
	go a.lineLoop(ticker)
	return nil
}

// SetMuted records the flag. The script is unaffected.
func (a *SimulatedAgent) SetMuted(muted bool) {
	a.mu.Lock()
	a.muted = muted
	a.mu.Unlock()
}

// Muted returns the recorded mute flag.
func (a *SimulatedAgent) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// Stop cancels every interval and timer this instance created. It is
// safe to call multiple times. Timers are stopped, not merely ignored;
// a leaked timer would keep mutating a Controller the caller believes
// is inert.
func (a *SimulatedAgent) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	if a.volumeTicker != nil {
		a.volumeTicker.Stop()
	}
	if a.connectTimer != nil {
		a.connectTimer.Stop()
	}
	if a.lineTicker != nil {
		a.lineTicker.Stop()
	}
	close(a.done)
	a.mu.Unlock()
}

// EmitCallEnd invokes the stored call-end callback, simulating a
// remote-initiated hang-up. No-op once stopped.
func (a *SimulatedAgent) EmitCallEnd() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	cb := a.handlers.OnCallEnd
	a.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (a *SimulatedAgent) volumeLoop(ticker *time.Ticker) {
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			a.mu.Lock()
			if a.stopped {
				a.mu.Unlock()
				return
			}
			cb := a.handlers.OnVolumeLevel
			a.mu.Unlock()

			if cb != nil {
				cb(rand.Float64() * 0.5)
			}
		}
	}
}

func (a *SimulatedAgent) lineLoop(ticker *time.Ticker) {
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			if !a.emitNextLine() {
				ticker.Stop()
				return
			}
		}
	}
}

// emitNextLine emits the next scripted line, returning false once the
// script is exhausted or the agent stopped.
func (a *SimulatedAgent) emitNextLine() bool {
	a.mu.Lock()
	if a.stopped || a.nextLine >= len(a.cfg.Script) {
		a.mu.Unlock()
		return false
	}
	line := a.cfg.Script[a.nextLine]
	a.nextLine++
	cb := a.handlers.OnMessage
	a.mu.Unlock()

	if cb != nil {
		cb(Message{Speaker: line.Speaker, Text: line.Text})
	}
	return true
}

func (a *SimulatedAgent) fireCallStart() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	cb := a.handlers.OnCallStart
	a.mu.Unlock()

	if cb != nil {
		cb()
	}
}
