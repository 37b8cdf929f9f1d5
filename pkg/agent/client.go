// Package agent talks to the hosted voice-agent vendor. The vendor's
// wire shapes have churned across SDK revisions, so everything here
// stays behind the narrow interview.AgentClient contract and nothing
// outside this package sees a vendor frame.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/interview"
)

const defaultDialTimeout = 15 * time.Second

// ClientConfig configures the realtime websocket client.
type ClientConfig struct {
	// BaseURL is the vendor realtime endpoint, ws:// or wss://.
	BaseURL string

	// APIKey is sent as a bearer token on the upgrade request.
	APIKey string

	// DialTimeout bounds the websocket handshake. Default: 15s.
	DialTimeout time.Duration

	Logger *slog.Logger
}

// Client is the live vendor connection for one session. It decodes the
// vendor's JSON event frames and dispatches them to the registered
// handlers in delivery order.
type Client struct {
	cfg       ClientConfig
	sessionID string
	handlers  interview.Handlers
	logger    *slog.Logger

	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

var _ interview.AgentClient = (*Client)(nil)

// NewClient builds a client for one session with its handlers
// registered. No I/O happens until Start.
func NewClient(cfg ClientConfig, sessionID string, h interview.Handlers) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:       cfg,
		sessionID: sessionID,
		handlers:  h,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Factory adapts a ClientConfig to the interview.ClientFactory shape.
func Factory(cfg ClientConfig) interview.ClientFactory {
	return func(sessionID string, h interview.Handlers) interview.AgentClient {
		return NewClient(cfg, sessionID, h)
	}
}

// serverFrame is one inbound vendor event. The vendor speaks "user",
// the interview package speaks "participant"; the mapping lives here.
type serverFrame struct {
	Type    string  `json:"type"`
	Level   float64 `json:"level,omitempty"`
	Role    string  `json:"role,omitempty"`
	Text    string  `json:"text,omitempty"`
	Message string  `json:"message,omitempty"`
	Code    string  `json:"code,omitempty"`
}

type clientFrame struct {
	Type  string `json:"type"`
	Muted bool   `json:"muted"`
}

// Start dials the vendor and begins the read loop. The handshake is
// bounded by DialTimeout; a failed dial leaves nothing running.
func (c *Client) Start(ctx context.Context) error {
	if c.closed.Load() {
		return core.NewAPIError("voice agent client is stopped")
	}
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	if base == "" {
		return core.NewAPIError("voice agent base URL not configured")
	}

	dialTimeout := c.cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}

	header := http.Header{}
	if c.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	conn, resp, err := dialer.DialContext(ctx, base+"/call/"+c.sessionID, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return core.NewCollaboratorError("voice-agent", fmt.Errorf("dial %s: %w", c.sessionID, err))
	}
	c.conn = conn

	go c.readLoop()
	return nil
}

// SetMuted records the mute flag vendor-side. The write is best effort;
// mute is client-side state and needs no confirmation.
func (c *Client) SetMuted(muted bool) {
	if err := c.sendJSON(clientFrame{Type: "set-muted", Muted: muted}); err != nil {
		c.logger.Warn("set-muted write failed", "session_id", c.sessionID, "error", err)
	}
}

// Stop tells the vendor to hang up and closes the socket. Safe to call
// multiple times; after the first call no further handler fires from
// this client.
func (c *Client) Stop() {
	c.closeOnce.Do(func() {
		// closed gates every dispatch path, so no handler fires after
		// this point even while the read loop is still unwinding.
		// Stop is reachable from inside a dispatched call-end, which
		// means it must not wait for the read loop to exit.
		c.closed.Store(true)
		if c.conn == nil {
			close(c.done)
			return
		}
		_ = c.sendClosedJSON(clientFrame{Type: "stop"})
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(2*time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
}

func (c *Client) sendJSON(v any) error {
	if c.closed.Load() {
		return core.NewAPIError("voice agent client is stopped")
	}
	if c.conn == nil {
		return core.NewAPIError("voice agent client is not started")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// sendClosedJSON writes during shutdown, after closed is set.
func (c *Client) sendClosedJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Client) readLoop() {
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			c.dispatchError(core.NewCollaboratorError("voice-agent", err))
			c.dispatchCallEnd()
			return
		}

		var frame serverFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.dispatchError(core.NewCollaboratorError("voice-agent", fmt.Errorf("decode frame: %w", err)))
			continue
		}
		c.dispatch(frame)
	}
}

func (c *Client) dispatch(frame serverFrame) {
	if c.closed.Load() {
		return
	}
	switch frame.Type {
	case "volume-level":
		if c.handlers.OnVolumeLevel != nil {
			c.handlers.OnVolumeLevel(frame.Level)
		}
	case "call-start":
		if c.handlers.OnCallStart != nil {
			c.handlers.OnCallStart()
		}
	case "call-end":
		c.dispatchCallEnd()
	case "speech-start":
		if c.handlers.OnSpeechStart != nil {
			c.handlers.OnSpeechStart()
		}
	case "speech-end":
		if c.handlers.OnSpeechEnd != nil {
			c.handlers.OnSpeechEnd()
		}
	case "message":
		if c.handlers.OnMessage != nil {
			c.handlers.OnMessage(interview.Message{
				Speaker: speakerFromRole(frame.Role),
				Text:    frame.Text,
			})
		}
	case "error":
		c.dispatchError(&core.Error{
			Type:    core.ErrCollaborator,
			Message: frame.Message,
			Code:    frame.Code,
		})
	default:
		// Unknown frame types are skipped; the vendor adds them
		// without notice.
		c.logger.Debug("unknown vendor frame", "type", frame.Type)
	}
}

func (c *Client) dispatchError(err error) {
	if c.closed.Load() {
		return
	}
	if c.handlers.OnError != nil {
		c.handlers.OnError(err)
	}
}

func (c *Client) dispatchCallEnd() {
	if c.closed.Load() {
		return
	}
	if c.handlers.OnCallEnd != nil {
		c.handlers.OnCallEnd()
	}
}

func speakerFromRole(role string) interview.Speaker {
	if strings.EqualFold(strings.TrimSpace(role), "assistant") {
		return interview.SpeakerAssistant
	}
	return interview.SpeakerParticipant
}
