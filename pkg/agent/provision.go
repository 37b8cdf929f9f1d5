package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/insightlab/insightlab/pkg/interview"
)

// AssistantConfig is the vendor-side assistant definition for one
// interview session.
type AssistantConfig struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	Voice        string `json:"voice"`
	SystemPrompt string `json:"systemPrompt"`
	FirstMessage string `json:"firstMessage"`
}

// Provisioner creates vendor assistants. When the vendor is down or
// misconfigured it hands back a placeholder session id instead of an
// error, so the interview flow stays exercisable end to end against
// the simulated agent.
type Provisioner struct {
	// BaseURL is the vendor HTTP API root.
	BaseURL string

	// APIKey authenticates assistant creation.
	APIKey string

	// HTTPClient defaults to http.DefaultClient. The request carries no
	// timeout of its own; the caller's context governs it.
	HTTPClient *http.Client

	// PlaceholderPrefix defaults to interview.DefaultPlaceholderPrefix.
	PlaceholderPrefix string

	Logger *slog.Logger
}

// CreateSession asks the vendor for an assistant id for the given
// configuration. Any failure falls back to a placeholder id; the error
// is logged, not returned.
func (p *Provisioner) CreateSession(ctx context.Context, cfg AssistantConfig) string {
	id, err := p.createAssistant(ctx, cfg)
	if err != nil {
		p.logger().Warn("assistant creation failed, falling back to simulated session", "error", err)
		return p.placeholderID()
	}
	return id
}

// Bind fixes an assistant configuration, producing the one-argument
// provisioner shape the interview Controller consumes.
func (p *Provisioner) Bind(cfg AssistantConfig) interview.SessionProvisioner {
	return boundProvisioner{p: p, cfg: cfg}
}

type boundProvisioner struct {
	p   *Provisioner
	cfg AssistantConfig
}

func (b boundProvisioner) CreateSession(ctx context.Context) (string, error) {
	return b.p.CreateSession(ctx, b.cfg), nil
}

func (p *Provisioner) createAssistant(ctx context.Context, cfg AssistantConfig) (string, error) {
	base := strings.TrimRight(p.BaseURL, "/")
	if base == "" {
		return "", fmt.Errorf("vendor base URL not configured")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", fmt.Errorf("vendor API key not configured")
	}

	body, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode assistant config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/assistant", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("create assistant: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode assistant response: %w", err)
	}
	if strings.TrimSpace(created.ID) == "" {
		return "", fmt.Errorf("assistant response missing id")
	}
	return created.ID, nil
}

func (p *Provisioner) placeholderID() string {
	prefix := p.PlaceholderPrefix
	if prefix == "" {
		prefix = interview.DefaultPlaceholderPrefix
	}
	return prefix + uuid.NewString()
}

func (p *Provisioner) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
