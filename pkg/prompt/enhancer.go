// Package prompt turns a research objective into a structured interview
// prompt with a single hosted chat-completion call. No streaming, no
// retries; a failure is terminal to the attempt.
package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/insightlab/insightlab/pkg/core"
)

const defaultModel = "gemini-2.0-flash"

// EnhancerConfig configures the prompt-enhancement collaborator.
type EnhancerConfig struct {
	APIKey string

	// Model defaults to gemini-2.0-flash.
	Model string

	Logger *slog.Logger
}

// Enhancer produces interview prompts from research objectives.
type Enhancer struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewEnhancer builds an Enhancer. It fails fast when no API key is
// configured rather than deferring the failure to the first request.
func NewEnhancer(ctx context.Context, cfg EnhancerConfig) (*Enhancer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, core.NewAPIError("prompt model API key not configured")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, core.NewCollaboratorError("prompt-model", err)
	}

	return &Enhancer{client: client, model: model, logger: logger}, nil
}

// Enhance sends one request and returns the structured prompt text.
func (e *Enhancer) Enhance(ctx context.Context, objective string, excerpts []string) (string, error) {
	if strings.TrimSpace(objective) == "" {
		return "", core.NewInvalidRequestErrorWithParam("objective must not be empty", "objective")
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(buildRequest(objective, excerpts)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	})
	if err != nil {
		return "", core.NewCollaboratorError("prompt-model", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", core.NewCollaboratorError("prompt-model", fmt.Errorf("empty completion"))
	}

	e.logger.Info("prompt enhanced", "model", e.model, "objective_len", len(objective), "excerpts", len(excerpts))
	return text, nil
}

// buildRequest formats the single-shot instruction sent to the model.
// The output contract (section order and headings) is what the vendor
// assistant's system prompt is later derived from.
func buildRequest(objective string, excerpts []string) string {
	var b strings.Builder
	b.WriteString("You are an expert user researcher. Rewrite the research objective below into a complete interview prompt for a voice interviewer.\n\n")
	b.WriteString("The prompt must contain these sections, in order:\n")
	b.WriteString("1. ROLE: who the interviewer is and how they behave.\n")
	b.WriteString("2. OBJECTIVE: what the study needs to learn.\n")
	b.WriteString("3. QUESTION FLOW: an opening question, 5-8 follow-up questions from broad to specific, and a closing question.\n")
	b.WriteString("4. STYLE: conversational rules, one question at a time, no leading questions, probe on specifics.\n")
	b.WriteString("5. CLOSING: how to thank the participant and end the interview.\n\n")
	b.WriteString("Research objective:\n")
	b.WriteString(objective)
	b.WriteString("\n")

	if len(excerpts) > 0 {
		b.WriteString("\nBackground material from the project's knowledge base:\n")
		for i, excerpt := range excerpts {
			fmt.Fprintf(&b, "--- excerpt %d ---\n%s\n", i+1, strings.TrimSpace(excerpt))
		}
	}

	return b.String()
}
