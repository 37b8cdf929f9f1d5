package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/insightlab/insightlab/pkg/agent"
	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/gateway/metrics"
	"github.com/insightlab/insightlab/pkg/interview"
	"github.com/insightlab/insightlab/pkg/store"
)

// SessionCreator provisions an assistant session id, falling back to a
// placeholder id when the vendor is unavailable.
type SessionCreator interface {
	CreateSession(ctx context.Context, cfg agent.AssistantConfig) string
}

// SessionProjectStore is the storage slice session provisioning needs.
type SessionProjectStore interface {
	GetProject(ctx context.Context, id int) (*store.Project, error)
}

type SessionsHandler struct {
	Provisioner       SessionCreator
	Store             SessionProjectStore
	PlaceholderPrefix string
	Metrics           *metrics.Metrics
	MaxBodyBytes      int64
	Logger            *slog.Logger
}

type sessionRequest struct {
	ProjectID int `json:"projectId"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	Simulated bool   `json:"simulated"`
}

// ServeHTTP handles POST /v1/sessions. The assistant definition is
// derived from the project's enhanced prompt.
func (h SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Provisioner == nil {
		writeError(w, r, core.NewAPIError("session provisioner not configured"))
		return
	}

	var req sessionRequest
	if err := decodeJSON(w, r, h.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProjectID <= 0 {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("must be a positive integer", "projectId"))
		return
	}

	project, err := h.Store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(project.SystemPrompt) == "" {
		writeError(w, r, core.NewInvalidRequestError("project has no interview prompt; enhance it first"))
		return
	}

	sessionID := h.Provisioner.CreateSession(r.Context(), agent.AssistantConfig{
		Name:         project.Name + " interviewer",
		Model:        "gpt-4o",
		Voice:        "jennifer",
		SystemPrompt: project.SystemPrompt,
		FirstMessage: "Hi! Thanks for taking the time to talk with me today.",
	})

	simulated := interview.IsPlaceholderID(sessionID, h.PlaceholderPrefix)
	if h.Metrics != nil {
		mode := "vendor"
		if simulated {
			mode = "placeholder"
		}
		h.Metrics.RecordSessionProvisioned(mode)
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sessionID,
		Simulated: simulated,
	})
}
