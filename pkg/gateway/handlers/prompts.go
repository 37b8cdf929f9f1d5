package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/gateway/metrics"
	"github.com/insightlab/insightlab/pkg/store"
)

// PromptEnhancer produces a structured interview prompt from a research
// objective and optional knowledge-base excerpts.
type PromptEnhancer interface {
	Enhance(ctx context.Context, objective string, excerpts []string) (string, error)
}

// PromptProjectStore is the storage slice prompt enhancement needs.
type PromptProjectStore interface {
	GetProject(ctx context.Context, id int) (*store.Project, error)
	UpdateProjectSystemPrompt(ctx context.Context, id int, systemPrompt string) (*store.Project, error)
	MaterialContents(ctx context.Context, projectID int) ([]string, error)
}

type EnhanceHandler struct {
	Store        PromptProjectStore
	Enhancer     PromptEnhancer
	Metrics      *metrics.Metrics
	MaxBodyBytes int64
	Logger       *slog.Logger
}

type enhanceRequest struct {
	ProjectID int `json:"projectId"`

	// Objective overrides the project's stored research goal when set.
	Objective string `json:"objective"`
}

type enhanceResponse struct {
	ProjectID    int    `json:"projectId"`
	SystemPrompt string `json:"systemPrompt"`
}

// ServeHTTP handles POST /v1/prompts/enhance. The produced prompt is
// persisted on the project so session provisioning can pick it up.
func (h EnhanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Enhancer == nil {
		writeError(w, r, core.NewAPIError("prompt enhancement not configured"))
		return
	}

	var req enhanceRequest
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

	objective := strings.TrimSpace(req.Objective)
	if objective == "" {
		objective = strings.TrimSpace(project.ResearchGoal)
	}
	if objective == "" {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("project has no research goal and no objective was provided", "objective"))
		return
	}

	excerpts, err := h.Store.MaterialContents(r.Context(), req.ProjectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	prompt, err := h.Enhancer.Enhance(r.Context(), objective, excerpts)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordPromptEnhancement("error")
		}
		writeError(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordPromptEnhancement("ok")
	}

	updated, err := h.Store.UpdateProjectSystemPrompt(r.Context(), req.ProjectID, prompt)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, enhanceResponse{
		ProjectID:    updated.ID,
		SystemPrompt: updated.SystemPrompt,
	})
}
