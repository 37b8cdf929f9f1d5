package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/gateway/metrics"
	"github.com/insightlab/insightlab/pkg/store"
)

// TranscriptStore is the transcript slice of the storage layer.
type TranscriptStore interface {
	CreateTranscript(ctx context.Context, p store.TranscriptParams) (*store.Transcript, error)
	GetTranscript(ctx context.Context, id int) (*store.Transcript, error)
	ListTranscripts(ctx context.Context, projectID int) ([]store.Transcript, error)
	UpdateTranscriptReview(ctx context.Context, id int, p store.ReviewParams) (*store.Transcript, error)
	DeleteTranscript(ctx context.Context, id int) error
}

type TranscriptsHandler struct {
	Store        TranscriptStore
	Projects     ProjectStore
	Metrics      *metrics.Metrics
	MaxBodyBytes int64
}

type transcriptRequest struct {
	ProjectID       int                     `json:"projectId"`
	AssistantID     string                  `json:"assistantId"`
	ParticipantName string                  `json:"participantName"`
	ConductedAt     *time.Time              `json:"conductedAt"`
	Entries         []store.TranscriptEntry `json:"transcriptData"`
	Duration        int                     `json:"duration"`
}

func (h TranscriptsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := decodeJSON(w, r, h.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProjectID <= 0 {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("must be a positive integer", "projectId"))
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("must not be empty", "transcriptData"))
		return
	}
	for _, e := range req.Entries {
		if e.Type != "assistant" && e.Type != "user" {
			writeError(w, r, core.NewInvalidRequestErrorWithParam("entry type must be assistant or user", "transcriptData"))
			return
		}
	}
	if req.Duration < 0 {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("must be >= 0", "duration"))
		return
	}

	if _, err := h.Projects.GetProject(r.Context(), req.ProjectID); err != nil {
		writeError(w, r, err)
		return
	}

	conductedAt := time.Now()
	if req.ConductedAt != nil {
		conductedAt = *req.ConductedAt
	} else if len(req.Entries) > 0 && !req.Entries[0].Timestamp.IsZero() {
		conductedAt = req.Entries[0].Timestamp
	}

	transcript, err := h.Store.CreateTranscript(r.Context(), store.TranscriptParams{
		ProjectID:       req.ProjectID,
		AssistantID:     req.AssistantID,
		ParticipantName: req.ParticipantName,
		ConductedAt:     conductedAt,
		Entries:         req.Entries,
		Duration:        req.Duration,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordTranscriptSaved(len(transcript.Entries), transcript.Duration)
	}
	writeJSON(w, http.StatusCreated, transcript)
}

func (h TranscriptsHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	transcripts, err := h.Store.ListTranscripts(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transcripts)
}

func (h TranscriptsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	transcript, err := h.Store.GetTranscript(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transcript)
}

type reviewRequest struct {
	Summary        *string `json:"summary"`
	KeyFindings    *string `json:"keyFindings"`
	SentimentScore *int    `json:"sentimentScore"`
}

// Patch attaches post-interview analysis fields.
func (h TranscriptsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(w, r, h.MaxBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SentimentScore != nil && (*req.SentimentScore < 0 || *req.SentimentScore > 100) {
		writeError(w, r, core.NewInvalidRequestErrorWithParam("must be between 0 and 100", "sentimentScore"))
		return
	}

	// Absent fields keep their stored values.
	current, err := h.Store.GetTranscript(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	params := store.ReviewParams{
		Summary:        current.Summary,
		KeyFindings:    current.KeyFindings,
		SentimentScore: current.SentimentScore,
	}
	if req.Summary != nil {
		params.Summary = req.Summary
	}
	if req.KeyFindings != nil {
		params.KeyFindings = req.KeyFindings
	}
	if req.SentimentScore != nil {
		params.SentimentScore = req.SentimentScore
	}

	transcript, err := h.Store.UpdateTranscriptReview(r.Context(), id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transcript)
}

func (h TranscriptsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteTranscript(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
