package store

import "time"

// Project is one research study.
type Project struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ResearchGoal string    `json:"researchGoal"`
	SystemPrompt string    `json:"systemPrompt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProjectParams is the writable subset of Project.
type ProjectParams struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ResearchGoal string `json:"researchGoal"`
	SystemPrompt string `json:"systemPrompt"`
}

// ResearchMaterial is one knowledge-base document attached to a project.
type ResearchMaterial struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"projectId"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// TranscriptEntry is one transcript line in its stored wire form. The
// stored speaker vocabulary is "assistant" and "user".
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is one completed interview. Summary, KeyFindings, and
// SentimentScore stay nil until review produces them.
type Transcript struct {
	ID              int               `json:"id"`
	ProjectID       int               `json:"projectId"`
	AssistantID     string            `json:"assistantId"`
	ParticipantName string            `json:"participantName"`
	ConductedAt     time.Time         `json:"conductedAt"`
	Entries         []TranscriptEntry `json:"transcriptData"`
	Summary         *string           `json:"summary"`
	KeyFindings     *string           `json:"keyFindings"`
	SentimentScore  *int              `json:"sentimentScore"`
	// Duration is in whole seconds.
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

// TranscriptParams is the insert payload for a transcript.
type TranscriptParams struct {
	ProjectID       int
	AssistantID     string
	ParticipantName string
	ConductedAt     time.Time
	Entries         []TranscriptEntry
	Duration        int
}

// ReviewParams carries the post-interview analysis fields.
type ReviewParams struct {
	Summary        *string
	KeyFindings    *string
	SentimentScore *int
}
