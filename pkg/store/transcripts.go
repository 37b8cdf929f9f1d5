package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/interview"
)

// entriesFromSession converts accumulated session entries to the stored
// wire form. The session vocabulary says "participant" where the stored
// form says "user".
func entriesFromSession(entries []interview.Entry) []TranscriptEntry {
	out := make([]TranscriptEntry, 0, len(entries))
	for _, e := range entries {
		t := "user"
		if e.Speaker == interview.SpeakerAssistant {
			t = "assistant"
		}
		out = append(out, TranscriptEntry{
			ID:        e.ID,
			Type:      t,
			Text:      e.Text,
			Timestamp: e.Timestamp,
		})
	}
	return out
}

// SaveTranscript satisfies interview.TranscriptSink. ConductedAt is the
// first entry's timestamp when one exists, otherwise the insert time.
func (s *Store) SaveTranscript(ctx context.Context, rec interview.TranscriptRecord) error {
	conductedAt := time.Now()
	if len(rec.Entries) > 0 {
		conductedAt = rec.Entries[0].Timestamp
	}
	_, err := s.CreateTranscript(ctx, TranscriptParams{
		ProjectID:       rec.ProjectID,
		AssistantID:     rec.AssistantID,
		ParticipantName: rec.ParticipantName,
		ConductedAt:     conductedAt,
		Entries:         entriesFromSession(rec.Entries),
		Duration:        rec.Duration,
	})
	return err
}

// CreateTranscript inserts a finished interview.
func (s *Store) CreateTranscript(ctx context.Context, p TranscriptParams) (*Transcript, error) {
	data, err := json.Marshal(p.Entries)
	if err != nil {
		return nil, core.NewStorageError("encode transcript", err)
	}

	var (
		out Transcript
		raw []byte
	)
	err = s.pool.QueryRow(ctx, `
		INSERT INTO transcripts (project_id, assistant_id, participant_name, conducted_at, transcript_data, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, project_id, assistant_id, participant_name, conducted_at, transcript_data,
		          summary, key_findings, sentiment_score, duration, created_at`,
		p.ProjectID, p.AssistantID, p.ParticipantName, p.ConductedAt, data, p.Duration,
	).Scan(&out.ID, &out.ProjectID, &out.AssistantID, &out.ParticipantName, &out.ConductedAt, &raw,
		&out.Summary, &out.KeyFindings, &out.SentimentScore, &out.Duration, &out.CreatedAt)
	if err != nil {
		return nil, core.NewStorageError("create transcript", err)
	}
	if err := json.Unmarshal(raw, &out.Entries); err != nil {
		return nil, core.NewStorageError("decode transcript", err)
	}

	s.logger.Info("transcript stored", "transcript_id", out.ID, "project_id", out.ProjectID, "entries", len(out.Entries))
	return &out, nil
}

// GetTranscript fetches one transcript by id.
func (s *Store) GetTranscript(ctx context.Context, id int) (*Transcript, error) {
	var (
		out Transcript
		raw []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, assistant_id, participant_name, conducted_at, transcript_data,
		       summary, key_findings, sentiment_score, duration, created_at
		FROM transcripts WHERE id = $1`, id,
	).Scan(&out.ID, &out.ProjectID, &out.AssistantID, &out.ParticipantName, &out.ConductedAt, &raw,
		&out.Summary, &out.KeyFindings, &out.SentimentScore, &out.Duration, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NewNotFoundError(fmt.Sprintf("transcript %d not found", id))
	}
	if err != nil {
		return nil, core.NewStorageError("get transcript", err)
	}
	if err := json.Unmarshal(raw, &out.Entries); err != nil {
		return nil, core.NewStorageError("decode transcript", err)
	}
	return &out, nil
}

// ListTranscripts returns a project's transcripts, newest first.
func (s *Store) ListTranscripts(ctx context.Context, projectID int) ([]Transcript, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, assistant_id, participant_name, conducted_at, transcript_data,
		       summary, key_findings, sentiment_score, duration, created_at
		FROM transcripts WHERE project_id = $1 ORDER BY conducted_at DESC, id DESC`, projectID)
	if err != nil {
		return nil, core.NewStorageError("list transcripts", err)
	}
	defer rows.Close()

	out := []Transcript{}
	for rows.Next() {
		var (
			t   Transcript
			raw []byte
		)
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.AssistantID, &t.ParticipantName, &t.ConductedAt, &raw,
			&t.Summary, &t.KeyFindings, &t.SentimentScore, &t.Duration, &t.CreatedAt); err != nil {
			return nil, core.NewStorageError("list transcripts", err)
		}
		if err := json.Unmarshal(raw, &t.Entries); err != nil {
			return nil, core.NewStorageError("decode transcript", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list transcripts", err)
	}
	return out, nil
}

// UpdateTranscriptReview attaches summary, key findings, and sentiment
// to a transcript after review.
func (s *Store) UpdateTranscriptReview(ctx context.Context, id int, p ReviewParams) (*Transcript, error) {
	var (
		out Transcript
		raw []byte
	)
	err := s.pool.QueryRow(ctx, `
		UPDATE transcripts SET summary = $2, key_findings = $3, sentiment_score = $4
		WHERE id = $1
		RETURNING id, project_id, assistant_id, participant_name, conducted_at, transcript_data,
		          summary, key_findings, sentiment_score, duration, created_at`,
		id, p.Summary, p.KeyFindings, p.SentimentScore,
	).Scan(&out.ID, &out.ProjectID, &out.AssistantID, &out.ParticipantName, &out.ConductedAt, &raw,
		&out.Summary, &out.KeyFindings, &out.SentimentScore, &out.Duration, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NewNotFoundError(fmt.Sprintf("transcript %d not found", id))
	}
	if err != nil {
		return nil, core.NewStorageError("update transcript review", err)
	}
	if err := json.Unmarshal(raw, &out.Entries); err != nil {
		return nil, core.NewStorageError("decode transcript", err)
	}
	return &out, nil
}

// DeleteTranscript removes one transcript.
func (s *Store) DeleteTranscript(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transcripts WHERE id = $1`, id)
	if err != nil {
		return core.NewStorageError("delete transcript", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NewNotFoundError(fmt.Sprintf("transcript %d not found", id))
	}
	return nil
}
