package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/insightlab/insightlab/pkg/core"
)

// CreateProject inserts a project and returns it with generated fields.
func (s *Store) CreateProject(ctx context.Context, p ProjectParams) (*Project, error) {
	var out Project
	err := s.pool.QueryRow(ctx, `
		INSERT INTO projects (name, description, research_goal, system_prompt)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, research_goal, system_prompt, created_at, updated_at`,
		p.Name, p.Description, p.ResearchGoal, p.SystemPrompt,
	).Scan(&out.ID, &out.Name, &out.Description, &out.ResearchGoal, &out.SystemPrompt, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, core.NewStorageError("create project", err)
	}
	return &out, nil
}

// GetProject fetches one project by id.
func (s *Store) GetProject(ctx context.Context, id int) (*Project, error) {
	var out Project
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, research_goal, system_prompt, created_at, updated_at
		FROM projects WHERE id = $1`, id,
	).Scan(&out.ID, &out.Name, &out.Description, &out.ResearchGoal, &out.SystemPrompt, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NewNotFoundError(fmt.Sprintf("project %d not found", id))
	}
	if err != nil {
		return nil, core.NewStorageError("get project", err)
	}
	return &out, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, research_goal, system_prompt, created_at, updated_at
		FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, core.NewStorageError("list projects", err)
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.ResearchGoal, &p.SystemPrompt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, core.NewStorageError("list projects", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list projects", err)
	}
	return out, nil
}

// UpdateProject overwrites the writable fields and returns the new row.
func (s *Store) UpdateProject(ctx context.Context, id int, p ProjectParams) (*Project, error) {
	var out Project
	err := s.pool.QueryRow(ctx, `
		UPDATE projects
		SET name = $2, description = $3, research_goal = $4, system_prompt = $5, updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, research_goal, system_prompt, created_at, updated_at`,
		id, p.Name, p.Description, p.ResearchGoal, p.SystemPrompt,
	).Scan(&out.ID, &out.Name, &out.Description, &out.ResearchGoal, &out.SystemPrompt, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NewNotFoundError(fmt.Sprintf("project %d not found", id))
	}
	if err != nil {
		return nil, core.NewStorageError("update project", err)
	}
	return &out, nil
}

// UpdateProjectSystemPrompt replaces only the system prompt. Used after
// prompt enhancement so concurrent edits to other fields are not lost.
func (s *Store) UpdateProjectSystemPrompt(ctx context.Context, id int, systemPrompt string) (*Project, error) {
	var out Project
	err := s.pool.QueryRow(ctx, `
		UPDATE projects SET system_prompt = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, research_goal, system_prompt, created_at, updated_at`,
		id, systemPrompt,
	).Scan(&out.ID, &out.Name, &out.Description, &out.ResearchGoal, &out.SystemPrompt, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NewNotFoundError(fmt.Sprintf("project %d not found", id))
	}
	if err != nil {
		return nil, core.NewStorageError("update project prompt", err)
	}
	return &out, nil
}

// DeleteProject removes a project. Materials and transcripts cascade.
func (s *Store) DeleteProject(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return core.NewStorageError("delete project", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NewNotFoundError(fmt.Sprintf("project %d not found", id))
	}
	return nil
}
