package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/insightlab/insightlab/pkg/core"
)

// CreateMaterial attaches a knowledge-base document to a project.
func (s *Store) CreateMaterial(ctx context.Context, projectID int, filename, content string) (*ResearchMaterial, error) {
	var out ResearchMaterial
	err := s.pool.QueryRow(ctx, `
		INSERT INTO research_materials (project_id, filename, content)
		VALUES ($1, $2, $3)
		RETURNING id, project_id, filename, content, created_at`,
		projectID, filename, content,
	).Scan(&out.ID, &out.ProjectID, &out.Filename, &out.Content, &out.CreatedAt)
	if err != nil {
		return nil, core.NewStorageError("create material", err)
	}
	return &out, nil
}

// ListMaterials returns a project's documents in upload order.
func (s *Store) ListMaterials(ctx context.Context, projectID int) ([]ResearchMaterial, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, filename, content, created_at
		FROM research_materials WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, core.NewStorageError("list materials", err)
	}
	defer rows.Close()

	out := []ResearchMaterial{}
	for rows.Next() {
		var m ResearchMaterial
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Filename, &m.Content, &m.CreatedAt); err != nil {
			return nil, core.NewStorageError("list materials", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list materials", err)
	}
	return out, nil
}

// MaterialContents returns just the document bodies for a project, in
// upload order. Prompt enhancement folds these into the model request.
func (s *Store) MaterialContents(ctx context.Context, projectID int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT content FROM research_materials WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, core.NewStorageError("list material contents", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, core.NewStorageError("list material contents", err)
		}
		out = append(out, content)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list material contents", err)
	}
	return out, nil
}

// GetMaterial fetches one document by id within a project.
func (s *Store) GetMaterial(ctx context.Context, projectID, id int) (*ResearchMaterial, error) {
	var out ResearchMaterial
	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, filename, content, created_at
		FROM research_materials WHERE id = $1 AND project_id = $2`, id, projectID,
	).Scan(&out.ID, &out.ProjectID, &out.Filename, &out.Content, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NewNotFoundError(fmt.Sprintf("material %d not found", id))
	}
	if err != nil {
		return nil, core.NewStorageError("get material", err)
	}
	return &out, nil
}

// DeleteMaterial removes one document from a project.
func (s *Store) DeleteMaterial(ctx context.Context, projectID, id int) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM research_materials WHERE id = $1 AND project_id = $2`, id, projectID)
	if err != nil {
		return core.NewStorageError("delete material", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NewNotFoundError(fmt.Sprintf("material %d not found", id))
	}
	return nil
}
