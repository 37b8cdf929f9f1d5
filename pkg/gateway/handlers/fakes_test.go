package handlers

import (
	"context"
	"sort"
	"sync"

	"github.com/insightlab/insightlab/pkg/agent"
	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/store"
)

// fakeStore is an in-memory stand-in for the storage layer.
type fakeStore struct {
	mu          sync.Mutex
	nextID      int
	projects    map[int]store.Project
	materials   map[int]store.ResearchMaterial
	transcripts map[int]store.Transcript

	pingErr error
	failAll error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:      1,
		projects:    map[int]store.Project{},
		materials:   map[int]store.ResearchMaterial{},
		transcripts: map[int]store.Transcript{},
	}
}

func (f *fakeStore) id() int {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) CreateProject(ctx context.Context, p store.ProjectParams) (*store.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	project := store.Project{ID: f.id(), Name: p.Name, Description: p.Description, ResearchGoal: p.ResearchGoal, SystemPrompt: p.SystemPrompt}
	f.projects[project.ID] = project
	return &project, nil
}

func (f *fakeStore) GetProject(ctx context.Context, id int) (*store.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, core.NewNotFoundError("project not found")
	}
	return &p, nil
}

func (f *fakeStore) ListProjects(ctx context.Context) ([]store.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.Project{}
	for _, p := range f.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateProject(ctx context.Context, id int, p store.ProjectParams) (*store.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.projects[id]
	if !ok {
		return nil, core.NewNotFoundError("project not found")
	}
	current.Name = p.Name
	current.Description = p.Description
	current.ResearchGoal = p.ResearchGoal
	current.SystemPrompt = p.SystemPrompt
	f.projects[id] = current
	return &current, nil
}

func (f *fakeStore) UpdateProjectSystemPrompt(ctx context.Context, id int, systemPrompt string) (*store.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.projects[id]
	if !ok {
		return nil, core.NewNotFoundError("project not found")
	}
	current.SystemPrompt = systemPrompt
	f.projects[id] = current
	return &current, nil
}

func (f *fakeStore) DeleteProject(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return core.NewNotFoundError("project not found")
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeStore) CreateMaterial(ctx context.Context, projectID int, filename, content string) (*store.ResearchMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := store.ResearchMaterial{ID: f.id(), ProjectID: projectID, Filename: filename, Content: content}
	f.materials[m.ID] = m
	return &m, nil
}

func (f *fakeStore) ListMaterials(ctx context.Context, projectID int) ([]store.ResearchMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.ResearchMaterial{}
	for _, m := range f.materials {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) MaterialContents(ctx context.Context, projectID int) ([]string, error) {
	materials, err := f.ListMaterials(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, m := range materials {
		out = append(out, m.Content)
	}
	return out, nil
}

func (f *fakeStore) GetMaterial(ctx context.Context, projectID, id int) (*store.ResearchMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.materials[id]
	if !ok || m.ProjectID != projectID {
		return nil, core.NewNotFoundError("material not found")
	}
	return &m, nil
}

func (f *fakeStore) DeleteMaterial(ctx context.Context, projectID, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.materials[id]
	if !ok || m.ProjectID != projectID {
		return core.NewNotFoundError("material not found")
	}
	delete(f.materials, id)
	return nil
}

func (f *fakeStore) CreateTranscript(ctx context.Context, p store.TranscriptParams) (*store.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	t := store.Transcript{
		ID:              f.id(),
		ProjectID:       p.ProjectID,
		AssistantID:     p.AssistantID,
		ParticipantName: p.ParticipantName,
		ConductedAt:     p.ConductedAt,
		Entries:         p.Entries,
		Duration:        p.Duration,
	}
	f.transcripts[t.ID] = t
	return &t, nil
}

func (f *fakeStore) GetTranscript(ctx context.Context, id int) (*store.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transcripts[id]
	if !ok {
		return nil, core.NewNotFoundError("transcript not found")
	}
	return &t, nil
}

func (f *fakeStore) ListTranscripts(ctx context.Context, projectID int) ([]store.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.Transcript{}
	for _, t := range f.transcripts {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateTranscriptReview(ctx context.Context, id int, p store.ReviewParams) (*store.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transcripts[id]
	if !ok {
		return nil, core.NewNotFoundError("transcript not found")
	}
	t.Summary = p.Summary
	t.KeyFindings = p.KeyFindings
	t.SentimentScore = p.SentimentScore
	f.transcripts[id] = t
	return &t, nil
}

func (f *fakeStore) DeleteTranscript(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.transcripts[id]; !ok {
		return core.NewNotFoundError("transcript not found")
	}
	delete(f.transcripts, id)
	return nil
}

// fakeProvisioner returns a canned session id and records the config.
type fakeProvisioner struct {
	mu   sync.Mutex
	id   string
	cfgs []agent.AssistantConfig
}

func (f *fakeProvisioner) CreateSession(ctx context.Context, cfg agent.AssistantConfig) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfgs = append(f.cfgs, cfg)
	return f.id
}

// fakeEnhancer returns a canned prompt or error.
type fakeEnhancer struct {
	prompt string
	err    error

	mu         sync.Mutex
	objectives []string
	excerpts   [][]string
}

func (f *fakeEnhancer) Enhance(ctx context.Context, objective string, excerpts []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objectives = append(f.objectives, objective)
	f.excerpts = append(f.excerpts, excerpts)
	if f.err != nil {
		return "", f.err
	}
	return f.prompt, nil
}
