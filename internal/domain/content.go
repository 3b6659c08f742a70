package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Idea is one generated startup idea.
type Idea struct {
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	TargetCustomer string `json:"target_customer,omitempty"`
	Problem        string `json:"problem,omitempty"`
	Solution       string `json:"solution,omitempty"`
}

// IdeaGeneration records one generation run. Each row counts against
// maxIdeaGenerationsTotal.
type IdeaGeneration struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Mode      string    `json:"mode"`
	Ideas     []Idea    `json:"ideas"`
	CreatedAt time.Time `json:"created_at"`
}

type SavedIdea struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary"`
	Mode      string          `json:"mode,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type BlueprintTask struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type Blueprint struct {
	ID          string          `json:"id,omitempty"`
	UserID      string          `json:"user_id"`
	SavedIdeaID string          `json:"saved_idea_id,omitempty"`
	Title       string          `json:"title"`
	Tasks       []BlueprintTask `json:"tasks"`
	CreatedAt   time.Time       `json:"created_at"`
}

type WorkspaceDocument struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// RadarSignal is one market signal surfaced by a radar scan.
type RadarSignal struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Niche     string    `json:"niche"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source,omitempty"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentRepository persists the counted resources.
type ContentRepository interface {
	InsertIdeaGeneration(ctx context.Context, gen *IdeaGeneration) error
	InsertSavedIdea(ctx context.Context, idea *SavedIdea) error
	InsertBlueprint(ctx context.Context, bp *Blueprint) error
	InsertWorkspaceDocument(ctx context.Context, doc *WorkspaceDocument) error
	InsertRadarSignals(ctx context.Context, signals []RadarSignal) error
}

// IdeaService runs the gated content operations.
type IdeaService interface {
	GenerateIdeas(ctx context.Context, userID, mode, prompt string) (*IdeaGeneration, error)
	SaveIdea(ctx context.Context, idea *SavedIdea) (*SavedIdea, error)
	CreateBlueprint(ctx context.Context, bp *Blueprint) (*Blueprint, error)
	CreateWorkspaceDocument(ctx context.Context, doc *WorkspaceDocument) (*WorkspaceDocument, error)
	ScanRadar(ctx context.Context, userID, niche string, loc *time.Location) ([]RadarSignal, error)
}
