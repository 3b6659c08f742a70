package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"founder-coach-api/internal/domain"

	"github.com/google/uuid"
)

// SupabaseContentRepository inserts the counted resources with the service
// role. Ownership is taken from the verified token, never from the body.
type SupabaseContentRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseContentRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseContentRepository {
	return &SupabaseContentRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

func (r *SupabaseContentRepository) insert(ctx context.Context, table string, rows interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client, err := r.supabaseClient.ServiceRole()
	if err != nil {
		return fmt.Errorf("failed to get service role client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err = client.From(table).
		Insert(rows, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (r *SupabaseContentRepository) InsertIdeaGeneration(ctx context.Context, gen *domain.IdeaGeneration) error {
	if gen.ID == "" {
		gen.ID = uuid.NewString()
	}
	ideas, err := json.Marshal(gen.Ideas)
	if err != nil {
		return fmt.Errorf("failed to marshal ideas: %w", err)
	}
	return r.insert(ctx, "idea_generations", map[string]interface{}{
		"id":         gen.ID,
		"user_id":    gen.UserID,
		"mode":       gen.Mode,
		"ideas":      json.RawMessage(ideas),
		"created_at": gen.CreatedAt,
	})
}

func (r *SupabaseContentRepository) InsertSavedIdea(ctx context.Context, idea *domain.SavedIdea) error {
	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	row := map[string]interface{}{
		"id":         idea.ID,
		"user_id":    idea.UserID,
		"title":      idea.Title,
		"summary":    idea.Summary,
		"mode":       idea.Mode,
		"created_at": idea.CreatedAt,
	}
	if len(idea.Payload) > 0 {
		row["payload"] = idea.Payload
	}
	return r.insert(ctx, "saved_ideas", row)
}

func (r *SupabaseContentRepository) InsertBlueprint(ctx context.Context, bp *domain.Blueprint) error {
	if bp.ID == "" {
		bp.ID = uuid.NewString()
	}
	row := map[string]interface{}{
		"id":         bp.ID,
		"user_id":    bp.UserID,
		"title":      bp.Title,
		"tasks":      bp.Tasks,
		"created_at": bp.CreatedAt,
	}
	if bp.SavedIdeaID != "" {
		row["saved_idea_id"] = bp.SavedIdeaID
	}
	return r.insert(ctx, "blueprints", row)
}

func (r *SupabaseContentRepository) InsertWorkspaceDocument(ctx context.Context, doc *domain.WorkspaceDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return r.insert(ctx, "workspace_documents", map[string]interface{}{
		"id":         doc.ID,
		"user_id":    doc.UserID,
		"title":      doc.Title,
		"body":       doc.Body,
		"created_at": doc.CreatedAt,
	})
}

func (r *SupabaseContentRepository) InsertRadarSignals(ctx context.Context, signals []domain.RadarSignal) error {
	if len(signals) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(signals))
	for i := range signals {
		if signals[i].ID == "" {
			signals[i].ID = uuid.NewString()
		}
		s := signals[i]
		rows = append(rows, map[string]interface{}{
			"id":         s.ID,
			"user_id":    s.UserID,
			"niche":      s.Niche,
			"title":      s.Title,
			"summary":    s.Summary,
			"source":     s.Source,
			"score":      s.Score,
			"created_at": s.CreatedAt,
		})
	}
	return r.insert(ctx, "radar_signals", rows)
}
