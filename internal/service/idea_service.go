package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"founder-coach-api/internal/domain"
	"founder-coach-api/internal/metrics"
	"founder-coach-api/pkg/entitlements"
)

const (
	ideasPerGeneration = 3
	maxRadarSignals    = 10
	maxPromptLength    = 2000

	ideasToolName   = "return_ideas"
	signalsToolName = "return_signals"
)

// ideaService runs the gated content operations. Each method authorizes
// before it calls the AI provider or writes anything.
type ideaService struct {
	entitlements domain.EntitlementService
	content      domain.ContentRepository
	completions  domain.CompletionClient
	clock        Clock
	logger       domain.Logger
}

func NewIdeaService(
	entitlementService domain.EntitlementService,
	content domain.ContentRepository,
	completions domain.CompletionClient,
	clock Clock,
	logger domain.Logger,
) *ideaService {
	if clock == nil {
		clock = SystemClock()
	}
	return &ideaService{
		entitlements: entitlementService,
		content:      content,
		completions:  completions,
		clock:        clock,
		logger:       logger,
	}
}

var ideasSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"ideas": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":           map[string]string{"type": "string"},
					"summary":         map[string]string{"type": "string"},
					"target_customer": map[string]string{"type": "string"},
					"problem":         map[string]string{"type": "string"},
					"solution":        map[string]string{"type": "string"},
				},
				"required": []string{"title", "summary"},
			},
		},
	},
	"required": []string{"ideas"},
}

var signalsSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"signals": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":   map[string]string{"type": "string"},
					"summary": map[string]string{"type": "string"},
					"source":  map[string]string{"type": "string"},
					"score":   map[string]string{"type": "integer"},
				},
				"required": []string{"title", "score"},
			},
		},
	},
	"required": []string{"signals"},
}

var modeInstructions = map[entitlements.IdeaMode]string{
	entitlements.ModeClassic: "Suggest practical, proven business ideas.",
	entitlements.ModeRemix:   "Combine two existing business models into something new.",
	entitlements.ModeChaos:   "Suggest unexpected, unconventional ideas.",
	entitlements.ModeTrend:   "Build on a current market trend.",
	entitlements.ModeNiche:   "Target an underserved niche audience.",
}

// GenerateIdeas authorizes mode and count, asks the model for ideas and
// records the generation. Plans without full idea details get titles and
// summaries only.
func (s *ideaService) GenerateIdeas(ctx context.Context, userID, mode, prompt string) (*domain.IdeaGeneration, error) {
	ideaMode := entitlements.IdeaMode(strings.ToLower(strings.TrimSpace(mode)))
	if !ideaMode.Known() {
		return nil, &domain.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", mode)}
	}
	prompt = strings.TrimSpace(prompt)
	if len(prompt) > maxPromptLength {
		return nil, &domain.ValidationError{Field: "prompt", Message: "prompt is too long"}
	}

	denial, granted := s.entitlements.AuthorizeGeneration(ctx, userID, string(ideaMode))
	if denial != nil {
		return nil, denial
	}

	user := fmt.Sprintf("Generate %d startup ideas.", ideasPerGeneration)
	if prompt != "" {
		user += " Founder context: " + prompt
	}
	resp, err := s.complete(ctx, "generate_ideas", domain.CompletionRequest{
		System:    "You are a startup coach. " + modeInstructions[ideaMode],
		Messages:  []domain.ChatMessage{{Role: "user", Content: user}},
		Tools:     []domain.ToolDefinition{{Name: ideasToolName, Description: "Return the generated ideas", Parameters: ideasSchema}},
		ForceTool: ideasToolName,
		MaxTokens: 1500,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Ideas []domain.Idea `json:"ideas"`
	}
	if err := json.Unmarshal(toolPayload(resp), &parsed); err != nil {
		return nil, fmt.Errorf("%w: unreadable ideas: %v", domain.ErrCompletionFailed, err)
	}
	ideas := cleanIdeas(parsed.Ideas)
	if len(ideas) == 0 {
		return nil, fmt.Errorf("%w: no ideas returned", domain.ErrCompletionFailed)
	}

	if !entitlements.CanUseFeature(string(granted.State.Plan), entitlements.FeatureIdeaDetails) {
		for i := range ideas {
			ideas[i] = domain.Idea{Title: ideas[i].Title, Summary: ideas[i].Summary}
		}
	}

	gen := &domain.IdeaGeneration{
		UserID:    userID,
		Mode:      string(ideaMode),
		Ideas:     ideas,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.content.InsertIdeaGeneration(ctx, gen); err != nil {
		return nil, fmt.Errorf("failed to record generation: %w", err)
	}
	s.logger.Info("Ideas generated", "user_id", userID, "mode", gen.Mode, "count", len(ideas))
	return gen, nil
}

func (s *ideaService) SaveIdea(ctx context.Context, idea *domain.SavedIdea) (*domain.SavedIdea, error) {
	idea.Title = strings.TrimSpace(idea.Title)
	if idea.Title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if denial, _ := s.entitlements.AuthorizeResource(ctx, idea.UserID, domain.ResourceSavedIdeas, nil); denial != nil {
		return nil, denial
	}

	idea.CreatedAt = s.clock.Now().UTC()
	if err := s.content.InsertSavedIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to save idea: %w", err)
	}
	return idea, nil
}

func (s *ideaService) CreateBlueprint(ctx context.Context, bp *domain.Blueprint) (*domain.Blueprint, error) {
	bp.Title = strings.TrimSpace(bp.Title)
	if bp.Title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if denial, _ := s.entitlements.AuthorizeResource(ctx, bp.UserID, domain.ResourceBlueprints, nil); denial != nil {
		return nil, denial
	}

	if bp.Tasks == nil {
		bp.Tasks = []domain.BlueprintTask{}
	}
	bp.CreatedAt = s.clock.Now().UTC()
	if err := s.content.InsertBlueprint(ctx, bp); err != nil {
		return nil, fmt.Errorf("failed to create blueprint: %w", err)
	}
	return bp, nil
}

func (s *ideaService) CreateWorkspaceDocument(ctx context.Context, doc *domain.WorkspaceDocument) (*domain.WorkspaceDocument, error) {
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if denial, _ := s.entitlements.AuthorizeResource(ctx, doc.UserID, domain.ResourceWorkspaceDocuments, nil); denial != nil {
		return nil, denial
	}

	doc.CreatedAt = s.clock.Now().UTC()
	if err := s.content.InsertWorkspaceDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create workspace document: %w", err)
	}
	return doc, nil
}

// ScanRadar asks the model for market signals in a niche. The result is
// capped by what is left of today's allowance.
func (s *ideaService) ScanRadar(ctx context.Context, userID, niche string, loc *time.Location) ([]domain.RadarSignal, error) {
	niche = strings.TrimSpace(niche)
	if niche == "" {
		return nil, &domain.ValidationError{Field: "niche", Message: "niche is required"}
	}

	denial, decision := s.entitlements.AuthorizeResource(ctx, userID, domain.ResourceRadarSignals, loc)
	if denial != nil {
		return nil, denial
	}

	resp, err := s.complete(ctx, "scan_radar", domain.CompletionRequest{
		System:    "You are a market analyst. Score each signal from 0 to 100 by opportunity.",
		Messages:  []domain.ChatMessage{{Role: "user", Content: "Find market signals for the niche: " + niche}},
		Tools:     []domain.ToolDefinition{{Name: signalsToolName, Description: "Return market signals", Parameters: signalsSchema}},
		ForceTool: signalsToolName,
		MaxTokens: 1500,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Signals []domain.RadarSignal `json:"signals"`
	}
	if err := json.Unmarshal(toolPayload(resp), &parsed); err != nil {
		return nil, fmt.Errorf("%w: unreadable signals: %v", domain.ErrCompletionFailed, err)
	}

	keep := maxRadarSignals
	if n, bounded := decision.Remaining.Value(); bounded && int(n) < keep {
		keep = int(n)
	}
	signals := NormalizeSignals(parsed.Signals, keep)

	now := s.clock.Now().UTC()
	for i := range signals {
		signals[i].UserID = userID
		signals[i].Niche = niche
		signals[i].CreatedAt = now
	}
	if err := s.content.InsertRadarSignals(ctx, signals); err != nil {
		return nil, fmt.Errorf("failed to store radar signals: %w", err)
	}
	return signals, nil
}

func (s *ideaService) complete(ctx context.Context, operation string, req domain.CompletionRequest) (*domain.CompletionResponse, error) {
	start := time.Now()
	resp, err := s.completions.Complete(ctx, req)
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrCompletionTimeout):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	metrics.CompletionDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("Completion failed", err, "operation", operation)
		return nil, err
	}
	return resp, nil
}

// toolPayload prefers tool-call arguments and falls back to message content,
// stripping a markdown code fence if the model added one.
func toolPayload(resp *domain.CompletionResponse) []byte {
	if len(resp.ToolArguments) > 0 {
		return resp.ToolArguments
	}
	content := strings.TrimSpace(resp.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return []byte(strings.TrimSpace(content))
}

func cleanIdeas(ideas []domain.Idea) []domain.Idea {
	out := make([]domain.Idea, 0, len(ideas))
	for _, idea := range ideas {
		idea.Title = strings.TrimSpace(idea.Title)
		idea.Summary = strings.TrimSpace(idea.Summary)
		if idea.Title == "" {
			continue
		}
		out = append(out, idea)
	}
	if len(out) > ideasPerGeneration {
		out = out[:ideasPerGeneration]
	}
	return out
}

// NormalizeSignals trims text, clamps scores to 0..100, drops untitled
// signals and keeps at most limit of them, highest score first.
func NormalizeSignals(signals []domain.RadarSignal, limit int) []domain.RadarSignal {
	out := make([]domain.RadarSignal, 0, len(signals))
	for _, sig := range signals {
		sig.Title = strings.TrimSpace(sig.Title)
		if sig.Title == "" {
			continue
		}
		sig.Summary = strings.TrimSpace(sig.Summary)
		sig.Source = strings.TrimSpace(sig.Source)
		switch {
		case sig.Score < 0:
			sig.Score = 0
		case sig.Score > 100:
			sig.Score = 100
		}
		out = append(out, sig)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
