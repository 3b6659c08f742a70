package handler

import (
	"encoding/json"
	"net/http"

	"founder-coach-api/internal/domain"
)

// IdeaHandler exposes the gated content operations.
type IdeaHandler struct {
	ideas  domain.IdeaService
	logger domain.Logger
}

func NewIdeaHandler(ideas domain.IdeaService, logger domain.Logger) *IdeaHandler {
	return &IdeaHandler{
		ideas:  ideas,
		logger: logger,
	}
}

type generateIdeasRequest struct {
	Mode   string `json:"mode"`
	Prompt string `json:"prompt"`
}

func (h *IdeaHandler) GenerateIdeas(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req generateIdeasRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	gen, err := h.ideas.GenerateIdeas(r.Context(), user.ID, req.Mode, req.Prompt)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, gen)
}

type saveIdeaRequest struct {
	Title   string          `json:"title"`
	Summary string          `json:"summary"`
	Mode    string          `json:"mode"`
	Payload json.RawMessage `json:"payload"`
}

func (h *IdeaHandler) SaveIdea(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req saveIdeaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	saved, err := h.ideas.SaveIdea(r.Context(), &domain.SavedIdea{
		UserID:  user.ID,
		Title:   req.Title,
		Summary: req.Summary,
		Mode:    req.Mode,
		Payload: req.Payload,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

type createBlueprintRequest struct {
	SavedIdeaID string                 `json:"saved_idea_id"`
	Title       string                 `json:"title"`
	Tasks       []domain.BlueprintTask `json:"tasks"`
}

func (h *IdeaHandler) CreateBlueprint(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req createBlueprintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	bp, err := h.ideas.CreateBlueprint(r.Context(), &domain.Blueprint{
		UserID:      user.ID,
		SavedIdeaID: req.SavedIdeaID,
		Title:       req.Title,
		Tasks:       req.Tasks,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, bp)
}

type createDocumentRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *IdeaHandler) CreateWorkspaceDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req createDocumentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	doc, err := h.ideas.CreateWorkspaceDocument(r.Context(), &domain.WorkspaceDocument{
		UserID: user.ID,
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

type scanRadarRequest struct {
	Niche string `json:"niche"`
}

// ScanRadar counts today's signals in the caller's time zone.
func (h *IdeaHandler) ScanRadar(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req scanRadarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	signals, err := h.ideas.ScanRadar(r.Context(), user.ID, req.Niche, requestLocation(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"niche":   req.Niche,
		"signals": signals,
	})
}
