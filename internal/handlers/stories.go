package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ahmedoumar/storify/internal/stories"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type storyRequest struct {
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Genre   string            `json:"genre"`
	Meta    datatypes.JSONMap `json:"meta,omitempty"`
}

type storyResponse struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Genre     string            `json:"genre"`
	Meta      datatypes.JSONMap `json:"meta,omitempty"`
	CreatedAt string            `json:"created_at"`
}

func (h *Handler) handleSaveStory(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errors.New("missing credentials"))
		return
	}

	var req storyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.Content == "" {
		respondError(w, http.StatusBadRequest, errors.New("title and content are required"))
		return
	}

	story, err := h.stories.Save(r.Context(), claims.AccountID, req.Title, req.Content, req.Genre, req.Meta)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errors.New("could not save story"))
		return
	}

	respondJSON(w, http.StatusCreated, toStoryResponse(story.ID, req, story.CreatedAt.Format("2006-01-02T15:04:05Z07:00")))
}

func (h *Handler) handleListStories(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errors.New("missing credentials"))
		return
	}

	list, err := h.stories.ListByAccount(r.Context(), claims.AccountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errors.New("could not list stories"))
		return
	}

	out := make([]storyResponse, 0, len(list))
	for _, s := range list {
		out = append(out, storyResponse{
			ID:        s.ID,
			Title:     s.Title,
			Content:   s.Content,
			Genre:     s.Genre,
			Meta:      s.Meta,
			CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetStory(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errors.New("missing credentials"))
		return
	}

	storyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid story id is required"))
		return
	}

	story, err := h.stories.Get(r.Context(), claims.AccountID, storyID)
	if err != nil {
		if errors.Is(err, stories.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("story not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, errors.New("could not load story"))
		return
	}

	respondJSON(w, http.StatusOK, storyResponse{
		ID:        story.ID,
		Title:     story.Title,
		Content:   story.Content,
		Genre:     story.Genre,
		Meta:      story.Meta,
		CreatedAt: story.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *Handler) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errors.New("missing credentials"))
		return
	}

	storyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid story id is required"))
		return
	}

	var req storyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.stories.Update(r.Context(), claims.AccountID, storyID, req.Title, req.Content, req.Genre); err != nil {
		if errors.Is(err, stories.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("story not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, errors.New("could not update story"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

func (h *Handler) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, errors.New("missing credentials"))
		return
	}

	storyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid story id is required"))
		return
	}

	if err := h.stories.Delete(r.Context(), claims.AccountID, storyID); err != nil {
		if errors.Is(err, stories.ErrNotFound) {
			respondError(w, http.StatusNotFound, errors.New("story not found"))
			return
		}
		respondError(w, http.StatusInternalServerError, errors.New("could not delete story"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func toStoryResponse(id uuid.UUID, req storyRequest, createdAt string) storyResponse {
	return storyResponse{
		ID:        id,
		Title:     req.Title,
		Content:   req.Content,
		Genre:     req.Genre,
		Meta:      req.Meta,
		CreatedAt: createdAt,
	}
}
