package http

import (
	"net/http"
	"strconv"

	"kharcha/internal/auth"
	"kharcha/internal/core"
)

type createCategoryRequest struct {
	Name  string             `json:"name"`
	Type  core.CategoryType  `json:"type"`
	Group core.CategoryGroup `json:"group"`
	Icon  string             `json:"icon"`
	Color string             `json:"color"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.ListCategories(r.Context(), parseCategoryFilter(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, core.ErrUnauthorized)
		return
	}

	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Group == "" {
		req.Group = core.GroupHome
	}

	c, err := s.deps.Categories.CreateCategory(r.Context(), userID, core.Category{
		Name:  sanitizeInput(req.Name),
		Type:  req.Type,
		Group: req.Group,
		Icon:  sanitizeInput(req.Icon),
		Color: sanitizeInput(req.Color),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
