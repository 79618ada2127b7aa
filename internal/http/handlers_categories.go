package http

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"tracker/internal/core"
	"tracker/internal/log"
)

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryList struct {
	Kind       core.Kind `json:"kind"`
	Categories []string  `json:"categories"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.store.Taxonomy()).Write(w)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, log.OpCategoryAdd, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, log.OpCategoryAdd, err)
		return
	}

	if err := s.store.AddCategory(r.Context(), kind, sanitizeInput(req.Name)); err != nil {
		writeError(w, r, log.OpCategoryAdd, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Body(categoryList{Kind: kind, Categories: s.store.Categories(kind)}).
		Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, log.OpCategoryDelete, err)
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		name = chi.URLParam(r, "name")
	}

	if err := s.store.DeleteCategory(r.Context(), kind, name); err != nil {
		writeError(w, r, log.OpCategoryDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
