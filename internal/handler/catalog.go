package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type categoryJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fieldJSON struct {
	ID   string `json:"id"`
	Name string `json:"field_name"`
	Type string `json:"field_type"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryJSON, len(categories))
	for i, c := range categories {
		out[i] = categoryJSON{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category, err := h.Catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryJSON{ID: category.ID, Name: category.Name})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.Catalog.ListFields(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]fieldJSON, len(fields))
	for i, f := range fields {
		out[i] = fieldJSON{ID: f.ID, Name: f.Name, Type: string(f.Type)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createField(w http.ResponseWriter, r *http.Request) {
	var req fieldJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	field, err := h.Catalog.CreateField(r.Context(), req.Name, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fieldJSON{ID: field.ID, Name: field.Name, Type: string(field.Type)})
}

func (h *Handler) deleteField(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteField(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
