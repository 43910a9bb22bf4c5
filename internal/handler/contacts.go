package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/contactbook/internal/models"
)

// contactJSON is the wire form of a contact. A missing is_active means
// active.
type contactJSON struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email,omitempty"`
	Address     string            `json:"address,omitempty"`
	Birthday    string            `json:"birthday,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
	CategoryIDs []string          `json:"category_ids"`
	Fields      map[string]string `json:"fields,omitempty"`
}

func toJSON(c *models.Contact) contactJSON {
	active := c.IsActive
	ids := c.CategoryIDs
	if ids == nil {
		ids = []string{}
	}
	return contactJSON{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Address:     c.Address,
		Birthday:    c.Birthday,
		IsActive:    &active,
		CategoryIDs: ids,
		Fields:      c.Fields,
	}
}

func (cj *contactJSON) model() *models.Contact {
	c := &models.Contact{
		ID:          cj.ID,
		Name:        cj.Name,
		Phone:       cj.Phone,
		Email:       cj.Email,
		Address:     cj.Address,
		Birthday:    cj.Birthday,
		IsActive:    true,
		CategoryIDs: cj.CategoryIDs,
		Fields:      cj.Fields,
	}
	if cj.IsActive != nil {
		c.IsActive = *cj.IsActive
	}
	return c
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ContactFilter{
		CategoryID: q.Get("category"),
		Query:      q.Get("q"),
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, &models.ValidationError{Field: "active", Reason: "expected true or false"})
			return
		}
		filter.IsActive = &active
	}

	contacts, err := h.Contacts.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]contactJSON, len(contacts))
	for i, c := range contacts {
		out[i] = toJSON(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.Contacts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJSON(contact))
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req contactJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.ID = ""

	contact, err := h.Contacts.Save(r.Context(), req.model())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toJSON(contact))
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request) {
	var req contactJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.ID = chi.URLParam(r, "id")

	contact, err := h.Contacts.Save(r.Context(), req.model())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJSON(contact))
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.Contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	Action     string   `json:"action"`
	IDs        []string `json:"ids"`
	CategoryID string   `json:"category_id"`
}

func (h *Handler) bulkContacts(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, r, &models.ValidationError{Field: "ids", Reason: "required"})
		return
	}

	ctx := r.Context()
	var err error
	var res any
	switch req.Action {
	case "delete":
		res, err = h.Contacts.BulkDelete(ctx, req.IDs)
	case "activate":
		res, err = h.Contacts.BulkSetActive(ctx, req.IDs, true)
	case "deactivate":
		res, err = h.Contacts.BulkSetActive(ctx, req.IDs, false)
	case "assign", "unassign":
		if req.CategoryID == "" {
			writeError(w, r, &models.ValidationError{Field: "category_id", Reason: "required"})
			return
		}
		if req.Action == "assign" {
			res, err = h.Contacts.BulkAssignCategory(ctx, req.IDs, req.CategoryID)
		} else {
			res, err = h.Contacts.BulkUnassignCategory(ctx, req.IDs, req.CategoryID)
		}
	default:
		writeError(w, r, &models.ValidationError{Field: "action", Reason: "unknown action " + strconv.Quote(req.Action)})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
