// Package handler serves the contact book over a JSON HTTP API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/contactbook/internal/middleware"
	"github.com/mmynk/contactbook/internal/service"
)

// Handler holds the services behind the API.
type Handler struct {
	Contacts *service.ContactService
	Catalog  *service.CatalogService
	Transfer *service.TransferService
}

// NewRouter mounts the API, /metrics and /healthz.
//
// Routes:
//
//	GET    /api/contacts                  list, filtered by ?active, ?category, ?q
//	POST   /api/contacts                  create
//	GET    /api/contacts/{id}             fetch
//	PUT    /api/contacts/{id}             overwrite
//	DELETE /api/contacts/{id}             delete
//	POST   /api/contacts/bulk             bulk delete, activate, deactivate, assign, unassign
//	GET    /api/contacts/{id}/birthday.ics
//	GET, POST /api/categories; DELETE /api/categories/{id}
//	GET, POST /api/fields; DELETE /api/fields/{id}
//	POST   /api/import?format=            raw body or multipart "file"
//	GET    /api/export/{format}
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestLogging)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.listContacts)
			r.Post("/", h.createContact)
			r.Post("/bulk", h.bulkContacts)
			r.Get("/{id}", h.getContact)
			r.Put("/{id}", h.updateContact)
			r.Delete("/{id}", h.deleteContact)
			r.Get("/{id}/birthday.ics", h.exportBirthday)
		})

		r.Get("/categories", h.listCategories)
		r.Post("/categories", h.createCategory)
		r.Delete("/categories/{id}", h.deleteCategory)

		r.Get("/fields", h.listFields)
		r.Post("/fields", h.createField)
		r.Delete("/fields/{id}", h.deleteField)

		r.Post("/import", h.importFile)
		r.Get("/export/{format}", h.exportFile)
	})

	return r
}
