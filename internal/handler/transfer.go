package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/contactbook/internal/codec"
	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/service"
)

// maxUploadSize bounds import request bodies.
const maxUploadSize = 256 << 20

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	createFields, _ := strconv.ParseBool(r.URL.Query().Get("create_fields"))
	formatName := r.URL.Query().Get("format")

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, &models.ValidationError{Field: "file", Reason: err.Error()})
			return
		}
		defer file.Close()
		body = file
		if formatName == "" {
			formatName = header.Filename
		}
	}

	if formatName == "" {
		writeError(w, r, &models.ValidationError{Field: "format", Reason: "required"})
		return
	}
	format, err := codec.ParseFormat(formatName)
	if err != nil {
		format, err = codec.FormatFromFilename(formatName)
	}
	if err == nil && !format.Importable() {
		err = &models.ValidationError{Field: "format", Reason: fmt.Sprintf("%s files cannot be imported", format)}
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.Transfer.Import(r.Context(), format, body, service.ImportOptions{CreateFields: createFields})
	if err != nil {
		writeImportError(w, r, summary, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) exportFile(w http.ResponseWriter, r *http.Request) {
	format, err := codec.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", attachment(format.Filename()))
	if _, err := h.Transfer.Export(r.Context(), format, w); err != nil {
		w.Header().Del("Content-Disposition")
		writeError(w, r, err)
	}
}

func (h *Handler) exportBirthday(w http.ResponseWriter, r *http.Request) {
	// The file name depends on the contact, so headers wait for the lookup.
	var buf bytes.Buffer
	name, err := h.Transfer.ExportBirthday(r.Context(), chi.URLParam(r, "id"), &buf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", codec.FormatCalendar.ContentType())
	w.Header().Set("Content-Disposition", attachment(name))
	_, _ = buf.WriteTo(w)
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
