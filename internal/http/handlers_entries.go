package http

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"foodwaste/internal/importer"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes bounds spreadsheet uploads.
const maxUploadBytes = 10 << 20

type createEntryResponse struct {
	ID     string `json:"id"`
	Advice string `json:"advice,omitempty"`
}

// handleCreateEntry stores an entry from a JSON or form body. htmx form
// posts get an HTML fragment with a tip about the logged waste.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.svc.AddEntry(r.Context(), parser.EntryInput())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	wantAdvice := isHTMX(r) || r.URL.Query().Get("advice") == "true"
	advice := ""
	if wantAdvice {
		if e, err := s.svc.GetEntry(r.Context(), id); err == nil {
			advice = s.svc.Advise(r.Context(), e)
		}
	}

	if !isHTMX(r) {
		w.Header().Set("Location", "/api/entries/"+id)
		writeJSON(w, http.StatusCreated, createEntryResponse{ID: id, Advice: advice})
		return
	}

	html := `<div class="success">Entry saved.</div>`
	if advice != "" {
		html += `<div class="advice"><strong>Tip:</strong> ` + template.HTMLEscapeString(advice) + `</div>`
	}
	NewHTMXResponse().
		EntryCreated(id).
		ResetForm().
		RefreshStats().
		Notify(NotificationSuccess, "Entry saved").
		Fragment(html).
		Write(w)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.ListEntries(r.Context(), ParsePageRequest(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.DeleteEntry(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}

	if isHTMX(r) {
		// Empty body removes the row targeted by hx-target
		NewHTMXResponse().
			EntryDeleted(id).
			RefreshStats().
			Notify(NotificationSuccess, "Entry deleted").
			Write(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImportEntries adds the rows of an uploaded XLSX workbook.
func (s *Server) handleImportEntries(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		if isHTMX(r) {
			ErrorFragment(http.StatusBadRequest, "Missing or unreadable 'file' upload").Write(w)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing or unreadable 'file' upload", Type: "bad_request"})
		return
	}
	defer file.Close()

	result, err := importer.ImportXLSX(r.Context(), file, s.svc)
	if err != nil {
		if isHTMX(r) {
			ErrorFragment(http.StatusBadRequest, "Could not read workbook: " + err.Error()).Write(w)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Type: "bad_request"})
		return
	}

	if isHTMX(r) {
		msg := fmt.Sprintf("Imported %d entries, %d rows skipped", result.Imported, len(result.Failed))
		NewHTMXResponse().
			RefreshStats().
			Notify(NotificationSuccess, msg).
			Fragment(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
			Write(w)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExportEntries downloads every entry as an XLSX workbook.
func (s *Server) handleExportEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Entries(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := "food-waste-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := importer.WriteXLSX(w, entries); err != nil {
		// Headers are gone once the workbook started streaming
		s.logger.ErrorContext(r.Context(), "Export failed", "error", err)
	}
}

// fail writes err in the representation the client asked for.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if isHTMX(r) {
		writeHTMXError(w, r, err)
		return
	}
	writeError(w, r, err)
}
