package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"boxinventory/api/internal/export"
	"boxinventory/api/internal/inventory"
	"boxinventory/api/internal/views"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/state" {
		writeJSON(w, http.StatusOK, s.service.Snapshot())
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/boxes" {
		q := r.URL.Query()
		boxes := s.service.Boxes(views.Criteria{
			Search:    q.Get("search"),
			Variety:   q.Get("variety"),
			Sorting:   q.Get("sorting"),
			FillLevel: q.Get("fillLevel"),
		})
		writeJSON(w, http.StatusOK, map[string]any{"boxes": boxes})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/summary" {
		writeJSON(w, http.StatusOK, s.service.Summary())
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/boxes/bulk" {
		var body struct {
			IDs    []int              `json:"ids"`
			Fields inventory.BoxPatch `json:"fields"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.respond(w, s.service.BulkApply(body.IDs, body.Fields))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/boxes/bulk/clear" {
		var body struct {
			IDs []int `json:"ids"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.respond(w, s.service.BulkClear(body.IDs))
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/boxes/") {
		id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/api/boxes/"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Box id must be a number", nil)
			return
		}
		switch r.Method {
		case http.MethodPut:
			var patch inventory.BoxPatch
			if err := decodeBody(r, &patch); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			s.respond(w, s.service.SaveBox(id, patch))
		case http.MethodDelete:
			s.respond(w, s.service.ClearBox(id))
		default:
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		}
		return
	}

	if r.Method == http.MethodPost {
		if s.handleVocabulary(w, r) {
			return
		}
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/export.csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now())))
		if err := s.service.WriteCSV(w); err != nil {
			log.Printf("export: %v", err)
		}
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/export/archive" {
		name, err := s.service.ArchiveCSV(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"object": name})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleVocabulary dispatches the add/rename/delete operations shared by the
// three plain vocabularies and the custom traits. Reports whether the path
// was recognized.
func (s *HTTPServer) handleVocabulary(w http.ResponseWriter, r *http.Request) bool {
	type listOps struct {
		add    func(string) error
		rename func(string, string) error
		remove func(string) error
	}
	lists := map[string]listOps{
		"/api/varieties":   {s.service.AddVariety, s.service.RenameVariety, s.service.DeleteVariety},
		"/api/sortings":    {s.service.AddSorting, s.service.RenameSorting, s.service.DeleteSorting},
		"/api/fill-levels": {s.service.AddFillLevel, s.service.RenameFillLevel, s.service.DeleteFillLevel},
		"/api/traits":      {s.service.AddTrait, s.service.RenameTrait, s.service.DeleteTrait},
	}

	for base, ops := range lists {
		switch r.URL.Path {
		case base:
			var body struct {
				Name string `json:"name"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			s.respond(w, ops.add(body.Name))
			return true
		case base + "/rename":
			var body struct {
				OldName string `json:"oldName"`
				NewName string `json:"newName"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			s.respond(w, ops.rename(body.OldName, body.NewName))
			return true
		case base + "/delete":
			var body struct {
				Name string `json:"name"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return true
			}
			s.respond(w, ops.remove(body.Name))
			return true
		}
	}

	switch r.URL.Path {
	case "/api/traits/options":
		var body struct {
			Trait  string `json:"trait"`
			Option string `json:"option"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		s.respond(w, s.service.AddTraitOption(body.Trait, body.Option))
		return true
	case "/api/traits/options/rename":
		var body struct {
			Trait     string `json:"trait"`
			OldOption string `json:"oldOption"`
			NewOption string `json:"newOption"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		s.respond(w, s.service.RenameTraitOption(body.Trait, body.OldOption, body.NewOption))
		return true
	case "/api/traits/options/delete":
		var body struct {
			Trait  string `json:"trait"`
			Option string `json:"option"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		s.respond(w, s.service.DeleteTraitOption(body.Trait, body.Option))
		return true
	}
	return false
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"engine":   map[string]any{"status": "ok"},
		"database": map[string]any{"status": "ok"},
	}

	if !s.service.Ready() {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["engine"] = map[string]any{"status": "error"}
	}
	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["database"] = map[string]any{
			"status": "error",
			"error":  err.Error(),
		}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

// respond writes the post-mutation snapshot, or the mapped error.
func (s *HTTPServer) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Snapshot())
}

func writeDomainError(w http.ResponseWriter, err error) {
	var de *DomainError
	if errors.As(err, &de) {
		writeError(w, de.Status, de.Code, de.Message, de.Details)
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal error", nil)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}
