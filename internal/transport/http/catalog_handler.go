package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"emotion-quiz-service/internal/app"
	"emotion-quiz-service/internal/domain"
)

// CatalogHandler serves catalog reference data at /catalogs/{id} and the
// manual-selector listing at /catalogs/{id}/subjects?phase=A.
type CatalogHandler struct {
	service *app.QuizService
}

func NewCatalogHandler(service *app.QuizService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/catalogs/")
	if catalogID, ok := strings.CutSuffix(id, "/subjects"); ok {
		subjects, err := h.service.Subjects(r.Context(), catalogID, r.URL.Query().Get("phase"))
		if err != nil {
			writeError(w, catalogID, err)
			return
		}
		writeJSON(w, subjects)
		return
	}
	cat, err := h.service.Catalog(r.Context(), id)
	if err != nil {
		writeError(w, id, err)
		return
	}
	writeJSON(w, cat)
}

func writeError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, domain.ErrCatalogNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidSubject):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("catalog %q: %v", id, err)
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
