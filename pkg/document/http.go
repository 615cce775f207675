package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/acencia/backoffice/pkg/common/logger"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"
)

type HTTPHandler struct {
	repo    *Repository
	maxBody int64
}

func NewHTTPHandler(repo *Repository, maxBody int64) *HTTPHandler {
	return &HTTPHandler{repo: repo, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/documents", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/documents", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/documents/stats", h.handleStats).Methods(http.MethodGet)
	router.HandleFunc("/documents/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/documents/{id}", h.handleUpdate).Methods(http.MethodPut)
	router.HandleFunc("/documents/{id}", h.handleDelete).Methods(http.MethodDelete)
	router.HandleFunc("/kunden/{id}/documents", h.handleListByCustomer).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var rec Document
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rec.ID = ""

	if strings.TrimSpace(rec.Title) == "" || strings.TrimSpace(rec.Filename) == "" {
		http.Error(w, "title and filename required", http.StatusBadRequest)
		return
	}
	if !validType(rec.Type) {
		http.Error(w, fmt.Sprintf("invalid document_type '%s'", rec.Type), http.StatusBadRequest)
		return
	}

	if err := h.repo.Create(r.Context(), &rec); err != nil {
		logger.Log.WithError(err).Error("failed to create document")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	if docType := q.Get("document_type"); docType != "" && !validType(docType) {
		http.Error(w, fmt.Sprintf("invalid document_type '%s'", docType), http.StatusBadRequest)
		return
	}

	recs, err := h.repo.List(r.Context(), ListFilter{
		CustomerID: q.Get("kunde_id"),
		ContractID: q.Get("vertrag_id"),
		Type:       q.Get("document_type"),
		Offset:     skip,
		Limit:      limit,
	})
	if err != nil {
		logger.Log.WithError(err).Error("failed to list documents")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) handleListByCustomer(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.ListByCustomer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		logger.Log.WithError(err).Error("failed to list customer documents")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to compute document stats")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.repo.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Dokument nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch document")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var payload struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Tags        []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	fields := make(map[string]interface{})
	if payload.Title != nil {
		fields["title"] = *payload.Title
	}
	if payload.Description != nil {
		fields["description"] = *payload.Description
	}
	if payload.Tags != nil {
		tags, err := json.Marshal(payload.Tags)
		if err != nil {
			http.Error(w, "invalid tags", http.StatusBadRequest)
			return
		}
		fields["tags"] = datatypes.JSON(tags)
	}
	if len(fields) == 0 {
		http.Error(w, "no updatable fields supplied", http.StatusBadRequest)
		return
	}

	rec, err := h.repo.Update(r.Context(), mux.Vars(r)["id"], fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Dokument nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update document")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Dokument nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to delete document")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Dokument erfolgreich gelöscht"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
