package insurer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/acencia/backoffice/pkg/common/logger"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	service *Service
	matcher *Matcher
	maxBody int64
}

func NewHTTPHandler(service *Service, matcher *Matcher, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, matcher: matcher, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/vus", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/vus", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/vus/search", h.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/vus/match-gesellschaft", h.handleMatch).Methods(http.MethodPost)
	router.HandleFunc("/vus/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/vus/{id}", h.handleUpdate).Methods(http.MethodPut)
	router.HandleFunc("/vus/{id}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var rec Insurer
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rec.ID = ""

	if err := h.service.Create(r.Context(), &rec); err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to create insurer")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.List(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to list insurers")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := SearchFilter{
		Name:      q.Get("name"),
		ShortName: q.Get("kurzbezeichnung"),
		Kind:      q.Get("status"),
		City:      q.Get("ort"),
		Phone:     q.Get("telefon"),
		Email:     q.Get("email"),
		Limit:     limit,
	}

	recs, err := h.service.Search(r.Context(), filter)
	if err != nil {
		if IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to search insurers")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type matchRequest struct {
	Gesellschaft string `json:"gesellschaft"`
}

type matchResponse struct {
	Match     bool     `json:"match"`
	VU        *Insurer `json:"vu"`
	MatchType string   `json:"match_type,omitempty"`
	Message   string   `json:"message"`
}

func (h *HTTPHandler) handleMatch(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec, strategy, err := h.matcher.Match(r.Context(), req.Gesellschaft)
	if err != nil {
		logger.Log.WithError(err).Error("failed to match company name")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if rec == nil {
		writeJSON(w, http.StatusOK, matchResponse{
			Match:   false,
			Message: fmt.Sprintf("Keine VU gefunden für: %s", req.Gesellschaft),
		})
		return
	}

	writeJSON(w, http.StatusOK, matchResponse{
		Match:     true,
		VU:        rec,
		MatchType: strategy,
		Message:   fmt.Sprintf("VU gefunden: %s (via %s)", rec.Name, strategy),
	})
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "VU nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch insurer")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var rec Insurer
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rec.ID = mux.Vars(r)["id"]

	if err := h.service.Update(r.Context(), &rec); err != nil {
		switch {
		case IsValidationError(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "VU nicht gefunden", http.StatusNotFound)
		default:
			logger.Log.WithError(err).Error("failed to update insurer")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	updated, err := h.service.Get(r.Context(), rec.ID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to reload insurer")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "VU nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to delete insurer")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "VU erfolgreich gelöscht"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
