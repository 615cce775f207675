package contract

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
	repo        *Repository
	coordinator *Coordinator
	maxBody     int64
}

func NewHTTPHandler(repo *Repository, coordinator *Coordinator, maxBody int64) *HTTPHandler {
	return &HTTPHandler{repo: repo, coordinator: coordinator, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/vertraege", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/vertraege", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/vertraege/migrate-vu-assignments", h.handleMigrate).Methods(http.MethodPost)
	router.HandleFunc("/vertraege/vu-statistics", h.handleStatistics).Methods(http.MethodGet)
	router.HandleFunc("/vertraege/kunde/{kundeId}", h.handleListByCustomer).Methods(http.MethodGet)
	router.HandleFunc("/vertraege/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/vertraege/{id}", h.handleUpdate).Methods(http.MethodPut)
	router.HandleFunc("/vertraege/{id}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var rec Contract
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rec.ID = ""

	if rec.Status != "" && !validStatus(rec.Status) {
		http.Error(w, fmt.Sprintf("invalid vertragsstatus '%s'", rec.Status), http.StatusBadRequest)
		return
	}

	// Free-text inference runs only when no explicit insurer was supplied.
	if _, err := h.coordinator.AutoAssign(r.Context(), &rec); err != nil {
		logger.Log.WithError(err).Error("auto-assignment failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.repo.Create(r.Context(), &rec); err != nil {
		logger.Log.WithError(err).Error("failed to create contract")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, err := h.repo.List(r.Context(), skip, limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list contracts")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) handleListByCustomer(w http.ResponseWriter, r *http.Request) {
	recs, err := h.repo.ListByCustomer(r.Context(), mux.Vars(r)["kundeId"])
	if err != nil {
		logger.Log.WithError(err).Error("failed to list contracts by customer")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.repo.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Vertrag nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch contract")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// updatableFields maps wire names to columns for partial updates. The id
// and the timestamps are deliberately absent.
var updatableFields = map[string]string{
	"vertragsnummer":         "policy_number",
	"interne_vertragsnummer": "internal_policy_number",
	"kunde_id":               "customer_id",
	"vu_id":                  "insurer_id",
	"vu_internal_id":         "insurer_internal_code",
	"gesellschaft":           "company_name",
	"kfz_kennzeichen":        "vehicle_plate",
	"produkt_sparte":         "product_line",
	"tarif":                  "tariff",
	"zahlungsweise":          "payment_interval",
	"beitrag_brutto":         "gross_premium",
	"beitrag_netto":          "net_premium",
	"vertragsstatus":         "status",
	"beginn":                 "begin_date",
	"ablauf":                 "expiry",
}

func (h *HTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if status, ok := payload["vertragsstatus"].(string); ok && status != "" && !validStatus(status) {
		http.Error(w, fmt.Sprintf("invalid vertragsstatus '%s'", status), http.StatusBadRequest)
		return
	}

	fields := make(map[string]interface{})
	for key, value := range payload {
		if column, ok := updatableFields[key]; ok {
			fields[column] = value
		}
	}
	if len(fields) == 0 {
		http.Error(w, "no updatable fields supplied", http.StatusBadRequest)
		return
	}

	rec, err := h.repo.Update(r.Context(), mux.Vars(r)["id"], fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Vertrag nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update contract")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Vertrag nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to delete contract")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vertrag erfolgreich gelöscht"})
}

func (h *HTTPHandler) handleMigrate(w http.ResponseWriter, r *http.Request) {
	report, err := h.coordinator.MigrateUnassigned(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("vu assignment migration failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logger.Log.WithFields(map[string]interface{}{
		"total_contracts": report.TotalContracts,
		"matched":         report.Matched,
		"updated":         report.Updated,
		"unmatched":       report.Unmatched,
	}).Info("vu assignment migration completed")

	writeJSON(w, http.StatusOK, report)
}

func (h *HTTPHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.coordinator.Statistics(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to compute vu statistics")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
