package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/acencia/backoffice/pkg/common/logger"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"
)

// plateLookup resolves customer ids via contract vehicle plates. Implemented
// by the contract repository.
type plateLookup interface {
	CustomerIDsByPlate(ctx context.Context, plate string) ([]string, error)
}

type HTTPHandler struct {
	repo    *Repository
	plates  plateLookup
	maxBody int64
}

func NewHTTPHandler(repo *Repository, plates plateLookup, maxBody int64) *HTTPHandler {
	return &HTTPHandler{repo: repo, plates: plates, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/kunden", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/kunden", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/kunden/search", h.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/kunden/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/kunden/{id}", h.handleUpdate).Methods(http.MethodPut)
	router.HandleFunc("/kunden/{id}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var rec Customer
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rec.ID = ""

	if rec.Salutation != "" && !validSalutation(rec.Salutation) {
		http.Error(w, fmt.Sprintf("invalid anrede '%s'", rec.Salutation), http.StatusBadRequest)
		return
	}

	if err := h.repo.Create(r.Context(), &rec); err != nil {
		logger.Log.WithError(err).Error("failed to create customer")
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
		logger.Log.WithError(err).Error("failed to list customers")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := SearchFilter{
		FirstName:      q.Get("vorname"),
		LastName:       q.Get("name"),
		Street:         q.Get("strasse"),
		PostalCode:     q.Get("plz"),
		City:           q.Get("ort"),
		CustomerNumber: q.Get("kunde_id"),
		Limit:          limit,
	}

	// A vehicle plate narrows the search to customers holding a matching
	// contract. No contract hit means no customer hit.
	if plate := q.Get("kfz_kennzeichen"); plate != "" && h.plates != nil {
		ids, err := h.plates.CustomerIDsByPlate(r.Context(), plate)
		if err != nil {
			logger.Log.WithError(err).Error("failed to resolve plate search")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if len(ids) == 0 {
			writeJSON(w, http.StatusOK, []Customer{})
			return
		}
		filter.IDs = ids
	}

	recs, err := h.repo.Search(r.Context(), filter)
	if err != nil {
		logger.Log.WithError(err).Error("failed to search customers")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.repo.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Kunde nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch customer")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

var updatableFields = map[string]string{
	"status":              "status",
	"anrede":              "salutation",
	"titel":               "title",
	"vorname":             "first_name",
	"name":                "last_name",
	"zusatz":              "name_suffix",
	"strasse":             "street",
	"plz":                 "postal_code",
	"ort":                 "city",
	"postfach_plz":        "pobox_postal_code",
	"postfach_nr":         "pobox_number",
	"gewerbliche_adresse": "commercial_address",
	"dokumentenmappe_nr":  "document_folder_no",
	"betreuer":            "advisor",
	"betreuer_name":       "advisor_name",
	"betreuer_firma":      "advisor_firm",
	"bemerkung":           "remarks",
	"selektion":           "selection",
	"bankverbindung":      "bank_details",
	"telefon":             "phone_numbers",
	"persoenliche_daten":  "personal_data",
	"arbeitgeber":         "employer",
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

	if salutation, ok := payload["anrede"].(string); ok && salutation != "" && !validSalutation(salutation) {
		http.Error(w, fmt.Sprintf("invalid anrede '%s'", salutation), http.StatusBadRequest)
		return
	}

	fields := make(map[string]interface{})
	for key, value := range payload {
		column, ok := updatableFields[key]
		if !ok {
			continue
		}
		// Detail blocks live in JSON columns and need the datatypes wrapper
		// to serialize.
		if blob, isMap := value.(map[string]interface{}); isMap {
			fields[column] = datatypes.JSONMap(blob)
			continue
		}
		fields[column] = value
	}
	if len(fields) == 0 {
		http.Error(w, "no updatable fields supplied", http.StatusBadRequest)
		return
	}

	rec, err := h.repo.Update(r.Context(), mux.Vars(r)["id"], fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Kunde nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to update customer")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Kunde nicht gefunden", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to delete customer")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Kunde erfolgreich gelöscht"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
