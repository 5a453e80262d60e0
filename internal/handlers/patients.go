package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/optotask/backend/internal/auth"
	"github.com/optotask/backend/internal/httpx"
	"github.com/optotask/backend/internal/models"
	"github.com/optotask/backend/internal/store"
	"github.com/optotask/backend/internal/validation"
)

// PatientHandler serves the record endpoints. Every operation runs against the caller
// resolved by the auth middleware; the store itself scopes all queries by owner.
type PatientHandler struct {
	Store *store.PatientStore
}

func NewPatientHandler(s *store.PatientStore) *PatientHandler {
	return &PatientHandler{Store: s}
}

func caller(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return u, ok
}

// idxParam parses the {id} path segment. A non-numeric id fails the request-shape layer
// before any store operation runs.
func idxParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed",
			validation.Violations{"id": "must_be_integer"})
		return 0, false
	}
	return idx, true
}

type createRequest struct {
	Idx       *int    `json:"idx"`
	Initial   string  `json:"initial"`
	Fields    bool    `json:"fields"`
	Pressures bool    `json:"pressures"`
	Scans     bool    `json:"scans"`
	Referral  bool    `json:"referral"`
	Notes     *string `json:"notes"`
}

// Create: POST /create
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.RequiredInt("idx", req.Idx, v)
	validation.Required("initial", req.Initial, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	p, err := h.Store.Create(u.ID, store.NewPatient{
		Idx:       *req.Idx,
		Initial:   req.Initial,
		Fields:    req.Fields,
		Pressures: req.Pressures,
		Scans:     req.Scans,
		Referral:  req.Referral,
		Notes:     req.Notes,
	})
	if errors.Is(err, store.ErrConflict) {
		httpx.JSONError(w, http.StatusBadRequest, "patient_id_taken", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Read: GET /read/{id} — active rows only.
func (h *PatientHandler) Read(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	idx, ok := idxParam(w, r)
	if !ok {
		return
	}
	p, err := h.Store.Get(u.ID, idx)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// ReadArchived: GET /search_archive/{id} — archived rows only.
func (h *PatientHandler) ReadArchived(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	idx, ok := idxParam(w, r)
	if !ok {
		return
	}
	p, err := h.Store.GetArchived(u.ID, idx)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// ListActive: GET /see_all
func (h *PatientHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.Store.ListActive)
}

// ListArchived: GET /read_archive
func (h *PatientHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.Store.ListArchived)
}

// ListOpenTickets: GET /tickets/open
func (h *PatientHandler) ListOpenTickets(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, h.Store.ListOpenTickets)
}

func (h *PatientHandler) respondList(w http.ResponseWriter, r *http.Request, list func(uint) ([]models.Patient, error)) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	ps, err := list(u.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "list_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, ps)
}

// Update: PUT /update/{id} — partial update; archived rows are updatable.
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	idx, ok := idxParam(w, r)
	if !ok {
		return
	}
	var patch store.PatientPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_json", nil)
		return
	}
	p, err := h.Store.Update(u.ID, idx, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Archive: DELETE /tasks/{id} — soft delete, idempotent.
func (h *PatientHandler) Archive(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	idx, ok := idxParam(w, r)
	if !ok {
		return
	}
	if err := h.Store.Archive(u.ID, idx); err != nil {
		respondStoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("patient %d archived", idx),
	})
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
