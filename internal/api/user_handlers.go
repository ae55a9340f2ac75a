package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/munakata1001/jujutsukaisenapp/internal/entities"
	"github.com/munakata1001/jujutsukaisenapp/internal/service"
)

type UserReservationHandler struct {
	Service *service.ReservationService
}

func NewUserReservationHandler(svc *service.ReservationService) *UserReservationHandler {
	return &UserReservationHandler{Service: svc}
}

func (h *UserReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.Service.CreateReservation(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *UserReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.Service.GetReservationByID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *UserReservationHandler) GetReservationByNumber(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	res, err := h.Service.GetReservationByNumber(number)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *UserReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("user_email")
	if email == "" {
		respondDetail(w, http.StatusBadRequest, "user_email query parameter is required")
		return
	}
	reservations, err := h.Service.ListReservationsByEmail(email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reservations)
}

// CancelReservation cancels a reservation on behalf of its owner. The trusted
// frontend passes the authenticated user's email in the X-User-Email header
// (user_email query param as fallback).
func (h *UserReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	email := r.Header.Get("X-User-Email")
	if email == "" {
		email = r.URL.Query().Get("user_email")
	}
	if email == "" {
		respondDetail(w, http.StatusBadRequest, "requester email is required")
		return
	}
	res, err := h.Service.CancelReservation(id, email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
