package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/munakata1001/jujutsukaisenapp/internal/entities"
	"github.com/munakata1001/jujutsukaisenapp/internal/service"
)

type AdminHandler struct {
	Reservations *service.ReservationService
	TimeSlots    *service.TimeSlotService
}

func NewAdminHandler(reservations *service.ReservationService, timeSlots *service.TimeSlotService) *AdminHandler {
	return &AdminHandler{Reservations: reservations, TimeSlots: timeSlots}
}

func (h *AdminHandler) CreateTimeSlot(w http.ResponseWriter, r *http.Request) {
	var req CreateTimeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	slot, err := h.TimeSlots.CreateTimeSlot(req.Date, req.Time, req.Capacity)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, slot)
}

func (h *AdminHandler) UpdateTimeSlot(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]
	var req UpdateTimeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	slot, err := h.TimeSlots.UpdateTimeSlot(slotID, req.Capacity, req.IsAvailable)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slot)
}

func (h *AdminHandler) DeleteTimeSlot(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]
	if err := h.TimeSlots.DeleteTimeSlot(slotID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Time slot deleted"})
}

// SearchReservations filters reservations by number, user name, visit date
// and status for the staff dashboard.
func (h *AdminHandler) SearchReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	reservations, err := h.Reservations.SearchReservations(
		q.Get("reservation_number"),
		q.Get("user_name"),
		q.Get("visit_date"),
		q.Get("status"),
		limit,
	)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reservations)
}

// UpdateReservation moves a reservation to another visit date/time.
func (h *AdminHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req entities.UpdateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.Reservations.UpdateReservationVisit(id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := h.Reservations.CompleteReservation(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
