package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/munakata1001/jujutsukaisenapp/internal/service"
)

type TimeSlotHandler struct {
	Service *service.TimeSlotService
}

func NewTimeSlotHandler(svc *service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{Service: svc}
}

func (h *TimeSlotHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "year query parameter must be an integer")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "month query parameter must be an integer")
		return
	}

	calendar, err := h.Service.GetCalendar(year, month)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, calendar)
}

func (h *TimeSlotHandler) GetTimeSlots(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
		return
	}

	slots, err := h.Service.GetDayTimeSlots(date)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

func (h *TimeSlotHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "date query parameter must be YYYY-MM-DD")
		return
	}
	timeStr := r.URL.Query().Get("time")
	if timeStr == "" {
		respondDetail(w, http.StatusBadRequest, "time query parameter is required")
		return
	}

	availability, err := h.Service.CheckAvailability(date, timeStr)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, availability)
}
