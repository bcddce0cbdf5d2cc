package http

import (
	"net/http"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type ReservationHandler struct {
	service interfaces.ReservationService
	logger  logger.Logger
}

func NewReservationHandler(service interfaces.ReservationService, logger logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		logger:  logger,
	}
}

type CreateReservationRequest struct {
	Date      string          `json:"date"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	PartySize int             `json:"party_size"`
	Customer  CustomerPayload `json:"customer"`
	Source    string          `json:"source"`
}

type ReservationTransitionRequest struct {
	Status string `json:"status"`
}

func parseSlotParams(date, start, end string) (time.Time, domain.ClockTime, domain.ClockTime, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return time.Time{}, 0, 0, badRequest("invalid date, want YYYY-MM-DD")
	}
	s, err := domain.ParseClock(start)
	if err != nil {
		return time.Time{}, 0, 0, badRequest("invalid start, want HH:MM")
	}
	e, err := domain.ParseClock(end)
	if err != nil {
		return time.Time{}, 0, 0, badRequest("invalid end, want HH:MM")
	}
	return d, s, e, nil
}

func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	tableID, err := pathID(r, "tableID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req CreateReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	date, start, end, err := parseSlotParams(req.Date, req.Start, req.End)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res, err := h.service.RequestReservation(r.Context(), interfaces.RequestReservationCommand{
		TableID:   tableID,
		Date:      date,
		Start:     start,
		End:       end,
		PartySize: req.PartySize,
		Customer: domain.Customer{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
			Email: req.Customer.Email,
		},
		Source: req.Source,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newReservationResponse(res))
}

func (h *ReservationHandler) ListForTable(w http.ResponseWriter, r *http.Request) {
	tableID, err := pathID(r, "tableID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	date, err := domain.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, r, h.logger, badRequest("invalid date, want YYYY-MM-DD"))
		return
	}

	reservations, err := h.service.ListForTable(r.Context(), tableID, date)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := make([]ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		resp = append(resp, newReservationResponse(res))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reservationID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newReservationResponse(res))
}

func (h *ReservationHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reservationID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req ReservationTransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res, err := h.service.Transition(r.Context(), id, domain.ReservationStatus(req.Status))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newReservationResponse(res))
}
