package http

import (
	"net/http"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type TimelineHandler struct {
	service interfaces.TimelineService
	logger  logger.Logger
}

func NewTimelineHandler(service interfaces.TimelineService, logger logger.Logger) *TimelineHandler {
	return &TimelineHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TimelineHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	events, err := h.service.ListForOrder(r.Context(), orderID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := make([]TimelineEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newTimelineEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}
