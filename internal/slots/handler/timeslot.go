package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"voltslot/internal/slots/service"
	apperrors "voltslot/pkg/errors"
	httputil "voltslot/pkg/http"
	"voltslot/pkg/logger"
)

type TimeSlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewTimeSlotHandler(service service.SlotService, log *logger.Logger) *TimeSlotHandler {
	return &TimeSlotHandler{
		service: service,
		log:     log,
	}
}

func (h *TimeSlotHandler) ListForDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stationID := ps.ByName("id")
	date := r.URL.Query().Get("date")

	if date == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'date' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForDate", "error", writeErr)
		}
		return
	}

	slots, err := h.service.ListForDate(r.Context(), stationID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForDate", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForDate", "error", err)
	}
}

func (h *TimeSlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/stations/:id/time-slots", h.ListForDate)
}
