package handler

import (
	"net/http"
	"strconv"
	"time"

	"hostly/internal/availability/service"
	apperrors "hostly/pkg/errors"
	httputil "hostly/pkg/http"
	"hostly/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hotelID := r.URL.Query().Get("hotel_id")
	if hotelID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("missing required parameter: hotel_id")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	checkIn, err := httputil.ExtractDate(r, "check_in")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	checkOut, err := httputil.ExtractDate(r, "check_out")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	quantity, err := httputil.ExtractQuantity(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	results, err := h.service.Search(r.Context(), hotelID, checkIn, checkOut, quantity)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Search", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) FreeWindows(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomTypeID := ps.ByName("id")

	from := time.Now()
	if s := r.URL.Query().Get("from"); s != "" {
		parsed, err := time.Parse(time.DateOnly, s)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid from parameter, must be YYYY-MM-DD")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "FreeWindows", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		from = parsed
	}

	days := 0
	if s := r.URL.Query().Get("days"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid days parameter: "+s)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "FreeWindows", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		days = parsed
	}

	windows, err := h.service.FreeWindows(r.Context(), roomTypeID, from, days)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FreeWindows", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, windows); err != nil {
		h.log.Error("failed to write success response", "handler", "FreeWindows", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/search", h.Search)
	router.GET("/api/v1/availability/room-types/:id/windows", h.FreeWindows)
}
