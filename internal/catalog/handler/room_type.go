package handler

import (
	"encoding/json"
	"net/http"

	"hostly/internal/catalog/service"
	apperrors "hostly/pkg/errors"
	httputil "hostly/pkg/http"
	"hostly/pkg/logger"
	"hostly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RoomTypeHandler struct {
	service service.RoomTypeService
	log     *logger.Logger
}

func NewRoomTypeHandler(service service.RoomTypeService, log *logger.Logger) *RoomTypeHandler {
	return &RoomTypeHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomTypeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var roomType model.RoomType
	if err := json.NewDecoder(r.Body).Decode(&roomType); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &roomType); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, roomType); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RoomTypeHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	roomType, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, roomType); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoomTypeHandler) ListByHotel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	hotelID := r.URL.Query().Get("hotel_id")
	if hotelID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("missing required parameter: hotel_id")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByHotel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByHotel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	roomTypes, total, err := h.service.ListByHotel(r.Context(), hotelID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByHotel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, roomTypes, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByHotel", "operation", "WritePaginated", "error", err)
	}
}

func (h *RoomTypeHandler) Decommission(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Decommission(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Decommission", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RoomTypeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/room-types", h.Create)
	router.GET("/api/v1/room-types", h.ListByHotel)
	router.GET("/api/v1/room-types/id/:id", h.GetByID)
	router.DELETE("/api/v1/room-types/id/:id", h.Decommission)
}
