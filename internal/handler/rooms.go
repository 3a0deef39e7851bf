package handler

import (
	"net/http"
)

// ListRooms отдаёт банк комнат: админка показывает его при выборе комнат для дежурства.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.repository.GetAllRooms()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "список комнат получен", rooms)
}
