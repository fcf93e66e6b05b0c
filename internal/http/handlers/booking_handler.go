package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/staylane/bookings/internal/http/middleware"
	"github.com/staylane/bookings/internal/http/response"
	"github.com/staylane/bookings/pkg/logger"
)

type createSessionReq struct {
	ListingID int64 `json:"listing_id"`
}

type createSessionRes struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url,omitempty"`
}

func (h *Handlers) createBookingSession(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var in createSessionReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if in.ListingID <= 0 {
		response.BadRequest(w, "listing_id is required")
		return
	}

	sess, err := h.bookings.CreateSession(r.Context(), claims.Sub, in.ListingID)
	if err != nil {
		logger.WarnContext(r.Context(), "Create booking session failed", "error", err, "listing_id", in.ListingID)
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, createSessionRes{SessionID: sess.ID, URL: sess.URL})
}

// confirmBooking materializes the caller's pending session into an
// order. The request body is ignored; payment status always comes from
// the gateway.
func (h *Handlers) confirmBooking(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	order, err := h.bookings.Confirm(r.Context(), claims.Sub)
	if err != nil {
		logger.WarnContext(r.Context(), "Booking confirmation failed", "error", err)
		response.DomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	limit, offset := 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "invalid offset")
			return
		}
		offset = n
	}

	orders, err := h.bookings.ListOrders(r.Context(), claims.Sub, limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "List orders failed", "error", err)
		response.InternalError(w, "server error")
		return
	}
	response.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handlers) alreadyBooked(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	listingID, err := strconv.ParseInt(chi.URLParam(r, "listingID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid listing id")
		return
	}

	ok, err := h.bookings.AlreadyBooked(r.Context(), claims.Sub, listingID)
	if err != nil {
		logger.ErrorContext(r.Context(), "Already-booked check failed", "error", err)
		response.InternalError(w, "server error")
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}
