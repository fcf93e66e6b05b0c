package handlers

import (
	"net/http"

	"github.com/staylane/bookings/internal/http/middleware"
	"github.com/staylane/bookings/internal/http/response"
	"github.com/staylane/bookings/pkg/logger"
)

func (h *Handlers) payoutAccount(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	url, err := h.payouts.EnsureAccount(r.Context(), claims.Sub)
	if err != nil {
		logger.WarnContext(r.Context(), "Payout onboarding failed", "error", err)
		response.DomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handlers) payoutStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	status, err := h.payouts.AccountStatus(r.Context(), claims.Sub)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, status)
}

func (h *Handlers) payoutBalance(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	bal, err := h.payouts.Balance(r.Context(), claims.Sub)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, bal)
}

func (h *Handlers) payoutSettingsLink(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	url, err := h.payouts.SettingsLink(r.Context(), claims.Sub)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}
