package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/internal/http/response"
	"github.com/staylane/bookings/internal/service"
	"github.com/staylane/bookings/pkg/logger"
)

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	user, err := h.auth.Register(r.Context(), &in)
	if err != nil {
		logger.WarnContext(r.Context(), "Registration failed", "error", err)
		response.BadRequest(w, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	out, err := h.auth.Login(r.Context(), &in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid email or password")
			return
		}
		logger.ErrorContext(r.Context(), "Login failed", "error", err)
		response.InternalError(w, "server error")
		return
	}

	response.WriteJSON(w, http.StatusOK, out)
}
