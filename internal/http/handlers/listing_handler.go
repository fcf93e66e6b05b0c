package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/staylane/bookings/internal/domain"
	"github.com/staylane/bookings/internal/http/middleware"
	"github.com/staylane/bookings/internal/http/response"
	"github.com/staylane/bookings/pkg/logger"
)

// maxImageBytes bounds uploaded listing images.
const maxImageBytes = 5 << 20

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := domain.SearchCriteria{Location: q.Get("location")}

	if v := q.Get("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			response.BadRequest(w, "invalid from date")
			return
		}
		c.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			response.BadRequest(w, "invalid to date")
			return
		}
		c.To = &t
	}
	if v := q.Get("bed"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.BadRequest(w, "invalid bed count")
			return
		}
		c.Beds = &n
	}

	ls, err := h.listings.Search(r.Context(), c)
	if err != nil {
		logger.ErrorContext(r.Context(), "Search failed", "error", err)
		response.InternalError(w, "server error")
		return
	}
	response.WriteJSON(w, http.StatusOK, ls)
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	limit := 24
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	ls, err := h.listings.List(r.Context(), limit)
	if err != nil {
		logger.ErrorContext(r.Context(), "List listings failed", "error", err)
		response.InternalError(w, "server error")
		return
	}
	response.WriteJSON(w, http.StatusOK, ls)
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	l, err := h.listings.Get(r.Context(), id)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, l)
}

func (h *Handlers) getListingImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	img, err := h.listings.GetImage(r.Context(), id)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var in domain.ListingCreateReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	l, err := h.listings.Create(r.Context(), claims.Sub, &in)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handlers) updateListing(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	var patch domain.ListingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	l, err := h.listings.Update(r.Context(), claims.Sub, id, patch)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, l)
}

func (h *Handlers) deleteListing(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	l, err := h.listings.Delete(r.Context(), claims.Sub, id)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, l)
}

func (h *Handlers) uploadListingImage(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil || len(data) == 0 {
		response.BadRequest(w, "invalid image body")
		return
	}
	if len(data) > maxImageBytes {
		response.BadRequest(w, "image too large")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	img := &domain.ListingImage{Data: data, ContentType: contentType}
	if err := h.listings.SetImage(r.Context(), claims.Sub, id, img); err != nil {
		response.DomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) sellerListings(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	ls, err := h.listings.ListByOwner(r.Context(), claims.Sub)
	if err != nil {
		logger.ErrorContext(r.Context(), "Seller listings failed", "error", err)
		response.InternalError(w, "server error")
		return
	}
	response.WriteJSON(w, http.StatusOK, ls)
}
