package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	giftinghttp "redpacket/contexts/gifting/envelope-service/transport/http"
)

func (s *Server) handleSeedPool(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeGiftingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req giftinghttp.SeedPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGiftingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.gifting.Handler.SeedPoolHandler(r.Context(), r.PathValue("group_id"), userID, req)
	if err != nil {
		writeGiftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeGiftingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.gifting.Handler.ClaimHandler(r.Context(), r.PathValue("group_id"), userID)
	if err != nil {
		writeGiftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReturnPool(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeGiftingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.gifting.Handler.ReturnPoolHandler(r.Context(), r.PathValue("group_id"), userID)
	if err != nil {
		writeGiftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivePool(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gifting.Handler.ActivePoolHandler(r.Context(), r.PathValue("group_id"))
	if err != nil {
		writeGiftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeGiftingError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeGiftingError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		offset = parsed
	}

	resp, err := s.gifting.Handler.ListSettlementsHandler(r.Context(), query.Get("group_id"), limit, offset)
	if err != nil {
		writeGiftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFestiveBroadcast(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Admin-Token")
	if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		writeGiftingError(w, http.StatusUnauthorized, "unauthorized_admin", "admin token rejected")
		return
	}

	var req giftinghttp.FestiveBroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGiftingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.gifting.Handler.FestiveBroadcastHandler(r.Context(), req)
	if err != nil {
		writeGiftingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}
