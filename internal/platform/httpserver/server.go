package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	envelopeservice "redpacket/contexts/gifting/envelope-service"
	giftingerrors "redpacket/contexts/gifting/envelope-service/domain/errors"
	giftinghttp "redpacket/contexts/gifting/envelope-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "redpacket/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	adminToken string
	gifting    envelopeservice.Module
}

func New(
	gifting envelopeservice.Module,
	adminToken string,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		adminToken: adminToken,
		gifting:    gifting,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /gifting/groups/{group_id}/pools", s.handleSeedPool)
	s.mux.HandleFunc("POST /gifting/groups/{group_id}/pools/claim", s.handleClaim)
	s.mux.HandleFunc("POST /gifting/groups/{group_id}/pools/return", s.handleReturnPool)
	s.mux.HandleFunc("GET /gifting/groups/{group_id}/pools/active", s.handleActivePool)
	s.mux.HandleFunc("GET /gifting/settlements", s.handleListSettlements)
	s.mux.HandleFunc("POST /gifting/festive/broadcast", s.handleFestiveBroadcast)
}

func writeGiftingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, giftingerrors.ErrInvalidSeedRequest):
		writeGiftingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, giftingerrors.ErrInvalidAllocation):
		writeGiftingError(w, http.StatusBadRequest, "invalid_allocation", err.Error())
	case errors.Is(err, giftingerrors.ErrInsufficientFunds):
		writeGiftingError(w, http.StatusPaymentRequired, "insufficient_funds", err.Error())
	case errors.Is(err, giftingerrors.ErrCooldownActive):
		writeGiftingError(w, http.StatusTooManyRequests, "cooldown_active", err.Error())
	case errors.Is(err, giftingerrors.ErrTooEarly):
		writeGiftingError(w, http.StatusTooManyRequests, "too_early", err.Error())
	case errors.Is(err, giftingerrors.ErrPoolConflict):
		writeGiftingError(w, http.StatusConflict, "pool_conflict", err.Error())
	case errors.Is(err, giftingerrors.ErrAlreadyClaimed):
		writeGiftingError(w, http.StatusConflict, "already_claimed", err.Error())
	case errors.Is(err, giftingerrors.ErrRoundClaimed):
		writeGiftingError(w, http.StatusConflict, "round_claimed", err.Error())
	case errors.Is(err, giftingerrors.ErrAlreadySettled):
		writeGiftingError(w, http.StatusConflict, "already_settled", err.Error())
	case errors.Is(err, giftingerrors.ErrRestricted):
		writeGiftingError(w, http.StatusForbidden, "pool_restricted", err.Error())
	case errors.Is(err, giftingerrors.ErrExhausted):
		writeGiftingError(w, http.StatusGone, "pool_exhausted", err.Error())
	case errors.Is(err, giftingerrors.ErrPoolNotFound):
		writeGiftingError(w, http.StatusNotFound, "pool_not_found", err.Error())
	case errors.Is(err, giftingerrors.ErrRoundNotFound):
		writeGiftingError(w, http.StatusNotFound, "round_not_found", err.Error())
	case errors.Is(err, giftingerrors.ErrUnauthorizedAdmin):
		writeGiftingError(w, http.StatusUnauthorized, "unauthorized_admin", err.Error())
	default:
		writeGiftingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGiftingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, giftinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
