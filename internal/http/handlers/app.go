package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/engine"
	"crowdfund/internal/middleware"
)

// App is the handler container: the lifecycle engine plus response helpers.
type App struct {
	Engine *engine.Engine
	Logger zerolog.Logger
}

// NewApp creates the handler container.
func NewApp(e *engine.Engine, logger zerolog.Logger) *App {
	return &App{Engine: e, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

// fail maps a domain error to its HTTP representation.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		a.error(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, domain.ErrCampaignNotFound):
		a.error(w, http.StatusNotFound, "campaign_not_found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrCampaignInactive):
		a.error(w, http.StatusConflict, "campaign_inactive", err.Error())
	case errors.Is(err, domain.ErrCampaignEnded):
		a.error(w, http.StatusConflict, "campaign_ended", err.Error())
	case errors.Is(err, domain.ErrGoalNotReached):
		a.error(w, http.StatusConflict, "goal_not_reached", err.Error())
	case errors.Is(err, domain.ErrAlreadyWithdrawn):
		a.error(w, http.StatusConflict, "already_withdrawn", err.Error())
	case errors.Is(err, domain.ErrNothingToWithdraw):
		a.error(w, http.StatusConflict, "nothing_to_withdraw", err.Error())
	case errors.Is(err, domain.ErrNothingToRefund):
		a.error(w, http.StatusConflict, "nothing_to_refund", err.Error())
	case errors.Is(err, domain.ErrRefundUnavailable):
		a.error(w, http.StatusConflict, "refund_unavailable", err.Error())
	case errors.Is(err, domain.ErrPayoutFailed):
		a.error(w, http.StatusBadGateway, "payout_failed", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// caller returns the authenticated account id. The auth middleware rejects
// unauthenticated requests before handlers run, so an empty id here is a
// wiring bug surfaced as 401.
func (a *App) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok || account == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing account identity")
		return "", false
	}
	return account, true
}
