package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/engine"
)

type createCampaignRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Goal             int64  `json:"goal"`
	DurationDays     int    `json:"duration_days"`
	AcceptsAnonymous *bool  `json:"accepts_anonymous"`
}

type campaignDTO struct {
	ID               int64     `json:"id"`
	Creator          string    `json:"creator"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Goal             int64     `json:"goal"`
	Raised           int64     `json:"raised"`
	Deadline         time.Time `json:"deadline"`
	IsActive         bool      `json:"is_active"`
	GoalReached      bool      `json:"goal_reached"`
	FundsWithdrawn   bool      `json:"funds_withdrawn"`
	AcceptsAnonymous bool      `json:"accepts_anonymous"`
	CreatedAt        time.Time `json:"created_at"`
}

func toCampaignDTO(c domain.Campaign) campaignDTO {
	return campaignDTO{
		ID:               c.ID,
		Creator:          c.Creator,
		Title:            c.Title,
		Description:      c.Description,
		Category:         c.Category,
		Goal:             c.Goal,
		Raised:           c.Raised,
		Deadline:         c.Deadline,
		IsActive:         c.IsActive,
		GoalReached:      c.GoalReached,
		FundsWithdrawn:   c.FundsWithdrawn,
		AcceptsAnonymous: c.AcceptsAnonymous,
		CreatedAt:        c.CreatedAt,
	}
}

func (a *App) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	creator, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	acceptsAnonymous := true
	if req.AcceptsAnonymous != nil {
		acceptsAnonymous = *req.AcceptsAnonymous
	}
	id, err := a.Engine.CreateCampaign(r.Context(), creator, engine.CreateCampaignInput{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Goal:             req.Goal,
		DurationDays:     req.DurationDays,
		AcceptsAnonymous: acceptsAnonymous,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"id": id})
}

func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	id, ok := a.campaignID(w, r)
	if !ok {
		return
	}
	c, err := a.Engine.GetCampaign(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, toCampaignDTO(*c))
}

func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	items := []campaignDTO{}
	for c, err := range a.Engine.ListActive(r.Context()) {
		if err != nil {
			a.fail(w, err)
			return
		}
		items = append(items, toCampaignDTO(c))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) CampaignsPause(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	id, ok := a.campaignID(w, r)
	if !ok {
		return
	}
	if err := a.Engine.Pause(r.Context(), id, caller); err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "is_active": false})
}

func (a *App) campaignID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid campaign id")
		return 0, false
	}
	return id, true
}
