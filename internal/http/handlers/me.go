package handlers

import "net/http"

// MeCampaigns lists the ids of campaigns the caller created.
func (a *App) MeCampaigns(w http.ResponseWriter, r *http.Request) {
	account, ok := a.caller(w, r)
	if !ok {
		return
	}
	ids, err := a.Engine.UserCampaigns(r.Context(), account)
	if err != nil {
		a.fail(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	a.json(w, http.StatusOK, map[string]any{"campaign_ids": ids})
}

// MeDonations lists the campaign ids the caller publicly donated to.
// Anonymous donations never appear here.
func (a *App) MeDonations(w http.ResponseWriter, r *http.Request) {
	account, ok := a.caller(w, r)
	if !ok {
		return
	}
	ids, err := a.Engine.UserDonations(r.Context(), account)
	if err != nil {
		a.fail(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	a.json(w, http.StatusOK, map[string]any{"campaign_ids": ids})
}
