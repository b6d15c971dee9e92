package handlers

import "net/http"

func (a *App) CampaignsWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	id, ok := a.campaignID(w, r)
	if !ok {
		return
	}
	paid, err := a.Engine.Withdraw(r.Context(), id, caller)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "paid": paid})
}

func (a *App) CampaignsRefund(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	id, ok := a.campaignID(w, r)
	if !ok {
		return
	}
	refunded, err := a.Engine.Refund(r.Context(), id, caller)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "refunded": refunded})
}
