package handlers

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"crowdfund/internal/domain"
	"crowdfund/internal/middleware"
)

type donationRequest struct {
	Amount    int64 `json:"amount"`
	Anonymous bool  `json:"anonymous"`
}

type donationDTO struct {
	CampaignID int64     `json:"campaign_id"`
	Seq        int       `json:"seq"`
	Donor      *string   `json:"donor"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	Region     string    `json:"region,omitempty"`
	Receipt    string    `json:"receipt"`
	CreatedAt  time.Time `json:"created_at"`
}

func toDonationDTO(d domain.Donation) donationDTO {
	dto := donationDTO{
		CampaignID: d.CampaignID,
		Seq:        d.Seq,
		Amount:     d.Amount,
		Status:     string(d.Status),
		Region:     d.Region,
		Receipt:    hex.EncodeToString(d.Receipt),
		CreatedAt:  d.CreatedAt,
	}
	if account, ok := d.Donor.Account(); ok {
		dto.Donor = &account
	}
	return dto
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	account, ok := a.caller(w, r)
	if !ok {
		return
	}
	id, ok := a.campaignID(w, r)
	if !ok {
		return
	}
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	donor := domain.KnownDonor(account)
	if req.Anonymous {
		donor = domain.AnonymousDonor()
	}
	d, err := a.Engine.Donate(r.Context(), id, donor, req.Amount, middleware.CountryFromContext(r.Context()))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, toDonationDTO(*d))
}

func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	id, ok := a.campaignID(w, r)
	if !ok {
		return
	}
	records, err := a.Engine.ListDonations(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	items := make([]donationDTO, 0, len(records))
	for _, d := range records {
		items = append(items, toDonationDTO(d))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) DonationsStats(w http.ResponseWriter, r *http.Request) {
	id, ok := a.campaignID(w, r)
	if !ok {
		return
	}
	stats, err := a.Engine.AnonymityStats(r.Context(), id)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"anonymous": stats.Anonymous,
		"public":    stats.Public,
		"total":     stats.Total,
		"regions":   stats.Regions,
	})
}
