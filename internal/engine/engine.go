// Package engine implements the campaign lifecycle controller: creation,
// donations, the single withdrawal, refunds after an unsuccessful deadline,
// and the read operations over the campaign store and donation ledger.
package engine

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"crowdfund/internal/domain"
)

// Platform fee applied on withdrawal: feeRateNumerator/feeRateDenominator
// of the raised total (1.0%). The fee stays in escrow.
const (
	feeRateNumerator   = 10
	feeRateDenominator = 1000
)

const (
	minDurationDays = 1
	maxDurationDays = 365
)

// Engine coordinates the campaign store, donation ledger, per-account
// indices, escrow payouts and receipt sealing. Mutating operations on the
// same campaign id are serialized; different ids proceed in parallel.
type Engine struct {
	campaigns domain.CampaignRepository
	donations domain.DonationRepository
	indices   domain.IndexRepository
	payouts   domain.PayoutSender
	sealer    domain.ReceiptSealer
	logger    zerolog.Logger
	now       func() time.Time

	campaignMu keyedMutex[int64]
	userMu     keyedMutex[string]
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New wires an engine over the given repositories and collaborators.
func New(campaigns domain.CampaignRepository, donations domain.DonationRepository, indices domain.IndexRepository, payouts domain.PayoutSender, sealer domain.ReceiptSealer, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		campaigns: campaigns,
		donations: donations,
		indices:   indices,
		payouts:   payouts,
		sealer:    sealer,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateCampaignInput carries the caller-supplied campaign fields.
type CreateCampaignInput struct {
	Title            string
	Description      string
	Category         string
	Goal             int64
	DurationDays     int
	AcceptsAnonymous bool
}

// CreateCampaign validates the input, allocates the next campaign id and
// records the campaign under the creator's index. A rejected create never
// allocates an id.
func (e *Engine) CreateCampaign(ctx context.Context, creator string, in CreateCampaignInput) (int64, error) {
	if strings.TrimSpace(creator) == "" {
		return 0, fmt.Errorf("%w: creator is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Title) == "" {
		return 0, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return 0, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	if in.Goal <= 0 {
		return 0, fmt.Errorf("%w: goal must be positive", domain.ErrInvalidInput)
	}
	if in.DurationDays < minDurationDays || in.DurationDays > maxDurationDays {
		return 0, fmt.Errorf("%w: duration must be between %d and %d days", domain.ErrInvalidInput, minDurationDays, maxDurationDays)
	}

	now := e.now()
	c := &domain.Campaign{
		Creator:          creator,
		Title:            strings.TrimSpace(in.Title),
		Description:      strings.TrimSpace(in.Description),
		Category:         normalizeCategory(in.Category),
		Goal:             in.Goal,
		Deadline:         now.Add(time.Duration(in.DurationDays) * 24 * time.Hour),
		IsActive:         true,
		AcceptsAnonymous: in.AcceptsAnonymous,
		CreatedAt:        now,
	}
	id, err := e.campaigns.Create(ctx, c)
	if err != nil {
		return 0, err
	}

	mu := e.userMu.lock(creator)
	err = e.indices.AppendUserCampaign(ctx, creator, id)
	mu.Unlock()
	if err != nil {
		return 0, err
	}

	e.logger.Info().Int64("campaign_id", id).Str("creator", creator).Int64("goal", c.Goal).Msg("campaign created")
	return id, nil
}

// Donate appends a donation to the campaign ledger and updates the raised
// total. Anonymous donations never touch a donor index and never record a
// region, so they stay unlinkable.
func (e *Engine) Donate(ctx context.Context, campaignID int64, donor domain.DonorRef, amount int64, region string) (*domain.Donation, error) {
	mu := e.campaignMu.lock(campaignID)
	defer mu.Unlock()

	c, err := e.campaigns.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if !c.IsActive {
		return nil, domain.ErrCampaignInactive
	}
	if c.Expired(now) {
		return nil, domain.ErrCampaignEnded
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if donor.IsAnonymous() && !c.AcceptsAnonymous {
		return nil, fmt.Errorf("%w: campaign does not accept anonymous donations", domain.ErrInvalidInput)
	}

	receipt, err := e.sealer.Seal(amount)
	if err != nil {
		return nil, fmt.Errorf("seal receipt: %w", err)
	}

	d := &domain.Donation{
		CampaignID: campaignID,
		Donor:      donor,
		Amount:     amount,
		Status:     domain.DonationActive,
		Receipt:    receipt,
		CreatedAt:  now,
	}
	if !donor.IsAnonymous() {
		d.Region = region
	}
	if err := e.donations.Append(ctx, d); err != nil {
		return nil, err
	}

	c.Raised += amount
	if !c.GoalReached && c.Raised >= c.Goal {
		c.GoalReached = true
		e.logger.Info().Int64("campaign_id", campaignID).Int64("raised", c.Raised).Msg("campaign goal reached")
	}
	if err := e.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}
	e.payouts.Credit(campaignID, amount)

	if account, ok := donor.Account(); ok {
		umu := e.userMu.lock(account)
		err = e.indices.AppendUserDonation(ctx, account, campaignID)
		umu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Withdraw pays the raised total minus the platform fee to the creator.
// Allowed exactly once, and only after the goal has been reached. A failed
// payout aborts the operation with no state change.
func (e *Engine) Withdraw(ctx context.Context, campaignID int64, caller string) (int64, error) {
	mu := e.campaignMu.lock(campaignID)
	defer mu.Unlock()

	c, err := e.campaigns.Get(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if caller != c.Creator {
		return 0, domain.ErrUnauthorized
	}
	if !c.GoalReached {
		return 0, domain.ErrGoalNotReached
	}
	if c.FundsWithdrawn {
		return 0, domain.ErrAlreadyWithdrawn
	}
	if c.Raised <= 0 {
		return 0, domain.ErrNothingToWithdraw
	}

	fee := c.Raised * feeRateNumerator / feeRateDenominator
	paid := c.Raised - fee
	if err := e.payouts.Payout(ctx, campaignID, c.Creator, paid); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPayoutFailed, err)
	}

	c.FundsWithdrawn = true
	c.IsActive = false
	if err := e.campaigns.Update(ctx, c); err != nil {
		return 0, err
	}
	e.logger.Info().Int64("campaign_id", campaignID).Int64("paid", paid).Int64("fee", fee).Msg("funds withdrawn")
	return paid, nil
}

// Refund returns the caller's active public donations after the deadline of
// an unsuccessful campaign. Anonymous donations retained no identity and are
// therefore unrefundable. A failed payout aborts with no state change.
func (e *Engine) Refund(ctx context.Context, campaignID int64, caller string) (int64, error) {
	mu := e.campaignMu.lock(campaignID)
	defer mu.Unlock()

	c, err := e.campaigns.Get(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if !c.Expired(e.now()) || c.GoalReached {
		return 0, domain.ErrRefundUnavailable
	}

	records, err := e.donations.List(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	var total int64
	var seqs []int
	for _, d := range records {
		account, ok := d.Donor.Account()
		if !ok || account != caller || d.Refunded() {
			continue
		}
		total += d.Amount
		seqs = append(seqs, d.Seq)
	}
	if total == 0 {
		return 0, domain.ErrNothingToRefund
	}

	if err := e.payouts.Payout(ctx, campaignID, caller, total); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPayoutFailed, err)
	}
	if err := e.donations.MarkRefunded(ctx, campaignID, seqs); err != nil {
		return 0, err
	}
	c.Raised -= total
	if err := e.campaigns.Update(ctx, c); err != nil {
		return 0, err
	}
	e.logger.Info().Int64("campaign_id", campaignID).Str("account", caller).Int64("refunded", total).Msg("donations refunded")
	return total, nil
}

// Pause deactivates the campaign. Creator only; raised funds and donation
// records are untouched.
func (e *Engine) Pause(ctx context.Context, campaignID int64, caller string) error {
	mu := e.campaignMu.lock(campaignID)
	defer mu.Unlock()

	c, err := e.campaigns.Get(ctx, campaignID)
	if err != nil {
		return err
	}
	if caller != c.Creator {
		return domain.ErrUnauthorized
	}
	c.IsActive = false
	return e.campaigns.Update(ctx, c)
}

// GetCampaign looks up a single campaign.
func (e *Engine) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	return e.campaigns.Get(ctx, id)
}

// ListActive yields campaigns that are still open for donations.
func (e *Engine) ListActive(ctx context.Context) iter.Seq2[domain.Campaign, error] {
	return e.campaigns.ListActive(ctx, e.now())
}

// ListDonations returns the campaign's full donation ledger, refunded
// records included.
func (e *Engine) ListDonations(ctx context.Context, campaignID int64) ([]domain.Donation, error) {
	if _, err := e.campaigns.Get(ctx, campaignID); err != nil {
		return nil, err
	}
	return e.donations.List(ctx, campaignID)
}

// AnonymityStats aggregates the public/anonymous split of the campaign's
// ledger, with a region breakdown for public donations.
func (e *Engine) AnonymityStats(ctx context.Context, campaignID int64) (*domain.AnonymityStats, error) {
	records, err := e.ListDonations(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	stats := &domain.AnonymityStats{Regions: make(map[string]int)}
	for _, d := range records {
		stats.Total++
		if d.Donor.IsAnonymous() {
			stats.Anonymous++
			continue
		}
		stats.Public++
		if d.Region != "" {
			stats.Regions[d.Region]++
		}
	}
	return stats, nil
}

// UserCampaigns returns the ids of campaigns created by the account.
func (e *Engine) UserCampaigns(ctx context.Context, account string) ([]int64, error) {
	return e.indices.UserCampaigns(ctx, account)
}

// UserDonations returns the campaign ids the account publicly donated to.
func (e *Engine) UserDonations(ctx context.Context, account string) ([]int64, error) {
	return e.indices.UserDonations(ctx, account)
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return "General"
	}
	return cases.Title(language.English).String(strings.ToLower(category))
}
