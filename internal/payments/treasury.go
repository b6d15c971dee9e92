// Package payments holds the escrow treasury, the one external collaborator
// the lifecycle engine invokes. Donations credit a campaign's escrow;
// withdrawals and refunds debit it. A payout that the escrow cannot cover is
// rejected, which the engine surfaces as a payout failure with no state
// change.
package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Treasury tracks per-campaign escrow balances. The withdrawal fee is never
// paid out, so it accumulates here as the platform's cut.
type Treasury struct {
	mu     sync.Mutex
	escrow map[int64]int64
	logger zerolog.Logger
}

// NewTreasury returns an empty treasury.
func NewTreasury(logger zerolog.Logger) *Treasury {
	return &Treasury{
		escrow: make(map[int64]int64),
		logger: logger,
	}
}

// Credit adds donated value to the campaign's escrow.
func (t *Treasury) Credit(campaignID int64, amount int64) {
	t.mu.Lock()
	t.escrow[campaignID] += amount
	t.mu.Unlock()
}

// Payout transfers value from the campaign's escrow to the account. It fails
// when the escrow cannot cover the amount; nothing is debited in that case.
func (t *Treasury) Payout(ctx context.Context, campaignID int64, account string, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("payments: non-positive payout %d", amount)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	balance := t.escrow[campaignID]
	if balance < amount {
		return fmt.Errorf("payments: escrow %d cannot cover payout %d for campaign %d", balance, amount, campaignID)
	}
	t.escrow[campaignID] = balance - amount

	ref := uuid.NewString()
	t.logger.Info().
		Str("ref", ref).
		Int64("campaign_id", campaignID).
		Str("account", account).
		Int64("amount", amount).
		Msg("payout sent")
	return nil
}

// Escrow reports the campaign's current escrow balance.
func (t *Treasury) Escrow(campaignID int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.escrow[campaignID]
}
