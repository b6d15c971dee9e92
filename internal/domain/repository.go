package domain

import (
	"context"
	"iter"
	"time"
)

// CampaignRepository defines persistence for campaigns. Ids are sequential
// and never reused.
type CampaignRepository interface {
	Create(ctx context.Context, c *Campaign) (int64, error)
	Get(ctx context.Context, id int64) (*Campaign, error)
	Update(ctx context.Context, c *Campaign) error
	// ListActive yields campaigns that are active and not past deadline, in
	// ascending id order. The sequence is lazy and restartable.
	ListActive(ctx context.Context, now time.Time) iter.Seq2[Campaign, error]
}

// DonationRepository handles the per-campaign donation ledger.
type DonationRepository interface {
	// Append stores the donation and assigns its Seq within the campaign.
	Append(ctx context.Context, d *Donation) error
	// List returns all records for the campaign, refunded ones included, in
	// insertion order.
	List(ctx context.Context, campaignID int64) ([]Donation, error)
	MarkRefunded(ctx context.Context, campaignID int64, seqs []int) error
}

// IndexRepository tracks the append-only per-account indices. Anonymous
// donations never reach these indices.
type IndexRepository interface {
	AppendUserCampaign(ctx context.Context, account string, campaignID int64) error
	AppendUserDonation(ctx context.Context, account string, campaignID int64) error
	UserCampaigns(ctx context.Context, account string) ([]int64, error)
	UserDonations(ctx context.Context, account string) ([]int64, error)
}

// PayoutSender moves value out of a campaign's escrow. Payout is the single
// external suspension point of withdraw and refund; a failed payout must
// leave no state behind.
type PayoutSender interface {
	Credit(campaignID int64, amount int64)
	Payout(ctx context.Context, campaignID int64, account string, amount int64) error
}

// ReceiptSealer seals a plaintext amount into an opaque receipt attached to
// the donation record. The accounting path never reads the receipt back.
type ReceiptSealer interface {
	Seal(amount int64) ([]byte, error)
}
