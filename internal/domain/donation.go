package domain

import "time"

// DonorRef identifies the source of a donation. An anonymous donation carries
// no identity at all: the account behind it is never persisted, so it cannot
// be linked back to a donor afterwards.
type DonorRef struct {
	account string
	known   bool
}

// KnownDonor returns a donor reference carrying the given account id.
func KnownDonor(account string) DonorRef {
	return DonorRef{account: account, known: true}
}

// AnonymousDonor returns a donor reference with no identity.
func AnonymousDonor() DonorRef {
	return DonorRef{}
}

// Account returns the donor account id and whether one was recorded.
func (d DonorRef) Account() (string, bool) {
	return d.account, d.known
}

// IsAnonymous reports whether the reference carries no donor identity.
func (d DonorRef) IsAnonymous() bool {
	return !d.known
}

// DonationStatus tracks whether a donation still counts toward the campaign
// total. Refunded records stay in the ledger so a refund cannot be claimed
// twice.
type DonationStatus string

const (
	DonationActive   DonationStatus = "active"
	DonationRefunded DonationStatus = "refunded"
)

// Donation is a single contribution record against a campaign. Records are
// append-only; a refund flips Status, it never deletes or rewrites Amount.
type Donation struct {
	CampaignID int64
	Seq        int
	Donor      DonorRef
	Amount     int64
	Status     DonationStatus
	Region     string // ISO country code, empty for anonymous donations
	Receipt    []byte // sealed amount, opaque to the accounting path
	CreatedAt  time.Time
}

// Refunded reports whether the donation has already been returned.
func (d Donation) Refunded() bool {
	return d.Status == DonationRefunded
}

// AnonymityStats aggregates the public/anonymous split of a campaign's
// donation ledger.
type AnonymityStats struct {
	Anonymous int
	Public    int
	Total     int
	Regions   map[string]int
}
