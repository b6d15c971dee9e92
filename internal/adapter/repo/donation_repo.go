package repo

import (
	"context"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// DonationRepositoryPG implements domain.DonationRepository on PostgreSQL.
// The donor column is NULL for anonymous donations; no identity ever reaches
// the database for them.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// Append inserts the donation and fills in its per-campaign sequence number.
func (r *DonationRepositoryPG) Append(ctx context.Context, d *domain.Donation) error {
	donor := ""
	if account, ok := d.Donor.Account(); ok {
		donor = account
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertDonation,
		d.CampaignID, donor, d.Amount, d.Region, d.Receipt, d.CreatedAt)
	return row.Scan(&d.Seq)
}

// List returns all donation records for the campaign in insertion order.
func (r *DonationRepositoryPG) List(ctx context.Context, campaignID int64) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonations, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		var donor *string
		var status string
		if err := rows.Scan(&d.CampaignID, &d.Seq, &donor, &d.Amount, &status, &d.Region, &d.Receipt, &d.CreatedAt); err != nil {
			return nil, err
		}
		if donor != nil {
			d.Donor = domain.KnownDonor(*donor)
		} else {
			d.Donor = domain.AnonymousDonor()
		}
		d.Status = domain.DonationStatus(status)
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRefunded flips the given records to refunded.
func (r *DonationRepositoryPG) MarkRefunded(ctx context.Context, campaignID int64, seqs []int) error {
	ids := make([]int32, len(seqs))
	for i, seq := range seqs {
		ids[i] = int32(seq)
	}
	_, err := r.sql.Exec(ctx, sqlinline.QMarkDonationsRefunded, campaignID, ids)
	return err
}
