package repo

import (
	"context"

	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// IndexRepositoryPG implements domain.IndexRepository on PostgreSQL.
type IndexRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewIndexRepository creates a new index repo.
func NewIndexRepository(sql infra.SQLExecutor) *IndexRepositoryPG {
	return &IndexRepositoryPG{sql: sql}
}

func (r *IndexRepositoryPG) AppendUserCampaign(ctx context.Context, account string, campaignID int64) error {
	_, err := r.sql.Exec(ctx, sqlinline.QAppendUserCampaign, account, campaignID)
	return err
}

func (r *IndexRepositoryPG) AppendUserDonation(ctx context.Context, account string, campaignID int64) error {
	_, err := r.sql.Exec(ctx, sqlinline.QAppendUserDonation, account, campaignID)
	return err
}

func (r *IndexRepositoryPG) UserCampaigns(ctx context.Context, account string) ([]int64, error) {
	return r.listIDs(ctx, sqlinline.QUserCampaigns, account)
}

func (r *IndexRepositoryPG) UserDonations(ctx context.Context, account string) ([]int64, error) {
	return r.listIDs(ctx, sqlinline.QUserDonations, account)
}

func (r *IndexRepositoryPG) listIDs(ctx context.Context, query, account string) ([]int64, error) {
	rows, err := r.sql.Query(ctx, query, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
