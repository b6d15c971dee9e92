package repo

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// CampaignRepositoryPG implements domain.CampaignRepository on PostgreSQL.
type CampaignRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCampaignRepository creates a new campaign repo.
func NewCampaignRepository(sql infra.SQLExecutor) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{sql: sql}
}

// Create inserts the campaign and returns its database-assigned id.
func (r *CampaignRepositoryPG) Create(ctx context.Context, c *domain.Campaign) (int64, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertCampaign,
		c.Creator, c.Title, c.Description, c.Category, c.Goal, c.Deadline, c.AcceptsAnonymous, c.CreatedAt)
	if err := row.Scan(&c.ID); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// Get loads a single campaign.
func (r *CampaignRepositoryPG) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QGetCampaign, id)
	c, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCampaignNotFound
		}
		return nil, err
	}
	return c, nil
}

// Update persists the campaign's mutable fields.
func (r *CampaignRepositoryPG) Update(ctx context.Context, c *domain.Campaign) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateCampaign,
		c.ID, c.Raised, c.IsActive, c.GoalReached, c.FundsWithdrawn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}

// ListActive yields open campaigns in ascending id order. The query runs
// when the sequence is ranged, once per restart.
func (r *CampaignRepositoryPG) ListActive(ctx context.Context, now time.Time) iter.Seq2[domain.Campaign, error] {
	return func(yield func(domain.Campaign, error) bool) {
		rows, err := r.sql.Query(ctx, sqlinline.QListActiveCampaigns, now)
		if err != nil {
			yield(domain.Campaign{}, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			c, err := scanCampaign(rows)
			if err != nil {
				yield(domain.Campaign{}, err)
				return
			}
			if !yield(*c, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Campaign{}, err)
		}
	}
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(&c.ID, &c.Creator, &c.Title, &c.Description, &c.Category,
		&c.Goal, &c.Raised, &c.Deadline, &c.IsActive, &c.GoalReached,
		&c.FundsWithdrawn, &c.AcceptsAnonymous, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
