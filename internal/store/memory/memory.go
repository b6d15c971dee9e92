// Package memory provides in-process implementations of the campaign store,
// donation ledger and account indices. It is the default backend when no
// database is configured and the backend the engine tests run against.
package memory

import (
	"context"
	"iter"
	"sync"
	"time"

	"crowdfund/internal/domain"
)

// Store keeps campaigns in a dense arena indexed by id-1, with a monotonic
// counter owned by the store. Ids are never reused.
type Store struct {
	mu            sync.RWMutex
	campaigns     []domain.Campaign
	donations     map[int64][]domain.Donation
	userCampaigns map[string][]int64
	userDonations map[string][]int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		donations:     make(map[int64][]domain.Donation),
		userCampaigns: make(map[string][]int64),
		userDonations: make(map[string][]int64),
	}
}

// Create assigns the next sequential id and stores the campaign.
func (s *Store) Create(_ context.Context, c *domain.Campaign) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = int64(len(s.campaigns)) + 1
	s.campaigns = append(s.campaigns, *c)
	return c.ID, nil
}

// Get returns a copy of the campaign record.
func (s *Store) Get(_ context.Context, id int64) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 1 || id > int64(len(s.campaigns)) {
		return nil, domain.ErrCampaignNotFound
	}
	c := s.campaigns[id-1]
	return &c, nil
}

// Update replaces the stored record for the campaign's id.
func (s *Store) Update(_ context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID < 1 || c.ID > int64(len(s.campaigns)) {
		return domain.ErrCampaignNotFound
	}
	s.campaigns[c.ID-1] = *c
	return nil
}

// ListActive yields open campaigns in ascending id order. The sequence is
// lazy and can be ranged over multiple times; each restart re-reads the
// arena.
func (s *Store) ListActive(_ context.Context, now time.Time) iter.Seq2[domain.Campaign, error] {
	return func(yield func(domain.Campaign, error) bool) {
		s.mu.RLock()
		snapshot := make([]domain.Campaign, len(s.campaigns))
		copy(snapshot, s.campaigns)
		s.mu.RUnlock()
		for _, c := range snapshot {
			if !c.Open(now) {
				continue
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// Append stores the donation and assigns its per-campaign sequence number,
// starting at 1.
func (s *Store) Append(_ context.Context, d *domain.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Seq = len(s.donations[d.CampaignID]) + 1
	s.donations[d.CampaignID] = append(s.donations[d.CampaignID], *d)
	return nil
}

// List returns all donation records for the campaign in insertion order.
func (s *Store) List(_ context.Context, campaignID int64) ([]domain.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.donations[campaignID]
	out := make([]domain.Donation, len(records))
	copy(out, records)
	return out, nil
}

// MarkRefunded flips the status of the given records to refunded.
func (s *Store) MarkRefunded(_ context.Context, campaignID int64, seqs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.donations[campaignID]
	for _, seq := range seqs {
		if seq < 1 || seq > len(records) {
			continue
		}
		records[seq-1].Status = domain.DonationRefunded
	}
	return nil
}

// AppendUserCampaign records a campaign id under the creator's index.
func (s *Store) AppendUserCampaign(_ context.Context, account string, campaignID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCampaigns[account] = append(s.userCampaigns[account], campaignID)
	return nil
}

// AppendUserDonation records a campaign id under the donor's index.
func (s *Store) AppendUserDonation(_ context.Context, account string, campaignID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userDonations[account] = append(s.userDonations[account], campaignID)
	return nil
}

// UserCampaigns returns the account's created campaign ids.
func (s *Store) UserCampaigns(_ context.Context, account string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.userCampaigns[account]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}

// UserDonations returns the campaign ids the account publicly donated to.
func (s *Store) UserDonations(_ context.Context, account string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.userDonations[account]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}
