package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/store/memory"
)

type payoutCall struct {
	campaignID int64
	account    string
	amount     int64
}

// fakePayouts records credits and payouts and can be told to fail.
type fakePayouts struct {
	mu      sync.Mutex
	credits map[int64]int64
	payouts []payoutCall
	fail    error
}

func newFakePayouts() *fakePayouts {
	return &fakePayouts{credits: make(map[int64]int64)}
}

func (f *fakePayouts) Credit(campaignID int64, amount int64) {
	f.mu.Lock()
	f.credits[campaignID] += amount
	f.mu.Unlock()
}

func (f *fakePayouts) Payout(_ context.Context, campaignID int64, account string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.payouts = append(f.payouts, payoutCall{campaignID: campaignID, account: account, amount: amount})
	return nil
}

type stubSealer struct{}

func (stubSealer) Seal(int64) ([]byte, error) { return []byte{0x01}, nil }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestEngine(t *testing.T) (*Engine, *memory.Store, *fakePayouts, *testClock) {
	t.Helper()
	store := memory.New()
	payouts := newFakePayouts()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	e := New(store, store, store, payouts, stubSealer{}, zerolog.Nop(), WithClock(clock.Now))
	return e, store, payouts, clock
}

func mustCreate(t *testing.T, e *Engine, creator string, goal int64, days int, anon bool) int64 {
	t.Helper()
	id, err := e.CreateCampaign(context.Background(), creator, CreateCampaignInput{
		Title:            "Clean Water",
		Description:      "Wells for the village",
		Category:         "community",
		Goal:             goal,
		DurationDays:     days,
		AcceptsAnonymous: anon,
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	return id
}

// raised must always equal the sum of non-refunded donation amounts.
func checkRaisedInvariant(t *testing.T, e *Engine, id int64) {
	t.Helper()
	ctx := context.Background()
	c, err := e.GetCampaign(ctx, id)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	records, err := e.ListDonations(ctx, id)
	if err != nil {
		t.Fatalf("ListDonations: %v", err)
	}
	var sum int64
	for _, d := range records {
		if !d.Refunded() {
			sum += d.Amount
		}
	}
	if c.Raised != sum {
		t.Fatalf("raised invariant broken: raised=%d sum=%d", c.Raised, sum)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateCampaignInput
	}{
		{"empty title", CreateCampaignInput{Description: "d", Goal: 100, DurationDays: 10}},
		{"empty description", CreateCampaignInput{Title: "t", Goal: 100, DurationDays: 10}},
		{"zero goal", CreateCampaignInput{Title: "t", Description: "d", DurationDays: 10}},
		{"negative goal", CreateCampaignInput{Title: "t", Description: "d", Goal: -5, DurationDays: 10}},
		{"duration too short", CreateCampaignInput{Title: "t", Description: "d", Goal: 100, DurationDays: 0}},
		{"duration too long", CreateCampaignInput{Title: "t", Description: "d", Goal: 100, DurationDays: 366}},
	}
	for _, tc := range cases {
		if _, err := e.CreateCampaign(ctx, "alice", tc.in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: got %v, want ErrInvalidInput", tc.name, err)
		}
	}

	// A rejected create must not consume an id.
	id := mustCreate(t, e, "alice", 100, 10, true)
	if id != 1 {
		t.Fatalf("first valid campaign got id %d, want 1", id)
	}
}

func TestCreateCampaignIndexesCreator(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	id1 := mustCreate(t, e, "alice", 100, 10, true)
	id2 := mustCreate(t, e, "alice", 200, 20, false)
	mustCreate(t, e, "bob", 50, 5, true)

	ids, err := e.UserCampaigns(ctx, "alice")
	if err != nil {
		t.Fatalf("UserCampaigns: %v", err)
	}
	if len(ids) != 2 || ids[0] != id1 || ids[1] != id2 {
		t.Fatalf("alice campaign index: %v", ids)
	}
}

func TestDonateAccumulatesAndReachesGoal(t *testing.T) {
	e, _, payouts, _ := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 100, 10, true)

	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 60, "US"); err != nil {
		t.Fatalf("donate 60: %v", err)
	}
	c, _ := e.GetCampaign(ctx, id)
	if c.Raised != 60 || c.GoalReached {
		t.Fatalf("after 60: raised=%d goalReached=%v", c.Raised, c.GoalReached)
	}

	if _, err := e.Donate(ctx, id, domain.KnownDonor("carol"), 50, ""); err != nil {
		t.Fatalf("donate 50: %v", err)
	}
	c, _ = e.GetCampaign(ctx, id)
	if c.Raised != 110 || !c.GoalReached {
		t.Fatalf("after 110: raised=%d goalReached=%v", c.Raised, c.GoalReached)
	}

	// Goal reached does not close the campaign; further donations stay legal.
	if _, err := e.Donate(ctx, id, domain.KnownDonor("dave"), 5, ""); err != nil {
		t.Fatalf("donate after goal reached: %v", err)
	}
	c, _ = e.GetCampaign(ctx, id)
	if !c.GoalReached || c.Raised != 115 {
		t.Fatalf("goalReached must stay true: raised=%d goalReached=%v", c.Raised, c.GoalReached)
	}
	if payouts.credits[id] != 115 {
		t.Fatalf("escrow credit mismatch: %d", payouts.credits[id])
	}
	checkRaisedInvariant(t, e, id)

	ids, _ := e.UserDonations(ctx, "bob")
	if len(ids) != 1 || ids[0] != id {
		t.Fatalf("bob donation index: %v", ids)
	}
}

func TestDonateAnonymousIsUnlinkable(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 100, 10, true)

	if _, err := e.Donate(ctx, id, domain.AnonymousDonor(), 40, "DE"); err != nil {
		t.Fatalf("anonymous donate: %v", err)
	}

	records, _ := e.ListDonations(ctx, id)
	if len(records) != 1 {
		t.Fatalf("record count: %d", len(records))
	}
	if account, ok := records[0].Donor.Account(); ok {
		t.Fatalf("anonymous donation persisted identity %q", account)
	}
	if records[0].Region != "" {
		t.Fatalf("anonymous donation persisted region %q", records[0].Region)
	}

	c, _ := e.GetCampaign(ctx, id)
	if c.Raised != 40 {
		t.Fatalf("raised=%d, want 40", c.Raised)
	}

	// No donor index entry exists for anyone.
	for _, account := range []string{"alice", "bob"} {
		ids, _ := e.UserDonations(ctx, account)
		if len(ids) != 0 {
			t.Fatalf("donor index for %s not empty: %v", account, ids)
		}
	}
}

func TestDonateAnonymousRejectedByPolicy(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 100, 10, false)

	if _, err := e.Donate(ctx, id, domain.AnonymousDonor(), 10, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 10, ""); err != nil {
		t.Fatalf("public donation must still work: %v", err)
	}
}

func TestDonatePreconditions(t *testing.T) {
	e, _, _, clock := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.Donate(ctx, 42, domain.KnownDonor("bob"), 10, ""); !errors.Is(err, domain.ErrCampaignNotFound) {
		t.Fatalf("missing campaign: got %v", err)
	}

	id := mustCreate(t, e, "alice", 100, 10, true)
	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 0, ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v", err)
	}
	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), -3, ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("negative amount: got %v", err)
	}

	expired := mustCreate(t, e, "alice", 100, 1, true)
	clock.Advance(25 * time.Hour)
	if _, err := e.Donate(ctx, expired, domain.KnownDonor("bob"), 10, ""); !errors.Is(err, domain.ErrCampaignEnded) {
		t.Fatalf("expired campaign: got %v", err)
	}

	paused := mustCreate(t, e, "alice", 100, 10, true)
	if err := e.Pause(ctx, paused, "alice"); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := e.Donate(ctx, paused, domain.KnownDonor("bob"), 10, ""); !errors.Is(err, domain.ErrCampaignInactive) {
		t.Fatalf("paused campaign: got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	e, _, payouts, _ := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 100, 10, true)

	if _, err := e.Withdraw(ctx, id, "alice"); !errors.Is(err, domain.ErrGoalNotReached) {
		t.Fatalf("before goal: got %v", err)
	}

	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 200, ""); err != nil {
		t.Fatalf("donate: %v", err)
	}

	if _, err := e.Withdraw(ctx, id, "mallory"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-creator: got %v", err)
	}

	paid, err := e.Withdraw(ctx, id, "alice")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if paid != 198 {
		t.Fatalf("paid=%d, want 198 (1%% fee on 200)", paid)
	}

	c, _ := e.GetCampaign(ctx, id)
	if !c.FundsWithdrawn || c.IsActive {
		t.Fatalf("flags after withdraw: withdrawn=%v active=%v", c.FundsWithdrawn, c.IsActive)
	}
	if len(payouts.payouts) != 1 || payouts.payouts[0].account != "alice" || payouts.payouts[0].amount != 198 {
		t.Fatalf("payout calls: %+v", payouts.payouts)
	}

	if _, err := e.Withdraw(ctx, id, "alice"); !errors.Is(err, domain.ErrAlreadyWithdrawn) {
		t.Fatalf("second withdraw: got %v", err)
	}
}

func TestWithdrawPayoutFailureLeavesStateUntouched(t *testing.T) {
	e, _, payouts, _ := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 100, 10, true)
	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 150, ""); err != nil {
		t.Fatalf("donate: %v", err)
	}

	payouts.fail = errors.New("transfer rejected")
	if _, err := e.Withdraw(ctx, id, "alice"); !errors.Is(err, domain.ErrPayoutFailed) {
		t.Fatalf("got %v, want ErrPayoutFailed", err)
	}

	c, _ := e.GetCampaign(ctx, id)
	if c.FundsWithdrawn || !c.IsActive || c.Raised != 150 {
		t.Fatalf("state mutated despite payout failure: %+v", c)
	}

	// The operation is retryable once the collaborator recovers.
	payouts.fail = nil
	if paid, err := e.Withdraw(ctx, id, "alice"); err != nil || paid != 149 {
		t.Fatalf("retry: paid=%d err=%v", paid, err)
	}
}

func TestRefund(t *testing.T) {
	e, _, payouts, clock := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 100, 10, true)

	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 30, ""); err != nil {
		t.Fatalf("donate: %v", err)
	}
	if _, err := e.Donate(ctx, id, domain.AnonymousDonor(), 20, ""); err != nil {
		t.Fatalf("anonymous donate: %v", err)
	}

	// Still open: refunds unavailable.
	if _, err := e.Refund(ctx, id, "bob"); !errors.Is(err, domain.ErrRefundUnavailable) {
		t.Fatalf("refund before deadline: got %v", err)
	}

	clock.Advance(11 * 24 * time.Hour)

	refunded, err := e.Refund(ctx, id, "bob")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded != 30 {
		t.Fatalf("refunded=%d, want 30", refunded)
	}
	c, _ := e.GetCampaign(ctx, id)
	if c.Raised != 20 {
		t.Fatalf("raised after refund=%d, want 20", c.Raised)
	}
	records, _ := e.ListDonations(ctx, id)
	if !records[0].Refunded() || records[0].Amount != 30 {
		t.Fatalf("refunded record: %+v", records[0])
	}
	checkRaisedInvariant(t, e, id)

	if _, err := e.Refund(ctx, id, "bob"); !errors.Is(err, domain.ErrNothingToRefund) {
		t.Fatalf("double refund: got %v", err)
	}
	// The anonymous donation retained no identity, so nobody can claim it.
	if _, err := e.Refund(ctx, id, "alice"); !errors.Is(err, domain.ErrNothingToRefund) {
		t.Fatalf("refund without donations: got %v", err)
	}
	if len(payouts.payouts) != 1 || payouts.payouts[0].amount != 30 {
		t.Fatalf("payout calls: %+v", payouts.payouts)
	}
}

func TestRefundUnavailableWhenGoalReached(t *testing.T) {
	e, _, _, clock := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 50, 10, true)
	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 60, ""); err != nil {
		t.Fatalf("donate: %v", err)
	}
	clock.Advance(11 * 24 * time.Hour)

	if _, err := e.Refund(ctx, id, "bob"); !errors.Is(err, domain.ErrRefundUnavailable) {
		t.Fatalf("refund on successful campaign: got %v", err)
	}
}

func TestRefundPayoutFailureKeepsRecords(t *testing.T) {
	e, _, payouts, clock := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 100, 10, true)
	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 30, ""); err != nil {
		t.Fatalf("donate: %v", err)
	}
	clock.Advance(11 * 24 * time.Hour)

	payouts.fail = errors.New("transfer rejected")
	if _, err := e.Refund(ctx, id, "bob"); !errors.Is(err, domain.ErrPayoutFailed) {
		t.Fatalf("got %v, want ErrPayoutFailed", err)
	}

	c, _ := e.GetCampaign(ctx, id)
	if c.Raised != 30 {
		t.Fatalf("raised mutated: %d", c.Raised)
	}
	records, _ := e.ListDonations(ctx, id)
	if records[0].Refunded() {
		t.Fatal("record marked refunded despite payout failure")
	}

	payouts.fail = nil
	if refunded, err := e.Refund(ctx, id, "bob"); err != nil || refunded != 30 {
		t.Fatalf("retry: refunded=%d err=%v", refunded, err)
	}
}

func TestPause(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 100, 10, true)
	if _, err := e.Donate(ctx, id, domain.KnownDonor("bob"), 10, ""); err != nil {
		t.Fatalf("donate: %v", err)
	}

	if err := e.Pause(ctx, id, "mallory"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-creator pause: got %v", err)
	}
	if err := e.Pause(ctx, id, "alice"); err != nil {
		t.Fatalf("pause: %v", err)
	}

	c, _ := e.GetCampaign(ctx, id)
	if c.IsActive {
		t.Fatal("campaign still active after pause")
	}
	if c.Raised != 10 {
		t.Fatalf("pause touched raised: %d", c.Raised)
	}
	records, _ := e.ListDonations(ctx, id)
	if len(records) != 1 {
		t.Fatalf("pause touched donation records: %d", len(records))
	}
}

func TestListActive(t *testing.T) {
	e, _, _, clock := newTestEngine(t)
	ctx := context.Background()

	a := mustCreate(t, e, "alice", 100, 2, true)
	b := mustCreate(t, e, "bob", 100, 30, true)
	c := mustCreate(t, e, "carol", 100, 30, true)
	if err := e.Pause(ctx, c, "carol"); err != nil {
		t.Fatalf("pause: %v", err)
	}
	clock.Advance(3 * 24 * time.Hour) // campaign a expires

	collect := func() []int64 {
		var ids []int64
		for c, err := range e.ListActive(ctx) {
			if err != nil {
				t.Fatalf("ListActive: %v", err)
			}
			ids = append(ids, c.ID)
		}
		return ids
	}

	ids := collect()
	if len(ids) != 1 || ids[0] != b {
		t.Fatalf("active ids: %v (a=%d expired, c=%d paused)", ids, a, c)
	}
	// The sequence is restartable.
	if again := collect(); len(again) != 1 || again[0] != b {
		t.Fatalf("second pass: %v", again)
	}
}

func TestAnonymityStats(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 1000, 10, true)

	donations := []struct {
		donor  domain.DonorRef
		amount int64
		region string
	}{
		{domain.KnownDonor("bob"), 10, "US"},
		{domain.KnownDonor("carol"), 20, "US"},
		{domain.KnownDonor("dave"), 30, "DE"},
		{domain.AnonymousDonor(), 40, "FR"},
		{domain.AnonymousDonor(), 50, ""},
	}
	for _, d := range donations {
		if _, err := e.Donate(ctx, id, d.donor, d.amount, d.region); err != nil {
			t.Fatalf("donate: %v", err)
		}
	}

	stats, err := e.AnonymityStats(ctx, id)
	if err != nil {
		t.Fatalf("AnonymityStats: %v", err)
	}
	if stats.Total != 5 || stats.Public != 3 || stats.Anonymous != 2 {
		t.Fatalf("stats: %+v", stats)
	}
	if stats.Regions["US"] != 2 || stats.Regions["DE"] != 1 {
		t.Fatalf("regions: %v", stats.Regions)
	}
	// Anonymous donations never contribute a region, even when the request had one.
	if _, ok := stats.Regions["FR"]; ok {
		t.Fatalf("anonymous region leaked: %v", stats.Regions)
	}
}

func TestConcurrentDonationsSameCampaign(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	id := mustCreate(t, e, "alice", 1_000_000, 10, true)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Donate(ctx, id, domain.AnonymousDonor(), 7, ""); err != nil {
				t.Errorf("donate: %v", err)
			}
		}()
	}
	wg.Wait()

	c, _ := e.GetCampaign(ctx, id)
	if c.Raised != workers*7 {
		t.Fatalf("lost updates: raised=%d, want %d", c.Raised, workers*7)
	}
	checkRaisedInvariant(t, e, id)
}

func TestCategoryNormalization(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	id, err := e.CreateCampaign(ctx, "alice", CreateCampaignInput{
		Title:        "t",
		Description:  "d",
		Category:     "MEDICAL aid",
		Goal:         100,
		DurationDays: 10,
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	c, _ := e.GetCampaign(ctx, id)
	if c.Category != "Medical Aid" {
		t.Fatalf("category=%q, want %q", c.Category, "Medical Aid")
	}

	id2, _ := e.CreateCampaign(ctx, "alice", CreateCampaignInput{
		Title: "t", Description: "d", Goal: 100, DurationDays: 10,
	})
	c2, _ := e.GetCampaign(ctx, id2)
	if c2.Category != "General" {
		t.Fatalf("default category=%q", c2.Category)
	}
}
