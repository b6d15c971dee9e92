package domain

import "time"

// Campaign is a funding request with a goal, a deadline, and a running total
// of donated funds.
type Campaign struct {
	ID               int64
	Creator          string
	Title            string
	Description      string
	Category         string
	Goal             int64
	Raised           int64
	Deadline         time.Time
	IsActive         bool
	GoalReached      bool
	FundsWithdrawn   bool
	AcceptsAnonymous bool
	CreatedAt        time.Time
}

// Open reports whether the campaign still accepts donations at the given time.
func (c Campaign) Open(now time.Time) bool {
	return c.IsActive && now.Before(c.Deadline)
}

// Expired reports whether the campaign deadline has passed.
func (c Campaign) Expired(now time.Time) bool {
	return !now.Before(c.Deadline)
}
