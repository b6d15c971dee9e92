package domain

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrCampaignInactive  = errors.New("campaign inactive")
	ErrCampaignEnded     = errors.New("campaign ended")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrGoalNotReached    = errors.New("goal not reached")
	ErrAlreadyWithdrawn  = errors.New("funds already withdrawn")
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	ErrNothingToRefund   = errors.New("nothing to refund")
	ErrRefundUnavailable = errors.New("refund unavailable")
	ErrPayoutFailed      = errors.New("payout failed")
)
