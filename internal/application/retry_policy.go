package application

import (
	"errors"
	"time"

	"github.com/bnema/nodepay-cli/internal/domain"
)

const DefaultRetryCeiling = 3

type RetryAction int

const (
	ActionContinue RetryAction = iota
	ActionBackoff
	ActionAbort
)

func (a RetryAction) String() string {
	switch a {
	case ActionContinue:
		return "continue"
	case ActionBackoff:
		return "backoff"
	case ActionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

const (
	ReasonAuthOrBlock     = "auth_or_block"
	ReasonRateLimited     = "rate_limited"
	ReasonInvalidResponse = "invalid_response"
	ReasonRejected        = "rejected"
	ReasonTransient       = "transient"
	ReasonRetryCeiling    = "retry_ceiling"
	ReasonCancelled       = "cancelled"
)

type RetryDecision struct {
	Action RetryAction
	Wait   time.Duration
	Reason string
}

// RetryPolicy turns a failed call into the next step of a heartbeat loop.
type RetryPolicy struct {
	Ceiling int
}

func NewRetryPolicy(ceiling int) RetryPolicy {
	if ceiling <= 0 {
		ceiling = DefaultRetryCeiling
	}

	return RetryPolicy{Ceiling: ceiling}
}

// Decide classifies err given the failure count that already includes it.
// Auth or block failures abort at once, rate limits back off and never abort
// by themselves, anything else aborts once the ceiling is reached.
func (p RetryPolicy) Decide(err error, failures int) RetryDecision {
	var rateErr *domain.RateLimitError
	switch {
	case domain.IsAuthOrBlock(err):
		return RetryDecision{Action: ActionAbort, Reason: ReasonAuthOrBlock}
	case errors.As(err, &rateErr):
		return RetryDecision{Action: ActionBackoff, Wait: rateErr.RetryAfter, Reason: ReasonRateLimited}
	}

	ceiling := p.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultRetryCeiling
	}
	if failures >= ceiling {
		return RetryDecision{Action: ActionAbort, Reason: ReasonRetryCeiling}
	}

	return RetryDecision{Action: ActionContinue, Reason: FailureReason(err)}
}

// FailureReason names the failure class of err for logs and reports.
func FailureReason(err error) string {
	var (
		invalidErr  *domain.InvalidResponseError
		rejectedErr *domain.RejectedError
		rateErr     *domain.RateLimitError
	)

	switch {
	case err == nil:
		return ""
	case domain.IsAuthOrBlock(err):
		return ReasonAuthOrBlock
	case errors.As(err, &rateErr):
		return ReasonRateLimited
	case errors.As(err, &invalidErr):
		return ReasonInvalidResponse
	case errors.As(err, &rejectedErr):
		return ReasonRejected
	default:
		return ReasonTransient
	}
}
