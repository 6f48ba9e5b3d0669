package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultPingInterval    = 60 * time.Second
	DefaultPingTimeout     = 60 * time.Second
	DefaultProtocolVersion = "2.2.7"
)

type HeartbeatConfig struct {
	PingEndpoints   []string
	Interval        time.Duration
	PingTimeout     time.Duration
	ProtocolVersion string
	SmoothZeroScore bool
	Policy          RetryPolicy
}

type StopReason string

const (
	StopAborted   StopReason = "aborted"
	StopCancelled StopReason = "cancelled"
)

type HeartbeatResult struct {
	Stop   StopReason
	Reason string
	Err    error
	Ticks  int
}

// TickReport is the status emitted after every heartbeat attempt.
type TickReport struct {
	Label    string
	Endpoint string
	State    domain.ConnectionState
	Score    float64
	Failures int
	Err      error
	Decision RetryDecision
}

// HeartbeatEngine runs the ping loop of one account session.
type HeartbeatEngine struct {
	gateway  ports.Gateway
	clock    ports.Clock
	logger   *zap.Logger
	cfg      HeartbeatConfig
	observer func(TickReport)
}

func NewHeartbeatEngine(gateway ports.Gateway, clock ports.Clock, logger *zap.Logger, cfg HeartbeatConfig) *HeartbeatEngine {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPingInterval
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = DefaultPingTimeout
	}
	if cfg.ProtocolVersion == "" {
		cfg.ProtocolVersion = DefaultProtocolVersion
	}
	if cfg.Policy.Ceiling <= 0 {
		cfg.Policy = NewRetryPolicy(cfg.Policy.Ceiling)
	}

	return &HeartbeatEngine{
		gateway: gateway,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
	}
}

// WithObserver registers a callback invoked after each tick.
func (e *HeartbeatEngine) WithObserver(observer func(TickReport)) *HeartbeatEngine {
	e.observer = observer
	return e
}

// Run pings until the session is aborted or ctx is cancelled. Ticks start
// one interval apart regardless of how long each call takes. The loop never
// restarts itself.
func (e *HeartbeatEngine) Run(ctx context.Context, session *domain.AccountSession) HeartbeatResult {
	logger := e.logger.With(
		zap.String("account", session.Label),
		zap.String("token", domain.TruncateToken(session.Token)))

	ring, err := domain.NewEndpointRing(e.cfg.PingEndpoints)
	if err != nil {
		logger.Error("heartbeat aborted", zap.Error(err))
		return HeartbeatResult{Stop: StopAborted, Reason: err.Error(), Err: err}
	}

	var result HeartbeatResult
	for {
		if ctx.Err() != nil {
			return e.cancelled(logger, result)
		}

		started := e.clock.Now()
		endpoint := ring.Next()
		result.Ticks++

		score, err := e.ping(ctx, session, endpoint, started)
		if err != nil && ctx.Err() != nil {
			return e.cancelled(logger, result)
		}

		var backoff time.Duration
		if err == nil {
			reported := session.MarkConnected(score, e.cfg.SmoothZeroScore)
			logger.Info("ping ok",
				zap.String("state", string(session.State)),
				zap.Float64("score", reported),
				zap.String("endpoint", endpoint))
			e.emit(TickReport{Label: session.Label, Endpoint: endpoint, State: session.State, Score: reported})
		} else {
			failures := session.MarkDisconnected()
			decision := e.cfg.Policy.Decide(err, failures)
			result.Err = err

			logger.Warn("ping failed",
				zap.String("state", string(session.State)),
				zap.Int("failures", failures),
				zap.String("class", FailureReason(err)),
				zap.String("action", decision.Action.String()),
				zap.String("endpoint", endpoint),
				zap.Error(err))
			e.emit(TickReport{
				Label:    session.Label,
				Endpoint: endpoint,
				State:    session.State,
				Score:    session.LastKnownScore,
				Failures: failures,
				Err:      err,
				Decision: decision,
			})

			switch decision.Action {
			case ActionAbort:
				if decision.Reason == ReasonAuthOrBlock {
					session.Logout()
					logger.Warn("session invalidated", zap.String("state", string(session.State)))
				}
				logger.Error("heartbeat aborted",
					zap.String("reason", decision.Reason),
					zap.Int("failures", failures),
					zap.Int("ticks", result.Ticks))
				result.Stop = StopAborted
				result.Reason = decision.Reason
				return result
			case ActionBackoff:
				logger.Warn("backing off", zap.Duration("retry_after", decision.Wait))
				backoff = decision.Wait
			}
		}

		// A rate-limit backoff is measured from now, the interval from the
		// start of the tick.
		delay := max(backoff, started.Add(e.cfg.Interval).Sub(e.clock.Now()))
		if !e.sleep(ctx, delay) {
			return e.cancelled(logger, result)
		}
	}
}

func (e *HeartbeatEngine) ping(ctx context.Context, session *domain.AccountSession, endpoint string, started time.Time) (float64, error) {
	resp, err := e.gateway.Call(ctx, domain.APIRequest{
		Endpoint: endpoint,
		Payload: domain.PingRequest{
			ID:        session.AccountID,
			BrowserID: session.BrowserID,
			Timestamp: started.Unix(),
			Version:   e.cfg.ProtocolVersion,
		},
		Token:   session.Token,
		Timeout: e.cfg.PingTimeout,
	})
	if err != nil {
		return 0, err
	}

	if !resp.Succeeded() {
		code := -1
		if resp.Code != nil {
			code = *resp.Code
		}
		return 0, &domain.RejectedError{Endpoint: endpoint, Code: code, Message: resp.Message}
	}

	var payload domain.PingPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return 0, &domain.InvalidResponseError{Endpoint: endpoint, Reason: fmt.Sprintf("decode ping data: %v", err)}
	}

	return payload.IPScore, nil
}

// sleep waits for d and reports false when ctx ended first.
func (e *HeartbeatEngine) sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if d <= 0 {
		return true
	}

	select {
	case <-ctx.Done():
		return false
	case <-e.clock.After(d):
		return ctx.Err() == nil
	}
}

func (e *HeartbeatEngine) cancelled(logger *zap.Logger, result HeartbeatResult) HeartbeatResult {
	logger.Info("heartbeat stopped", zap.Int("ticks", result.Ticks))
	result.Stop = StopCancelled
	result.Reason = ReasonCancelled
	return result
}

func (e *HeartbeatEngine) emit(report TickReport) {
	if e.observer != nil {
		e.observer(report)
	}
}
