package application

import (
	"context"
	"fmt"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

type OrchestratorConfig struct {
	Resolver  ResolverConfig
	Heartbeat HeartbeatConfig
}

// Orchestrator runs one resolve-then-heartbeat task per account. A failure,
// abort or panic in one task never reaches the others.
type Orchestrator struct {
	newGateway ports.GatewayFactory
	clock      ports.Clock
	logger     *zap.Logger
	cfg        OrchestratorConfig
	observer   func(TickReport)
}

func NewOrchestrator(newGateway ports.GatewayFactory, clock ports.Clock, logger *zap.Logger, cfg OrchestratorConfig) *Orchestrator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		newGateway: newGateway,
		clock:      clock,
		logger:     logger,
		cfg:        cfg,
	}
}

// WithObserver forwards every tick of every account to observer, which must
// be safe for concurrent use.
func (o *Orchestrator) WithObserver(observer func(TickReport)) *Orchestrator {
	o.observer = observer
	return o
}

// Run blocks until every account task has ended, either on its own or
// because ctx was cancelled.
func (o *Orchestrator) Run(ctx context.Context, credentials []domain.Credential) (RunReport, error) {
	if len(credentials) == 0 {
		return RunReport{}, domain.ErrNoCredentials
	}

	o.logger.Info("starting accounts", zap.Int("accounts", len(credentials)))

	reports := make([]AccountReport, len(credentials))
	var wg conc.WaitGroup
	for i, credential := range credentials {
		wg.Go(func() {
			reports[i] = o.runIsolated(ctx, credential)
		})
	}
	wg.Wait()

	report := NewRunReport(reports)
	o.logger.Info("all accounts finished",
		zap.Int("accounts", report.Total),
		zap.Int("resolved", report.Resolved),
		zap.Int("resolve_failed", report.ResolveFailed),
		zap.Int("aborted", report.Aborted),
		zap.Int("stopped", report.Stopped),
		zap.Int("panicked", report.Panicked))

	return report, nil
}

func (o *Orchestrator) runIsolated(ctx context.Context, credential domain.Credential) AccountReport {
	report := AccountReport{
		Label: credential.DisplayName(),
		Proxy: domain.ProxyHost(credential.Proxy),
		State: domain.StateNoneConnection,
	}

	var catcher panics.Catcher
	catcher.Try(func() {
		o.runAccount(ctx, credential, &report)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		report.Outcome = OutcomePanicked
		report.Reason = fmt.Sprint(recovered.Value)
		o.logger.Error("account task panicked",
			zap.String("account", report.Label),
			zap.String("token", domain.TruncateToken(credential.Token)),
			zap.Any("panic", recovered.Value))
	}

	return report
}

func (o *Orchestrator) runAccount(ctx context.Context, credential domain.Credential, report *AccountReport) {
	logger := o.logger.With(
		zap.String("account", report.Label),
		zap.String("token", domain.TruncateToken(credential.Token)))

	gateway, err := o.newGateway(credential.Proxy)
	if err != nil {
		report.Outcome = OutcomeResolveFailed
		report.Reason = fmt.Sprintf("build gateway: %v", err)
		logger.Error("account skipped", zap.Error(err))
		return
	}

	session, err := NewSessionResolver(gateway, o.logger, o.cfg.Resolver).Resolve(ctx, credential)
	if err != nil {
		if ctx.Err() != nil {
			report.Outcome = OutcomeStopped
			report.Reason = ReasonCancelled
			return
		}
		report.Outcome = OutcomeResolveFailed
		report.Reason = FailureReason(err)
		logger.Error("session not resolved", zap.String("class", report.Reason), zap.Error(err))
		return
	}

	report.Resolved = true
	report.AccountID = session.AccountID
	report.Name = session.Name

	engine := NewHeartbeatEngine(gateway, o.clock, o.logger, o.cfg.Heartbeat)
	if o.observer != nil {
		engine.WithObserver(o.observer)
	}
	result := engine.Run(ctx, session)

	report.State = session.State
	report.Score = session.LastKnownScore
	report.Failures = session.ConsecutiveFailures
	report.Ticks = result.Ticks
	report.Reason = result.Reason
	if result.Stop == StopAborted {
		report.Outcome = OutcomeAborted
	} else {
		report.Outcome = OutcomeStopped
	}
}
