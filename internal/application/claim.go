package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultMissionID = "1"
	DefaultClaimPace = 2 * time.Second
)

type ClaimConfig struct {
	Endpoint  string
	MissionID string
	Timeout   time.Duration
	// Pace is the minimum gap between two claim requests.
	Pace time.Duration
}

type ClaimSummary struct {
	Claimed int
	Failed  int
}

// ClaimProgress is reported after each account of a claim round.
type ClaimProgress struct {
	Account string
	Claimed bool
	Done    int
	Total   int
}

// ClaimService submits mission-complete requests. Claim failures are logged
// and reported but never returned as errors.
type ClaimService struct {
	newGateway ports.GatewayFactory
	logger     *zap.Logger
	cfg        ClaimConfig
	limiter    *rate.Limiter
	progress   func(ClaimProgress)
}

func NewClaimService(newGateway ports.GatewayFactory, logger *zap.Logger, cfg ClaimConfig) *ClaimService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MissionID == "" {
		cfg.MissionID = DefaultMissionID
	}

	limit := rate.Inf
	if cfg.Pace > 0 {
		limit = rate.Every(cfg.Pace)
	}

	return &ClaimService{
		newGateway: newGateway,
		logger:     logger,
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// WithProgress registers a callback invoked after each claim of a round.
func (s *ClaimService) WithProgress(progress func(ClaimProgress)) *ClaimService {
	s.progress = progress
	return s
}

func (s *ClaimService) Claim(ctx context.Context, credential domain.Credential) bool {
	logger := s.logger.With(
		zap.String("account", credential.DisplayName()),
		zap.String("token", domain.TruncateToken(credential.Token)))

	gateway, err := s.newGateway(credential.Proxy)
	if err != nil {
		logger.Warn("claim skipped", zap.Error(err))
		return false
	}

	resp, err := gateway.Post(ctx, domain.APIRequest{
		Endpoint: s.cfg.Endpoint,
		Payload:  domain.MissionRequest{MissionID: s.cfg.MissionID},
		Token:    credential.Token,
		Timeout:  s.cfg.Timeout,
	})
	if err != nil {
		logger.Warn("claim failed", zap.String("class", FailureReason(err)), zap.Error(err))
		return false
	}

	if !resp.Success {
		logger.Info("reward already claimed or unavailable", zap.Int("status", resp.StatusCode))
		return false
	}

	logger.Info("reward claimed", zap.String("mission", s.cfg.MissionID))
	return true
}

// ClaimAll claims for every account in order, pacing requests. It stops early
// only when ctx ends.
func (s *ClaimService) ClaimAll(ctx context.Context, credentials []domain.Credential) ClaimSummary {
	var summary ClaimSummary
	for i, credential := range credentials {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}

		claimed := s.Claim(ctx, credential)
		if claimed {
			summary.Claimed++
		} else {
			summary.Failed++
		}

		if s.progress != nil {
			s.progress(ClaimProgress{
				Account: credential.DisplayName(),
				Claimed: claimed,
				Done:    i + 1,
				Total:   len(credentials),
			})
		}
	}

	s.logger.Info("claim round finished",
		zap.Int("claimed", summary.Claimed),
		zap.Int("failed", summary.Failed))

	return summary
}

type ClaimSchedule struct {
	// At is the daily wall-clock time as "HH:MM".
	At       string
	Location *time.Location
	OnStart  bool
}

// ClaimScheduler fires a claim round at start-up and then once a day.
type ClaimScheduler struct {
	claims   *ClaimService
	clock    ports.Clock
	logger   *zap.Logger
	schedule ClaimSchedule
}

func NewClaimScheduler(claims *ClaimService, clock ports.Clock, logger *zap.Logger, schedule ClaimSchedule) *ClaimScheduler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule.Location == nil {
		schedule.Location = time.UTC
	}

	return &ClaimScheduler{claims: claims, clock: clock, logger: logger, schedule: schedule}
}

// Run returns nil when ctx ends; it only fails on an invalid schedule.
func (s *ClaimScheduler) Run(ctx context.Context, credentials []domain.Credential) error {
	hour, minute, err := ParseClockTime(s.schedule.At)
	if err != nil {
		return err
	}

	if s.schedule.OnStart {
		s.claims.ClaimAll(ctx, credentials)
	}

	for {
		now := s.clock.Now()
		next := NextDailyRun(now, hour, minute, s.schedule.Location)
		s.logger.Info("next claim scheduled", zap.Time("at", next))

		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(next.Sub(now)):
		}

		if ctx.Err() != nil {
			return nil
		}
		s.claims.ClaimAll(ctx, credentials)
	}
}

// ParseClockTime parses "HH:MM" in 24-hour form.
func ParseClockTime(value string) (int, int, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid claim time %q: want HH:MM", value)
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid claim hour in %q", value)
	}

	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid claim minute in %q", value)
	}

	return hour, minute, nil
}

// NextDailyRun returns the first hour:minute in loc strictly after now.
func NextDailyRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
