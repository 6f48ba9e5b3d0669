package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errMissingUID = errors.New("session response missing uid")

type ResolverConfig struct {
	SessionEndpoint string
	Timeout         time.Duration
}

// SessionResolver exchanges a token for the account identity required by
// heartbeats.
type SessionResolver struct {
	gateway      ports.Gateway
	logger       *zap.Logger
	cfg          ResolverConfig
	newBrowserID func() string
}

func NewSessionResolver(gateway ports.Gateway, logger *zap.Logger, cfg ResolverConfig) *SessionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionResolver{
		gateway:      gateway,
		logger:       logger,
		cfg:          cfg,
		newBrowserID: uuid.NewString,
	}
}

func (r *SessionResolver) Resolve(ctx context.Context, credential domain.Credential) (*domain.AccountSession, error) {
	logger := r.logger.With(
		zap.String("account", credential.DisplayName()),
		zap.String("token", domain.TruncateToken(credential.Token)))

	resp, err := r.gateway.Call(ctx, domain.APIRequest{
		Endpoint: r.cfg.SessionEndpoint,
		Payload:  map[string]any{},
		Token:    credential.Token,
		Timeout:  r.cfg.Timeout,
	})
	if err != nil {
		return nil, &domain.ResolveError{Err: fmt.Errorf("call session endpoint: %w", err)}
	}

	if resp.Code == nil || *resp.Code != 0 {
		code := -1
		if resp.Code != nil {
			code = *resp.Code
		}
		return nil, &domain.ResolveError{Err: &domain.RejectedError{Endpoint: r.cfg.SessionEndpoint, Code: code, Message: resp.Message}}
	}

	var payload domain.SessionPayload
	if !resp.HasData() {
		return nil, &domain.ResolveError{Err: errMissingUID}
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, &domain.ResolveError{Err: &domain.InvalidResponseError{Endpoint: r.cfg.SessionEndpoint, Reason: fmt.Sprintf("decode session data: %v", err)}}
	}
	if strings.TrimSpace(payload.UID) == "" {
		return nil, &domain.ResolveError{Err: errMissingUID}
	}

	session := domain.NewAccountSession(credential, payload.UID, r.newBrowserID())
	session.Name = payload.Name
	session.ResolvedScore = payload.IPScore
	session.Balance = domain.Balance{
		CurrentAmount:  payload.Balance.CurrentAmount,
		TotalCollected: payload.Balance.TotalCollected,
	}

	logger.Info("session resolved",
		zap.String("uid", session.AccountID),
		zap.String("name", session.Name),
		zap.String("state", string(session.State)),
		zap.Float64("score", session.ResolvedScore),
		zap.Float64("balance", session.Balance.CurrentAmount),
		zap.String("proxy", domain.ProxyHost(session.Proxy)))

	return session, nil
}
