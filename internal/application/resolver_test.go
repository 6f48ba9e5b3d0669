package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/ports/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testResolverConfig() ResolverConfig {
	return ResolverConfig{SessionEndpoint: testSessionURL, Timeout: 30 * time.Second}
}

func TestSessionResolverBuildsSessionFromResponse(t *testing.T) {
	t.Parallel()

	gateway := mocks.NewMockGateway(t)
	credential := domain.Credential{Token: "tokenAAAA1111", Proxy: "http://10.0.0.1:8080"}

	gateway.EXPECT().Call(mock.Anything, mock.MatchedBy(func(req domain.APIRequest) bool {
		payload, ok := req.Payload.(map[string]any)
		return isSessionCall(req) && ok && len(payload) == 0 && req.Token == credential.Token && req.Timeout == 30*time.Second
	})).Return(okResponse(`{"uid":"u-42","name":"alice","ip_score":72.5,"balance":{"current_amount":10.5,"total_collected":99}}`), nil).Once()

	session, err := NewSessionResolver(gateway, zap.NewNop(), testResolverConfig()).Resolve(context.Background(), credential)
	require.NoError(t, err)

	assert.Equal(t, "u-42", session.AccountID)
	assert.Equal(t, "alice", session.Name)
	assert.Equal(t, 72.5, session.ResolvedScore)
	assert.Zero(t, session.LastKnownScore)
	assert.Equal(t, domain.Balance{CurrentAmount: 10.5, TotalCollected: 99}, session.Balance)
	assert.Equal(t, domain.StateNoneConnection, session.State)
	assert.Equal(t, "http://10.0.0.1:8080", session.Proxy)
	assert.Equal(t, "toke--1111", session.Label)

	_, err = uuid.Parse(session.BrowserID)
	assert.NoError(t, err)
}

func TestSessionResolverLogsTruncatedToken(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	gateway := mocks.NewMockGateway(t)
	gateway.EXPECT().Call(mock.Anything, mock.Anything).Return(okResponse(`{"uid":"u-1"}`), nil).Once()

	_, err := NewSessionResolver(gateway, zap.New(core), testResolverConfig()).
		Resolve(context.Background(), domain.Credential{Label: "main", Token: "tokenAAAA1111"})
	require.NoError(t, err)

	resolved := logs.FilterMessage("session resolved").All()
	require.Len(t, resolved, 1)
	assert.Equal(t, "main", resolved[0].ContextMap()["account"])
	assert.Equal(t, "toke--1111", resolved[0].ContextMap()["token"])
}

func TestSessionResolverMintsDistinctBrowserIDs(t *testing.T) {
	t.Parallel()

	gateway := mocks.NewMockGateway(t)
	gateway.EXPECT().Call(mock.Anything, mock.Anything).Return(okResponse(`{"uid":"u-1"}`), nil).Times(2)

	resolver := NewSessionResolver(gateway, zap.NewNop(), testResolverConfig())
	first, err := resolver.Resolve(context.Background(), domain.Credential{Token: "first-token-0001"})
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), domain.Credential{Token: "second-token-0002"})
	require.NoError(t, err)

	assert.NotEqual(t, first.BrowserID, second.BrowserID)
}

func TestSessionResolverFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   domain.APIResponse
		err    error
		assert func(t *testing.T, err error)
	}{
		{
			name: "auth or block",
			err:  &domain.AuthOrBlockError{Endpoint: testSessionURL, StatusCode: 403},
			assert: func(t *testing.T, err error) {
				assert.True(t, domain.IsAuthOrBlock(err))
				assert.Equal(t, ReasonAuthOrBlock, FailureReason(err))
			},
		},
		{
			name: "nonzero code",
			resp: codeResponse(1, `{"uid":"u-1"}`),
			assert: func(t *testing.T, err error) {
				var rejected *domain.RejectedError
				require.ErrorAs(t, err, &rejected)
				assert.Equal(t, 1, rejected.Code)
			},
		},
		{
			name: "missing code",
			resp: domain.APIResponse{StatusCode: 200},
			assert: func(t *testing.T, err error) {
				var rejected *domain.RejectedError
				require.ErrorAs(t, err, &rejected)
				assert.Equal(t, -1, rejected.Code)
			},
		},
		{
			name: "missing data",
			resp: codeResponse(0, ""),
			assert: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errMissingUID)
			},
		},
		{
			name: "empty uid",
			resp: okResponse(`{"uid":"  ","name":"bob"}`),
			assert: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errMissingUID)
			},
		},
		{
			name: "undecodable data",
			resp: okResponse(`["not","an","object"]`),
			assert: func(t *testing.T, err error) {
				var invalid *domain.InvalidResponseError
				assert.ErrorAs(t, err, &invalid)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gateway := mocks.NewMockGateway(t)
			gateway.EXPECT().Call(mock.Anything, mock.Anything).Return(tc.resp, tc.err).Once()

			session, err := NewSessionResolver(gateway, zap.NewNop(), testResolverConfig()).Resolve(context.Background(), domain.Credential{Token: "token-0000-1111"})
			require.Error(t, err)
			assert.Nil(t, session)

			var resolveErr *domain.ResolveError
			require.True(t, errors.As(err, &resolveErr))
			tc.assert(t, err)
		})
	}
}
