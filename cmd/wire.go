package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/nodepay-cli/internal/adapters/credentials/chain"
	filesource "github.com/bnema/nodepay-cli/internal/adapters/credentials/file"
	tomlsource "github.com/bnema/nodepay-cli/internal/adapters/credentials/toml"
	httpgateway "github.com/bnema/nodepay-cli/internal/adapters/gateway/http"
	statusadapter "github.com/bnema/nodepay-cli/internal/adapters/render/status"
	"github.com/bnema/nodepay-cli/internal/application"
	"github.com/bnema/nodepay-cli/internal/config"
	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/bnema/nodepay-cli/internal/logging"
	"github.com/bnema/nodepay-cli/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	v        *viper.Viper
	settings config.Settings
	logger   *zap.Logger

	credentials ports.CredentialSource
	accounts    *tomlsource.Source
	newGateway  ports.GatewayFactory
	clock       ports.Clock

	orchestrator  application.OrchestratorConfig
	claim         application.ClaimConfig
	claimSchedule application.ClaimSchedule

	reportRenderer   func(application.RunReport, statusadapter.RenderOptions) (string, error)
	accountsRenderer func([]domain.Credential) (string, error)
	claimsRenderer   func(application.ClaimSummary) (string, error)
	now              func() time.Time
}

func newApp(v *viper.Viper) *app {
	return &app{
		v:                v,
		logger:           zap.NewNop(),
		clock:            ports.SystemClock{},
		reportRenderer:   statusadapter.Render,
		accountsRenderer: statusadapter.RenderAccounts,
		claimsRenderer:   statusadapter.RenderClaims,
		now:              time.Now,
	}
}

// wire runs once flags are parsed, so flag values take precedence over the
// config file and environment.
func (a *app) wire(cmd *cobra.Command) error {
	settings, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if noProxy, _ := cmd.Flags().GetBool(noProxyFlag); noProxy {
		settings.ProxiesEnabled = false
	}
	a.settings = settings

	logger, err := logging.New(logging.Config{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
	}, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}
	a.logger = logger

	accounts, err := tomlsource.NewSource(a.v)
	if err != nil {
		return fmt.Errorf("wire accounts file: %w", err)
	}
	a.accounts = accounts

	proxiesPath := ""
	if settings.ProxiesEnabled {
		proxiesPath = settings.ProxiesPath
	}
	files := filesource.NewSource(settings.TokensPath, proxiesPath, logger)

	credentials, err := chain.NewSourceChecked(accounts, files)
	if err != nil {
		return fmt.Errorf("wire credential sources: %w", err)
	}
	a.credentials = credentials

	a.newGateway = httpgateway.NewFactory(httpgateway.Options{
		Headers:            httpgateway.MergeHeaders(settings.API.Headers),
		Timeout:            settings.API.Timeout,
		RetryAfterFallback: settings.API.RetryAfterFallback,
		Logger:             logger,
	})

	a.orchestrator = application.OrchestratorConfig{
		Resolver: application.ResolverConfig{
			SessionEndpoint: settings.API.SessionEndpoint,
			Timeout:         settings.API.Timeout,
		},
		Heartbeat: application.HeartbeatConfig{
			PingEndpoints:   settings.API.PingEndpoints,
			Interval:        settings.Heartbeat.Interval,
			PingTimeout:     settings.Heartbeat.PingTimeout,
			ProtocolVersion: settings.Heartbeat.ProtocolVersion,
			SmoothZeroScore: settings.Heartbeat.SmoothZeroScore,
			Policy:          application.NewRetryPolicy(settings.Heartbeat.RetryCeiling),
		},
	}

	a.claim = application.ClaimConfig{
		Endpoint:  settings.API.MissionEndpoint,
		MissionID: settings.Claim.MissionID,
		Timeout:   settings.API.Timeout,
		Pace:      settings.Claim.Pace,
	}

	location, err := settings.Claim.Location()
	if err != nil {
		return err
	}
	a.claimSchedule = application.ClaimSchedule{
		At:       settings.Claim.At,
		Location: location,
		OnStart:  settings.Claim.OnStart,
	}

	return nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// loadCredentials returns the accounts to run. With proxies disabled every
// account connects directly, whatever its source says.
func (a *app) loadCredentials(ctx context.Context) ([]domain.Credential, error) {
	credentials, err := a.credentials.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	if !a.settings.ProxiesEnabled {
		for i := range credentials {
			credentials[i].Proxy = ""
		}
	}

	return credentials, nil
}

func (a *app) newClaimService() *application.ClaimService {
	return application.NewClaimService(a.newGateway, a.logger, a.claim)
}

func (a *app) newClaimScheduler(claims *application.ClaimService) *application.ClaimScheduler {
	return application.NewClaimScheduler(claims, a.clock, a.logger, a.claimSchedule)
}
