package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/nodepay-cli/internal/adapters/render/status"
	"github.com/bnema/nodepay-cli/internal/application"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(app *app) *cobra.Command {
	var claim bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep every account connected until interrupted",
		Long:  "Resolve each account, then send heartbeats for all of them concurrently until every account stops or the process is interrupted. A report is printed at the end.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAccounts(cmd, app, claim || app.settings.Claim.Enabled, asJSON)
		},
	}

	cmd.Flags().BoolVar(&claim, "claim", false, "Also submit the daily claim on schedule")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func runAccounts(cmd *cobra.Command, app *app, claim bool, asJSON bool) error {
	ctx := cmd.Context()

	credentials, err := app.loadCredentials(ctx)
	if err != nil {
		app.logger.Error("no accounts to run", zap.Error(err))
		return err
	}

	startedAt := app.now()
	orchestrator := application.NewOrchestrator(app.newGateway, app.clock, app.logger, app.orchestrator)

	claimCtx, stopClaims := context.WithCancel(ctx)
	defer stopClaims()

	var claimErr error
	var wg conc.WaitGroup
	if claim {
		scheduler := app.newClaimScheduler(app.newClaimService())
		wg.Go(func() {
			if claimErr = scheduler.Run(claimCtx, credentials); claimErr != nil {
				app.logger.Error("claim schedule stopped", zap.Error(claimErr))
			}
		})
	}

	report, err := orchestrator.Run(ctx, credentials)
	stopClaims()
	wg.Wait()
	if err != nil {
		return err
	}

	if ctx.Err() != nil {
		app.logger.Info("shutdown requested, all accounts stopped")
	}

	if err := writeReport(cmd, app, report, statusadapter.RenderOptions{StartedAt: startedAt, Now: app.now()}, asJSON); err != nil {
		return err
	}
	if claimErr != nil {
		return fmt.Errorf("run claim schedule: %w", claimErr)
	}

	return nil
}

func writeReport(cmd *cobra.Command, app *app, report application.RunReport, opts statusadapter.RenderOptions, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, report)
	}

	rendered, err := app.reportRenderer(report, opts)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
