package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newClaimCmd(app *app) *cobra.Command {
	var daily bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Submit the daily reward claim for every account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			credentials, err := app.loadCredentials(ctx)
			if err != nil {
				app.logger.Error("no accounts to claim for", zap.Error(err))
				return err
			}

			claims := app.newClaimService()
			if daily {
				return app.newClaimScheduler(claims).Run(ctx, credentials)
			}

			if asJSON {
				return writeJSON(cmd, claims.ClaimAll(ctx, credentials))
			}

			summary, err := runClaimRound(ctx, cmd.ErrOrStderr(), claims, credentials)
			if err != nil {
				return err
			}

			rendered, err := app.claimsRenderer(summary)
			if err != nil {
				return fmt.Errorf("render claims: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&daily, "daily", false, "Keep running and claim once a day at claim.at")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
