package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/nodepay-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(
		newAccountListCmd(app),
		newAccountAddCmd(app),
		newAccountRemoveCmd(app),
	)

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the accounts a run would use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := app.loadCredentials(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, accountListing(credentials))
			}

			rendered, err := app.accountsRenderer(credentials)
			if err != nil {
				return fmt.Errorf("render accounts: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

type accountEntry struct {
	Label string `json:"label"`
	Token string `json:"token"`
	Proxy string `json:"proxy,omitempty"`
}

func accountListing(credentials []domain.Credential) []accountEntry {
	entries := make([]accountEntry, 0, len(credentials))
	for _, credential := range credentials {
		entries = append(entries, accountEntry{
			Label: credential.Label,
			Token: domain.TruncateToken(credential.Token),
			Proxy: domain.ProxyHost(credential.Proxy),
		})
	}
	return entries
}

func newAccountAddCmd(app *app) *cobra.Command {
	var token string
	var proxy string
	var label string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store an account in the accounts file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			credential := domain.Credential{
				Label: strings.TrimSpace(label),
				Token: strings.TrimSpace(token),
				Proxy: strings.TrimSpace(proxy),
			}
			if err := app.accounts.Save(cmd.Context(), credential); err != nil {
				return fmt.Errorf("save account: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved %s to %s\n", credential.DisplayName(), app.accounts.Path())
			return err
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token")
	cmd.Flags().StringVar(&proxy, "proxy", "", "Proxy for this account (host:port, user:pass@host:port or scheme://...)")
	cmd.Flags().StringVar(&label, "label", "", "Display label")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newAccountRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <label|token>",
		Short: "Remove an account from the accounts file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := app.accounts.Remove(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("remove account: %w", err)
			}
			if !removed {
				return fmt.Errorf("account %q not found in %s", args[0], app.accounts.Path())
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return err
		},
	}
}
