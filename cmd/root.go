package cmd

import (
	"context"

	"github.com/bnema/nodepay-cli/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const noProxyFlag = "no-proxy"

func Execute() error {
	return ExecuteContext(context.Background())
}

func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	app := newApp(config.New())

	rootCmd := &cobra.Command{
		Use:           "np",
		Short:         "Nodepay CLI (np): keep accounts connected and claim rewards",
		Long:          "np (Nodepay CLI) resolves every stored token, keeps each account connected with periodic heartbeats through its own proxy, and submits the daily reward claim.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./config.toml or $HOME/.config/np/config.toml)")
	flags.String("tokens", "", "Token file, one token per line")
	flags.String("proxies", "", "Proxy file, one proxy per line")
	flags.String("accounts", "", "Accounts file (default $HOME/.config/np/accounts.toml)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: console or json")
	flags.Bool(noProxyFlag, false, "Connect every account directly, ignoring proxies")

	bindFlags(app.v, flags, map[string]string{
		"config":     config.KeyConfigFile,
		"tokens":     config.KeyTokensPath,
		"proxies":    config.KeyProxiesPath,
		"accounts":   config.KeyAccountsPath,
		"log-level":  config.KeyLogLevel,
		"log-format": config.KeyLogFormat,
	})

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newClaimCmd(app),
		newRunCmd(app),
	)

	return rootCmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}
