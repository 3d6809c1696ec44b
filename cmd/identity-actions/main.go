package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/relayops/identity-actions/pkg/action"
	"github.com/relayops/identity-actions/pkg/app"
	"github.com/relayops/identity-actions/pkg/config"
	"github.com/relayops/identity-actions/pkg/fault"
	"github.com/relayops/identity-actions/pkg/version"
)

const shutdownTimeout = 10 * time.Second

var (
	flagConfigPath string

	flagUserName        string
	flagIdentityStoreID string
	flagGroupID         string
	flagRegion          string
)

var rootCmd = &cobra.Command{
	Use:           "identity-actions [flags]",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("identity-actions %s\n", version.GetInfo().Version)
	},
}

var cmdRun = &cobra.Command{
	Use:   "run [args]",
	Short: "Start the action runner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return start(flagConfigPath)
	},
}

var cmdInvoke = &cobra.Command{
	Use:   "invoke [flags]",
	Short: "Remove a user from a group once and print the result",
	RunE:  runInvoke,
}

// nolint: gochecknoinits
func init() {
	cmdRun.Flags().StringVarP(&flagConfigPath, "config", "c", "", "config path")

	cmdInvoke.Flags().StringVarP(&flagConfigPath, "config", "c", "", "config path")
	cmdInvoke.Flags().StringVar(&flagUserName, "user-name", "", "user name to remove")
	cmdInvoke.Flags().StringVar(&flagIdentityStoreID, "identity-store-id", "", "identity store id")
	cmdInvoke.Flags().StringVar(&flagGroupID, "group-id", "", "group id")
	cmdInvoke.Flags().StringVar(&flagRegion, "region", "", "region (falls back to action.default_region)")

	rootCmd.AddCommand(cmdRun)
	rootCmd.AddCommand(cmdInvoke)
}

func main() {
	rootCmd.AddCommand(
		versionCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err.Error())
	}
}

func start(cfgPath string) error {
	srv, err := app.NewServer(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func runInvoke(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewConfig(flagConfigPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stderr).
		Level(cfg.Logging.LogLevelParsed).
		With().Timestamp().Logger()

	region := flagRegion
	if region == "" {
		region = cfg.Action.DefaultRegion
	}

	params := action.Params{
		UserName:        flagUserName,
		IdentityStoreID: flagIdentityStoreID,
		GroupID:         flagGroupID,
		Region:          region,
	}

	act := action.New(&logger)

	result, err := act.Invoke(cmd.Context(), params, cfg.Secrets.ActionSecrets())
	if err != nil {
		// Exit 2 on retryable failures so schedulers can tell them apart.
		if classified, ok := fault.FromError(err); ok && classified.Retryable {
			fmt.Fprintf(os.Stderr, "Error: %s (retryable)\n", classified.Message)
			os.Exit(2)
		}

		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
