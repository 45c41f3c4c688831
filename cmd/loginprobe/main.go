package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var strict bool

	rootCmd := &cobra.Command{
		Use:   "loginprobe",
		Short: "Check what a web app's login endpoint does for a set of accounts",
		Long: `loginprobe fetches the login page with a fresh cookie session, pulls the
_token hidden field, posts the credentials and reports the raw response:
the redirect status and Location, a plain 2xx, or any other status.

Redirects are never followed, so role-based post-login redirects can be
checked directly.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, strict)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("base-url", defaultBaseURL, "Base URL of the application under test (env LOGIN_PROBE_BASE_URL)")
	flags.String("login-path", "/login", "Path of the login page and form (env LOGIN_PROBE_LOGIN_PATH)")
	flags.Duration("timeout", 5*time.Second, "Per-request timeout (env LOGIN_PROBE_TIMEOUT)")
	flags.String("credentials", "", "YAML file with credentials and expectations (env LOGIN_PROBE_CREDENTIALS_FILE)")
	flags.String("user-agent", "Mozilla/5.0", "User-Agent header sent with every request (env LOGIN_PROBE_USER_AGENT)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Probe every account once and print the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, strict)
		},
	}
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().BoolVar(&strict, "strict", false, "Also fail when a probe hits a transport error or finds no token")
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Probe on an interval and expose Prometheus metrics",
		RunE:  runWatch,
	}
	watchCmd.Flags().Duration("interval", defaultInterval, "Time between sweeps (env LOGIN_PROBE_INTERVAL)")
	watchCmd.Flags().String("metrics-addr", defaultMetricsAddr, "Listen address for /metrics (env LOGIN_PROBE_METRICS_ADDR)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "loginprobe %s\n", rootCmd.Version)
		},
	}

	rootCmd.AddCommand(runCmd, watchCmd, versionCmd)
	return rootCmd
}

// resolveConfig layers flags that were set explicitly over env and .env.
func resolveConfig(cmd *cobra.Command) (*Config, error) {
	config, err := loadEnv()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		config.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("login-path") {
		config.LoginPath, _ = flags.GetString("login-path")
	}
	if flags.Changed("timeout") {
		config.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("credentials") {
		config.CredentialsFile, _ = flags.GetString("credentials")
	}
	if flags.Changed("user-agent") {
		config.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Lookup("interval") != nil && flags.Changed("interval") {
		config.Interval, _ = flags.GetDuration("interval")
		if config.Interval <= 0 {
			return nil, fmt.Errorf("interval must be positive, got %s", config.Interval)
		}
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		config.MetricsAddr, _ = flags.GetString("metrics-addr")
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func runOnce(cmd *cobra.Command, strict bool) error {
	config, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	accounts, err := loadAccounts(config.CredentialsFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Testing Redirects...")

	results := runSweep(cmd.Context(), config.newProber(), accounts)
	printResults(out, results)

	if n := failures(results, strict); n > 0 {
		return fmt.Errorf("%d of %d accounts failed", n, len(results))
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	config, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	accounts, err := loadAccounts(config.CredentialsFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Login Redirect Monitor ===")
	fmt.Fprintf(out, "Metrics will be exposed on %s/metrics for Prometheus\n", config.MetricsAddr)
	fmt.Fprintln(out, "Press Ctrl+C to stop")
	fmt.Fprintln(out)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	server := newMetricsServer(config.MetricsAddr)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		monitorLogins(gctx, out, config, config.newProber(), accounts)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[LOGIN-PROBE] metrics server shutdown: %v", err)
		}
		return nil
	})

	err = g.Wait()
	fmt.Fprintln(out, "All monitors stopped")
	return err
}
