package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/christopherklint97/timething/internal/config"
	"github.com/christopherklint97/timething/internal/forecast"
	"github.com/christopherklint97/timething/internal/harvest"
	"github.com/christopherklint97/timething/internal/period"
	"github.com/christopherklint97/timething/internal/projects"
	"github.com/christopherklint97/timething/internal/report"
	"github.com/christopherklint97/timething/internal/summary"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timething [START END]",
	Short: "Compare Forecast allocations with Harvest time",
	Long: "timething compares your Forecast assignments with the hours you logged in Harvest " +
		"and prints utilization per project. Without dates it reports on this week and next.",
	Args:          windowArgs,
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var summaryCmd = &cobra.Command{
	Use:   "summary [START END]",
	Short: "Print the utilization report (default)",
	Long: "Print the utilization report. START and END accept YYYY-MM-DD or phrases such as " +
		"\"last monday\"; when omitted the window runs from this Monday to next Sunday.",
	Args: windowArgs,
	RunE: runSummary,
}

var updateProjectsCmd = &cobra.Command{
	Use:   "update-projects",
	Short: "Refresh the cached Forecast project list",
	Args:  cobra.NoArgs,
	RunE:  runUpdateProjects,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Set Harvest and Forecast credentials",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log API requests to stderr")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(updateProjectsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// windowArgs allows no dates or a START END pair. A lone argument on the
// root command is most likely a mistyped subcommand.
func windowArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return nil
	}
	if cmd.HasSubCommands() {
		return fmt.Errorf("unknown command %q for %q; run '%s --help' for usage", args[0], cmd.CommandPath(), cmd.CommandPath())
	}
	return fmt.Errorf("expected START and END dates, got only %q", args[0])
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Credentials.Complete() {
		return nil, fmt.Errorf("%w: run 'timething config' to set up your Harvest and Forecast accounts", config.ErrNotConfigured)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := cfg.Log.SlogLevel()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newForecastClient(cfg *config.Config, logger *slog.Logger) *forecast.Client {
	return forecast.NewClient(forecast.Options{
		BaseURL:     cfg.Forecast.BaseURL,
		AccessToken: cfg.Credentials.HarvestAccessToken,
		AccountID:   cfg.Credentials.ForecastAccountID,
		Timeout:     cfg.Fetch.Timeout(),
		Logger:      logger,
	})
}

func newHarvestClient(cfg *config.Config, logger *slog.Logger) *harvest.Client {
	return harvest.NewClient(harvest.Options{
		BaseURL:     cfg.Harvest.BaseURL,
		AccessToken: cfg.Credentials.HarvestAccessToken,
		AccountID:   cfg.Credentials.HarvestAccountID,
		PerPage:     cfg.Fetch.PerPage,
		MaxPages:    cfg.Fetch.MaxPages,
		Timeout:     cfg.Fetch.Timeout(),
		Logger:      logger,
	})
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	window, err := period.Resolve(args, time.Now())
	if err != nil {
		return err
	}

	forecastClient := newForecastClient(cfg, logger)
	harvestClient := newHarvestClient(cfg, logger)
	store := projects.NewStore(cfg.Cache.Path, forecastClient, logger)

	rep, err := summary.New(forecastClient, harvestClient, store, logger).Run(cmd.Context(), window)
	if err != nil {
		if errors.Is(err, config.ErrNotConfigured) {
			return fmt.Errorf("%w\nPlease run 'timething config' to configure the Harvest and Forecast accounts", err)
		}
		return err
	}

	return report.Render(cmd.OutOrStdout(), rep)
}

func runUpdateProjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	store := projects.NewStore(cfg.Cache.Path, newForecastClient(cfg, logger), logger)
	res, err := store.Load(cmd.Context(), true)
	if err != nil {
		return fmt.Errorf("updating projects: %w", err)
	}
	if res.Source != projects.SourceLive {
		return fmt.Errorf("updating projects: %w", res.FetchErr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Forecast projects list updated (%d projects).\n", len(res.Projects))
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	current, err := config.ReadCredentials(dir)
	if err != nil {
		return err
	}

	prompt := config.LinePrompt(cmd.InOrStdin(), cmd.OutOrStdout())
	if isInteractive() {
		prompt = config.FormPrompt
	}

	creds, err := prompt(current)
	if err != nil {
		return err
	}

	if err := config.SaveCredentials(dir, creds); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials to %s\n", config.CredentialsPath(dir))
	return nil
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
