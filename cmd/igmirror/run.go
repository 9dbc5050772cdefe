package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"igmirror/pkg/auth"
	"igmirror/pkg/blob"
	"igmirror/pkg/config"
	"igmirror/pkg/instagram"
	"igmirror/pkg/logger"
	"igmirror/pkg/mirror"
	"igmirror/pkg/pacing"
	"igmirror/pkg/retry"
	"igmirror/pkg/spool"
	"igmirror/pkg/store"
)

var (
	// Run command flags
	projectName string
	keepCount   int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [username]",
	Short: "Run one sync cycle for a profile",
	Long: `Run a single sync cycle: extract the profile's newest posts, mirror
everything newer than the stored watermark, then enforce the retention
window.

The target username comes from the argument, the IGMIRROR_USERNAME
environment variable, or the config file. Supabase credentials come from
the system keychain (use 'igmirror auth store'), the SUPABASE_URL,
SUPABASE_KEY and SUPABASE_DSN environment variables, or the config file.`,
	Example: `  # Mirror the configured profile once
  igmirror run

  # Mirror a specific profile
  igmirror run natgeo

  # Keep only the 6 newest posts
  igmirror run natgeo --keep 6`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOnce,
}

func init() {
	runCmd.Flags().StringVar(&projectName, "project", "default", "stored credential project name")
	runCmd.Flags().IntVar(&keepCount, "keep", 0, "retention window override (0 uses config)")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnvironment(args)
	if err != nil {
		return err
	}

	m, err := buildMirror(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := m.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("found %d, added %d, updated %d, skipped %d, deleted %d\n",
		summary.Found, summary.Added, summary.Updated, summary.Skipped, summary.Deleted)
	return nil
}

// loadEnvironment resolves config, credentials and the logger shared by
// the run and schedule commands.
func loadEnvironment(args []string) (*config.Config, logger.Logger, error) {
	cfg, err := preloadConfig(args)
	if err != nil {
		return nil, nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if keepCount > 0 {
		cfg.Retention.KeepCount = keepCount
	}

	if err := logger.Initialize(cfg.Logging.Level); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	log.InfoWithFields("configuration loaded", map[string]interface{}{
		"username": cfg.Instagram.Username,
		"table":    cfg.Supabase.Table,
		"bucket":   cfg.Supabase.Bucket,
		"keep":     cfg.Retention.KeepCount,
	})

	return cfg, log, nil
}

// preloadConfig loads config, pulling missing Supabase credentials from
// the credential manager before validation runs.
func preloadConfig(args []string) (*config.Config, error) {
	_ = godotenv.Load(".env")

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}
	cfg.LoadFromEnv()

	if len(args) > 0 {
		username := instagram.SanitizeUsername(args[0])
		if !instagram.IsValidUsername(username) {
			return nil, fmt.Errorf("invalid username: %s", args[0])
		}
		cfg.Instagram.Username = username
	}

	if cfg.Supabase.ServiceKey == "" || cfg.Supabase.DSN == "" || cfg.Supabase.URL == "" {
		if creds, err := auth.NewManager().Retrieve(projectName); err == nil {
			if cfg.Supabase.URL == "" {
				cfg.Supabase.URL = creds.URL
			}
			if cfg.Supabase.ServiceKey == "" {
				cfg.Supabase.ServiceKey = creds.ServiceKey
			}
			if cfg.Supabase.DSN == "" {
				cfg.Supabase.DSN = creds.DSN
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// buildMirror wires every collaborator of a sync cycle from config.
func buildMirror(cfg *config.Config, log logger.Logger) (*mirror.Mirror, error) {
	records, err := store.Connect(cfg.Supabase.DSN, cfg.Supabase.Table)
	if err != nil {
		return nil, err
	}
	if err := records.AutoMigrate(); err != nil {
		return nil, err
	}

	blobs := blob.New(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Supabase.Bucket,
		cfg.HTTP.RequestTimeout, log)

	retryCfg := &retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    cfg.Retry.BaseDelay,
			MaxDelay:     cfg.Retry.MaxDelay,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: context.Background(),
		Logger:  log,
	}

	client := instagram.NewClient(cfg.HTTP.RequestTimeout, retryCfg, log)
	if cfg.Instagram.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Instagram.UserAgent)
	}
	if cfg.Instagram.SessionID != "" {
		client.SetHeader("Cookie", "sessionid="+cfg.Instagram.SessionID)
	}

	pacer := pacing.New(pacing.Config{
		CallDelay:         cfg.Pacing.CallDelay,
		FailureMultiplier: cfg.Pacing.FailureMultiplier,
		MaxFailureDelay:   cfg.Pacing.MaxFailureDelay,
		LongPauseEvery:    cfg.Pacing.LongPauseEvery,
		LongPauseDuration: cfg.Pacing.LongPauseDuration,
	})

	chain := instagram.NewDefaultChain(client, pacer, log)
	fetcher := instagram.NewMediaFetcher(cfg.HTTP.DownloadTimeout, cfg.Instagram.UserAgent, log)

	sp, err := spool.New("")
	if err != nil {
		return nil, err
	}

	transfer := mirror.NewTransferrer(cfg.Instagram.Username, fetcher, blobs, records, sp, pacer, log)
	enforcer := mirror.NewEnforcer(records, blobs, log)

	return mirror.New(chain, transfer, enforcer, records, mirror.Options{
		Username:  cfg.Instagram.Username,
		PageLimit: instagram.MaxCandidates,
		KeepCount: cfg.Retention.KeepCount,
	}, log), nil
}
