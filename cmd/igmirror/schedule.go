package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var cronExpr string

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule [username]",
	Short: "Run sync cycles on a cron schedule",
	Long: `Run the mirror as a long-lived process, executing one sync cycle per
cron tick. The schedule comes from --cron, the IGMIRROR_SCHEDULE
environment variable, or the config file (default: every 6 hours).

The process runs until interrupted. A cycle that overlaps the next tick
is skipped rather than run concurrently.`,
	Example: `  # Sync every 6 hours (the default)
  igmirror schedule natgeo

  # Sync hourly
  igmirror schedule natgeo --cron "0 * * * *"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&cronExpr, "cron", "", "cron expression override")
	scheduleCmd.Flags().StringVar(&projectName, "project", "default", "stored credential project name")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnvironment(args)
	if err != nil {
		return err
	}
	if cronExpr != "" {
		cfg.Schedule.Cron = cronExpr
	}

	m, err := buildMirror(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err = scheduler.AddFunc(cfg.Schedule.Cron, func() {
		if _, err := m.Run(ctx); err != nil {
			log.WithError(err).Error("scheduled sync cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cfg.Schedule.Cron, err)
	}

	log.InfoWithFields("scheduler started", map[string]interface{}{
		"cron":     cfg.Schedule.Cron,
		"username": cfg.Instagram.Username,
	})
	scheduler.Start()

	<-ctx.Done()
	log.Info("shutting down scheduler")

	// Let an in-flight cycle finish before exiting.
	<-scheduler.Stop().Done()
	return nil
}
