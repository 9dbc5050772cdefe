package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igmirror",
	Short: "Mirror the newest posts of an Instagram profile into Supabase",
	Long: `igmirror incrementally mirrors an Instagram profile into a Supabase
project: post media goes to a storage bucket, post metadata goes to a
Postgres table, and a retention window keeps only the newest posts.

Each run is a single sync cycle:
  - Extract the profile's newest posts, trying several payload shapes
  - Stop at the newest post already mirrored (the watermark)
  - Download, upload and upsert each new post individually
  - Trim the mirrored dataset down to the retention window

Credentials are resolved from the system keychain, environment
variables, or a config file.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .igmirror.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`igmirror {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
