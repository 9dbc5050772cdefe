package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"igmirror/pkg/auth"
)

var (
	// Auth command flags
	credURL        string
	credServiceKey string
	credDSN        string
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Supabase credentials",
	Long: `Manage stored Supabase project credentials.

Credentials are stored in the system keychain when one is available,
with environment variables (SUPABASE_URL, SUPABASE_KEY, SUPABASE_DSN)
as a read-only fallback for headless machines.

Never share your service key or config files!`,
}

// storeCmd represents the auth store command
var storeCmd = &cobra.Command{
	Use:   "store <project>",
	Short: "Store Supabase credentials securely",
	Long: `Store the credentials of a Supabase project under a project name.

Values come from the flags, falling back to the SUPABASE_URL,
SUPABASE_KEY and SUPABASE_DSN environment variables.`,
	Example: `  # Store from environment variables
  igmirror auth store myproject

  # Store explicitly
  igmirror auth store myproject --url https://xyz.supabase.co --service-key eyJ... --dsn postgres://...`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthStore,
}

// showCmd represents the auth show command
var showCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show stored credentials with secrets masked",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthShow,
}

// removeCmd represents the auth remove command
var removeCmd = &cobra.Command{
	Use:   "remove <project>",
	Short: "Remove stored credentials",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRemove,
}

func init() {
	storeCmd.Flags().StringVar(&credURL, "url", "", "Supabase project URL")
	storeCmd.Flags().StringVar(&credServiceKey, "service-key", "", "Supabase service role key")
	storeCmd.Flags().StringVar(&credDSN, "dsn", "", "Postgres connection string")

	authCmd.AddCommand(storeCmd)
	authCmd.AddCommand(showCmd)
	authCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStore(cmd *cobra.Command, args []string) error {
	creds := &auth.Credentials{
		Project:    args[0],
		URL:        firstNonEmpty(credURL, os.Getenv("SUPABASE_URL")),
		ServiceKey: firstNonEmpty(credServiceKey, os.Getenv("SUPABASE_KEY")),
		DSN:        firstNonEmpty(credDSN, os.Getenv("SUPABASE_DSN")),
	}

	if creds.URL == "" || creds.ServiceKey == "" || creds.DSN == "" {
		return fmt.Errorf("url, service key and DSN are all required (flags or SUPABASE_* environment)")
	}

	if err := auth.NewManager().Store(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	fmt.Printf("Credentials stored for project %q\n", creds.Project)
	return nil
}

func runAuthShow(cmd *cobra.Command, args []string) error {
	creds, err := auth.NewManager().Retrieve(args[0])
	if err != nil {
		return err
	}

	masked := auth.Sanitize(creds)
	fmt.Printf("Project:     %s\n", masked.Project)
	fmt.Printf("URL:         %s\n", masked.URL)
	fmt.Printf("Service key: %s\n", masked.ServiceKey)
	fmt.Printf("DSN:         %s\n", masked.DSN)
	if !masked.LastModified.IsZero() {
		fmt.Printf("Modified:    %s\n", masked.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	if err := auth.NewManager().Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Credentials removed for project %q\n", args[0])
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
