// Command assess is the terminal client of the growth assessment service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	userID    string
	token     string
	logFile   string
)

var rootCmd = &cobra.Command{
	Use:   "assess",
	Short: "Business growth self-assessment in the terminal",
	Long: `assess walks through the growth questionnaire section by section,
stores answers on the assessment server and asks it for advice.

Run without arguments to start the interactive questionnaire.`,
	SilenceUsage: true,
	RunE:         runQuestionnaire,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("ASSESS_SERVER", "http://localhost:8080"), "assessment server URL")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", os.Getenv("ASSESS_USER"), "user id the answers belong to")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("ASSESS_TOKEN"), "bearer token when the server requires auth")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "logs/assess.log", "log file (empty disables logging)")

	runCmd.Flags().StringVarP(&startSection, "section", "s", "", "section key to open first")
	rootCmd.Flags().StringVarP(&startSection, "section", "s", "", "section key to open first")

	catalogCmd.Flags().StringVarP(&catalogSection, "section", "s", "", "only print this section")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "print JSON")
	catalogCmd.Flags().BoolVar(&catalogYAML, "yaml", false, "print YAML")

	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "signing secret (default: jwt.secret from the server config)")
	tokenCmd.Flags().StringVar(&tokenConfigDir, "config", "configs", "server config directory used when --secret is empty")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(tokenCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
