package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/pgstay/pkg/logging"
)

var logLevel string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pgstay",
	Short: "Google Sheets backed data service for the PG management dashboard",
	Long: `pgstay stores users, rooms, meals, payments and the rest of the PG
dashboard's data in a Google Sheets spreadsheet, one tab per entity.

Configuration comes from the environment:
  GOOGLE_SHEETS_API_KEY         API key with the Sheets API enabled
  GOOGLE_SHEETS_SPREADSHEET_ID  ID from the spreadsheet URL
  USE_CORS_PROXY, CORS_PROXY_URL, SHEETS_TIMEOUT, SHEETS_MAX_RETRIES
  SNAPSHOT_DB_PATH, PORT, JWT_SECRET, TOKEN_TTL, APP_ENV, SENTRY_DSN`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			logging.SetupWithLevel(logging.ParseLevel(logLevel))
			return
		}
		logging.Setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default: LOG_LEVEL or info)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
