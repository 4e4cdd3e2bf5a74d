// Package cli implements invoicectl, the operator command line.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "Operate an invoicedesk deployment",
	Long: `invoicectl renders invoice documents offline and runs maintenance
tasks against the database configured through the usual environment
variables (DATABASE_*, REDIS_*, SMTP_*).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(apiKeyCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(seedCmd)
}
