package cli

import (
	"github.com/spf13/cobra"

	appconfig "irscout/internal/config"
	"irscout/pkg/config"
	"irscout/pkg/logging"
)

var verbose bool

// NewRootCmd returns the root command for the irscout binary.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "irscout",
		Short:         "Find and classify investor-relations financial reports",
		Long:          "irscout locates a company's investor-relations page, collects the report PDFs it links, and classifies them as annual or quarterly.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCrawlCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadRuntime reads .env and the environment and builds the service logger.
func loadRuntime(cmd *cobra.Command) (appconfig.Config, logging.Logger) {
	logger := logging.NewLoggerWithService("irscout")
	logger.SetOutput(cmd.ErrOrStderr())
	config.LoadEnv(logger)
	logger.SetLevel(config.GetLogLevel())
	if verbose {
		logger.SetLevel(logging.DebugLevel)
	}
	return appconfig.LoadConfig(), logger
}
