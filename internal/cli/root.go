package cli

import (
	"os"

	"github.com/anchorctl/anchorctl/internal/logger"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	region     string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "anchorctl",
	Short: "IAM Roles Anywhere certificate management CLI",
	Long: `anchorctl manages X.509 certificate identities for AWS IAM Roles Anywhere.

It registers certificate targets, renews them against ACM Private CA or a
self-managed local CA, provisions trust anchors, profiles, and IAM roles,
and wires the aws_signing_helper credential broker into the AWS CLI.`,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "AWS region (defaults to the configured region)")
}
