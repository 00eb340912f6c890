package cli

import (
	"time"

	"github.com/anchorctl/anchorctl/internal/helper"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/spf13/cobra"
)

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Manage aws_signing_helper credential integration",
}

var credsSetupCmd = &cobra.Command{
	Use:   "setup <name>",
	Short: "Write the credential_process profile for a target",
	Long: `Write an AWS CLI profile whose credential_process invokes the
aws_signing_helper for the target's certificate. Re-running rewrites the
profile in place.

Examples:
  anchorctl creds setup app-prod
  aws sts get-caller-identity --profile anchorctl-app-prod`,
	Args: cobra.ExactArgs(1),
	RunE: runCredsSetup,
}

var credsTestCmd = &cobra.Command{
	Use:   "test <name>",
	Short: "Fetch session credentials once to verify the setup",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredsTest,
}

func init() {
	credsCmd.AddCommand(credsSetupCmd)
	credsCmd.AddCommand(credsTestCmd)
	rootCmd.AddCommand(credsCmd)
}

func runCredsSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := cfg.GetTarget(args[0])
	if err != nil {
		return err
	}

	helperPath, err := helper.Detect(deps.Executor)
	if err != nil {
		return err
	}

	awsConfigPath, err := helper.AWSConfigPath()
	if err != nil {
		return err
	}
	if err := helper.SetupProfile(awsConfigPath, target, helperPath); err != nil {
		return err
	}

	return outputResult(map[string]string{
		"profile": helper.ProfileName(target),
		"path":    awsConfigPath,
	}, "Profile %s written to %s", helper.ProfileName(target), awsConfigPath)
}

func runCredsTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := cfg.GetTarget(args[0])
	if err != nil {
		return err
	}

	helperPath, err := helper.Detect(deps.Executor)
	if err != nil {
		return err
	}

	output.Info("Fetching session credentials for %s...", target.Name)
	creds, err := helper.Fetch(deps.Executor, helperPath, target)
	if err != nil {
		return err
	}

	return outputResult(map[string]string{
		"access_key_id": creds.AccessKeyID,
		"expiration":    creds.Expiration.Format(time.RFC3339),
	}, "Credentials OK, session expires %s", creds.Expiration.Format(time.RFC3339))
}
