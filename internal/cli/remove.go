package cli

import (
	"fmt"
	"os"

	"github.com/anchorctl/anchorctl/internal/helper"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/spf13/cobra"
)

var (
	removeYes   bool
	removePurge bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Deregister a certificate target",
	Long: `Remove a target from the configuration.

Certificate and key files are left on disk unless --purge is given.

Examples:
  anchorctl remove app-prod
  anchorctl remove app-prod --yes --purge`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Skip confirmation prompt")
	removeCmd.Flags().BoolVar(&removePurge, "purge", false, "Also delete certificate, key, chain, and backup files")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target, err := cfg.GetTarget(name)
	if err != nil {
		return err
	}

	if !removeYes {
		what := "configuration"
		if removePurge {
			what = "configuration AND certificate files"
		}
		if !confirm("Remove target %s (%s)?", name, what) {
			output.Info("Aborted")
			return nil
		}
	}

	if removePurge {
		for _, path := range []string{target.CertPath, target.KeyPath, target.ChainPath, target.BackupPath(), target.ChainBackupPath(), target.LockPath()} {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				output.Warn("Could not remove %s: %v", path, err)
			}
		}

		// Drop the credential_process profile too; it points at files
		// that no longer exist.
		if awsConfigPath, err := helper.AWSConfigPath(); err == nil {
			if err := helper.RemoveProfile(awsConfigPath, target); err != nil {
				output.Warn("Could not remove AWS CLI profile: %v", err)
			}
		}
	}

	if err := cfg.RemoveTarget(name); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}

	return outputResult(map[string]interface{}{
		"target": name,
		"purged": removePurge,
	}, fmt.Sprintf("Target %s removed", name))
}
