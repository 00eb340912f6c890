package cli

import (
	"context"
	"fmt"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/anchorctl/anchorctl/internal/renew"
	"github.com/spf13/cobra"
)

var (
	renewForce  bool
	renewAll    bool
	renewWindow float64
)

var renewCmd = &cobra.Command{
	Use:   "renew [name]",
	Short: "Renew target certificates",
	Long: `Renew a target's certificate: a CSR is derived from the existing key,
submitted to the configured issuer, and the signed certificate is verified
and swapped into place with the previous one kept as a backup.

Examples:
  anchorctl renew app-prod
  anchorctl renew app-prod --force
  anchorctl renew --all
  anchorctl renew --all --window 0.5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRenew,
}

func init() {
	renewCmd.Flags().BoolVarP(&renewForce, "force", "f", false, "Renew even outside the renewal window")
	renewCmd.Flags().BoolVar(&renewAll, "all", false, "Renew every target inside its renewal window")
	renewCmd.Flags().Float64Var(&renewWindow, "window", 0, "Renewal window as a fraction of validity (default from config)")

	rootCmd.AddCommand(renewCmd)
}

func runRenew(cmd *cobra.Command, args []string) error {
	if renewAll == (len(args) == 1) {
		return fmt.Errorf("provide a target name or --all, not both")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	window := renewWindow
	if window == 0 {
		window = cfg.RenewWindow
	}
	opts := renew.Options{Force: renewForce, Window: window}

	if !renewAll {
		target, err := cfg.GetTarget(args[0])
		if err != nil {
			return err
		}
		result, err := renewTarget(cmd.Context(), cfg, target, opts)
		if err != nil {
			return err
		}
		if !result.Renewed {
			return outputResult(result, "Target %s is outside the renewal window, nothing to do", target.Name)
		}
		return outputResult(result, "Target %s renewed (valid until %s)", target.Name, result.NotAfter.Format("2006-01-02"))
	}

	// --all keeps going past per-target failures and reports each one.
	var results []*renew.Result
	var failures int
	for _, target := range cfg.ListTargets() {
		result, err := renewTarget(cmd.Context(), cfg, target, opts)
		if err != nil {
			failures++
			output.Error("Target %s: %v", target.Name, err)
			continue
		}
		results = append(results, result)
		if result.Renewed {
			output.Success("Target %s renewed (valid until %s)", target.Name, result.NotAfter.Format("2006-01-02"))
		} else {
			output.Info("Target %s outside renewal window, skipped", target.Name)
		}
	}

	if jsonOutput {
		if err := output.JSON(results); err != nil {
			return err
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d targets failed to renew", failures, len(cfg.Targets))
	}
	return nil
}

func renewTarget(ctx context.Context, cfg *config.Config, target *config.Target, opts renew.Options) (*renew.Result, error) {
	iss, err := deps.Issuers.ForTarget(ctx, resolveRegion(cfg), target)
	if err != nil {
		return nil, err
	}
	return renew.New(iss).Renew(ctx, target, cfg.EffectiveValidityDays(target), opts)
}
