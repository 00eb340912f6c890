package cli

import (
	"os"
	"path/filepath"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/anchorctl/anchorctl/internal/pki"
	"github.com/anchorctl/anchorctl/internal/rolesanywhere"
	"github.com/spf13/cobra"
)

var anchorPCAArn string

var anchorCmd = &cobra.Command{
	Use:   "anchor",
	Short: "Manage Roles Anywhere trust anchors",
}

var anchorCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a trust anchor",
	Long: `Create a Roles Anywhere trust anchor, either from an ACM Private CA or
from the local CA certificate bundle.

Examples:
  anchorctl anchor create prod-anchor --pca-arn arn:aws:acm-pca:...
  anchorctl anchor create local-anchor`,
	Args: cobra.ExactArgs(1),
	RunE: runAnchorCreate,
}

var anchorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trust anchors",
	RunE:  runAnchorList,
}

var anchorShowCmd = &cobra.Command{
	Use:   "show <arn|name>",
	Short: "Show one trust anchor",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnchorShow,
}

func init() {
	anchorCreateCmd.Flags().StringVar(&anchorPCAArn, "pca-arn", "", "ACM Private CA ARN (omit to use the local CA bundle)")

	anchorCmd.AddCommand(anchorCreateCmd)
	anchorCmd.AddCommand(anchorListCmd)
	anchorCmd.AddCommand(anchorShowCmd)
	rootCmd.AddCommand(anchorCmd)
}

func runAnchorCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	clients, err := deps.AWS.Clients(cmd.Context(), resolveRegion(cfg))
	if err != nil {
		return err
	}

	var anchor *rolesanywhere.TrustAnchor
	if anchorPCAArn != "" {
		anchor, err = rolesanywhere.CreatePCAAnchor(cmd.Context(), clients.Anchors, args[0], anchorPCAArn)
	} else {
		dir, dirErr := config.CADir()
		if dirErr != nil {
			return dirErr
		}
		bundle, readErr := os.ReadFile(filepath.Join(dir, pki.CACertFile))
		if readErr != nil {
			return readErr
		}
		anchor, err = rolesanywhere.CreateBundleAnchor(cmd.Context(), clients.Anchors, args[0], bundle)
	}
	if err != nil {
		return err
	}

	return outputResult(anchor, "Trust anchor %s created: %s", anchor.Name, anchor.Arn)
}

func runAnchorShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	clients, err := deps.AWS.Clients(cmd.Context(), resolveRegion(cfg))
	if err != nil {
		return err
	}

	anchor, err := rolesanywhere.GetAnchor(cmd.Context(), clients.Anchors, args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(anchor)
	}

	enabled := "no"
	if anchor.Enabled {
		enabled = "yes"
	}
	pairs := [][2]string{
		{"Name", anchor.Name},
		{"ARN", anchor.Arn},
		{"Source", anchor.Source},
		{"Enabled", enabled},
	}
	if anchor.PCAArn != "" {
		pairs = append(pairs, [2]string{"PCA ARN", anchor.PCAArn})
	}
	output.KeyValues(pairs)
	return nil
}

func runAnchorList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	clients, err := deps.AWS.Clients(cmd.Context(), resolveRegion(cfg))
	if err != nil {
		return err
	}

	anchors, err := rolesanywhere.ListAnchors(cmd.Context(), clients.Anchors)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(anchors)
	}
	if len(anchors) == 0 {
		output.Info("No trust anchors found")
		return nil
	}

	rows := make([][]string, 0, len(anchors))
	for _, anchor := range anchors {
		enabled := "no"
		if anchor.Enabled {
			enabled = "yes"
		}
		rows = append(rows, []string{anchor.Name, anchor.Source, enabled, anchor.Arn})
	}
	output.Table([]string{"NAME", "SOURCE", "ENABLED", "ARN"}, rows)
	return nil
}
