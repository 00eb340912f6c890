package cli

import (
	"fmt"

	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/anchorctl/anchorctl/internal/rolesanywhere"
	"github.com/spf13/cobra"
)

var (
	profileRoleArns []string
	profileDuration int32
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage Roles Anywhere profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile",
	Long: `Create a Roles Anywhere profile mapping certificate sessions to IAM roles.

Examples:
  anchorctl profile create app-prod --role-arn arn:aws:iam::123456789012:role/app-prod
  anchorctl profile create ops --role-arn arn:... --role-arn arn:... --duration 7200`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileCreate,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE:  runProfileList,
}

func init() {
	profileCreateCmd.Flags().StringArrayVar(&profileRoleArns, "role-arn", nil, "IAM role ARN the profile can assume (repeatable)")
	profileCreateCmd.Flags().Int32Var(&profileDuration, "duration", 0, "Session duration in seconds (default 3600)")

	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileListCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	clients, err := deps.AWS.Clients(cmd.Context(), resolveRegion(cfg))
	if err != nil {
		return err
	}

	profile, err := rolesanywhere.CreateProfile(cmd.Context(), clients.Anchors, args[0], profileRoleArns, profileDuration)
	if err != nil {
		return err
	}

	return outputResult(profile, "Profile %s created: %s", profile.Name, profile.Arn)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	clients, err := deps.AWS.Clients(cmd.Context(), resolveRegion(cfg))
	if err != nil {
		return err
	}

	profiles, err := rolesanywhere.ListProfiles(cmd.Context(), clients.Anchors)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(profiles)
	}
	if len(profiles) == 0 {
		output.Info("No profiles found")
		return nil
	}

	rows := make([][]string, 0, len(profiles))
	for _, profile := range profiles {
		rows = append(rows, []string{
			profile.Name,
			fmt.Sprintf("%d", len(profile.RoleArns)),
			fmt.Sprintf("%ds", profile.DurationSeconds),
			profile.Arn,
		})
	}
	output.Table([]string{"NAME", "ROLES", "DURATION", "ARN"}, rows)
	return nil
}
