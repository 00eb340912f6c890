package cli

import (
	"github.com/anchorctl/anchorctl/internal/rolesanywhere"
	"github.com/spf13/cobra"
)

var (
	roleAnchorArn  string
	roleCommonName string
	roleOrgUnit    string
	rolePolicies   []string
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage IAM roles for Roles Anywhere",
}

var roleCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an IAM role with the Roles Anywhere trust policy",
	Long: `Create an IAM role that the Roles Anywhere service principal can assume.

The trust policy can be pinned to a trust anchor and restricted to
certificates with a matching subject CN or OU.

Examples:
  anchorctl role create app-prod --trust-anchor-arn arn:... --cn app-prod \
    --attach-policy arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess`,
	Args: cobra.ExactArgs(1),
	RunE: runRoleCreate,
}

func init() {
	roleCreateCmd.Flags().StringVar(&roleAnchorArn, "trust-anchor-arn", "", "Pin the trust policy to this trust anchor")
	roleCreateCmd.Flags().StringVar(&roleCommonName, "cn", "", "Require this certificate subject CN")
	roleCreateCmd.Flags().StringVar(&roleOrgUnit, "ou", "", "Require this certificate subject OU")
	roleCreateCmd.Flags().StringArrayVar(&rolePolicies, "attach-policy", nil, "Managed policy ARN to attach (repeatable)")

	roleCmd.AddCommand(roleCreateCmd)
	rootCmd.AddCommand(roleCmd)
}

func runRoleCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	clients, err := deps.AWS.Clients(cmd.Context(), resolveRegion(cfg))
	if err != nil {
		return err
	}

	role, err := rolesanywhere.CreateRole(cmd.Context(), clients.Roles, rolesanywhere.RoleSpec{
		Name:           args[0],
		TrustAnchorArn: roleAnchorArn,
		CommonName:     roleCommonName,
		OrgUnit:        roleOrgUnit,
		PolicyArns:     rolePolicies,
	})
	if err != nil {
		return err
	}

	return outputResult(role, "Role %s created: %s", role.Name, role.Arn)
}
