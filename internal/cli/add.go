package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/anchorctl/anchorctl/internal/pki"
	"github.com/spf13/cobra"
)

var (
	addCertPath     string
	addKeyPath      string
	addChainPath    string
	addCommonName   string
	addOrg          string
	addOrgUnit      string
	addCountry      string
	addIssuer       string
	addPCAArn       string
	addValidityDays int
	addKeyType      string
	addAnchorArn    string
	addProfileArn   string
	addRoleArn      string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a certificate target",
	Long: `Register a named certificate target for renewal and credential setup.

The private key is generated if it does not exist yet; an existing key is
never overwritten or rotated.

Examples:
  anchorctl add app-prod --cert /etc/pki/app.pem --key /etc/pki/app-key.pem \
    --cn app-prod --org "Example Corp" --issuer acmpca --pca-arn arn:aws:acm-pca:...
  anchorctl add app-dev --cert ./certs/dev.pem --key ./certs/dev-key.pem \
    --cn app-dev --issuer local --key-type ec`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addCertPath, "cert", "", "Certificate file path (required)")
	addCmd.Flags().StringVar(&addKeyPath, "key", "", "Private key file path (required)")
	addCmd.Flags().StringVar(&addChainPath, "chain", "", "Chain bundle file path")
	addCmd.Flags().StringVar(&addCommonName, "cn", "", "Subject common name (required)")
	addCmd.Flags().StringVar(&addOrg, "org", "", "Subject organization")
	addCmd.Flags().StringVar(&addOrgUnit, "ou", "", "Subject organizational unit")
	addCmd.Flags().StringVar(&addCountry, "country", "", "Subject country code")
	addCmd.Flags().StringVar(&addIssuer, "issuer", config.IssuerLocal, "Certificate issuer (acmpca, local)")
	addCmd.Flags().StringVar(&addPCAArn, "pca-arn", "", "ACM Private CA ARN (required for acmpca)")
	addCmd.Flags().IntVar(&addValidityDays, "validity-days", 0, "Certificate validity in days (default from config)")
	addCmd.Flags().StringVar(&addKeyType, "key-type", pki.KeyTypeEC, "Key type when generating a new key (rsa, ec)")
	addCmd.Flags().StringVar(&addAnchorArn, "trust-anchor-arn", "", "Associated trust anchor ARN")
	addCmd.Flags().StringVar(&addProfileArn, "profile-arn", "", "Associated Roles Anywhere profile ARN")
	addCmd.Flags().StringVar(&addRoleArn, "role-arn", "", "Associated IAM role ARN")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := validateTargetName(name); err != nil {
		return err
	}
	if addCertPath == "" || addKeyPath == "" {
		return fmt.Errorf("--cert and --key are required")
	}
	if addCommonName == "" {
		return fmt.Errorf("--cn is required")
	}
	if !config.IsValidIssuer(addIssuer) {
		return fmt.Errorf("invalid issuer: %s. Valid issuers: %s", addIssuer, strings.Join(config.ValidIssuers(), ", "))
	}
	if addIssuer == config.IssuerACMPCA && addPCAArn == "" {
		return fmt.Errorf("--pca-arn is required for the acmpca issuer")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, exists := cfg.Targets[name]; exists {
		return fmt.Errorf("target %s already exists", name)
	}

	// Generate the key only when the file is absent. An existing key is
	// kept as-is so certificates stay bound to it.
	if _, err := os.Stat(addKeyPath); os.IsNotExist(err) {
		output.Info("Generating %s private key at %s", addKeyType, addKeyPath)
		key, err := pki.GenerateKey(addKeyType)
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(addKeyPath), 0755); err != nil {
			return fmt.Errorf("failed to create key directory: %w", err)
		}
		if err := pki.SavePrivateKey(addKeyPath, key); err != nil {
			return fmt.Errorf("failed to save key: %w", err)
		}
	}

	target := &config.Target{
		Name:           name,
		CertPath:       addCertPath,
		KeyPath:        addKeyPath,
		ChainPath:      addChainPath,
		CommonName:     addCommonName,
		Organization:   addOrg,
		OrgUnit:        addOrgUnit,
		Country:        addCountry,
		Issuer:         addIssuer,
		PCAArn:         addPCAArn,
		ValidityDays:   addValidityDays,
		TrustAnchorArn: addAnchorArn,
		ProfileArn:     addProfileArn,
		RoleArn:        addRoleArn,
		CreatedAt:      time.Now(),
	}

	if err := cfg.AddTarget(target); err != nil {
		return err
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}

	return outputResult(target, "Target %s registered", name)
}
