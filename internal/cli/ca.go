package cli

import (
	"path/filepath"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/anchorctl/anchorctl/internal/pki"
	"github.com/spf13/cobra"
)

var (
	caCommonName    string
	caOrg           string
	caValidityYears int
)

var caCmd = &cobra.Command{
	Use:   "ca",
	Short: "Manage the self-managed local CA",
}

var caInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the local CA key pair",
	Long: `Create the self-managed CA: an EC private key and a self-signed root
certificate under the tool's configuration directory. Refuses to overwrite
an existing CA.

Examples:
  anchorctl ca init --cn "Example Corp Root" --org "Example Corp"`,
	RunE: runCAInit,
}

var caShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the local CA certificate",
	RunE:  runCAShow,
}

func init() {
	caInitCmd.Flags().StringVar(&caCommonName, "cn", "anchorctl local CA", "CA subject common name")
	caInitCmd.Flags().StringVar(&caOrg, "org", "", "CA subject organization")
	caInitCmd.Flags().IntVar(&caValidityYears, "validity-years", 10, "CA certificate validity in years")

	caCmd.AddCommand(caInitCmd)
	caCmd.AddCommand(caShowCmd)
	rootCmd.AddCommand(caCmd)
}

func runCAInit(cmd *cobra.Command, args []string) error {
	dir, err := config.CADir()
	if err != nil {
		return err
	}

	subject := pki.Subject{CommonName: caCommonName, Organization: caOrg}
	validity := time.Duration(caValidityYears) * 365 * 24 * time.Hour

	ca, err := pki.CreateLocalCA(dir, subject, validity)
	if err != nil {
		return err
	}

	return outputResult(map[string]interface{}{
		"subject":   ca.Cert.Subject.String(),
		"not_after": ca.Cert.NotAfter.Format(time.RFC3339),
		"path":      filepath.Join(dir, pki.CACertFile),
	}, "Local CA created at %s (valid until %s)", dir, ca.Cert.NotAfter.Format("2006-01-02"))
}

func runCAShow(cmd *cobra.Command, args []string) error {
	dir, err := config.CADir()
	if err != nil {
		return err
	}

	cert, err := pki.LoadCertificate(filepath.Join(dir, pki.CACertFile))
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{
			"subject":    cert.Subject.String(),
			"serial":     cert.SerialNumber.Text(16),
			"not_before": cert.NotBefore.Format(time.RFC3339),
			"not_after":  cert.NotAfter.Format(time.RFC3339),
		})
	}

	output.KeyValues([][2]string{
		{"Subject", cert.Subject.String()},
		{"Serial", cert.SerialNumber.Text(16)},
		{"Not before", cert.NotBefore.Format(time.RFC3339)},
		{"Not after", cert.NotAfter.Format(time.RFC3339)},
		{"Certificate", filepath.Join(dir, pki.CACertFile)},
	})
	return nil
}
