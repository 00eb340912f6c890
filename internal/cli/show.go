package cli

import (
	"fmt"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/anchorctl/anchorctl/internal/pki"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show target details",
	Long: `Show full details of one target, including its current certificate.

Examples:
  anchorctl show app-prod
  anchorctl show app-prod --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

type targetDetail struct {
	*config.Target
	Status        string `json:"status"`
	CertSubject   string `json:"cert_subject,omitempty"`
	Serial        string `json:"serial,omitempty"`
	NotBefore     string `json:"not_before,omitempty"`
	NotAfter      string `json:"not_after,omitempty"`
	DaysRemaining int    `json:"days_remaining,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target, err := cfg.GetTarget(args[0])
	if err != nil {
		return err
	}

	detail := targetDetail{Target: target}
	detail.Status, _ = certStatus(target, cfg.RenewWindow)

	cert, certErr := pki.LoadCertificate(target.CertPath)
	if certErr == nil {
		detail.CertSubject = cert.Subject.String()
		detail.Serial = cert.SerialNumber.Text(16)
		detail.NotBefore = cert.NotBefore.Format(time.RFC3339)
		detail.NotAfter = cert.NotAfter.Format(time.RFC3339)
		detail.DaysRemaining = int(pki.RemainingValidity(cert, time.Now()).Hours() / 24)
	}

	if jsonOutput {
		return output.JSON(detail)
	}

	pairs := [][2]string{
		{"Name", target.Name},
		{"Issuer", target.Issuer},
		{"Certificate", target.CertPath},
		{"Private key", target.KeyPath},
		{"Status", detail.Status},
	}
	if target.ChainPath != "" {
		pairs = append(pairs, [2]string{"Chain", target.ChainPath})
	}
	if target.PCAArn != "" {
		pairs = append(pairs, [2]string{"PCA ARN", target.PCAArn})
	}
	if target.TrustAnchorArn != "" {
		pairs = append(pairs, [2]string{"Trust anchor", target.TrustAnchorArn})
	}
	if target.ProfileArn != "" {
		pairs = append(pairs, [2]string{"Profile", target.ProfileArn})
	}
	if target.RoleArn != "" {
		pairs = append(pairs, [2]string{"Role", target.RoleArn})
	}
	pairs = append(pairs, [2]string{"Validity days", fmt.Sprintf("%d", cfg.EffectiveValidityDays(target))})

	if certErr == nil {
		pairs = append(pairs,
			[2]string{"Subject", detail.CertSubject},
			[2]string{"Serial", detail.Serial},
			[2]string{"Not before", detail.NotBefore},
			[2]string{"Not after", detail.NotAfter},
			[2]string{"Days remaining", fmt.Sprintf("%d", detail.DaysRemaining)},
		)
	} else {
		pairs = append(pairs, [2]string{"Certificate file", "not readable"})
	}

	output.KeyValues(pairs)
	return nil
}
