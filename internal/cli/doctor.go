package cli

import (
	"fmt"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/helper"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/anchorctl/anchorctl/internal/pki"
	"github.com/anchorctl/anchorctl/internal/rolesanywhere"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment and diagnose issues",
	Long: `Run diagnostic checks on the environment and registered targets.

Checks:
  - aws_signing_helper installation
  - Configuration file validity
  - AWS credential chain (STS caller identity)
  - Per-target certificate and key health

Examples:
  anchorctl doctor
  anchorctl doctor --json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// TargetStatus represents the health of a single target
type TargetStatus struct {
	Name   string        `json:"name"`
	Checks []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	Environment []CheckResult  `json:"environment"`
	AWS         []CheckResult  `json:"aws"`
	Targets     []TargetStatus `json:"targets"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	report := &DoctorReport{}
	report.Environment = checkEnvironment()
	report.AWS = checkAWS(cmd, cfg)
	report.Targets = checkTargets(cfg)

	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkEnvironment() []CheckResult {
	results := []CheckResult{}

	if path, err := helper.Detect(deps.Executor); err == nil {
		results = append(results, CheckResult{"success", fmt.Sprintf("aws_signing_helper found at %s", path)})
	} else {
		results = append(results, CheckResult{"error", "aws_signing_helper not installed"})
	}

	if dir, err := config.Dir(); err == nil {
		results = append(results, CheckResult{"success", fmt.Sprintf("configuration directory: %s", dir)})
	} else {
		results = append(results, CheckResult{"error", fmt.Sprintf("configuration directory unavailable: %v", err)})
	}

	return results
}

func checkAWS(cmd *cobra.Command, cfg *config.Config) []CheckResult {
	clients, err := deps.AWS.Clients(cmd.Context(), resolveRegion(cfg))
	if err != nil {
		return []CheckResult{{"warning", fmt.Sprintf("AWS clients unavailable: %v", err)}}
	}

	identity, err := rolesanywhere.CallerIdentity(cmd.Context(), clients.Identity)
	if err != nil {
		return []CheckResult{{"warning", fmt.Sprintf("STS caller identity failed: %v", err)}}
	}
	return []CheckResult{{"success", fmt.Sprintf("AWS credentials OK: %s", identity.Arn)}}
}

func checkTargets(cfg *config.Config) []TargetStatus {
	statuses := []TargetStatus{}

	for _, target := range cfg.ListTargets() {
		status := TargetStatus{Name: target.Name}

		key, keyErr := pki.LoadPrivateKey(target.KeyPath)
		if keyErr != nil {
			status.Checks = append(status.Checks, CheckResult{"error", fmt.Sprintf("private key unreadable: %v", keyErr)})
		} else {
			status.Checks = append(status.Checks, CheckResult{"success", "private key present"})
		}

		cert, certErr := pki.LoadCertificate(target.CertPath)
		switch {
		case certErr != nil:
			status.Checks = append(status.Checks, CheckResult{"error", fmt.Sprintf("certificate unreadable: %v", certErr)})
		case time.Now().After(cert.NotAfter):
			status.Checks = append(status.Checks, CheckResult{"error", fmt.Sprintf("certificate expired %s", cert.NotAfter.Format("2006-01-02"))})
		case pki.NeedsRenewal(cert, time.Now(), cfg.RenewWindow):
			status.Checks = append(status.Checks, CheckResult{"warning", fmt.Sprintf("certificate expiring %s, renewal due", cert.NotAfter.Format("2006-01-02"))})
		default:
			status.Checks = append(status.Checks, CheckResult{"success", fmt.Sprintf("certificate valid until %s", cert.NotAfter.Format("2006-01-02"))})
		}

		if keyErr == nil && certErr == nil {
			if pki.CertificateMatchesKey(cert, key) {
				status.Checks = append(status.Checks, CheckResult{"success", "certificate matches private key"})
			} else {
				status.Checks = append(status.Checks, CheckResult{"error", "certificate does not match private key"})
			}
		}

		if _, err := pki.LoadCertificate(target.BackupPath()); err == nil {
			status.Checks = append(status.Checks, CheckResult{"success", "backup certificate present"})
		}

		statuses = append(statuses, status)
	}

	return statuses
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Environment:")
	for _, check := range report.Environment {
		displayCheck(check)
	}

	output.Print("")
	output.Print("AWS:")
	for _, check := range report.AWS {
		displayCheck(check)
	}

	output.Print("")
	output.Print("Targets:")
	if len(report.Targets) == 0 {
		output.Info("No targets registered")
		return
	}
	for _, target := range report.Targets {
		output.Print("  %s:", target.Name)
		for _, check := range target.Checks {
			displayCheck(check)
		}
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case "success":
		output.Success("  %s", check.Message)
	case "warning":
		output.Warn("  %s", check.Message)
	default:
		output.Error("  %s", check.Message)
	}
}
