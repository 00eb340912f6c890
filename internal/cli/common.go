package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/output"
	"github.com/anchorctl/anchorctl/internal/pki"
)

// Certificate status values reported by list and doctor.
const (
	statusOK       = "ok"
	statusExpiring = "expiring"
	statusExpired  = "expired"
	statusMissing  = "missing"
)

// loadConfig loads the tool configuration through the injected loader
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// saveConfig saves the config and returns error instead of just warning
func saveConfig(cfg *config.Config) error {
	if err := deps.ConfigLoader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// resolveRegion picks the AWS region: flag first, configured default second.
func resolveRegion(cfg *config.Config) string {
	if region != "" {
		return region
	}
	return cfg.Region
}

// validateTargetName checks if a target name is usable
func validateTargetName(name string) error {
	if name == "" {
		return fmt.Errorf("target name cannot be empty")
	}
	if strings.ContainsAny(name, " /\\") {
		return fmt.Errorf("target name cannot contain spaces or slashes")
	}
	return nil
}

// confirm prompts the user and returns true on a yes answer
func confirm(format string, args ...interface{}) bool {
	fmt.Printf(format+" [y/N]: ", args...)
	answer, _ := deps.StdinReader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// certStatus classifies a target's certificate for status reporting.
// Returns the status string and the certificate when one is readable.
func certStatus(target *config.Target, window float64) (string, *time.Time) {
	cert, err := pki.LoadCertificate(target.CertPath)
	if err != nil {
		return statusMissing, nil
	}

	now := time.Now()
	notAfter := cert.NotAfter
	switch {
	case now.After(cert.NotAfter):
		return statusExpired, &notAfter
	case pki.NeedsRenewal(cert, now, window):
		return statusExpiring, &notAfter
	default:
		return statusOK, &notAfter
	}
}
