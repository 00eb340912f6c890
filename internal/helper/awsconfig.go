package helper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/logger"
)

// ProfileName is the AWS CLI profile written for a target.
func ProfileName(target *config.Target) string {
	return "anchorctl-" + target.Name
}

// AWSConfigPath returns the AWS CLI config file location, honoring
// AWS_CONFIG_FILE the way the CLI itself does.
func AWSConfigPath() (string, error) {
	if path := os.Getenv("AWS_CONFIG_FILE"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfig, "failed to determine home directory", err)
	}
	return filepath.Join(home, ".aws", "config"), nil
}

// SetupProfile writes (or rewrites) the target's credential_process profile
// section in the AWS CLI config at path. Other sections are preserved
// untouched; running setup twice leaves a single section.
func SetupProfile(path string, target *config.Target, helperPath string) error {
	args, err := ProcessArgs(target)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("[profile %s]", ProfileName(target))
	section := []string{
		header,
		"credential_process = " + helperPath + " " + strings.Join(args, " "),
	}

	var lines []string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		lines = removeSection(strings.Split(string(data), "\n"), header)
	case os.IsNotExist(err):
	default:
		return errors.Wrap(errors.ErrCodeConfig, "failed to read AWS config", err)
	}

	// Trim trailing blank lines so rewrites do not accumulate them.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, section...)
	lines = append(lines, "")

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to create AWS config directory", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0600); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to write AWS config", err)
	}

	logger.InfoFields("AWS CLI profile written", map[string]interface{}{
		"profile": ProfileName(target),
		"path":    path,
	})
	return nil
}

// RemoveProfile deletes the target's profile section from the AWS CLI
// config at path. A missing file or section is not an error.
func RemoveProfile(path string, target *config.Target) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to read AWS config", err)
	}

	header := fmt.Sprintf("[profile %s]", ProfileName(target))
	lines := removeSection(strings.Split(string(data), "\n"), header)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0600); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, "failed to write AWS config", err)
	}
	return nil
}

// removeSection drops the named section: its header line and everything up
// to the next section header or EOF.
func removeSection(lines []string, header string) []string {
	var kept []string
	skipping := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == header {
			skipping = true
			continue
		}
		if skipping && strings.HasPrefix(trimmed, "[") {
			skipping = false
		}
		if !skipping {
			kept = append(kept, line)
		}
	}
	return kept
}
