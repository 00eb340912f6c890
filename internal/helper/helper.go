// Package helper integrates the aws_signing_helper credential broker: binary
// detection, AWS CLI profile setup, and one-shot credential checks. The
// broker itself stays external; this package only locates, configures, and
// invokes it.
package helper

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/executor"
	"github.com/anchorctl/anchorctl/internal/logger"
)

// Binary is the name of the AWS signing helper executable.
const Binary = "aws_signing_helper"

// wellKnownPaths are checked when the binary is not on PATH. The AWS docs
// install it to /usr/local/bin on Linux and Homebrew puts it under
// /opt/homebrew/bin on Apple Silicon.
var wellKnownPaths = []string{
	"/usr/local/bin/aws_signing_helper",
	"/opt/homebrew/bin/aws_signing_helper",
	"/usr/bin/aws_signing_helper",
}

// Detect locates the signing helper binary, preferring PATH over the
// well-known install locations. Returns ErrHelperNotInstalled when it is
// nowhere to be found.
func Detect(execr executor.CommandExecutor) (string, error) {
	if path, err := execr.LookPath(Binary); err == nil {
		return path, nil
	}

	for _, path := range wellKnownPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.ErrHelperNotInstalled
}

// Credentials is the session credential document the signing helper prints
// in the AWS credential_process format.
type Credentials struct {
	Version         int       `json:"Version"`
	AccessKeyID     string    `json:"AccessKeyId"`
	SecretAccessKey string    `json:"SecretAccessKey"`
	SessionToken    string    `json:"SessionToken"`
	Expiration      time.Time `json:"Expiration"`
}

// ProcessArgs builds the credential-process argument list for a target.
// The target must carry its certificate, key, and the three Roles Anywhere
// ARNs.
func ProcessArgs(target *config.Target) ([]string, error) {
	switch {
	case target.CertPath == "" || target.KeyPath == "":
		return nil, errors.Validation("target has no certificate or key path")
	case target.TrustAnchorArn == "":
		return nil, errors.Validation("target has no trust anchor ARN")
	case target.ProfileArn == "":
		return nil, errors.Validation("target has no profile ARN")
	case target.RoleArn == "":
		return nil, errors.Validation("target has no role ARN")
	}

	return []string{
		"credential-process",
		"--certificate", target.CertPath,
		"--private-key", target.KeyPath,
		"--trust-anchor-arn", target.TrustAnchorArn,
		"--profile-arn", target.ProfileArn,
		"--role-arn", target.RoleArn,
	}, nil
}

// Fetch runs the signing helper once for the target and returns the parsed
// session credentials. This is the identity check behind `creds test`.
func Fetch(execr executor.CommandExecutor, helperPath string, target *config.Target) (*Credentials, error) {
	args, err := ProcessArgs(target)
	if err != nil {
		return nil, err
	}

	logger.DebugFields("invoking signing helper", map[string]interface{}{
		"binary": helperPath,
		"target": target.Name,
	})

	// Parse stdout only: the helper logs diagnostics to stderr on
	// otherwise successful runs, which would corrupt the JSON.
	out, err := execr.Output(helperPath, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHelper, fmt.Sprintf("signing helper failed: %s", diagnostic(out, err)), err)
	}

	var creds Credentials
	if err := json.Unmarshal(out, &creds); err != nil {
		return nil, errors.Wrap(errors.ErrCodeHelper, "signing helper returned invalid credential JSON", err)
	}
	if creds.AccessKeyID == "" {
		return nil, errors.Wrap(errors.ErrCodeHelper, "signing helper returned no access key", nil)
	}
	return &creds, nil
}

// diagnostic picks the most useful line of helper output for an error
// message: stderr when the failure carries it, stdout otherwise.
func diagnostic(out []byte, err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return firstLine(exitErr.Stderr)
	}
	return firstLine(out)
}

// firstLine trims helper output down to its first line for error messages.
func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
