package config

import "time"

// Target represents a managed certificate identity: the local key/cert pair
// and the AWS resources that let it assume a role through Roles Anywhere.
type Target struct {
	Name           string    `yaml:"name" json:"name"`
	CertPath       string    `yaml:"cert" json:"cert"`
	KeyPath        string    `yaml:"key" json:"key"`
	ChainPath      string    `yaml:"chain,omitempty" json:"chain,omitempty"`
	CommonName     string    `yaml:"common_name" json:"common_name"`
	Organization   string    `yaml:"organization,omitempty" json:"organization,omitempty"`
	OrgUnit        string    `yaml:"organizational_unit,omitempty" json:"organizational_unit,omitempty"`
	Country        string    `yaml:"country,omitempty" json:"country,omitempty"`
	Issuer         string    `yaml:"issuer" json:"issuer"` // acmpca, local
	PCAArn         string    `yaml:"pca_arn,omitempty" json:"pca_arn,omitempty"`
	ValidityDays   int       `yaml:"validity_days,omitempty" json:"validity_days,omitempty"`
	TrustAnchorArn string    `yaml:"trust_anchor_arn,omitempty" json:"trust_anchor_arn,omitempty"`
	ProfileArn     string    `yaml:"profile_arn,omitempty" json:"profile_arn,omitempty"`
	RoleArn        string    `yaml:"role_arn,omitempty" json:"role_arn,omitempty"`
	CreatedAt      time.Time `yaml:"created_at" json:"created_at"`
}

// Issuer type constants
const (
	IssuerACMPCA = "acmpca"
	IssuerLocal  = "local"
)

// ValidIssuers returns all valid issuer types
func ValidIssuers() []string {
	return []string{IssuerACMPCA, IssuerLocal}
}

// IsValidIssuer checks if the given issuer type is valid
func IsValidIssuer(issuer string) bool {
	for _, valid := range ValidIssuers() {
		if issuer == valid {
			return true
		}
	}
	return false
}

// BackupPath returns the path the previous certificate is preserved at
// after a renewal.
func (t *Target) BackupPath() string {
	return t.CertPath + ".bak"
}

// ChainBackupPath returns the path the previous chain bundle is preserved
// at after a renewal. Empty when the target has no chain path.
func (t *Target) ChainBackupPath() string {
	if t.ChainPath == "" {
		return ""
	}
	return t.ChainPath + ".bak"
}

// LockPath returns the lock file path guarding renewals of this target.
func (t *Target) LockPath() string {
	return t.CertPath + ".lock"
}
