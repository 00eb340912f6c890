// Package config manages the anchorctl application configuration and the
// certificate target registry stored in YAML format.
//
// The config package provides persistent storage for certificate targets,
// tracking key/cert paths, subjects, issuer references, and the AWS
// resources (trust anchor, profile, role) associated with each identity.
// Configuration is stored in the user's home directory at
// ~/.config/anchorctl/config.yaml.
//
// # Configuration Structure
//
// The main Config struct contains:
//   - AWS region used for SDK calls
//   - Default requested validity period in days
//   - Renewal window (fraction of validity remaining that triggers renewal)
//   - Map of all managed certificate targets
//
// Example config.yaml:
//
//	region: us-east-1
//	validity_days: 7
//	renew_window: 0.3
//	targets:
//	  app-prod:
//	    name: app-prod
//	    cert: /etc/anchorctl/app-prod/cert.pem
//	    key: /etc/anchorctl/app-prod/key.pem
//	    common_name: app-prod
//	    organization: Example Corp
//	    issuer: acmpca
//	    pca_arn: arn:aws:acm-pca:us-east-1:111122223333:certificate-authority/11111111-2222-3333-4444-555555555555
//	    trust_anchor_arn: arn:aws:rolesanywhere:us-east-1:111122223333:trust-anchor/...
//	    created_at: 2026-02-01T10:00:00Z
//
// # Issuer Types
//
// Each target names the certificate authority that signs its renewals:
//   - acmpca: AWS Certificate Manager Private CA, referenced by ARN
//   - local: the self-managed CA key pair under ~/.config/anchorctl/ca
//
// Use the issuer constants (IssuerACMPCA, IssuerLocal) instead of string
// literals.
//
// # Usage
//
// Loading and modifying configuration:
//
//	// Load configuration (creates default if missing)
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Register a new target
//	target := &config.Target{
//	    Name:       "app-prod",
//	    CertPath:   "/etc/anchorctl/app-prod/cert.pem",
//	    KeyPath:    "/etc/anchorctl/app-prod/key.pem",
//	    CommonName: "app-prod",
//	    Issuer:     config.IssuerACMPCA,
//	    CreatedAt:  time.Now(),
//	}
//	if err := cfg.AddTarget(target); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Save(); err != nil {
//	    log.Fatal(err)
//	}
package config
