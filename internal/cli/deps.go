package cli

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/acmpca"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/errors"
	"github.com/anchorctl/anchorctl/internal/executor"
	"github.com/anchorctl/anchorctl/internal/input"
	"github.com/anchorctl/anchorctl/internal/issuer"
	"github.com/anchorctl/anchorctl/internal/rolesanywhere"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader ConfigLoader
	Issuers      IssuerFactory
	AWS          AWSClientFactory
	Executor     executor.CommandExecutor
	StdinReader  input.Reader
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// IssuerFactory builds the certificate issuer for a target
type IssuerFactory interface {
	ForTarget(ctx context.Context, region string, target *config.Target) (issuer.Issuer, error)
}

// AWSClientFactory builds the Roles Anywhere / IAM / STS clients
type AWSClientFactory interface {
	Clients(ctx context.Context, region string) (*rolesanywhere.Clients, error)
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader: &realConfigLoader{},
	Issuers:      &realIssuerFactory{},
	AWS:          &realAWSFactory{},
	Executor:     executor.NewSystemExecutor(),
	StdinReader:  input.NewStdinReader(),
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load() (*config.Config, error) {
	return config.Load()
}

func (r *realConfigLoader) Save(cfg *config.Config) error {
	return cfg.Save()
}

type realIssuerFactory struct{}

func (r *realIssuerFactory) ForTarget(ctx context.Context, region string, target *config.Target) (issuer.Issuer, error) {
	switch target.Issuer {
	case config.IssuerACMPCA:
		if target.PCAArn == "" {
			return nil, errors.Validation("target uses ACM PCA but has no PCA ARN")
		}
		var opts []func(*awsconfig.LoadOptions) error
		if region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAWS, "failed to load AWS configuration", err)
		}
		return issuer.NewPCAIssuer(acmpca.NewFromConfig(awsCfg), target.PCAArn), nil

	case config.IssuerLocal:
		dir, err := config.CADir()
		if err != nil {
			return nil, err
		}
		local, err := issuer.LoadLocalIssuer(dir)
		if err != nil {
			return nil, err
		}
		return local, nil

	default:
		return nil, errors.Validation("unknown issuer: " + target.Issuer)
	}
}

type realAWSFactory struct{}

func (r *realAWSFactory) Clients(ctx context.Context, region string) (*rolesanywhere.Clients, error) {
	return rolesanywhere.LoadClients(ctx, region)
}
