package cli

import (
	"context"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/executor"
	"github.com/anchorctl/anchorctl/internal/input"
	"github.com/anchorctl/anchorctl/internal/issuer"
	"github.com/anchorctl/anchorctl/internal/rolesanywhere"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func (m *MockConfigLoader) Load() (*config.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockIssuerFactory is a test double for IssuerFactory
type MockIssuerFactory struct {
	Issuer issuer.Issuer
	Err    error
}

func (m *MockIssuerFactory) ForTarget(_ context.Context, _ string, _ *config.Target) (issuer.Issuer, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Issuer != nil {
		return m.Issuer, nil
	}
	return &issuer.Mock{}, nil
}

// MockAWSFactory is a test double for AWSClientFactory
type MockAWSFactory struct {
	C   *rolesanywhere.Clients
	Err error
}

func (m *MockAWSFactory) Clients(_ context.Context, _ string) (*rolesanywhere.Clients, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.C != nil {
		return m.C, nil
	}
	return &rolesanywhere.Clients{}, nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader: &MockConfigLoader{Cfg: config.New()},
			Issuers:      &MockIssuerFactory{},
			AWS:          &MockAWSFactory{},
			Executor:     &executor.MockExecutor{},
			StdinReader:  input.NewStringReader("y\n"),
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithIssuer sets the issuer returned for every target
func (b *MockDependenciesBuilder) WithIssuer(iss issuer.Issuer) *MockDependenciesBuilder {
	b.deps.Issuers = &MockIssuerFactory{Issuer: iss}
	return b
}

// WithIssuerError sets an error for issuer construction
func (b *MockDependenciesBuilder) WithIssuerError(err error) *MockDependenciesBuilder {
	b.deps.Issuers = &MockIssuerFactory{Err: err}
	return b
}

// WithAWSClients sets the AWS service clients
func (b *MockDependenciesBuilder) WithAWSClients(c *rolesanywhere.Clients) *MockDependenciesBuilder {
	b.deps.AWS = &MockAWSFactory{C: c}
	return b
}

// WithExecutor sets the command executor
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithStdinInput sets the stdin input for the mock
func (b *MockDependenciesBuilder) WithStdinInput(in string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(in)
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}
