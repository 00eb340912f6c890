package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anchorctl/anchorctl/internal/config"
	"github.com/anchorctl/anchorctl/internal/pki"
	"github.com/spf13/cobra"
)

func writeTestFile(t *testing.T, path string, data []byte) error {
	t.Helper()
	return os.WriteFile(path, data, 0644)
}

// setupTest installs mock dependencies and restores the originals on
// cleanup. Commands invoked directly (outside Execute) need a context set.
func setupTest(t *testing.T, d *Dependencies) {
	t.Helper()
	old := GetDeps()
	SetDeps(d)
	for _, c := range []*cobra.Command{renewCmd, anchorCreateCmd, anchorListCmd, anchorShowCmd, profileCreateCmd, profileListCmd, roleCreateCmd, doctorCmd} {
		c.SetContext(context.Background())
	}
	t.Cleanup(func() {
		SetDeps(old)
	})
}

func TestValidateTargetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "app-prod", false},
		{"valid with dots", "app.prod.example", false},
		{"empty", "", true},
		{"spaces", "app prod", true},
		{"slash", "app/prod", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTargetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTargetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestResolveRegion(t *testing.T) {
	cfg := config.New()
	cfg.Region = "eu-west-1"

	if got := resolveRegion(cfg); got != "eu-west-1" {
		t.Errorf("resolveRegion = %q, want configured region", got)
	}

	region = "us-east-1"
	defer func() { region = "" }()
	if got := resolveRegion(cfg); got != "us-east-1" {
		t.Errorf("resolveRegion = %q, want flag override", got)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "yes\n", true},
		{"no", "n\n", false},
		{"empty", "\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTest(t, NewMockDeps().WithStdinInput(tt.input).Build())
			if got := confirm("Proceed?"); got != tt.want {
				t.Errorf("confirm = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCertStatus(t *testing.T) {
	dir := t.TempDir()

	ca, err := pki.CreateLocalCA(filepath.Join(dir, "ca"), pki.Subject{CommonName: "test-ca"}, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	key, err := pki.GenerateKey(pki.KeyTypeEC)
	if err != nil {
		t.Fatal(err)
	}
	csr, err := pki.CreateCSR(key, pki.Subject{CommonName: "app"})
	if err != nil {
		t.Fatal(err)
	}
	certPEM, err := ca.Sign(csr, 30*24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	certPath := filepath.Join(dir, "app.pem")
	if err := writeTestFile(t, certPath, certPEM); err != nil {
		t.Fatal(err)
	}

	target := &config.Target{Name: "app", CertPath: certPath}
	status, notAfter := certStatus(target, config.DefaultRenewWindow)
	if status != statusOK || notAfter == nil {
		t.Errorf("fresh certificate status = %s", status)
	}

	missing := &config.Target{Name: "gone", CertPath: filepath.Join(dir, "nope.pem")}
	status, notAfter = certStatus(missing, config.DefaultRenewWindow)
	if status != statusMissing || notAfter != nil {
		t.Errorf("missing certificate status = %s", status)
	}
}
