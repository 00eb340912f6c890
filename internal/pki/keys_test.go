package pki

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"os"
	"path/filepath"
	"testing"

	"github.com/anchorctl/anchorctl/internal/errors"
)

func TestGenerateKey(t *testing.T) {
	tests := []struct {
		keyType string
		wantErr bool
	}{
		{KeyTypeRSA, false},
		{KeyTypeEC, false},
		{"ed448", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.keyType, func(t *testing.T) {
			key, err := GenerateKey(tt.keyType)
			if tt.wantErr {
				if err == nil {
					t.Errorf("GenerateKey(%q) should fail", tt.keyType)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateKey(%q) failed: %v", tt.keyType, err)
			}

			switch tt.keyType {
			case KeyTypeRSA:
				if _, ok := key.(*rsa.PrivateKey); !ok {
					t.Errorf("expected *rsa.PrivateKey, got %T", key)
				}
			case KeyTypeEC:
				if _, ok := key.(*ecdsa.PrivateKey); !ok {
					t.Errorf("expected *ecdsa.PrivateKey, got %T", key)
				}
			}
		})
	}
}

func TestEncodeParsePrivateKeyRoundTrip(t *testing.T) {
	for _, keyType := range []string{KeyTypeRSA, KeyTypeEC} {
		t.Run(keyType, func(t *testing.T) {
			key, err := GenerateKey(keyType)
			if err != nil {
				t.Fatal(err)
			}

			data, err := EncodePEMPrivateKey(key)
			if err != nil {
				t.Fatalf("EncodePEMPrivateKey failed: %v", err)
			}

			parsed, err := ParsePEMPrivateKey(data)
			if err != nil {
				t.Fatalf("ParsePEMPrivateKey failed: %v", err)
			}

			if !PublicKeysEqual(key.Public(), parsed.Public()) {
				t.Error("round-tripped key has different public key")
			}
		})
	}
}

func TestParsePEMPrivateKeyInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not a key")},
		{"wrong block type", []byte("-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePEMPrivateKey(tt.data); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestSaveLoadPrivateKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.pem")

	key, err := GenerateKey(KeyTypeEC)
	if err != nil {
		t.Fatal(err)
	}

	if err := SavePrivateKey(path, key); err != nil {
		t.Fatalf("SavePrivateKey failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadPrivateKey(path)
	if err != nil {
		t.Fatalf("LoadPrivateKey failed: %v", err)
	}
	if !PublicKeysEqual(key.Public(), loaded.Public()) {
		t.Error("loaded key differs from saved key")
	}
}

func TestSavePrivateKeyRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.pem")

	key, err := GenerateKey(KeyTypeEC)
	if err != nil {
		t.Fatal(err)
	}
	if err := SavePrivateKey(path, key); err != nil {
		t.Fatal(err)
	}

	other, err := GenerateKey(KeyTypeEC)
	if err != nil {
		t.Fatal(err)
	}
	if err := SavePrivateKey(path, other); err == nil {
		t.Error("SavePrivateKey should refuse to overwrite an existing key")
	}
}

func TestLoadPrivateKeyMissing(t *testing.T) {
	_, err := LoadPrivateKey(filepath.Join(t.TempDir(), "missing.pem"))
	if !errors.Is(err, errors.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestPublicKeysEqual(t *testing.T) {
	a, err := GenerateKey(KeyTypeEC)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateKey(KeyTypeEC)
	if err != nil {
		t.Fatal(err)
	}

	if !PublicKeysEqual(a.Public(), a.Public()) {
		t.Error("key should equal itself")
	}
	if PublicKeysEqual(a.Public(), b.Public()) {
		t.Error("different keys should not be equal")
	}
}
