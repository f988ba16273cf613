package stripe

import (
	"errors"
	"testing"

	"github.com/Dhoini/storefront-payments/internal/domain"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"product.created"}`)
	secret := "whsec_test_secret"
	header := ComputeSignatureHeader(payload, "1700000000", secret)

	if err := VerifySignature(payload, header, secret); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}
}

func TestVerifySignatureRejects(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"product.created"}`)
	secret := "whsec_test_secret"
	header := ComputeSignatureHeader(payload, "1700000000", secret)

	tests := []struct {
		name    string
		payload []byte
		header  string
		secret  string
	}{
		{
			name:    "tampered payload",
			payload: []byte(`{"id":"evt_2","type":"product.created"}`),
			header:  header,
			secret:  secret,
		},
		{
			name:    "wrong secret",
			payload: payload,
			header:  header,
			secret:  "whsec_other_secret",
		},
		{
			name:    "tampered timestamp",
			payload: payload,
			header:  "t=1700000001," + header[len("t=1700000000,"):],
			secret:  secret,
		},
		{
			name:    "missing header",
			payload: payload,
			header:  "",
			secret:  secret,
		},
		{
			name:    "missing v1 scheme",
			payload: payload,
			header:  "t=1700000000,v0=deadbeef",
			secret:  secret,
		},
		{
			name:    "empty secret fails closed",
			payload: payload,
			header:  header,
			secret:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(tt.payload, tt.header, tt.secret)
			if err == nil {
				t.Fatal("expected signature verification to fail")
			}
			if !errors.Is(err, domain.ErrInvalidSignature) {
				t.Fatalf("expected ErrInvalidSignature, got: %v", err)
			}
		})
	}
}

func TestParseSignatureHeader(t *testing.T) {
	parsed := ParseSignatureHeader("t=1700000000,v1=abc123,v0=def456")

	if parsed["t"] != "1700000000" {
		t.Errorf("expected timestamp 1700000000, got %q", parsed["t"])
	}
	if parsed["v1"] != "abc123" {
		t.Errorf("expected v1 abc123, got %q", parsed["v1"])
	}
	if parsed["v0"] != "def456" {
		t.Errorf("expected v0 def456, got %q", parsed["v0"])
	}
}
