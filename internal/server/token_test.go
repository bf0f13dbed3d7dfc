package server

import (
	"testing"
	"time"
)

func TestFormSigner_RoundTrip(t *testing.T) {
	signer := NewFormSigner("secret")

	token := signer.Generate()
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}
	if !signer.Verify(token) {
		t.Error("Verify() = false for freshly generated token")
	}
}

func TestFormSigner_RejectsForeignToken(t *testing.T) {
	signer := NewFormSigner("secret")
	other := NewFormSigner("different-secret")

	if signer.Verify(other.Generate()) {
		t.Error("Verify() accepted a token signed with a different secret")
	}
}

func TestFormSigner_RejectsGarbage(t *testing.T) {
	signer := NewFormSigner("secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64!!!"},
		{"too short", "YWJj"},
		{"tampered", signer.Generate() + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if signer.Verify(tt.token) {
				t.Errorf("Verify(%q) = true, want false", tt.token)
			}
		})
	}
}

func TestFormSigner_RejectsExpiredToken(t *testing.T) {
	signer := NewFormSigner("secret")

	issued := time.Now()
	signer.now = func() time.Time { return issued }
	token := signer.Generate()

	signer.now = func() time.Time { return issued.Add(tokenTTL + time.Minute) }
	if signer.Verify(token) {
		t.Error("Verify() accepted an expired token")
	}

	signer.now = func() time.Time { return issued.Add(tokenTTL - time.Minute) }
	if !signer.Verify(token) {
		t.Error("Verify() rejected a token inside its lifetime")
	}
}
