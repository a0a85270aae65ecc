package password

import (
	"strings"
	"testing"
)

func TestVerifySaltedRoundTrip(t *testing.T) {
	v := NewVerifier()

	stored, err := v.Generate("hunter2")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	accepted, migrated, err := v.Verify(stored, "hunter2")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !accepted {
		t.Fatal("correct password rejected")
	}
	if migrated != "" {
		t.Fatalf("salted credential triggered migration: %q", migrated)
	}

	accepted, _, err = v.Verify(stored, "hunter3")
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if accepted {
		t.Fatal("wrong password accepted")
	}
}

func TestVerifyLegacyMigration(t *testing.T) {
	v := NewVerifier()

	legacy := sha1Hex("oldpass")

	accepted, migrated, err := v.Verify(legacy, "oldpass")
	if err != nil {
		t.Fatalf("verify legacy: %v", err)
	}
	if !accepted {
		t.Fatal("legacy digest rejected its own plaintext")
	}
	if migrated == "" {
		t.Fatal("legacy match produced no migrated credential")
	}

	digest, salt, ok := strings.Cut(migrated, ":")
	if !ok {
		t.Fatalf("migrated credential %q has no salt", migrated)
	}
	if len(salt) != SaltLength {
		t.Fatalf("salt length = %d, want %d", len(salt), SaltLength)
	}
	if digest != sha1Hex(salt+"oldpass") {
		t.Fatal("migrated digest does not cover salt and plaintext")
	}

	// The migrated form now verifies through the salted path.
	accepted, again, err := v.Verify(migrated, "oldpass")
	if err != nil {
		t.Fatalf("verify migrated: %v", err)
	}
	if !accepted {
		t.Fatal("migrated credential rejected original plaintext")
	}
	if again != "" {
		t.Fatal("migrated credential migrated again")
	}
}

func TestVerifyLegacyWrongPasswordDoesNotMigrate(t *testing.T) {
	v := NewVerifier()

	accepted, migrated, err := v.Verify(sha1Hex("oldpass"), "wrong")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if accepted {
		t.Fatal("wrong password accepted against legacy digest")
	}
	if migrated != "" {
		t.Fatal("rejected attempt produced a migrated credential")
	}
}

func TestVerifyEmptyInputs(t *testing.T) {
	v := NewVerifier()

	if accepted, _, _ := v.Verify("", "pass"); accepted {
		t.Fatal("empty stored credential accepted")
	}
	if accepted, _, _ := v.Verify(sha1Hex("x"), ""); accepted {
		t.Fatal("empty submission accepted")
	}
}

func TestGenerateUniqueSalts(t *testing.T) {
	v := NewVerifier()

	a, err := v.Generate("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := v.Generate("same")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two generated credentials share a salt")
	}
}
