package crypto

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if string(hash) == "Password123" {
		t.Fatalf("hash must not equal plaintext")
	}
	if err := ComparePassword(hash, "Password123"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("Password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("Password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if string(first) == string(second) {
		t.Fatalf("expected salted hashes to differ")
	}
}
