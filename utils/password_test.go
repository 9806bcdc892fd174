package utils

import (
	"strings"
	"testing"
)

func TestHashPasswordIsSaltedAndVerifies(t *testing.T) {
	h1, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical; salt missing")
	}
	if h1 == "hunter22" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(h1, "hunter22") || !CheckPassword(h2, "hunter22") {
		t.Fatal("CheckPassword rejected the right password")
	}
	if CheckPassword(h1, "hunter23") {
		t.Fatal("CheckPassword accepted the wrong password")
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		if CheckPassword(hash, "whatever") {
			t.Errorf("CheckPassword(%q) = true", hash)
		}
	}
}

func TestLongPasswordsKeepEveryByte(t *testing.T) {
	base := strings.Repeat("a", 100)
	hash, err := HashPassword(base + "1")
	if err != nil {
		t.Fatalf("HashPassword(101 bytes): %v", err)
	}
	if !CheckPassword(hash, base+"1") {
		t.Fatal("CheckPassword rejected the long password")
	}
	// The two differ only past bcrypt's 72-byte input window.
	if CheckPassword(hash, base+"2") {
		t.Fatal("CheckPassword ignored bytes past 72")
	}
}
