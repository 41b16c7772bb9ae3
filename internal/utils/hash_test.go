// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

const testHashKey = "test-secret-key"

func TestHashString_MatchesDirectHMAC(t *testing.T) {
	data := "user-credential"

	got := HashString(data, testHashKey)

	mac := hmac.New(sha256.New, []byte(testHashKey))
	mac.Write([]byte(data))
	want := hex.EncodeToString(mac.Sum(nil))

	if got != want {
		t.Errorf("hash mismatch:\n  got:  %s\n  want: %s", got, want)
	}
}

func TestHashString_Deterministic(t *testing.T) {
	hash1 := HashString("same-credential", testHashKey)
	hash2 := HashString("same-credential", testHashKey)

	if hash1 != hash2 {
		t.Errorf("same input must produce same hash:\n  hash1: %s\n  hash2: %s", hash1, hash2)
	}
}

func TestHashString_DifferentInputs(t *testing.T) {
	hash1 := HashString("credential-one", testHashKey)
	hash2 := HashString("credential-two", testHashKey)

	if hash1 == hash2 {
		t.Error("different inputs must produce different hashes")
	}
}

func TestHashString_DifferentKeys(t *testing.T) {
	hash1 := HashString("credential", "key-one")
	hash2 := HashString("credential", "key-two")

	if hash1 == hash2 {
		t.Error("different keys must produce different hashes for the same input")
	}
}

func TestHashString_EmptyInput(t *testing.T) {
	got := HashString("", testHashKey)

	if len(got) != sha256.Size*2 {
		t.Errorf("expected %d hex characters, got %d", sha256.Size*2, len(got))
	}
}
