package ledger

import (
	"encoding/hex"
	"testing"
)

func TestSignDeterministic(t *testing.T) {
	a := Sign(1, "a1-b2", "tok-white")
	b := Sign(1, "a1-b2", "tok-white")
	if a != b {
		t.Fatalf("signatures differ: %s vs %s", a, b)
	}
	raw, err := hex.DecodeString(a)
	if err != nil || len(raw) != 32 {
		t.Fatalf("expected 32-byte hex digest, got %q", a)
	}
}

func TestSignCoversEveryField(t *testing.T) {
	base := Sign(3, "a1-b2", "tok-white")
	for name, other := range map[string]string{
		"seq":     Sign(4, "a1-b2", "tok-white"),
		"payload": Sign(3, "a1-c3", "tok-white"),
		"token":   Sign(3, "a1-b2", "tok-black"),
	} {
		if other == base {
			t.Fatalf("changing %s did not change the signature", name)
		}
	}
}

func TestVerify(t *testing.T) {
	sig := Sign(7, "x:e2,e3,e4,e5", "tok")
	if !Verify(7, "x:e2,e3,e4,e5", "tok", sig) {
		t.Fatal("valid signature rejected")
	}
	if Verify(8, "x:e2,e3,e4,e5", "tok", sig) {
		t.Fatal("signature accepted for another sequence number")
	}
	if Verify(7, "x:e2,e3,e4,e5", "other", sig) {
		t.Fatal("signature accepted for another token")
	}
	if Verify(7, "x:e2,e3,e4,e5", "tok", "") {
		t.Fatal("empty signature accepted")
	}
}
