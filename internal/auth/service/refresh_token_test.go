package service

import "testing"

func TestNewRefreshTokenIsOpaqueAndUnique(t *testing.T) {
	first, err := newRefreshToken()
	if err != nil {
		t.Fatalf("newRefreshToken: %v", err)
	}
	second, err := newRefreshToken()
	if err != nil {
		t.Fatalf("newRefreshToken: %v", err)
	}

	if first == second {
		t.Error("two minted tokens are identical")
	}
	if len(first) < refreshTokenBytes {
		t.Errorf("token length %d, want at least %d", len(first), refreshTokenBytes)
	}
}

func TestHashRefreshTokenIsStableAndOneWay(t *testing.T) {
	raw := "opaque-refresh-token"

	hash := hashRefreshToken(raw)
	if hash != hashRefreshToken(raw) {
		t.Error("hashing the same token twice differs")
	}
	if hash == raw {
		t.Error("hash equals the raw token")
	}
	if len(hash) != 64 {
		t.Errorf("hash length %d, want 64 hex chars", len(hash))
	}
}
