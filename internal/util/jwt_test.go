package util

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "session-123", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken returned empty token")
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.SessionID != "session-123" {
		t.Errorf("SessionID = %q, want %q", claims.SessionID, "session-123")
	}
	if claims.ExpiresAt == nil {
		t.Fatal("ExpiresAt is nil")
	}
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	token, err := GenerateToken(testSecret, "s1", 0)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}

	// 默认有效期 30 天
	want := time.Now().Add(30 * 24 * time.Hour)
	got := claims.ExpiresAt.Time
	if got.Before(want.Add(-time.Minute)) || got.After(want.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want ~%v", got, want)
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(testSecret, "s1", time.Nanosecond)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := ParseToken(testSecret, token); err == nil {
		t.Error("ParseToken on expired token error = nil, want error")
	}
}

func TestParseToken_Tampered(t *testing.T) {
	token, err := GenerateToken(testSecret, "s1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	// 篡改负载部分
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format: %d parts", len(parts))
	}
	tampered := parts[0] + "." + "x" + parts[1][1:] + "." + parts[2]

	if _, err := ParseToken(testSecret, tampered); err == nil {
		t.Error("ParseToken on tampered token error = nil, want error")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "s1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	// 轮换签名密钥会使所有已签发凭证失效
	if _, err := ParseToken("rotated-secret", token); err == nil {
		t.Error("ParseToken with wrong secret error = nil, want error")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	testCases := []string{"", "not-a-jwt", "a.b.c"}
	for _, tc := range testCases {
		if _, err := ParseToken(testSecret, tc); err == nil {
			t.Errorf("ParseToken(%q) error = nil, want error", tc)
		}
	}
}
