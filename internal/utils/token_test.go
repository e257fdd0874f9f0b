package utils

import (
	"strings"
	"testing"
)

func TestIssueInviteToken(t *testing.T) {
	token, hash, err := IssueInviteToken()
	if err != nil {
		t.Fatalf("IssueInviteToken() error = %v", err)
	}

	// 32 random bytes -> 43 chars of unpadded base64
	if len(token) != 43 {
		t.Errorf("token length = %d, expected 43", len(token))
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("token %q is not URL-safe", token)
	}
	if hash == "" || hash == token {
		t.Error("hash must be present and distinct from the token")
	}
}

func TestIssueInviteToken_Unique(t *testing.T) {
	token1, _, _ := IssueInviteToken()
	token2, _, _ := IssueInviteToken()

	if token1 == token2 {
		t.Error("two issued tokens should never collide")
	}
}

func TestVerifyInviteToken(t *testing.T) {
	token, hash, err := IssueInviteToken()
	if err != nil {
		t.Fatalf("IssueInviteToken() error = %v", err)
	}

	if !VerifyInviteToken(token, hash) {
		t.Error("issued token should verify against its own hash")
	}
	if VerifyInviteToken("wrong-token", hash) {
		t.Error("wrong token should not verify")
	}

	other, _, _ := IssueInviteToken()
	if VerifyInviteToken(other, hash) {
		t.Error("a different issued token should not verify")
	}
}
