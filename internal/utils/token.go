package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// IssueInviteToken generates a URL-safe invitation token with 256 bits of
// entropy and the bcrypt hash under which it is stored. Only the hash may be
// persisted or logged.
func IssueInviteToken() (token, hash string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", err
	}
	token = base64.RawURLEncoding.EncodeToString(raw)
	hash, err = HashPassword(token)
	if err != nil {
		return "", "", err
	}
	return token, hash, nil
}

// VerifyInviteToken checks a candidate token against a stored hash. Because
// each hash carries its own salt, lookup by hash is impossible; callers scan
// candidate rows and verify each.
func VerifyInviteToken(candidate, storedHash string) bool {
	return CheckPassword(candidate, storedHash)
}
