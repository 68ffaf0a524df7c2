package auth

import (
	"testing"
	"time"
)

func TestIssueAndParseToken(t *testing.T) {
	token, exp, err := IssueToken(7, "Asha", "jti-1", "facultypool", "key", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Error("expiry should be in the future")
	}

	claims, err := ParseToken(token, "key", "facultypool")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.FacultyID != 7 || claims.Name != "Asha" || claims.ID != "jti-1" {
		t.Errorf("claims = %+v, want the issued values", claims)
	}
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	token, _, err := IssueToken(7, "Asha", "jti-1", "facultypool", "key", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken(token, "other-key", "facultypool"); err == nil {
		t.Error("token signed with a different key must not parse")
	}
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	token, _, err := IssueToken(7, "Asha", "jti-1", "someone-else", "key", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken(token, "key", "facultypool"); err == nil {
		t.Error("token from a different issuer must not parse")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, _, err := IssueToken(7, "Asha", "jti-1", "facultypool", "key", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseToken(token, "key", "facultypool"); err == nil {
		t.Error("expired token must not parse")
	}
}
