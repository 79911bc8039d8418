package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	access, jti, exp, err := p.IssueAccess("adm1", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" || jti == "" {
		t.Fatal("access token or jti empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	adminID, email, role, err := p.ValidateAccess(access)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if adminID != "adm1" || email != "admin@example.com" || role != "admin" {
		t.Errorf("claims = %q %q %q", adminID, email, role)
	}
}

func TestTokenProvider_IssueAndValidateIntent(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	punchAt := time.Date(2026, 3, 9, 8, 55, 0, 0, time.UTC)

	token, exp, err := p.IssueIntent("emp1", "fp1", "arrival", "2026-03-09", punchAt)
	if err != nil {
		t.Fatalf("IssueIntent: %v", err)
	}
	if token == "" {
		t.Fatal("intent token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := p.ValidateIntent(token)
	if err != nil {
		t.Fatalf("ValidateIntent: %v", err)
	}
	if claims.Subject != "emp1" {
		t.Errorf("subject = %q, want emp1", claims.Subject)
	}
	if claims.Kind != "arrival" || claims.Fingerprint != "fp1" || claims.Day != "2026-03-09" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.PunchAt != punchAt.Unix() {
		t.Errorf("punch_at = %d, want %d", claims.PunchAt, punchAt.Unix())
	}
}

func TestTokenProvider_ValidateAccess_RejectsIntentAndGarbage(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	if _, _, _, err := p.ValidateAccess("not-a-token"); err != ErrInvalidToken {
		t.Errorf("garbage token: err = %v, want ErrInvalidToken", err)
	}
	if _, err := p.ValidateIntent(""); err != ErrInvalidToken {
		t.Errorf("empty token: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_ValidateIntent_WrongIssuer(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	other := NewTokenProvider(signer, pub, "other-issuer", "test-audience", time.Minute, time.Minute)

	token, _, err := other.IssueIntent("emp1", "fp1", "departure", "2026-03-09", time.Now())
	if err != nil {
		t.Fatalf("IssueIntent: %v", err)
	}

	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, err := p.ValidateIntent(token); err != ErrInvalidToken {
		t.Errorf("wrong issuer: err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenProvider_ValidateIntent_Expired(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", time.Minute, -time.Minute)

	token, _, err := p.IssueIntent("emp1", "fp1", "arrival", "2026-03-09", time.Now())
	if err != nil {
		t.Fatalf("IssueIntent: %v", err)
	}
	if _, err := p.ValidateIntent(token); err != ErrInvalidToken {
		t.Errorf("expired token: err = %v, want ErrInvalidToken", err)
	}
}
