package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSessionIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewSessionIssuer([]byte("super-secret-key"), time.Hour)

	tok, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("user id mismatch: got %q want %q", userID, "user-123")
	}
}

func TestSessionIssuer_Expired(t *testing.T) {
	issuer := NewSessionIssuer([]byte("super-secret-key"), time.Hour)

	issued := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer.now = func() time.Time { return issued }
	tok, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(time.Hour + time.Second) }
	if _, err := issuer.Verify(tok); !errors.Is(err, ErrInvalidSessionToken) {
		t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
	}
}

func TestSessionIssuer_WrongKey(t *testing.T) {
	issuer := NewSessionIssuer([]byte("super-secret-key"), time.Hour)
	other := NewSessionIssuer([]byte("a-different-key!"), time.Hour)

	tok, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Verify(tok); !errors.Is(err, ErrInvalidSessionToken) {
		t.Fatalf("expected ErrInvalidSessionToken, got %v", err)
	}
}

func TestSessionIssuer_Garbage(t *testing.T) {
	issuer := NewSessionIssuer([]byte("super-secret-key"), time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "aaaa.bbbb.cccc"} {
		if _, err := issuer.Verify(tok); !errors.Is(err, ErrInvalidSessionToken) {
			t.Fatalf("expected ErrInvalidSessionToken for %q, got %v", tok, err)
		}
	}
}
