package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	sessions := NewSessions("0123456789abcdef0123", time.Hour)
	token, err := sessions.Issue(42, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := sessions.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	sessions := NewSessions("0123456789abcdef0123", -time.Minute)
	token, err := sessions.Issue(1, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := sessions.Parse(token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for expired token, got %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuer := NewSessions("0123456789abcdef0123", time.Hour)
	verifier := NewSessions("another-secret-entirely", time.Hour)
	token, err := issuer.Issue(1, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for foreign signature, got %v", err)
	}
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	sessions := NewSessions("0123456789abcdef0123", time.Hour)
	handler := sessions.RequireUser(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect to %q, want /login", loc)
	}
}

func TestRequireUserPassesClaims(t *testing.T) {
	sessions := NewSessions("0123456789abcdef0123", time.Hour)
	token, err := sessions.Issue(7, "bob")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var gotID uint
	var gotName string
	handler := sessions.RequireUser(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserID(r.Context())
		gotName = Username(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	handler(httptest.NewRecorder(), req)

	if gotID != 7 || gotName != "bob" {
		t.Fatalf("claims on context = %d/%q", gotID, gotName)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "super-secret") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
