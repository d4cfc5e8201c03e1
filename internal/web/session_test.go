package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	store := NewSessionStore()

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}
	session, err := store.Create(token, "user1", "Test User")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.ID == "" {
		t.Fatal("Create() returned empty session ID")
	}
	if session.UserID != "user1" || session.UserName != "Test User" {
		t.Errorf("session = %+v, want user1 / Test User", session)
	}

	got := store.Get(session.ID)
	if got == nil {
		t.Fatal("Get() returned nil for fresh session")
	}
	if got.Token.AccessToken != "access" {
		t.Errorf("Get() token = %q, want access", got.Token.AccessToken)
	}
}

func TestSessionStoreGetUnknown(t *testing.T) {
	store := NewSessionStore()
	if got := store.Get("nonexistent"); got != nil {
		t.Errorf("Get(nonexistent) = %+v, want nil", got)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore()

	session, err := store.Create(&oauth2.Token{AccessToken: "a"}, "user1", "Test")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Backdate past the TTL.
	store.mu.Lock()
	store.sessions[session.ID].CreatedAt = time.Now().Add(-sessionTTL - time.Minute)
	store.mu.Unlock()

	if got := store.Get(session.ID); got != nil {
		t.Errorf("Get() = %+v for expired session, want nil", got)
	}
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore()

	session, err := store.Create(&oauth2.Token{AccessToken: "a"}, "user1", "Test")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	store.Delete(session.ID)
	if got := store.Get(session.ID); got != nil {
		t.Errorf("Get() = %+v after Delete, want nil", got)
	}
}

func TestSessionStoreUpdateToken(t *testing.T) {
	store := NewSessionStore()

	session, err := store.Create(&oauth2.Token{AccessToken: "old"}, "user1", "Test")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	store.UpdateToken(session.ID, &oauth2.Token{AccessToken: "new", RefreshToken: "r2"})

	got := store.Get(session.ID)
	if got == nil {
		t.Fatal("Get() returned nil after UpdateToken")
	}
	if got.Token.AccessToken != "new" {
		t.Errorf("token = %q, want new", got.Token.AccessToken)
	}

	// Updating an unknown session must not panic or create an entry.
	store.UpdateToken("unknown", &oauth2.Token{AccessToken: "x"})
	if got := store.Get("unknown"); got != nil {
		t.Errorf("Get(unknown) = %+v after UpdateToken, want nil", got)
	}
}

func TestSessionStoreCookieRoundTrip(t *testing.T) {
	store := NewSessionStore()

	session, err := store.Create(&oauth2.Token{AccessToken: "a"}, "user1", "Test")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec := httptest.NewRecorder()
	store.SetCookie(rec, session)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	got := store.GetFromRequest(req)
	if got == nil || got.ID != session.ID {
		t.Errorf("GetFromRequest() = %+v, want session %s", got, session.ID)
	}
}

func TestSessionStoreGetFromRequestNoCookie(t *testing.T) {
	store := NewSessionStore()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := store.GetFromRequest(req); got != nil {
		t.Errorf("GetFromRequest() = %+v without cookie, want nil", got)
	}
}
