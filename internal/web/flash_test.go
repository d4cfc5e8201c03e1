package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		message string
	}{
		{name: "success", kind: "success", message: "Playlist saved"},
		{name: "error with punctuation", kind: "error", message: "Spotify returned an error. Try again!"},
		{name: "message containing separator", kind: "warning", message: "a|b stays intact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := httptest.NewRecorder()
			setFlash(set, tt.kind, tt.message)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range set.Result().Cookies() {
				req.AddCookie(c)
			}

			pop := httptest.NewRecorder()
			flash := popFlash(pop, req)
			if flash == nil {
				t.Fatal("popFlash() returned nil")
			}
			if flash.Type != tt.kind || flash.Message != tt.message {
				t.Errorf("popFlash() = %+v, want %s / %q", flash, tt.kind, tt.message)
			}

			// The cookie must be cleared in the same response.
			var cleared bool
			for _, c := range pop.Result().Cookies() {
				if c.Name == flashCookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			if !cleared {
				t.Error("popFlash() did not clear the flash cookie")
			}
		})
	}
}

func TestPopFlashNoCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if flash := popFlash(rec, req); flash != nil {
		t.Errorf("popFlash() = %+v without cookie, want nil", flash)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("popFlash() set cookies with nothing to clear")
	}
}
