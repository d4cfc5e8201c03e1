package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// withURLParam attaches a chi route parameter to a request built
// outside a router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// testHandlers builds a Handlers with only the pieces the tested code
// paths touch.
func testHandlers() *Handlers {
	return &Handlers{
		sessions: NewSessionStore(),
		pending:  NewAnalysisCache(),
		logger:   zerolog.Nop(),
	}
}

func TestMineRequiresLogin(t *testing.T) {
	h := testHandlers()

	req := httptest.NewRequest(http.MethodGet, "/mine", nil)
	rec := httptest.NewRecorder()
	h.Mine(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("Location = %q, want /auth/login", loc)
	}
}

func TestSavePlaylistRequiresLogin(t *testing.T) {
	h := testHandlers()

	form := url.Values{"token": {"whatever"}}
	req := httptest.NewRequest(http.MethodPost, "/playlists/save", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.SavePlaylist(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("Location = %q, want /auth/login", loc)
	}
}

func TestRatePlaylistRequiresLogin(t *testing.T) {
	h := testHandlers()

	form := url.Values{"score": {"8"}}
	req := httptest.NewRequest(http.MethodPost, "/playlists/pl1/rate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.RatePlaylist(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("Location = %q, want /auth/login", loc)
	}
}

func TestRatePlaylistRejectsNonNumericScore(t *testing.T) {
	h := testHandlers()

	session, err := h.sessions.Create(nil, "user1", "Test")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	form := url.Values{"score": {"great"}}
	req := httptest.NewRequest(http.MethodPost, "/playlists/pl1/rate", strings.NewReader(form.Encode()))
	req = withURLParam(req, "id", "pl1")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID})
	rec := httptest.NewRecorder()
	h.RatePlaylist(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/playlists/pl1" {
		t.Errorf("Location = %q, want /playlists/pl1", loc)
	}

	// Rejection must be explained via flash.
	var flashed bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookieName && c.Value != "" {
			flashed = true
		}
	}
	if !flashed {
		t.Error("no flash cookie set for invalid score")
	}
}

func TestSubmitPlaylistRejectsEmptyLink(t *testing.T) {
	h := testHandlers()

	form := url.Values{"playlist_link": {"   "}}
	req := httptest.NewRequest(http.MethodPost, "/playlists", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.SubmitPlaylist(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestPreviewExpiredTokenRedirectsHome(t *testing.T) {
	h := testHandlers()

	req := httptest.NewRequest(http.MethodGet, "/playlists/preview?token=gone", nil)
	rec := httptest.NewRecorder()
	h.Preview(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestCleanGenres(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "trims and drops empties", input: []string{" rock ", "", "  ", "pop"}, want: []string{"rock", "pop"}},
		{name: "nil input", input: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanGenres(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("cleanGenres(%v) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("cleanGenres(%v)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
