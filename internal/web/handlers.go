package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"playlistify/internal/db"
	"playlistify/internal/spotify"
)

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	auth      *spotifyauth.Authenticator
	oauth     *oauth2.Config
	appClient *http.Client
	sessions  *SessionStore
	pending   *AnalysisCache
	templates *Templates
	database  *db.DB
	logger    zerolog.Logger
}

// NewHandlers creates a Handlers instance. appClient is an HTTP
// client carrying the application's client-credentials token, used
// for analyses by users who have not logged in.
func NewHandlers(auth *spotifyauth.Authenticator, oauthCfg *oauth2.Config, appClient *http.Client, sessions *SessionStore, pending *AnalysisCache, templates *Templates, database *db.DB, logger zerolog.Logger) *Handlers {
	return &Handlers{
		auth:      auth,
		oauth:     oauthCfg,
		appClient: appClient,
		sessions:  sessions,
		pending:   pending,
		templates: templates,
		database:  database,
		logger:    logger,
	}
}

// pageData assembles the common template data for a request,
// consuming any pending flash message.
func (h *Handlers) pageData(w http.ResponseWriter, r *http.Request, title string) PageData {
	data := PageData{
		Title:       title,
		Flash:       popFlash(w, r),
		CurrentPath: r.URL.Path,
	}
	if session := h.sessions.GetFromRequest(r); session != nil {
		data.User = &UserData{ID: session.UserID, Name: session.UserName}
	}
	return data
}

// render writes a page template, logging and reporting failures.
func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		h.logger.Error().Err(err).Str("page", page).Msg("rendering template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// Home handles GET /.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	data := HomePageData{
		PageData:      h.pageData(w, r, "Playlistify"),
		Authenticated: h.sessions.GetFromRequest(r) != nil,
	}
	h.render(w, "home", data)
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// State cookie for CSRF validation on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
// On success the user row is upserted and a session is created.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		setFlash(w, "error", "Spotify authorization failed: "+errMsg)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		setFlash(w, "error", "Could not complete Spotify login.")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	client := spotifyapi.New(h.auth.Client(r.Context(), token))
	user, err := client.CurrentUser(r.Context())
	if err != nil {
		setFlash(w, "error", "Could not load your Spotify profile.")
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	dbUser := &db.User{ID: user.ID, Name: user.DisplayName}
	if len(user.Images) > 0 {
		url := user.Images[0].URL
		dbUser.ImageURL = &url
	}
	if err := h.database.Users().Upsert(r.Context(), dbUser); err != nil {
		h.logger.Error().Err(err).Str("user", user.ID).Msg("upserting user")
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	session, err := h.sessions.Create(token, user.ID, user.DisplayName)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	h.sessions.SetCookie(w, session)

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session and redirects home (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(session.ID)
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// freshToken returns a valid token for the session, performing a
// single refresh-token exchange when the stored token has expired.
// The refreshed token replaces the stored one.
func (h *Handlers) freshToken(r *http.Request, session *Session) (*oauth2.Token, error) {
	if session.Token.Valid() {
		return session.Token, nil
	}
	token, err := h.oauth.TokenSource(r.Context(), session.Token).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	h.sessions.UpdateToken(session.ID, token)
	return token, nil
}

// fetchClient picks the Spotify client for an analysis: the logged-in
// user's token when a session exists (so private playlists resolve),
// the application's client-credentials token otherwise. An expired
// session token gets one refresh attempt; failure falls back to
// re-authorization.
func (h *Handlers) fetchClient(w http.ResponseWriter, r *http.Request) (*spotify.Client, bool) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		return spotify.NewClient(h.appClient), true
	}

	token, err := h.freshToken(r, session)
	if err != nil {
		h.sessions.Delete(session.ID)
		h.sessions.ClearCookie(w)
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return nil, false
	}
	return spotify.NewClient(h.auth.Client(r.Context(), token)), true
}

// SubmitPlaylist handles POST /playlists: parse the submitted link,
// fetch and flatten the playlist, and stash the result for preview.
func (h *Handlers) SubmitPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, err := spotify.ParsePlaylistLink(r.FormValue("playlist_link"))
	if err != nil {
		setFlash(w, "warning", "That doesn't look like a Spotify playlist link.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	client, ok := h.fetchClient(w, r)
	if !ok {
		return
	}

	playlist, songs, artists, err := client.FetchPlaylist(r.Context(), playlistID)
	if err != nil {
		var apiErr *spotify.APIError
		if errors.As(err, &apiErr) {
			h.logger.Warn().Err(err).Str("playlist", playlistID).Msg("spotify fetch failed")
			setFlash(w, "error", "Spotify could not provide that playlist.")
		} else {
			h.logger.Error().Err(err).Str("playlist", playlistID).Msg("analyzing playlist")
			setFlash(w, "error", "Something went wrong while analyzing the playlist.")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	token := h.pending.Put(&Analysis{Playlist: playlist, Songs: songs, Artists: artists})
	http.Redirect(w, r, "/playlists/preview?token="+token, http.StatusSeeOther)
}

// Preview handles GET /playlists/preview: render a pending analysis.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	analysis := h.pending.Get(r.URL.Query().Get("token"))
	if analysis == nil {
		setFlash(w, "warning", "That analysis has expired. Submit the playlist again.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := PreviewPageData{
		PageData:      h.pageData(w, r, analysis.Playlist.Title),
		Token:         r.URL.Query().Get("token"),
		Playlist:      analysis.Playlist,
		Songs:         analysis.Songs,
		ArtistCount:   len(analysis.Artists),
		Authenticated: h.sessions.GetFromRequest(r) != nil,
	}
	h.render(w, "preview", data)
}

// SavePlaylist handles POST /playlists/save: persist a pending
// analysis for the logged-in user in one transaction.
func (h *Handlers) SavePlaylist(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return
	}

	token := r.FormValue("token")
	analysis := h.pending.Get(token)
	if analysis == nil {
		setFlash(w, "warning", "That analysis has expired. Submit the playlist again.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	user := &db.User{ID: session.UserID, Name: session.UserName}
	err := h.database.Playlists().Save(r.Context(), analysis.Playlist, analysis.Songs, analysis.Artists, user)
	if err != nil {
		h.logger.Error().Err(err).Str("playlist", analysis.Playlist.ID).Msg("saving playlist")
		setFlash(w, "error", "Could not save the playlist. Nothing was stored.")
		http.Redirect(w, r, "/playlists/preview?token="+token, http.StatusSeeOther)
		return
	}
	h.pending.Delete(token)

	setFlash(w, "success", "Playlist saved.")
	http.Redirect(w, r, "/playlists/"+analysis.Playlist.ID, http.StatusSeeOther)
}

// PlaylistPage handles GET /playlists/{id}: the stored playlist with
// songs, artists, and reviews.
func (h *Handlers) PlaylistPage(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")

	detail, err := h.database.Playlists().Detail(r.Context(), playlistID)
	if errors.Is(err, db.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("playlist", playlistID).Msg("loading playlist")
		http.Error(w, "Failed to load playlist", http.StatusInternalServerError)
		return
	}

	data := DetailPageData{
		PageData:      h.pageData(w, r, detail.Playlist.Title),
		Detail:        detail,
		Authenticated: h.sessions.GetFromRequest(r) != nil,
	}
	h.render(w, "playlist", data)
}

// RatePlaylist handles POST /playlists/{id}/rate.
func (h *Handlers) RatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")

	session := h.sessions.GetFromRequest(r)
	if session == nil {
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return
	}

	score, err := strconv.Atoi(r.FormValue("score"))
	if err != nil {
		setFlash(w, "warning", "Score must be a whole number between 0 and 10.")
		http.Redirect(w, r, "/playlists/"+playlistID, http.StatusSeeOther)
		return
	}

	var comment *string
	if text := strings.TrimSpace(r.FormValue("comment")); text != "" {
		comment = &text
	}

	err = h.database.Ratings().Rate(r.Context(), session.UserID, playlistID, score, comment)
	switch {
	case errors.Is(err, db.ErrScoreOutOfRange):
		setFlash(w, "warning", "Score must be between 0 and 10.")
	case errors.Is(err, db.ErrAlreadyRated):
		setFlash(w, "warning", "You have already rated this playlist.")
	case err != nil:
		h.logger.Error().Err(err).Str("playlist", playlistID).Msg("saving rating")
		setFlash(w, "error", "Could not save your rating.")
	default:
		setFlash(w, "success", "Thanks for rating!")
	}
	http.Redirect(w, r, "/playlists/"+playlistID, http.StatusSeeOther)
}

// Browse handles GET /browse, with optional repeated ?genre= filters.
func (h *Handlers) Browse(w http.ResponseWriter, r *http.Request) {
	genres := cleanGenres(r.URL.Query()["genre"])

	playlists, err := h.database.Playlists().Browse(r.Context(), genres)
	if err != nil {
		h.logger.Error().Err(err).Msg("browsing playlists")
		http.Error(w, "Failed to load playlists", http.StatusInternalServerError)
		return
	}

	data := BrowsePageData{
		PageData:     h.pageData(w, r, "Browse playlists"),
		Playlists:    playlists,
		GenreFilter:  genres,
		FilterActive: len(genres) > 0,
	}
	h.render(w, "browse", data)
}

// Mine handles GET /mine: the logged-in user's uploads.
func (h *Handlers) Mine(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session == nil {
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return
	}

	playlists, err := h.database.Playlists().OwnedBy(r.Context(), session.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("user", session.UserID).Msg("loading user playlists")
		http.Error(w, "Failed to load playlists", http.StatusInternalServerError)
		return
	}

	data := BrowsePageData{
		PageData:  h.pageData(w, r, "My playlists"),
		Playlists: playlists,
		Mine:      true,
	}
	h.render(w, "browse", data)
}

// SearchPage handles GET /search.
func (h *Handlers) SearchPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	data := SearchPageData{
		PageData: h.pageData(w, r, "Search"),
		Query:    query,
	}

	if query != "" {
		results, err := h.database.Search().Query(r.Context(), query)
		if err != nil {
			h.logger.Error().Err(err).Str("query", query).Msg("searching")
			http.Error(w, "Search failed", http.StatusInternalServerError)
			return
		}
		data.Results = results
	}

	h.render(w, "search", data)
}

// GenresAPI handles GET /api/genres: JSON genre autocomplete. With no
// prefix it returns the ten most frequent genres.
func (h *Handlers) GenresAPI(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("prefix"))

	genres, err := h.database.Search().Genres(r.Context(), prefix, 10)
	if err != nil {
		h.logger.Error().Err(err).Str("prefix", prefix).Msg("loading genres")
		http.Error(w, "Failed to load genres", http.StatusInternalServerError)
		return
	}
	if genres == nil {
		genres = []db.GenreCount{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(genres); err != nil {
		h.logger.Error().Err(err).Msg("encoding genres")
	}
}

// cleanGenres drops empty filter values.
func cleanGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if trimmed := strings.TrimSpace(g); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
