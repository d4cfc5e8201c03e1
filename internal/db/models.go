package db

import "time"

// User represents a Spotify user who has logged in. Created on first
// login, never deleted.
type User struct {
	ID       string
	Name     string
	ImageURL *string // nullable
}

// Playlist represents an uploaded playlist. Immutable once inserted;
// later uploads of the same playlist are no-ops.
type Playlist struct {
	ID          string
	Title       string
	Description string
	ImageURL    *string // nullable
}

// Song represents one track of an analyzed playlist. ArtistIDs and
// ArtistNames carry the track's artist lineup out of the fetch: the
// IDs drive the song_artists association rows, the joined names are
// rendered in previews and never stored as a column.
type Song struct {
	ID            string
	Title         string
	Features      AudioFeatures
	Popularity    int
	Genres        []string
	AlbumImageURL *string // nullable
	ArtistIDs     []string
	ArtistNames   string
}

// Artist represents a distinct artist appearing on an analyzed
// playlist, de-duplicated by external id.
type Artist struct {
	ID         string
	Name       string
	ImageURL   *string // nullable
	Popularity int
	Genres     []string
}

// Review is one user's rating of a playlist.
type Review struct {
	UserID    string
	UserName  string
	Score     int
	Comment   *string // nullable
	CreatedAt time.Time
}

// BrowseItem is one row of the browse/mine listings.
type BrowseItem struct {
	PlaylistID string
	Title      string
	ImageURL   *string
	OwnerName  string
	UploadedAt time.Time
	AvgRating  *float64 // nil when the playlist has no ratings
}

// SongDetail is one song of a stored playlist with its artists joined
// for display.
type SongDetail struct {
	ID         string
	Title      string
	Artists    string
	Features   AudioFeatures
	Popularity int
	Genres     []string
}

// PlaylistDetail is the full stored view of one playlist.
type PlaylistDetail struct {
	Playlist   Playlist
	OwnerName  string
	UploadedAt time.Time
	Songs      []SongDetail
	Reviews    []Review
	AvgRating  *float64
}

// SearchResults holds the three result sets of a free-text search.
type SearchResults struct {
	Playlists []BrowseItem
	Artists   []Artist
	Songs     []SongDetail
}

// GenreCount is a genre string with its frequency across the catalog.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}
