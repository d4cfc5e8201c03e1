package spotify

import (
	"context"
	"errors"
	"strings"

	"playlistify/internal/db"
)

// ErrEmptyPlaylistLink is returned when no playlist id can be
// extracted from a submitted link.
var ErrEmptyPlaylistLink = errors.New("playlist link contains no playlist id")

// ParsePlaylistLink extracts the playlist id from an open.spotify.com
// link or a bare id. Share-link query parameters (?si=...) are
// stripped.
func ParsePlaylistLink(link string) (string, error) {
	trimmed := strings.TrimSpace(link)
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return "", ErrEmptyPlaylistLink
	}
	return trimmed, nil
}

// FetchPlaylist retrieves a playlist's metadata and flattens it into
// one row per track and one row per distinct artist. Per track it
// performs one batched artists request and one audio-features request,
// mirroring the per-entity rows the persistence layer stores. Any
// failing sub-request aborts the whole fetch.
func (c *Client) FetchPlaylist(ctx context.Context, id string) (*db.Playlist, []db.Song, []db.Artist, error) {
	pl, err := c.getPlaylist(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	playlist := &db.Playlist{
		ID:          pl.ID,
		Title:       pl.Name,
		Description: pl.Description,
		ImageURL:    firstImageURL(pl.Images),
	}

	var songs []db.Song
	var artists []db.Artist
	seenArtists := make(map[string]bool)

	for _, item := range pl.Tracks.Items {
		track := item.Track
		if track == nil || track.ID == "" {
			continue // removed or local track
		}

		artistIDs := make([]string, 0, len(track.Artists))
		artistNames := make([]string, 0, len(track.Artists))
		for _, a := range track.Artists {
			artistIDs = append(artistIDs, a.ID)
			artistNames = append(artistNames, a.Name)
		}

		full, err := c.getArtists(ctx, artistIDs)
		if err != nil {
			return nil, nil, nil, err
		}

		var genres []string
		for _, a := range full {
			genres = append(genres, a.Genres...)
			if !seenArtists[a.ID] {
				seenArtists[a.ID] = true
				artists = append(artists, db.Artist{
					ID:         a.ID,
					Name:       a.Name,
					ImageURL:   firstImageURL(a.Images),
					Popularity: a.Popularity,
					Genres:     dedupeGenres(a.Genres),
				})
			}
		}

		features, err := c.getAudioFeatures(ctx, track.ID)
		if err != nil {
			return nil, nil, nil, err
		}

		songs = append(songs, db.Song{
			ID:            track.ID,
			Title:         track.Name,
			Features:      convertFeatures(features),
			Popularity:    track.Popularity,
			Genres:        dedupeGenres(genres),
			AlbumImageURL: firstImageURL(track.Album.Images),
			ArtistIDs:     artistIDs,
			ArtistNames:   strings.Join(artistNames, ", "),
		})
	}

	return playlist, songs, artists, nil
}

// convertFeatures copies the wire tuple into the storage tuple.
func convertFeatures(f *audioFeaturesResponse) db.AudioFeatures {
	return db.AudioFeatures{
		Acousticness:     f.Acousticness,
		Danceability:     f.Danceability,
		DurationMs:       f.DurationMs,
		Energy:           f.Energy,
		Instrumentalness: f.Instrumentalness,
		Key:              f.Key,
		Liveness:         f.Liveness,
		Loudness:         f.Loudness,
		Mode:             f.Mode,
		Speechiness:      f.Speechiness,
		Tempo:            f.Tempo,
		TimeSignature:    f.TimeSignature,
		Valence:          f.Valence,
	}
}

// dedupeGenres removes duplicates and empty strings, preserving first
// occurrence order. Always returns a non-nil slice so genre lists are
// stored as empty arrays rather than NULL.
func dedupeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]bool, len(genres))
	for _, g := range genres {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
