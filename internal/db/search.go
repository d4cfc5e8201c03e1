package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchRepository handles the free-text search and genre
// suggestion queries. All operations are stateless reads.
type SearchRepository struct {
	pool *pgxpool.Pool
}

// Query runs a case-insensitive substring search over playlist
// titles, artist names, and song titles, returning the three result
// sets separately.
func (r *SearchRepository) Query(ctx context.Context, q string) (*SearchResults, error) {
	pattern := "%" + q + "%"
	results := &SearchResults{}

	playlists, err := r.searchPlaylists(ctx, pattern)
	if err != nil {
		return nil, err
	}
	results.Playlists = playlists

	artists, err := r.searchArtists(ctx, pattern)
	if err != nil {
		return nil, err
	}
	results.Artists = artists

	songs, err := r.searchSongs(ctx, pattern)
	if err != nil {
		return nil, err
	}
	results.Songs = songs

	return results, nil
}

func (r *SearchRepository) searchPlaylists(ctx context.Context, pattern string) ([]BrowseItem, error) {
	rows, err := r.pool.Query(ctx, browseSelect+`
		WHERE p.title ILIKE $1
	`+browseGroup, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching playlists: %w", err)
	}
	defer rows.Close()

	return scanBrowseItems(rows)
}

func (r *SearchRepository) searchArtists(ctx context.Context, pattern string) ([]Artist, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT artist_id, name, image_url, popularity, genres
		FROM artists
		WHERE name ILIKE $1
		ORDER BY popularity DESC, name
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		var artist Artist
		if err := rows.Scan(
			&artist.ID,
			&artist.Name,
			&artist.ImageURL,
			&artist.Popularity,
			&artist.Genres,
		); err != nil {
			return nil, fmt.Errorf("scanning artist: %w", err)
		}
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}

func (r *SearchRepository) searchSongs(ctx context.Context, pattern string) ([]SongDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.song_id, s.title, s.features::text, s.popularity, s.genres,
		       COALESCE(string_agg(a.name, ', ' ORDER BY a.name), '')
		FROM songs s
		LEFT JOIN song_artists sa ON sa.song_id = s.song_id
		LEFT JOIN artists a ON a.artist_id = sa.artist_id
		WHERE s.title ILIKE $1
		GROUP BY s.song_id, s.title, s.features, s.popularity, s.genres
		ORDER BY s.popularity DESC, s.title
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching songs: %w", err)
	}
	defer rows.Close()

	return scanSongDetails(rows)
}

// Genres suggests genre strings by prefix, ordered by how often they
// appear across songs and artists. With an empty prefix it returns
// the most frequent genres overall.
func (r *SearchRepository) Genres(ctx context.Context, prefix string, limit int) ([]GenreCount, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx, `
		SELECT g.genre, COUNT(*) AS freq
		FROM (
			SELECT unnest(genres) AS genre FROM songs
			UNION ALL
			SELECT unnest(genres) FROM artists
		) g
		WHERE $1 = '' OR g.genre ILIKE $1 || '%'
		GROUP BY g.genre
		ORDER BY freq DESC, g.genre
		LIMIT $2
	`, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("querying genres: %w", err)
	}
	defer rows.Close()

	var genres []GenreCount
	for rows.Next() {
		var gc GenreCount
		if err := rows.Scan(&gc.Genre, &gc.Count); err != nil {
			return nil, fmt.Errorf("scanning genre: %w", err)
		}
		genres = append(genres, gc)
	}
	return genres, rows.Err()
}
