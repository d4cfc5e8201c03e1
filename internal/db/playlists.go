package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaylistRepository handles playlist storage and the browse queries.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

// Save persists one analyzed playlist in a single transaction: the
// playlist, the uploading user, the ownership row, every song and
// artist, and their association rows. All inserts ignore primary-key
// conflicts, so re-uploading a known playlist never updates stored
// rows. Any statement error rolls the whole save back.
func (r *PlaylistRepository) Save(ctx context.Context, playlist *Playlist, songs []Song, artists []Artist, user *User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO playlists (playlist_id, title, description, image_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (playlist_id) DO NOTHING
	`, playlist.ID, playlist.Title, playlist.Description, playlist.ImageURL)
	if err != nil {
		return fmt.Errorf("inserting playlist: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_id, name, image_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, user.ID, user.Name, user.ImageURL)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO has_playlist (user_id, playlist_id, date_uploaded)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, playlist_id) DO NOTHING
	`, user.ID, playlist.ID)
	if err != nil {
		return fmt.Errorf("inserting ownership: %w", err)
	}

	for _, song := range songs {
		_, err = tx.Exec(ctx, `
			INSERT INTO songs (song_id, title, features, popularity, genres, album_image_url)
			VALUES ($1, $2, $3::audio_features, $4, $5, $6)
			ON CONFLICT (song_id) DO NOTHING
		`, song.ID, song.Title, song.Features.Literal(), song.Popularity, song.Genres, song.AlbumImageURL)
		if err != nil {
			return fmt.Errorf("inserting song %s: %w", song.ID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO playlist_songs (playlist_id, song_id)
			VALUES ($1, $2)
			ON CONFLICT (playlist_id, song_id) DO NOTHING
		`, playlist.ID, song.ID)
		if err != nil {
			return fmt.Errorf("inserting playlist song: %w", err)
		}
	}

	for _, artist := range artists {
		_, err = tx.Exec(ctx, `
			INSERT INTO artists (artist_id, name, image_url, popularity, genres)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (artist_id) DO NOTHING
		`, artist.ID, artist.Name, artist.ImageURL, artist.Popularity, artist.Genres)
		if err != nil {
			return fmt.Errorf("inserting artist %s: %w", artist.ID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO playlist_artists (playlist_id, artist_id)
			VALUES ($1, $2)
			ON CONFLICT (playlist_id, artist_id) DO NOTHING
		`, playlist.ID, artist.ID)
		if err != nil {
			return fmt.Errorf("inserting playlist artist: %w", err)
		}
	}

	// Song-artist rows last, once both sides exist.
	for _, song := range songs {
		for _, artistID := range song.ArtistIDs {
			_, err = tx.Exec(ctx, `
				INSERT INTO song_artists (song_id, artist_id)
				VALUES ($1, $2)
				ON CONFLICT (song_id, artist_id) DO NOTHING
			`, song.ID, artistID)
			if err != nil {
				return fmt.Errorf("inserting song artist: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

const browseSelect = `
	SELECT p.playlist_id, p.title, p.image_url, u.name, hp.date_uploaded,
	       AVG(r.score)::float8
	FROM has_playlist hp
	JOIN playlists p ON p.playlist_id = hp.playlist_id
	JOIN users u ON u.user_id = hp.user_id
	LEFT JOIN ratings r ON r.playlist_id = p.playlist_id
`

const browseGroup = `
	GROUP BY p.playlist_id, p.title, p.image_url, u.name, hp.date_uploaded
	ORDER BY hp.date_uploaded DESC
`

// Browse lists all uploaded playlists with owner name and average
// rating. When genres are given, only playlists containing at least
// one song whose genre list overlaps the requested set are returned.
func (r *PlaylistRepository) Browse(ctx context.Context, genres []string) ([]BrowseItem, error) {
	query := browseSelect
	args := []any{}
	if len(genres) > 0 {
		query += `
			WHERE EXISTS (
				SELECT 1 FROM playlist_songs ps
				JOIN songs s ON s.song_id = ps.song_id
				WHERE ps.playlist_id = p.playlist_id AND s.genres && $1::text[]
			)
		`
		args = append(args, genres)
	}
	query += browseGroup

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	return scanBrowseItems(rows)
}

// OwnedBy lists the playlists uploaded by one user with their average
// ratings.
func (r *PlaylistRepository) OwnedBy(ctx context.Context, userID string) ([]BrowseItem, error) {
	query := browseSelect + ` WHERE hp.user_id = $1 ` + browseGroup

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user playlists: %w", err)
	}
	defer rows.Close()

	return scanBrowseItems(rows)
}

func scanBrowseItems(rows pgx.Rows) ([]BrowseItem, error) {
	var items []BrowseItem
	for rows.Next() {
		var item BrowseItem
		if err := rows.Scan(
			&item.PlaylistID,
			&item.Title,
			&item.ImageURL,
			&item.OwnerName,
			&item.UploadedAt,
			&item.AvgRating,
		); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Detail retrieves the full stored view of one playlist: metadata,
// the earliest uploader, every song with its artists and features,
// the reviews, and the average rating. Returns ErrNotFound for an
// unknown playlist id.
func (r *PlaylistRepository) Detail(ctx context.Context, playlistID string) (*PlaylistDetail, error) {
	var detail PlaylistDetail
	err := r.pool.QueryRow(ctx, `
		SELECT p.playlist_id, p.title, p.description, p.image_url, u.name, hp.date_uploaded
		FROM playlists p
		JOIN has_playlist hp ON hp.playlist_id = p.playlist_id
		JOIN users u ON u.user_id = hp.user_id
		WHERE p.playlist_id = $1
		ORDER BY hp.date_uploaded ASC
		LIMIT 1
	`, playlistID).Scan(
		&detail.Playlist.ID,
		&detail.Playlist.Title,
		&detail.Playlist.Description,
		&detail.Playlist.ImageURL,
		&detail.OwnerName,
		&detail.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying playlist: %w", err)
	}

	songs, err := r.songsFor(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	detail.Songs = songs

	reviews, err := r.reviewsFor(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	detail.Reviews = reviews

	err = r.pool.QueryRow(ctx, `
		SELECT AVG(score)::float8 FROM ratings WHERE playlist_id = $1
	`, playlistID).Scan(&detail.AvgRating)
	if err != nil {
		return nil, fmt.Errorf("querying average rating: %w", err)
	}

	return &detail, nil
}

func (r *PlaylistRepository) songsFor(ctx context.Context, playlistID string) ([]SongDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.song_id, s.title, s.features::text, s.popularity, s.genres,
		       COALESCE(string_agg(a.name, ', ' ORDER BY a.name), '')
		FROM playlist_songs ps
		JOIN songs s ON s.song_id = ps.song_id
		LEFT JOIN song_artists sa ON sa.song_id = s.song_id
		LEFT JOIN artists a ON a.artist_id = sa.artist_id
		WHERE ps.playlist_id = $1
		GROUP BY s.song_id, s.title, s.features, s.popularity, s.genres
		ORDER BY s.title
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("querying playlist songs: %w", err)
	}
	defer rows.Close()

	return scanSongDetails(rows)
}

func (r *PlaylistRepository) reviewsFor(ctx context.Context, playlistID string) ([]Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.user_id, u.name, r.score, r.comment, r.created_at
		FROM ratings r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.playlist_id = $1
		ORDER BY r.created_at DESC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		if err := rows.Scan(
			&review.UserID,
			&review.UserName,
			&review.Score,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func scanSongDetails(rows pgx.Rows) ([]SongDetail, error) {
	var songs []SongDetail
	for rows.Next() {
		var song SongDetail
		var features string
		if err := rows.Scan(
			&song.ID,
			&song.Title,
			&features,
			&song.Popularity,
			&song.Genres,
			&song.Artists,
		); err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		parsed, err := ParseAudioFeatures(features)
		if err != nil {
			return nil, fmt.Errorf("song %s: %w", song.ID, err)
		}
		song.Features = parsed
		songs = append(songs, song)
	}
	return songs, rows.Err()
}
