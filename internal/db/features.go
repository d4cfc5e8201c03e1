package db

import (
	"fmt"
	"strconv"
	"strings"
)

// AudioFeatures is the fixed 13-field audio-feature tuple attached to
// every song. Field order matches the audio_features composite type in
// the schema; Literal and ParseAudioFeatures depend on it.
type AudioFeatures struct {
	Acousticness     float64
	Danceability     float64
	DurationMs       int
	Energy           float64
	Instrumentalness float64
	Key              int
	Liveness         float64
	Loudness         float64
	Mode             int
	Speechiness      float64
	Tempo            float64
	TimeSignature    int
	Valence          float64
}

// Literal renders the tuple as a PostgreSQL composite literal, suitable
// for binding with an ::audio_features cast.
func (f AudioFeatures) Literal() string {
	return fmt.Sprintf("(%s,%s,%d,%s,%s,%d,%s,%s,%d,%s,%s,%d,%s)",
		formatFloat(f.Acousticness),
		formatFloat(f.Danceability),
		f.DurationMs,
		formatFloat(f.Energy),
		formatFloat(f.Instrumentalness),
		f.Key,
		formatFloat(f.Liveness),
		formatFloat(f.Loudness),
		f.Mode,
		formatFloat(f.Speechiness),
		formatFloat(f.Tempo),
		f.TimeSignature,
		formatFloat(f.Valence),
	)
}

// ParseAudioFeatures parses a PostgreSQL composite literal produced by
// a features::text projection back into the tuple.
func ParseAudioFeatures(s string) (AudioFeatures, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 || trimmed[0] != '(' || trimmed[len(trimmed)-1] != ')' {
		return AudioFeatures{}, fmt.Errorf("malformed audio_features literal %q", s)
	}

	parts := strings.Split(trimmed[1:len(trimmed)-1], ",")
	if len(parts) != 13 {
		return AudioFeatures{}, fmt.Errorf("audio_features literal has %d fields, want 13", len(parts))
	}

	floats := make([]float64, 13)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return AudioFeatures{}, fmt.Errorf("parsing audio_features field %d: %w", i, err)
		}
		floats[i] = v
	}

	return AudioFeatures{
		Acousticness:     floats[0],
		Danceability:     floats[1],
		DurationMs:       int(floats[2]),
		Energy:           floats[3],
		Instrumentalness: floats[4],
		Key:              int(floats[5]),
		Liveness:         floats[6],
		Loudness:         floats[7],
		Mode:             int(floats[8]),
		Speechiness:      floats[9],
		Tempo:            floats[10],
		TimeSignature:    int(floats[11]),
		Valence:          floats[12],
	}, nil
}

// formatFloat renders a float without exponent notation so the literal
// stays valid composite syntax.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
