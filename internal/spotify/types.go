package spotify

// Wire types for the subset of the Spotify Web API this application
// consumes. Only the fields we read are declared.

type image struct {
	URL string `json:"url"`
}

type simpleArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type trackObject struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Popularity int            `json:"popularity"`
	Artists    []simpleArtist `json:"artists"`
	Album      struct {
		Images []image `json:"images"`
	} `json:"album"`
}

type playlistItem struct {
	Track *trackObject `json:"track"` // nil for removed/local tracks
}

type playlistResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Images      []image `json:"images"`
	Tracks      struct {
		Items []playlistItem `json:"items"`
	} `json:"tracks"`
}

type fullArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Images     []image  `json:"images"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

type artistsResponse struct {
	Artists []fullArtist `json:"artists"`
}

type audioFeaturesResponse struct {
	ID               string  `json:"id"`
	Acousticness     float64 `json:"acousticness"`
	Danceability     float64 `json:"danceability"`
	DurationMs       int     `json:"duration_ms"`
	Energy           float64 `json:"energy"`
	Instrumentalness float64 `json:"instrumentalness"`
	Key              int     `json:"key"`
	Liveness         float64 `json:"liveness"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
	Valence          float64 `json:"valence"`
}

// firstImageURL returns the URL of the first image, or nil when the
// list is empty.
func firstImageURL(images []image) *string {
	if len(images) == 0 {
		return nil
	}
	url := images[0].URL
	return &url
}
