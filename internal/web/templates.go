package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"playlistify/internal/db"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a template manager by loading templates from
// the given filesystem. Every page under pages/ is parsed together
// with the layouts.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("finding layouts: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("finding pages: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		files := append([]string{page}, layouts...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return t, nil
}

// Render renders a page template inside the base layout.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// defaultFuncs returns the template helper functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// formatDate formats a time as "Jan 2, 2006".
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},

		// formatRating renders an average rating to two decimals, or a
		// dash when the playlist has no ratings yet.
		"formatRating": func(avg *float64) string {
			if avg == nil {
				return "—"
			}
			return fmt.Sprintf("%.2f", *avg)
		},

		// formatDuration renders a track duration in ms as m:ss.
		"formatDuration": func(ms int) string {
			total := ms / 1000
			return fmt.Sprintf("%d:%02d", total/60, total%60)
		},

		// join concatenates strings with a separator.
		"join": func(items []string, sep string) string {
			return strings.Join(items, sep)
		},

		// percent renders a 0..1 audio feature as a whole percentage.
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},

		// add adds two integers (for 1-based indexing in loops).
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	User        *UserData
	Flash       *FlashMessage
	CurrentPath string
}

// UserData contains authenticated user information.
type UserData struct {
	ID   string
	Name string
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	Authenticated bool
}

// PreviewPageData contains data for the analysis preview page.
type PreviewPageData struct {
	PageData
	Token         string
	Playlist      *db.Playlist
	Songs         []db.Song
	ArtistCount   int
	Authenticated bool
}

// BrowsePageData contains data for the browse and mine pages.
type BrowsePageData struct {
	PageData
	Playlists    []db.BrowseItem
	GenreFilter  []string
	FilterActive bool
	Mine         bool
}

// DetailPageData contains data for the stored playlist page.
type DetailPageData struct {
	PageData
	Detail        *db.PlaylistDetail
	Authenticated bool
}

// SearchPageData contains data for the search results page.
type SearchPageData struct {
	PageData
	Query   string
	Results *db.SearchResults
}
