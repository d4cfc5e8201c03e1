package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"playlistify/internal/db"
)

// analysisTTL bounds how long an analyzed-but-unsaved playlist is
// kept. After expiry the user has to re-submit the link.
const analysisTTL = 30 * time.Minute

// Analysis holds one analyzed playlist between the analyze and save
// steps.
type Analysis struct {
	Playlist  *db.Playlist
	Songs     []db.Song
	Artists   []db.Artist
	CreatedAt time.Time
}

// AnalysisCache is a short-lived server-side store of pending
// analyses, keyed by an opaque request token handed to the client.
// Two tabs racing on the same playlist simply produce two entries;
// saving either is idempotent at the database.
type AnalysisCache struct {
	mu      sync.Mutex
	entries map[string]*Analysis
}

// NewAnalysisCache creates an empty cache.
func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{
		entries: make(map[string]*Analysis),
	}
}

// Put stores an analysis and returns the token that retrieves it.
func (c *AnalysisCache) Put(a *Analysis) string {
	token := uuid.NewString()
	a.CreatedAt = time.Now()

	c.mu.Lock()
	c.entries[token] = a
	c.evictExpiredLocked()
	c.mu.Unlock()

	return token
}

// Get retrieves a pending analysis by token. Returns nil for unknown
// or expired tokens.
func (c *AnalysisCache) Get(token string) *Analysis {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.entries[token]
	if !ok {
		return nil
	}
	if time.Since(a.CreatedAt) > analysisTTL {
		delete(c.entries, token)
		return nil
	}
	return a
}

// Delete removes a pending analysis, typically after a successful
// save.
func (c *AnalysisCache) Delete(token string) {
	c.mu.Lock()
	delete(c.entries, token)
	c.mu.Unlock()
}

func (c *AnalysisCache) evictExpiredLocked() {
	for token, a := range c.entries {
		if time.Since(a.CreatedAt) > analysisTTL {
			delete(c.entries, token)
		}
	}
}
