// Package statcast implements the fetch stage: resolving a player name to an
// MLBAM id against the Chadwick register and downloading pitch-by-pitch rows
// from the Baseball Savant search endpoint into a local CSV snapshot.
package statcast

import (
	"errors"
	"time"

	"statcast/internal/datasource/httpds"
)

// Player roles accepted by the search endpoint.
const (
	RolePitcher = "pitcher"
	RoleBatter  = "batter"
)

// Default endpoints. Both can be overridden for tests or mirrors.
const (
	DefaultSearchURL   = "https://baseballsavant.mlb.com/statcast_search/csv"
	DefaultRegisterURL = "https://raw.githubusercontent.com/chadwickbureau/register/master/data/people.csv"
)

// ErrPlayerNotFound is returned when the register has no row for the
// requested name.
var ErrPlayerNotFound = errors.New("statcast: player not found")

// ErrNoData is returned when the search endpoint yields zero rows for the
// requested player and date range.
var ErrNoData = errors.New("statcast: no rows for player in date range")

// Query names one fetch: a player, a role, and an inclusive date range
// (YYYY-MM-DD).
type Query struct {
	FirstName string
	LastName  string
	Role      string
	StartDate string
	EndDate   string
}

// Fetcher downloads Statcast snapshots.
type Fetcher struct {
	client      *httpds.Client
	searchURL   string
	registerURL string
}

// Config configures a Fetcher. Zero-value URL fields fall back to the
// defaults; a nil Client gets the stock retrying client.
type Config struct {
	Client      *httpds.Client
	SearchURL   string
	RegisterURL string
}

// NewFetcher constructs a Fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Client == nil {
		cfg.Client = httpds.NewClient(httpds.Config{Timeout: 2 * time.Minute})
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.RegisterURL == "" {
		cfg.RegisterURL = DefaultRegisterURL
	}
	return &Fetcher{
		client:      cfg.Client,
		searchURL:   cfg.SearchURL,
		registerURL: cfg.RegisterURL,
	}
}

// validRole reports whether role is one the search endpoint understands.
func validRole(role string) bool {
	return role == RolePitcher || role == RoleBatter
}
