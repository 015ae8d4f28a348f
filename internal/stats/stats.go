// Package stats computes derived listening statistics from a user's Spotify
// top items.
package stats

import "time"

// Window selects one of Spotify's fixed aggregation periods for top items.
type Window string

const (
	// WindowShort covers roughly the last four weeks.
	WindowShort Window = "short_term"

	// WindowMedium covers roughly the last six months.
	WindowMedium Window = "medium_term"

	// WindowLong covers the full listening history.
	WindowLong Window = "long_term"
)

// Windows lists all windows in short-to-long order.
var Windows = [3]Window{WindowShort, WindowMedium, WindowLong}

// ParseWindow maps a query-string value to a Window. Unknown or empty values
// default to the medium window, matching the dashboard's default view.
func ParseWindow(s string) Window {
	switch Window(s) {
	case WindowShort:
		return WindowShort
	case WindowLong:
		return WindowLong
	default:
		return WindowMedium
	}
}

// Image is an upstream-hosted image in one of the sizes Spotify provides.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Track is a read-only projection of a Spotify track. Track lists keep
// Spotify's relevance order; nothing re-ranks them locally.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album,omitempty"`
	AlbumImages []Image  `json:"album_images,omitempty"`
	URL         string   `json:"url"`
	Popularity  int      `json:"popularity"`
}

// Artist is a read-only projection of a Spotify artist.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Images     []Image  `json:"images,omitempty"`
	Genres     []string `json:"genres"`
	URL        string   `json:"url"`
	Popularity int      `json:"popularity"` // 0-100
}

// PlayedTrack is a track from the listening history with its play timestamp.
type PlayedTrack struct {
	Track
	PlayedAt time.Time `json:"played_at"`
}

// Profile is the authenticated user's public profile.
type Profile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email,omitempty"`
	Images      []Image `json:"images,omitempty"`
	URL         string  `json:"url"`
	Followers   int     `json:"followers"`
}

// GenreCount is one entry of the genre frequency ranking.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// WindowCounts holds the raw item counts fetched for one window.
type WindowCounts struct {
	Tracks  int `json:"tracks"`
	Artists int `json:"artists"`
}

// Aggregate is the derived statistics bundle for one computation. It is
// rebuilt in full on every call; partial results are never produced.
type Aggregate struct {
	TopTracks         []Track                 `json:"top_tracks"`
	TopArtists        []Artist                `json:"top_artists"`
	TotalTracks       int                     `json:"total_tracks"`
	TotalArtists      int                     `json:"total_artists"`
	AveragePopularity int                     `json:"average_popularity"`
	TopGenres         []GenreCount            `json:"top_genres"`
	Windows           map[Window]WindowCounts `json:"windows"`
}
