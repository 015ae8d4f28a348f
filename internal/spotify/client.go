// Package spotify adapts the Spotify Web API client to the read capabilities
// the rest of the application consumes.
package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/mgarciap/go-spotify-wrapped/internal/stats"
)

// Client wraps the Spotify API client with the read methods the dashboard
// needs. It implements stats.Source.
type Client struct {
	api *spotify.Client
}

var _ stats.Source = (*Client)(nil)

// New creates a client wrapper around an already authenticated API client.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// FromToken creates a client for a bearer access token as received from the
// token exchange. No refresh token is attached: once the access token
// expires every call fails and the user has to log in again.
func FromToken(ctx context.Context, accessToken string) *Client {
	token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	return New(spotify.New(httpClient))
}

// TopTracks returns the user's top tracks for the window, capped at limit.
func (c *Client) TopTracks(ctx context.Context, window stats.Window, limit int) ([]stats.Track, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx, spotify.Timerange(timerange(window)), spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	tracks := make([]stats.Track, len(page.Tracks))
	for i, t := range page.Tracks {
		tracks[i] = convertTrack(t)
	}
	return tracks, nil
}

// TopArtists returns the user's top artists for the window, capped at limit.
func (c *Client) TopArtists(ctx context.Context, window stats.Window, limit int) ([]stats.Artist, error) {
	page, err := c.api.CurrentUsersTopArtists(ctx, spotify.Timerange(timerange(window)), spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	artists := make([]stats.Artist, len(page.Artists))
	for i, a := range page.Artists {
		artists[i] = convertArtist(a)
	}
	return artists, nil
}

// RecentlyPlayed returns the user's most recently played tracks, newest first.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]stats.PlayedTrack, error) {
	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, &spotify.RecentlyPlayedOptions{Limit: spotify.Numeric(limit)})
	if err != nil {
		return nil, fmt.Errorf("fetching recently played: %w", err)
	}

	played := make([]stats.PlayedTrack, len(items))
	for i, item := range items {
		played[i] = convertPlayed(item)
	}
	return played, nil
}

// Profile returns the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*stats.Profile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return convertProfile(user), nil
}

func timerange(w stats.Window) spotify.Range {
	switch w {
	case stats.WindowShort:
		return spotify.ShortTermRange
	case stats.WindowLong:
		return spotify.LongTermRange
	default:
		return spotify.MediumTermRange
	}
}
