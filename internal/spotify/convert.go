package spotify

import (
	"github.com/zmb3/spotify/v2"

	"github.com/mgarciap/go-spotify-wrapped/internal/stats"
)

// externalURL picks the public Spotify link out of the external URL map.
func externalURL(urls map[string]string) string {
	return urls["spotify"]
}

func convertImages(images []spotify.Image) []stats.Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]stats.Image, len(images))
	for i, img := range images {
		out[i] = stats.Image{
			URL:    img.URL,
			Width:  int(img.Width),
			Height: int(img.Height),
		}
	}
	return out
}

func artistNames(artists []spotify.SimpleArtist) []string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return names
}

func convertTrack(t spotify.FullTrack) stats.Track {
	return stats.Track{
		ID:          t.ID.String(),
		Name:        t.Name,
		Artists:     artistNames(t.Artists),
		Album:       t.Album.Name,
		AlbumImages: convertImages(t.Album.Images),
		URL:         externalURL(t.ExternalURLs),
		Popularity:  int(t.Popularity),
	}
}

func convertArtist(a spotify.FullArtist) stats.Artist {
	genres := a.Genres
	if genres == nil {
		genres = []string{}
	}
	return stats.Artist{
		ID:         a.ID.String(),
		Name:       a.Name,
		Images:     convertImages(a.Images),
		Genres:     genres,
		URL:        externalURL(a.ExternalURLs),
		Popularity: int(a.Popularity),
	}
}

// convertPlayed maps a listening-history item. The history endpoint returns
// simplified tracks, so album and popularity stay empty.
func convertPlayed(item spotify.RecentlyPlayedItem) stats.PlayedTrack {
	return stats.PlayedTrack{
		Track: stats.Track{
			ID:      item.Track.ID.String(),
			Name:    item.Track.Name,
			Artists: artistNames(item.Track.Artists),
			URL:     externalURL(item.Track.ExternalURLs),
		},
		PlayedAt: item.PlayedAt,
	}
}

func convertProfile(user *spotify.PrivateUser) *stats.Profile {
	return &stats.Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Images:      convertImages(user.Images),
		URL:         externalURL(user.ExternalURLs),
		Followers:   int(user.Followers.Count),
	}
}
