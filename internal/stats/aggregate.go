package stats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// fetchLimit caps every upstream read. Spotify serves at most 50 items per
// request and further pages are never fetched.
const fetchLimit = 50

const (
	topCount      = 10
	topGenreCount = 10
)

// Source is the read capability the aggregator needs from the upstream API.
// All lists come back in Spotify's own relevance order.
type Source interface {
	TopTracks(ctx context.Context, window Window, limit int) ([]Track, error)
	TopArtists(ctx context.Context, window Window, limit int) ([]Artist, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]PlayedTrack, error)
	Profile(ctx context.Context) (*Profile, error)
}

// Compute fetches the user's top tracks and artists across all three windows
// (six upstream reads, issued in parallel) and derives the aggregate bundle
// from the long-window lists. The result is all-or-nothing: a single failed
// read fails the whole computation. Nothing is cached between calls; two
// concurrent computations for the same token each query upstream on their own.
func Compute(ctx context.Context, src Source) (*Aggregate, error) {
	var (
		tracks  [len(Windows)][]Track
		artists [len(Windows)][]Artist
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, w := range Windows {
		i, w := i, w
		g.Go(func() error {
			got, err := src.TopTracks(ctx, w, fetchLimit)
			if err != nil {
				return fmt.Errorf("fetching top tracks (%s): %w", w, err)
			}
			tracks[i] = got
			return nil
		})
		g.Go(func() error {
			got, err := src.TopArtists(ctx, w, fetchLimit)
			if err != nil {
				return fmt.Errorf("fetching top artists (%s): %w", w, err)
			}
			artists[i] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	longTracks := tracks[len(Windows)-1]
	longArtists := artists[len(Windows)-1]

	agg := &Aggregate{
		TopTracks:         longTracks[:min(topCount, len(longTracks))],
		TopArtists:        longArtists[:min(topCount, len(longArtists))],
		TotalTracks:       len(longTracks),
		TotalArtists:      len(longArtists),
		AveragePopularity: averagePopularity(longArtists),
		TopGenres:         TopGenres(longArtists, topGenreCount),
		Windows:           make(map[Window]WindowCounts, len(Windows)),
	}
	for i, w := range Windows {
		agg.Windows[w] = WindowCounts{Tracks: len(tracks[i]), Artists: len(artists[i])}
	}
	return agg, nil
}

// TopGenres counts how many artists carry each genre label. An artist with
// several labels increments several counters, so counts are not mutually
// exclusive per artist. Labels are ordered by descending count with ties
// keeping first-seen order, truncated to at most n entries.
func TopGenres(artists []Artist, n int) []GenreCount {
	counts := make(map[string]int)
	var order []string

	for _, a := range artists {
		for _, g := range a.Genres {
			if _, seen := counts[g]; !seen {
				order = append(order, g)
			}
			counts[g]++
		}
	}

	ranked := make([]GenreCount, len(order))
	for i, g := range order {
		ranked[i] = GenreCount{Genre: g, Count: counts[g]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	return ranked[:min(n, len(ranked))]
}

// averagePopularity is the mean popularity over the artists, rounded half up.
// An empty list yields 0 rather than a division by zero; callers render that
// as an empty state, not a real statistic.
func averagePopularity(artists []Artist) int {
	if len(artists) == 0 {
		return 0
	}

	var sum int
	for _, a := range artists {
		sum += a.Popularity
	}
	return int(math.Round(float64(sum) / float64(len(artists))))
}
