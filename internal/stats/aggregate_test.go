package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves canned top items and can be told to fail a single read.
type stubSource struct {
	tracks  map[Window][]Track
	artists map[Window][]Artist
	failOn  string // "tracks:long_term", "artists:medium_term", ...

	mu    sync.Mutex
	calls []string
}

func (s *stubSource) record(call string) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	if call == s.failOn {
		return errors.New("simulated network error")
	}
	return nil
}

func (s *stubSource) TopTracks(_ context.Context, w Window, _ int) ([]Track, error) {
	if err := s.record(fmt.Sprintf("tracks:%s", w)); err != nil {
		return nil, err
	}
	return s.tracks[w], nil
}

func (s *stubSource) TopArtists(_ context.Context, w Window, _ int) ([]Artist, error) {
	if err := s.record(fmt.Sprintf("artists:%s", w)); err != nil {
		return nil, err
	}
	return s.artists[w], nil
}

func (s *stubSource) RecentlyPlayed(context.Context, int) ([]PlayedTrack, error) {
	return nil, errors.New("not used by Compute")
}

func (s *stubSource) Profile(context.Context) (*Profile, error) {
	return nil, errors.New("not used by Compute")
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func makeTracks(n int) []Track {
	tracks := make([]Track, n)
	for i := range tracks {
		tracks[i] = Track{ID: fmt.Sprintf("track-%d", i), Name: fmt.Sprintf("Track %d", i)}
	}
	return tracks
}

func TestCompute(t *testing.T) {
	src := &stubSource{
		tracks: map[Window][]Track{
			WindowShort:  makeTracks(12),
			WindowMedium: makeTracks(30),
			WindowLong:   makeTracks(50),
		},
		artists: map[Window][]Artist{
			WindowShort: {{ID: "a1", Name: "A1"}},
			WindowMedium: {
				{ID: "a1", Name: "A1"},
				{ID: "a2", Name: "A2"},
			},
			WindowLong: {
				{ID: "a1", Name: "A1", Popularity: 80, Genres: []string{"pop", "rock"}},
				{ID: "a2", Name: "A2", Popularity: 60, Genres: []string{"pop"}},
				{ID: "a3", Name: "A3", Popularity: 100, Genres: []string{"jazz"}},
			},
		},
	}

	agg, err := Compute(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 6, src.callCount(), "expected exactly six upstream reads")

	assert.Len(t, agg.TopTracks, 10)
	assert.Equal(t, "track-0", agg.TopTracks[0].ID, "top tracks must keep upstream order")
	assert.Len(t, agg.TopArtists, 3)
	assert.Equal(t, 50, agg.TotalTracks)
	assert.Equal(t, 3, agg.TotalArtists)
	assert.Equal(t, 80, agg.AveragePopularity, "round(240/3)")

	assert.Equal(t, []GenreCount{
		{Genre: "pop", Count: 2},
		{Genre: "rock", Count: 1},
		{Genre: "jazz", Count: 1},
	}, agg.TopGenres, "ties must keep first-seen order")

	assert.Equal(t, map[Window]WindowCounts{
		WindowShort:  {Tracks: 12, Artists: 1},
		WindowMedium: {Tracks: 30, Artists: 2},
		WindowLong:   {Tracks: 50, Artists: 3},
	}, agg.Windows)
}

func TestCompute_Idempotent(t *testing.T) {
	src := &stubSource{
		tracks: map[Window][]Track{
			WindowShort:  makeTracks(5),
			WindowMedium: makeTracks(5),
			WindowLong:   makeTracks(5),
		},
		artists: map[Window][]Artist{
			WindowLong: {
				{ID: "a1", Name: "A1", Popularity: 41, Genres: []string{"indie"}},
				{ID: "a2", Name: "A2", Popularity: 42, Genres: []string{"indie", "folk"}},
			},
		},
	}

	first, err := Compute(context.Background(), src)
	require.NoError(t, err)

	second, err := Compute(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, first, second, "unchanged upstream data must yield identical results")
	assert.Equal(t, 12, src.callCount(), "each computation re-issues all six reads")
}

func TestCompute_FailedReadFailsEverything(t *testing.T) {
	for _, failOn := range []string{
		"tracks:short_term",
		"tracks:long_term",
		"artists:medium_term",
		"artists:long_term",
	} {
		t.Run(failOn, func(t *testing.T) {
			src := &stubSource{
				tracks: map[Window][]Track{
					WindowShort:  makeTracks(5),
					WindowMedium: makeTracks(5),
					WindowLong:   makeTracks(5),
				},
				artists: map[Window][]Artist{
					WindowLong: {{ID: "a1", Name: "A1", Popularity: 50}},
				},
				failOn: failOn,
			}

			agg, err := Compute(context.Background(), src)
			require.Error(t, err)
			assert.Nil(t, agg, "a partial aggregate must never be exposed")
		})
	}
}

func TestCompute_NoArtists(t *testing.T) {
	src := &stubSource{
		tracks: map[Window][]Track{
			WindowLong: makeTracks(3),
		},
		artists: map[Window][]Artist{},
	}

	agg, err := Compute(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 0, agg.AveragePopularity, "empty artist list averages to 0")
	assert.Equal(t, 0, agg.TotalArtists)
	assert.Empty(t, agg.TopGenres)
}

func TestTopGenres(t *testing.T) {
	tests := []struct {
		name    string
		artists []Artist
		n       int
		want    []GenreCount
	}{
		{
			name: "descending with stable tie-break",
			artists: []Artist{
				{Genres: []string{"pop", "rock"}},
				{Genres: []string{"pop"}},
				{Genres: []string{"jazz"}},
			},
			n: 10,
			want: []GenreCount{
				{Genre: "pop", Count: 2},
				{Genre: "rock", Count: 1},
				{Genre: "jazz", Count: 1},
			},
		},
		{
			name: "truncated to n",
			artists: []Artist{
				{Genres: []string{"a", "b", "c", "d"}},
			},
			n: 2,
			want: []GenreCount{
				{Genre: "a", Count: 1},
				{Genre: "b", Count: 1},
			},
		},
		{
			name:    "no artists",
			artists: nil,
			n:       10,
			want:    []GenreCount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopGenres(tt.artists, tt.n))
		})
	}
}

func TestAveragePopularity(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{name: "plain mean", scores: []int{80, 60, 100}, want: 80},
		{name: "rounds half up", scores: []int{1, 2}, want: 2},
		{name: "rounds down below half", scores: []int{1, 1, 2}, want: 1},
		{name: "empty is zero", scores: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artists := make([]Artist, len(tt.scores))
			for i, p := range tt.scores {
				artists[i] = Artist{Popularity: p}
			}
			assert.Equal(t, tt.want, averagePopularity(artists))
		})
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in   string
		want Window
	}{
		{"short_term", WindowShort},
		{"medium_term", WindowMedium},
		{"long_term", WindowLong},
		{"", WindowMedium},
		{"last_year", WindowMedium},
	}

	for _, tt := range tests {
		if got := ParseWindow(tt.in); got != tt.want {
			t.Errorf("ParseWindow(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
