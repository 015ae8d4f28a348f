package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/mgarciap/go-spotify-wrapped/internal/relay"
	"github.com/mgarciap/go-spotify-wrapped/internal/stats"
)

const (
	// defaultTopLimit matches the dashboard's per-view list size.
	defaultTopLimit = 20

	// maxLimit is the most items Spotify serves per request.
	maxLimit = 50

	stateCookieName = "oauth_state"
	stateCookieAge  = 300 // seconds
)

// CodeExchanger trades an authorization code for an access token.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
}

// SourceFactory builds a data source for one request's bearer token. The
// token lives only for the duration of the request; nothing stores it.
type SourceFactory func(ctx context.Context, accessToken string) stats.Source

// Handlers contains the HTTP handlers for the dashboard API.
type Handlers struct {
	exchanger CodeExchanger
	auth      *spotifyauth.Authenticator
	newSource SourceFactory
	logger    *log.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(exchanger CodeExchanger, auth *spotifyauth.Authenticator, newSource SourceFactory, logger *log.Logger) *Handlers {
	return &Handlers{
		exchanger: exchanger,
		auth:      auth,
		newSource: newSource,
		logger:    logger,
	}
}

// TokenExchange handles POST /token-exchange. It validates the request before
// touching upstream, relays the exchange, and translates every failure into a
// structured JSON error. Nothing is retried or stored.
func (h *Handlers) TokenExchange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		writeError(w, http.StatusBadRequest, "Code is required")
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), body.Code)
	if err != nil {
		var upstream *relay.UpstreamError
		if errors.As(err, &upstream) {
			writeJSON(w, upstream.StatusCode, apiError{
				Error:   upstream.Message,
				Details: upstream.Details,
			})
			return
		}

		h.logger.Error("token exchange failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// Login handles GET /auth/login. It redirects the browser to the Spotify
// authorize page with a fresh state value, which is also set as a short-lived
// cookie so the SPA can verify the callback. show_dialog forces re-consent so
// switching accounts stays possible.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   stateCookieAge,
	})

	url := h.auth.AuthURL(state, spotifyauth.ShowDialog)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Stats handles GET /api/stats: six parallel upstream reads collapsed into
// one aggregate, recomputed on every call.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	agg, err := stats.Compute(r.Context(), src)
	if err != nil {
		h.upstreamError(w, "computing stats", err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// TopTracks handles GET /api/top-tracks.
func (h *Handlers) TopTracks(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	window := stats.ParseWindow(r.URL.Query().Get("time_range"))
	limit := parseLimit(r.URL.Query().Get("limit"), defaultTopLimit)

	tracks, err := src.TopTracks(r.Context(), window, limit)
	if err != nil {
		h.upstreamError(w, "fetching top tracks", err)
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}

// TopArtists handles GET /api/top-artists.
func (h *Handlers) TopArtists(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	window := stats.ParseWindow(r.URL.Query().Get("time_range"))
	limit := parseLimit(r.URL.Query().Get("limit"), defaultTopLimit)

	artists, err := src.TopArtists(r.Context(), window, limit)
	if err != nil {
		h.upstreamError(w, "fetching top artists", err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

// RecentlyPlayed handles GET /api/recently-played.
func (h *Handlers) RecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), maxLimit)

	played, err := src.RecentlyPlayed(r.Context(), limit)
	if err != nil {
		h.upstreamError(w, "fetching recently played", err)
		return
	}
	writeJSON(w, http.StatusOK, played)
}

// Profile handles GET /api/profile.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	profile, err := src.Profile(r.Context())
	if err != nil {
		h.upstreamError(w, "fetching profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// source builds a per-request data source from the bearer token. The false
// return means the response has already been written.
func (h *Handlers) source(w http.ResponseWriter, r *http.Request) (stats.Source, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Missing access token")
		return nil, false
	}
	return h.newSource(r.Context(), token), true
}

// upstreamError reports a failed upstream read. An expired token is
// indistinguishable from any other upstream failure here; the client decides
// whether to trigger a fresh login.
func (h *Handlers) upstreamError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("upstream request failed", "op", op, "error", err)
	writeError(w, http.StatusBadGateway, err.Error())
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func parseLimit(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return min(n, maxLimit)
}
