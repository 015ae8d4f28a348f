// Package relay performs the confidential half of the Spotify authorization
// code flow: exchanging a single-use authorization code for an access token
// using the client secret, which the browser must never hold.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// fallbackMessage is used when the upstream error body has no error_description.
const fallbackMessage = "Failed to exchange code for token"

// UpstreamError is a non-2xx response from the token endpoint. The status
// code and raw body are relayed to the caller unchanged.
type UpstreamError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("token endpoint returned %d: %s", e.StatusCode, e.Message)
}

// Exchanger trades authorization codes for access tokens. It holds no state
// beyond its configuration and is safe for concurrent use.
type Exchanger struct {
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	httpClient   *http.Client
}

// New creates an Exchanger. The redirect URI must exactly match the one used
// to obtain the authorization code; Spotify rejects the exchange otherwise.
func New(clientID, clientSecret, redirectURI string) *Exchanger {
	return &Exchanger{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		tokenURL:     spotifyauth.TokenURL,
		httpClient:   http.DefaultClient,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type tokenErrorResponse struct {
	ErrorDescription string `json:"error_description"`
}

// Exchange posts the authorization code to the token endpoint and returns the
// access token. Everything else in the upstream response (refresh token,
// scope, expiry) is discarded; the session simply ends when the access token
// expires and the user logs in again. Codes are single-use, so a failed
// exchange cannot be retried with the same code.
func (e *Exchanger) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {e.redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(e.clientID, e.clientSecret)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("contacting token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var upstream tokenErrorResponse
		if err := json.Unmarshal(body, &upstream); err != nil {
			return "", fmt.Errorf("decoding token error response: %w", err)
		}

		msg := upstream.ErrorDescription
		if msg == "" {
			msg = fallbackMessage
		}
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			Details:    json.RawMessage(body),
		}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	return token.AccessToken, nil
}
