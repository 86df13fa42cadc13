package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	errs "github.com/jrsteele09/go-condo-client/internal/errors"
)

const refreshFlightKey = "refresh"

// TokenPair is the body returned by the refresh endpoint.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshAccessToken returns an access token to replay with. sentToken is
// the token the failed request carried.
//
// Concurrent callers share one refresh. A caller whose request went out with
// a token that has since been replaced replays with the current token
// without refreshing again. A caller whose session was already ended by an
// earlier flight gets ErrSessionExpired without a second logout.
func (c *Client) refreshAccessToken(ctx context.Context, sentToken string) (string, error) {
	snap := c.store.Snapshot()
	switch {
	case snap.AccessToken != "" && snap.AccessToken != sentToken:
		return snap.AccessToken, nil
	case sentToken != "" && snap.AccessToken == "" && snap.RefreshToken == "":
		c.log.Debug().Msg("session already ended, not refreshing")
		return "", fmt.Errorf("%w: session ended while the request was in flight", errs.ErrSessionExpired)
	}

	v, err, shared := c.refreshes.Do(refreshFlightKey, func() (any, error) {
		// The refresh outlives the caller that happened to start it.
		return c.refreshSession(context.WithoutCancel(ctx))
	})
	if shared {
		c.log.Debug().Msg("joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refreshSession performs the refresh and, on any failure, the forced logout.
// It runs at most once per flight, so the logout and navigation happen once
// no matter how many requests were waiting.
func (c *Client) refreshSession(ctx context.Context) (string, error) {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		c.metrics.refresh("no_refresh_token")
		c.forceLogout(ctx, errs.ErrNoRefreshToken)
		return "", fmt.Errorf("%w: %w", errs.ErrSessionExpired, errs.ErrNoRefreshToken)
	}

	pair, err := c.requestRefresh(ctx, refreshToken)
	if err != nil {
		c.metrics.refresh("failure")
		c.log.Warn().Err(err).Msg("token refresh failed")
		c.forceLogout(ctx, err)
		return "", fmt.Errorf("%w: %w: %w", errs.ErrSessionExpired, errs.ErrRefreshFailed, err)
	}

	applied, err := c.store.RotateTokens(ctx, refreshToken, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		// Memory already holds the new pair; only durability was lost.
		c.log.Warn().Err(err).Msg("refreshed tokens were not persisted")
	}
	if !applied {
		c.metrics.refresh("discarded")
		if current := c.store.AccessToken(); current != "" {
			return current, nil
		}
		return "", fmt.Errorf("%w: session ended during refresh", errs.ErrNotAuthenticated)
	}

	c.metrics.refresh("success")
	c.log.Debug().Bool("rotated", pair.RefreshToken != "").Msg("access token refreshed")
	return pair.AccessToken, nil
}

// requestRefresh calls the refresh endpoint on the bare HTTP client: no
// session credentials, no coordinator.
func (c *Client) requestRefresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set(headerRequestID, uuid.NewString())
	for _, fn := range c.interceptors {
		fn(httpReq)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.request(http.MethodPost, 0)
		return nil, err
	}
	defer resp.Body.Close()
	c.metrics.request(http.MethodPost, resp.StatusCode)

	b, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh response: %w", err)
	}
	raw := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(&Request{Method: http.MethodPost, Path: c.refreshPath}, raw)
	}

	var pair TokenPair
	if err := raw.Decode(&pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("refresh response has no access_token: %w", errs.ErrInvalidToken)
	}
	return &pair, nil
}

// forceLogout clears the session, tells subscribers and navigates to login.
func (c *Client) forceLogout(ctx context.Context, cause error) {
	if err := c.store.Logout(ctx); err != nil {
		c.log.Error().Err(err).Msg("failed to persist forced logout")
	}
	c.metrics.forcedLogout()
	c.log.Warn().Err(cause).Str("login_url", c.loginURL).Msg("session ended, redirecting to login")

	c.publishExpired(SessionExpired{Cause: cause, LoginURL: c.loginURL, At: time.Now()})
	c.navigator.NavigateToLogin(ctx, c.loginURL)
}
