// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package remote talks to the media library service: device registration,
// snapshot fetches for the entity caches, and delivery of queued actions.
//
// The raw Client enforces a client-side rate limit; BreakerClient wraps it
// with a circuit breaker so a dead or misbehaving remote cannot soak up
// every drain and refresh in timeouts.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/phonotheca/phonotheca/internal/metrics"
	"github.com/phonotheca/phonotheca/internal/models"
)

// Config holds the remote client settings.
type Config struct {
	// URL is the base URL of the remote service, without trailing slash.
	URL string

	// Token authenticates this installation, sent as a bearer token.
	Token string

	// Timeout bounds each request end to end.
	Timeout time.Duration

	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64

	// RateBurst is the burst allowance on top of RateLimit.
	RateBurst int
}

// API is the full remote service surface. The raw Client and the
// circuit-breaker wrapper both satisfy it; consumers that only need a
// slice of it declare their own narrow interfaces.
type API interface {
	Ping(ctx context.Context) error
	RegisterDevice(ctx context.Context, deviceID string) (string, error)
	FetchTracks(ctx context.Context) ([]models.CachedTrack, error)
	FetchPlaylists(ctx context.Context) ([]models.CachedPlaylist, error)
	FetchSmartPlaylists(ctx context.Context) ([]models.CachedSmartPlaylist, error)
	FetchFavorites(ctx context.Context, profileID string) (models.CachedFavorites, error)
	FetchProfile(ctx context.Context, profileID string) (models.CachedProfile, error)
	Scrobble(ctx context.Context, profileID string, p models.ScrobblePayload) error
	NowPlaying(ctx context.Context, profileID string, p models.NowPlayingPayload) error
	ToggleFavorite(ctx context.Context, profileID string, p models.FavoriteTogglePayload) error
	SyncRemote(ctx context.Context, profileID string) error
	Execute(ctx context.Context, action models.PendingAction) error
}

var _ API = (*Client)(nil)

// Client is the raw HTTP client for the remote service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a remote client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
}

// Ping tests connectivity to the remote service. It is the connectivity
// watcher's probe, so it carries no side effects server-side.
func (c *Client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, "ping", http.MethodGet, "/api/v1/ping", nil, nil)
}

// RegisterDevice registers this installation and returns the issued
// profile id.
func (c *Client) RegisterDevice(ctx context.Context, deviceID string) (string, error) {
	req := registerRequest{DeviceID: deviceID}
	var resp registerResponse
	if err := c.doJSON(ctx, "register", http.MethodPost, "/api/v1/devices/register", req, &resp); err != nil {
		return "", fmt.Errorf("register device: %w", err)
	}
	if resp.ProfileID == "" {
		return "", fmt.Errorf("register device: empty profile id in response")
	}
	return resp.ProfileID, nil
}

// FetchTracks returns the full library track list.
func (c *Client) FetchTracks(ctx context.Context) ([]models.CachedTrack, error) {
	var tracks []models.CachedTrack
	if err := c.doJSON(ctx, "fetch_tracks", http.MethodGet, "/api/v1/library/tracks", nil, &tracks); err != nil {
		return nil, fmt.Errorf("fetch tracks: %w", err)
	}
	return tracks, nil
}

// FetchPlaylists returns the full playlist list.
func (c *Client) FetchPlaylists(ctx context.Context) ([]models.CachedPlaylist, error) {
	var playlists []models.CachedPlaylist
	if err := c.doJSON(ctx, "fetch_playlists", http.MethodGet, "/api/v1/library/playlists", nil, &playlists); err != nil {
		return nil, fmt.Errorf("fetch playlists: %w", err)
	}
	return playlists, nil
}

// FetchSmartPlaylists returns the full smart playlist list with resolved
// track ids.
func (c *Client) FetchSmartPlaylists(ctx context.Context) ([]models.CachedSmartPlaylist, error) {
	var playlists []models.CachedSmartPlaylist
	if err := c.doJSON(ctx, "fetch_smart_playlists", http.MethodGet, "/api/v1/library/smart-playlists", nil, &playlists); err != nil {
		return nil, fmt.Errorf("fetch smart playlists: %w", err)
	}
	return playlists, nil
}

// FetchFavorites returns the favorite set of one profile.
func (c *Client) FetchFavorites(ctx context.Context, profileID string) (models.CachedFavorites, error) {
	var favorites models.CachedFavorites
	path := "/api/v1/profiles/" + profileID + "/favorites"
	if err := c.doJSON(ctx, "fetch_favorites", http.MethodGet, path, nil, &favorites); err != nil {
		return models.CachedFavorites{}, fmt.Errorf("fetch favorites: %w", err)
	}
	favorites.ProfileID = profileID
	return favorites, nil
}

// FetchProfile returns one profile.
func (c *Client) FetchProfile(ctx context.Context, profileID string) (models.CachedProfile, error) {
	var profile models.CachedProfile
	path := "/api/v1/profiles/" + profileID
	if err := c.doJSON(ctx, "fetch_profile", http.MethodGet, path, nil, &profile); err != nil {
		return models.CachedProfile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return profile, nil
}

// Scrobble reports a completed play.
func (c *Client) Scrobble(ctx context.Context, profileID string, p models.ScrobblePayload) error {
	req := scrobbleRequest{ProfileID: profileID, TrackID: p.TrackID, PlayedAt: p.PlayedAt}
	if err := c.doJSON(ctx, "scrobble", http.MethodPost, "/api/v1/scrobbles", req, nil); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

// NowPlaying reports the currently playing track.
func (c *Client) NowPlaying(ctx context.Context, profileID string, p models.NowPlayingPayload) error {
	req := nowPlayingRequest{ProfileID: profileID, TrackID: p.TrackID}
	if err := c.doJSON(ctx, "now_playing", http.MethodPost, "/api/v1/now-playing", req, nil); err != nil {
		return fmt.Errorf("now playing: %w", err)
	}
	return nil
}

// ToggleFavorite flips one track's favorite flag for a profile.
func (c *Client) ToggleFavorite(ctx context.Context, profileID string, p models.FavoriteTogglePayload) error {
	req := favoriteToggleRequest{ProfileID: profileID, TrackID: p.TrackID, Favorite: p.Favorite}
	if err := c.doJSON(ctx, "favorite_toggle", http.MethodPost, "/api/v1/favorites/toggle", req, nil); err != nil {
		return fmt.Errorf("toggle favorite: %w", err)
	}
	return nil
}

// SyncRemote asks the remote service to run its own library sync for this
// profile.
func (c *Client) SyncRemote(ctx context.Context, profileID string) error {
	req := syncRequest{ProfileID: profileID}
	if err := c.doJSON(ctx, "sync_remote", http.MethodPost, "/api/v1/sync", req, nil); err != nil {
		return fmt.Errorf("sync remote: %w", err)
	}
	return nil
}

// Execute delivers one queued action, dispatching on its type. The outbox
// drains through this single entry point.
func (c *Client) Execute(ctx context.Context, action models.PendingAction) error {
	switch action.Type {
	case models.ActionScrobble:
		var p models.ScrobblePayload
		if err := json.Unmarshal(action.Payload, &p); err != nil {
			return fmt.Errorf("decode scrobble payload: %w", err)
		}
		return c.Scrobble(ctx, action.ProfileID, p)
	case models.ActionNowPlaying:
		var p models.NowPlayingPayload
		if err := json.Unmarshal(action.Payload, &p); err != nil {
			return fmt.Errorf("decode now playing payload: %w", err)
		}
		return c.NowPlaying(ctx, action.ProfileID, p)
	case models.ActionFavoriteToggle:
		var p models.FavoriteTogglePayload
		if err := json.Unmarshal(action.Payload, &p); err != nil {
			return fmt.Errorf("decode favorite toggle payload: %w", err)
		}
		return c.ToggleFavorite(ctx, action.ProfileID, p)
	case models.ActionSyncRemote:
		return c.SyncRemote(ctx, action.ProfileID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownActionType, action.Type)
	}
}

// doJSON performs one rate-limited request, encoding in (when non-nil) as
// the JSON body and decoding the response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	err := c.roundTrip(ctx, method, path, in, out)
	metrics.RecordRemoteRequest(op, time.Since(start), err)
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusGone:
		// The service no longer recognizes this registration; the caller
		// surfaces this so the user can reset the identity.
		return ErrReRegisterRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		if readErr != nil {
			return fmt.Errorf("remote returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("remote returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Wire shapes.
type registerRequest struct {
	DeviceID string `json:"device_id"`
}

type registerResponse struct {
	ProfileID string `json:"profile_id"`
}

type scrobbleRequest struct {
	ProfileID string    `json:"profile_id"`
	TrackID   string    `json:"track_id"`
	PlayedAt  time.Time `json:"played_at"`
}

type nowPlayingRequest struct {
	ProfileID string `json:"profile_id"`
	TrackID   string `json:"track_id"`
}

type favoriteToggleRequest struct {
	ProfileID string `json:"profile_id"`
	TrackID   string `json:"track_id"`
	Favorite  bool   `json:"favorite"`
}

type syncRequest struct {
	ProfileID string `json:"profile_id"`
}

// Errors
var (
	// ErrReRegisterRequired is returned when the remote service no longer
	// recognizes this device's registration. Callers are expected to
	// surface it to the user rather than retry.
	ErrReRegisterRequired = fmt.Errorf("remote service requires re-registration")

	// ErrUnknownActionType is returned by Execute for an action type the
	// client cannot deliver.
	ErrUnknownActionType = fmt.Errorf("unknown action type")
)
