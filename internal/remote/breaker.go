// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

package remote

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/phonotheca/phonotheca/internal/logging"
	"github.com/phonotheca/phonotheca/internal/metrics"
	"github.com/phonotheca/phonotheca/internal/models"
)

// Ensure BreakerClient implements API
var _ API = (*BreakerClient)(nil)

// BreakerClient wraps Client with circuit breaker protection. When the
// remote fails persistently the breaker opens and calls are rejected
// immediately instead of burning a timeout each, which keeps outbox drains
// and cache refreshes cheap while the service is down.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewBreakerClient creates a remote client with circuit breaker protection.
// Breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreakerClient(cfg Config) *BreakerClient {
	client := NewClient(cfg)
	cbName := "remote-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening remote circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] Remote state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a remote call with circuit breaker protection.
// ErrReRegisterRequired counts as success toward the breaker: the remote
// answered, the registration is just stale, and tripping the circuit would
// mask the one error the user must see.
func (bc *BreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := bc.cb.Execute(func() (any, error) {
		out, callErr := fn()
		if errors.Is(callErr, ErrReRegisterRequired) {
			return rejectedRegistration{out: out}, nil
		}
		return out, callErr
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Remote request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "failure").Inc()
			counts := bc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(bc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(bc.name).Set(0)

	if rr, ok := result.(rejectedRegistration); ok {
		return rr.out, ErrReRegisterRequired
	}

	return result, nil
}

// rejectedRegistration smuggles an ErrReRegisterRequired outcome through the
// breaker as a success so it does not count toward the failure ratio.
type rejectedRegistration struct {
	out any
}

// Ping tests connectivity to the remote service with circuit breaker
// protection.
func (bc *BreakerClient) Ping(ctx context.Context) error {
	_, err := bc.execute(func() (any, error) {
		return nil, bc.client.Ping(ctx)
	})
	return err
}

// RegisterDevice registers this installation with circuit breaker protection.
func (bc *BreakerClient) RegisterDevice(ctx context.Context, deviceID string) (string, error) {
	result, err := bc.execute(func() (any, error) {
		return bc.client.RegisterDevice(ctx, deviceID)
	})
	if err != nil {
		return "", err
	}
	profileID, ok := result.(string)
	if !ok {
		return "", errors.New("circuit breaker: unexpected result type for RegisterDevice")
	}
	return profileID, nil
}

// FetchTracks retrieves the track list with circuit breaker protection.
func (bc *BreakerClient) FetchTracks(ctx context.Context) ([]models.CachedTrack, error) {
	result, err := bc.execute(func() (any, error) {
		return bc.client.FetchTracks(ctx)
	})
	if err != nil {
		return nil, err
	}
	tracks, ok := result.([]models.CachedTrack)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for FetchTracks")
	}
	return tracks, nil
}

// FetchPlaylists retrieves the playlist list with circuit breaker protection.
func (bc *BreakerClient) FetchPlaylists(ctx context.Context) ([]models.CachedPlaylist, error) {
	result, err := bc.execute(func() (any, error) {
		return bc.client.FetchPlaylists(ctx)
	})
	if err != nil {
		return nil, err
	}
	playlists, ok := result.([]models.CachedPlaylist)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for FetchPlaylists")
	}
	return playlists, nil
}

// FetchSmartPlaylists retrieves the smart playlist list with circuit breaker
// protection.
func (bc *BreakerClient) FetchSmartPlaylists(ctx context.Context) ([]models.CachedSmartPlaylist, error) {
	result, err := bc.execute(func() (any, error) {
		return bc.client.FetchSmartPlaylists(ctx)
	})
	if err != nil {
		return nil, err
	}
	playlists, ok := result.([]models.CachedSmartPlaylist)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for FetchSmartPlaylists")
	}
	return playlists, nil
}

// FetchFavorites retrieves one profile's favorites with circuit breaker
// protection.
func (bc *BreakerClient) FetchFavorites(ctx context.Context, profileID string) (models.CachedFavorites, error) {
	result, err := bc.execute(func() (any, error) {
		return bc.client.FetchFavorites(ctx, profileID)
	})
	if err != nil {
		return models.CachedFavorites{}, err
	}
	favorites, ok := result.(models.CachedFavorites)
	if !ok {
		return models.CachedFavorites{}, errors.New("circuit breaker: unexpected result type for FetchFavorites")
	}
	return favorites, nil
}

// FetchProfile retrieves one profile with circuit breaker protection.
func (bc *BreakerClient) FetchProfile(ctx context.Context, profileID string) (models.CachedProfile, error) {
	result, err := bc.execute(func() (any, error) {
		return bc.client.FetchProfile(ctx, profileID)
	})
	if err != nil {
		return models.CachedProfile{}, err
	}
	profile, ok := result.(models.CachedProfile)
	if !ok {
		return models.CachedProfile{}, errors.New("circuit breaker: unexpected result type for FetchProfile")
	}
	return profile, nil
}

// Scrobble reports a completed play with circuit breaker protection.
func (bc *BreakerClient) Scrobble(ctx context.Context, profileID string, p models.ScrobblePayload) error {
	_, err := bc.execute(func() (any, error) {
		return nil, bc.client.Scrobble(ctx, profileID, p)
	})
	return err
}

// NowPlaying reports the playing track with circuit breaker protection.
func (bc *BreakerClient) NowPlaying(ctx context.Context, profileID string, p models.NowPlayingPayload) error {
	_, err := bc.execute(func() (any, error) {
		return nil, bc.client.NowPlaying(ctx, profileID, p)
	})
	return err
}

// ToggleFavorite flips a favorite flag with circuit breaker protection.
func (bc *BreakerClient) ToggleFavorite(ctx context.Context, profileID string, p models.FavoriteTogglePayload) error {
	_, err := bc.execute(func() (any, error) {
		return nil, bc.client.ToggleFavorite(ctx, profileID, p)
	})
	return err
}

// SyncRemote triggers a remote-side sync with circuit breaker protection.
func (bc *BreakerClient) SyncRemote(ctx context.Context, profileID string) error {
	_, err := bc.execute(func() (any, error) {
		return nil, bc.client.SyncRemote(ctx, profileID)
	})
	return err
}

// Execute delivers one queued action with circuit breaker protection.
func (bc *BreakerClient) Execute(ctx context.Context, action models.PendingAction) error {
	_, err := bc.execute(func() (any, error) {
		return nil, bc.client.Execute(ctx, action)
	})
	return err
}

// State returns the current circuit breaker state
func (bc *BreakerClient) State() gobreaker.State {
	return bc.cb.State()
}

// Counts returns the current circuit breaker counts
func (bc *BreakerClient) Counts() gobreaker.Counts {
	return bc.cb.Counts()
}

// Name returns the circuit breaker name
func (bc *BreakerClient) Name() string {
	return bc.name
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
