package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"quizless-service/internal/domain"
)

// SessionStore is an opaque key-value store with per-key expiration
// (in-memory, Redis, etc). It offers no cross-key transactions.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// StateKey, PlayersKey and ResultsKey name the three key families of a session.
func StateKey(code int) string   { return "state:" + strconv.Itoa(code) }
func PlayersKey(code int) string { return "players:" + strconv.Itoa(code) }
func ResultsKey(code int) string { return "results:" + strconv.Itoa(code) }

// sessionRepository encodes session records as JSON on top of a SessionStore.
// State and roster are separate round trips: concurrent writers of the same
// key race and the last write wins.
type sessionRepository struct {
	store SessionStore
}

func (r sessionRepository) load(ctx context.Context, code int) (domain.SessionState, domain.Roster, error) {
	var state domain.SessionState
	found, err := r.get(ctx, StateKey(code), &state)
	if err != nil {
		return domain.SessionState{}, domain.Roster{}, err
	}
	if !found {
		return domain.SessionState{}, domain.Roster{}, domain.ErrSessionNotFound
	}

	var roster domain.Roster
	found, err = r.get(ctx, PlayersKey(code), &roster)
	if err != nil {
		return domain.SessionState{}, domain.Roster{}, err
	}
	if !found {
		return domain.SessionState{}, domain.Roster{}, domain.ErrSessionNotFound
	}
	return state, roster, nil
}

func (r sessionRepository) saveState(ctx context.Context, state domain.SessionState, ttl time.Duration) error {
	return r.set(ctx, StateKey(state.Code), state, ttl)
}

func (r sessionRepository) saveRoster(ctx context.Context, code int, roster domain.Roster, ttl time.Duration) error {
	return r.set(ctx, PlayersKey(code), roster, ttl)
}

// extendRoster refreshes the roster TTL without rewriting it, so a concurrent
// join is not overwritten.
func (r sessionRepository) extendRoster(ctx context.Context, code int, ttl time.Duration) error {
	if err := r.store.Expire(ctx, PlayersKey(code), ttl); err != nil {
		return fmt.Errorf("expire %s: %w", PlayersKey(code), err)
	}
	return nil
}

func (r sessionRepository) saveResults(ctx context.Context, code int, results domain.Results, ttl time.Duration) error {
	return r.set(ctx, ResultsKey(code), results, ttl)
}

func (r sessionRepository) loadResults(ctx context.Context, code int) (domain.Results, bool, error) {
	var results domain.Results
	found, err := r.get(ctx, ResultsKey(code), &results)
	return results, found, err
}

func (r sessionRepository) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r sessionRepository) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
