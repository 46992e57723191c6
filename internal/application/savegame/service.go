package savegame

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/outpost-go/internal/adapters/metrics"
	"github.com/andrescamacho/outpost-go/internal/application/logging"
	"github.com/andrescamacho/outpost-go/internal/domain/savegame"
	"github.com/andrescamacho/outpost-go/internal/domain/shared"
)

// Config tunes the save service
type Config struct {
	Profile string
	// MinSaveInterval throttles discovery saves; zero disables the throttle
	MinSaveInterval    time.Duration
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
}

// LoadResult is the outcome of a load. State is always usable: missing
// data gives defaults and a failed read gives a fresh game.
type LoadResult struct {
	State savegame.GameState
	// Found is false when the profile had no data at all
	Found bool
	// Issues lists corrupt values that were replaced by defaults
	Issues []savegame.DecodeIssue
	// Err is the read failure, if the store could not be read
	Err error
}

// DiscoveryProgress is the slice of state written after a discovery flush
type DiscoveryProgress struct {
	Position   shared.Position
	Discovered []string
}

// Service persists game state through a KeyValueStore. Store failures never
// reach the simulation as anything but a typed result.
type Service struct {
	store   savegame.KeyValueStore
	keys    savegame.Keys
	breaker *writeBreaker
	limiter *rate.Limiter
	clock   shared.Clock
	logger  logging.Logger

	mu      sync.Mutex
	pending *DiscoveryProgress
}

// NewService creates a save service for one profile
func NewService(store savegame.KeyValueStore, cfg Config, clock shared.Clock, logger logging.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("key-value store cannot be nil")
	}
	keys, err := savegame.NewKeys(cfg.Profile)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	limit := rate.Inf
	if cfg.MinSaveInterval > 0 {
		limit = rate.Every(cfg.MinSaveInterval)
	}

	return &Service{
		store:   store,
		keys:    keys,
		breaker: newWriteBreaker(cfg.BreakerMaxFailures, cfg.BreakerTimeout, clock),
		limiter: rate.NewLimiter(limit, 1),
		clock:   clock,
		logger:  logger,
	}, nil
}

// Keys returns the key set of the profile
func (s *Service) Keys() savegame.Keys {
	return s.keys
}

// BreakerState exposes the circuit breaker for status reporting
func (s *Service) BreakerState() CircuitState {
	return s.breaker.State()
}

// Load reads every entity of the profile
func (s *Service) Load(ctx context.Context) LoadResult {
	start := s.clock.Now()

	stored, err := s.store.MultiGet(ctx, s.keys.All())
	if err != nil {
		readErr := shared.NewPersistenceReadError(s.keys.Prefix()+"*", err)
		s.logger.Log("ERROR", "Failed to read save, starting fresh", map[string]interface{}{
			"profile": s.keys.Profile(),
			"error":   err.Error(),
		})
		metrics.RecordSave("load", 0, s.clock.Now().Sub(start).Seconds(), false)
		return LoadResult{State: savegame.DefaultState(), Err: readErr}
	}

	state, issues := savegame.Decode(s.keys, stored)
	for _, issue := range issues {
		s.logger.Log("WARNING", "Ignoring corrupt saved value", map[string]interface{}{
			"key":   issue.Key,
			"error": issue.Cause.Error(),
		})
		metrics.RecordLoadIssue(entityOf(issue.Key))
	}

	metrics.RecordSave("load", len(stored), s.clock.Now().Sub(start).Seconds(), true)
	s.logger.Log("INFO", "Save loaded", map[string]interface{}{
		"profile": s.keys.Profile(),
		"keys":    len(stored),
		"issues":  len(issues),
	})

	return LoadResult{State: state, Found: len(stored) > 0, Issues: issues}
}

// Save writes the whole state in one batch and clears any deferred
// discovery save, since the full state supersedes it
func (s *Service) Save(ctx context.Context, state savegame.GameState) error {
	now := s.clock.Now()
	entries, err := state.Encode(s.keys, now)
	if err != nil {
		return shared.NewPersistenceWriteError(s.keys.All(), err)
	}

	if err := s.write(ctx, "full", entries); err != nil {
		return err
	}

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	return nil
}

// SaveDiscovery writes the position and discovered set after a flush. Calls
// closer together than the minimum save interval are deferred; the latest
// deferred progress is written by FlushPending or superseded by Save.
func (s *Service) SaveDiscovery(ctx context.Context, progress DiscoveryProgress) (written bool, err error) {
	if !s.limiter.AllowN(s.clock.Now(), 1) {
		s.mu.Lock()
		p := progress
		s.pending = &p
		s.mu.Unlock()
		metrics.RecordSaveSkipped("throttled")
		return false, nil
	}

	if err := s.writeDiscovery(ctx, progress); err != nil {
		return false, err
	}

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	return true, nil
}

// HasPending reports whether a deferred discovery save is waiting
func (s *Service) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// FlushPending writes the deferred discovery save, if any
func (s *Service) FlushPending(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()

	if pending == nil {
		return nil
	}
	if err := s.writeDiscovery(ctx, *pending); err != nil {
		return err
	}

	s.mu.Lock()
	if s.pending == pending {
		s.pending = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *Service) writeDiscovery(ctx context.Context, progress DiscoveryProgress) error {
	state := savegame.GameState{PlayerPosition: progress.Position, Discovered: progress.Discovered}
	all, err := state.Encode(s.keys, s.clock.Now())
	if err != nil {
		return shared.NewPersistenceWriteError(s.keys.All(), err)
	}

	entries := map[string]string{}
	for _, e := range []savegame.Entity{savegame.EntityPlayerPosition, savegame.EntityDiscoveredNodes, savegame.EntityLastSavedAt} {
		key := s.keys.Key(e)
		entries[key] = all[key]
	}
	return s.write(ctx, "discovery", entries)
}

func (s *Service) write(ctx context.Context, kind string, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := s.clock.Now()
	err := s.breaker.Do(func() error {
		return s.store.MultiSet(ctx, entries)
	})
	duration := s.clock.Now().Sub(start).Seconds()

	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			metrics.RecordSaveSkipped("circuit_open")
		} else {
			metrics.RecordSave(kind, len(entries), duration, false)
		}
		s.logger.Log("ERROR", "Save failed", map[string]interface{}{
			"kind":    kind,
			"profile": s.keys.Profile(),
			"keys":    len(entries),
			"breaker": s.breaker.State().String(),
			"error":   err.Error(),
		})
		return shared.NewPersistenceWriteError(keys, err)
	}

	metrics.RecordSave(kind, len(entries), duration, true)
	s.logger.Log("DEBUG", "Saved", map[string]interface{}{
		"kind":    kind,
		"profile": s.keys.Profile(),
		"keys":    len(entries),
	})
	return nil
}

// Reset removes every key of the profile, including keys written by older
// versions that are no longer in the entity list
func (s *Service) Reset(ctx context.Context) error {
	keys := s.keys.All()

	all, err := s.store.GetAllKeys(ctx)
	if err != nil {
		s.logger.Log("WARNING", "Could not list keys, removing known entities only", map[string]interface{}{
			"error": err.Error(),
		})
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range all {
		if s.keys.Owns(k) && !seen[k] {
			keys = append(keys, k)
		}
	}

	if err := s.store.MultiRemove(ctx, keys); err != nil {
		return shared.NewPersistenceWriteError(keys, err)
	}

	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	s.logger.Log("INFO", "Save reset", map[string]interface{}{
		"profile": s.keys.Profile(),
		"keys":    len(keys),
	})
	return nil
}

// ListProfiles returns every profile that has saved data in the store
func ListProfiles(ctx context.Context, store savegame.KeyValueStore) ([]string, error) {
	all, err := store.GetAllKeys(ctx)
	if err != nil {
		return nil, shared.NewPersistenceReadError(savegame.KeyPrefix+"/*", err)
	}

	seen := map[string]bool{}
	for _, k := range all {
		rest, ok := strings.CutPrefix(k, savegame.KeyPrefix+"/")
		if !ok {
			continue
		}
		profile, _, ok := strings.Cut(rest, "/")
		if ok && profile != "" {
			seen[profile] = true
		}
	}

	profiles := make([]string, 0, len(seen))
	for p := range seen {
		profiles = append(profiles, p)
	}
	sort.Strings(profiles)
	return profiles, nil
}

func entityOf(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
