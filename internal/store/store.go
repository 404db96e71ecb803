package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/voluntra/opportunity-search/internal/models"
)

// Persistence keys. Both values are JSON blobs.
const (
	historyKey = "search:history"
	cacheKey   = "search:cache"
)

const (
	// DefaultHistoryLimit caps the recent-query list.
	DefaultHistoryLimit = 10
	// DefaultCacheEntries caps the persisted cache map.
	DefaultCacheEntries = 20
	// DefaultCacheTTL bounds how long a cached result set stays valid.
	DefaultCacheTTL = 5 * time.Minute
)

// Store persists query history and search-result caches. Expired cache
// entries are pruned lazily on lookup; nothing runs in the background.
type Store struct {
	kv           KV
	log          *slog.Logger
	historyLimit int
	cacheEntries int
	cacheTTL     time.Duration
	now          func() time.Time
}

// New builds a Store over kv. Non-positive limits and TTL fall back to the
// defaults.
func New(kv KV, log *slog.Logger, historyLimit, cacheEntries int, cacheTTL time.Duration) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if cacheEntries <= 0 {
		cacheEntries = DefaultCacheEntries
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Store{
		kv:           kv,
		log:          log,
		historyLimit: historyLimit,
		cacheEntries: cacheEntries,
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

// RecordQuery prepends q to the history list, dropping any case-insensitive
// duplicate already present and truncating to the history limit. Empty
// queries are ignored.
func (s *Store) RecordQuery(ctx context.Context, q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}

	history := s.History(ctx)

	updated := make([]string, 0, len(history)+1)
	updated = append(updated, q)
	for _, prev := range history {
		if strings.EqualFold(prev, q) {
			continue
		}
		updated = append(updated, prev)
	}
	if len(updated) > s.historyLimit {
		updated = updated[:s.historyLimit]
	}

	payload, err := json.Marshal(updated)
	if err != nil {
		s.log.Warn("marshal history", slog.Any("err", err))
		return
	}
	if err := s.kv.Set(ctx, historyKey, payload); err != nil {
		s.log.Warn("persist history", slog.Any("err", err))
	}
}

// History returns the persisted recent queries, most recent first. Any read
// or decode failure degrades to an empty list.
func (s *Store) History(ctx context.Context) []string {
	data, err := s.kv.Get(ctx, historyKey)
	if err != nil {
		s.log.Warn("read history", slog.Any("err", err))
		return []string{}
	}
	if len(data) == 0 {
		return []string{}
	}

	var history []string
	if err := json.Unmarshal(data, &history); err != nil {
		s.log.Warn("decode history", slog.Any("err", err))
		return []string{}
	}
	return history
}

// ClearHistory removes the persisted history list.
func (s *Store) ClearHistory(ctx context.Context) {
	if err := s.kv.Delete(ctx, historyKey); err != nil {
		s.log.Warn("clear history", slog.Any("err", err))
	}
}

// Cached returns the result set cached for opts, when one exists and is
// still inside the TTL. An expired entry is removed from the persisted map
// before reporting a miss.
func (s *Store) Cached(ctx context.Context, opts models.SearchOptions) ([]models.SearchResult, bool) {
	entries := s.readCache(ctx)
	key := opts.CacheKey()

	entry, ok := entries[key]
	if !ok {
		return nil, false
	}

	if s.now().Sub(entry.Timestamp) > s.cacheTTL {
		delete(entries, key)
		s.writeCache(ctx, entries)
		return nil, false
	}

	return entry.Results, true
}

// PutCached stores results for opts with the current timestamp, then evicts
// oldest entries until the map fits the configured cap.
func (s *Store) PutCached(ctx context.Context, opts models.SearchOptions, results []models.SearchResult) {
	entries := s.readCache(ctx)

	entries[opts.CacheKey()] = models.CacheEntry{
		Query:     opts.Query,
		Results:   results,
		Timestamp: s.now(),
		Options:   opts,
	}

	if len(entries) > s.cacheEntries {
		type keyed struct {
			key string
			ts  time.Time
		}
		ordered := make([]keyed, 0, len(entries))
		for k, e := range entries {
			ordered = append(ordered, keyed{key: k, ts: e.Timestamp})
		}
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].ts.Before(ordered[j].ts)
		})
		for _, victim := range ordered[:len(entries)-s.cacheEntries] {
			delete(entries, victim.key)
		}
	}

	s.writeCache(ctx, entries)
}

func (s *Store) readCache(ctx context.Context) map[string]models.CacheEntry {
	data, err := s.kv.Get(ctx, cacheKey)
	if err != nil {
		s.log.Warn("read cache", slog.Any("err", err))
		return map[string]models.CacheEntry{}
	}
	if len(data) == 0 {
		return map[string]models.CacheEntry{}
	}

	var entries map[string]models.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn("decode cache", slog.Any("err", err))
		return map[string]models.CacheEntry{}
	}
	if entries == nil {
		entries = map[string]models.CacheEntry{}
	}
	return entries
}

func (s *Store) writeCache(ctx context.Context, entries map[string]models.CacheEntry) {
	payload, err := json.Marshal(entries)
	if err != nil {
		s.log.Warn("marshal cache", slog.Any("err", err))
		return
	}
	if err := s.kv.Set(ctx, cacheKey, payload); err != nil {
		s.log.Warn("persist cache", slog.Any("err", err))
	}
}
