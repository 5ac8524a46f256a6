package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/bizsearch/pkg/logging"
	"github.com/rs/zerolog"
)

var (
	// ErrCacheMiss indicates the requested signature was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates an attempt to cache an empty superset
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Options bound the cache. The zero value keeps every entry for the
// lifetime of the process.
type Options struct {
	// TTL expires entries after this long. Zero disables expiry.
	TTL time.Duration

	// MaxEntries evicts the oldest entry once exceeded. Zero is unbounded.
	MaxEntries int
}

// Manager is an in-process superset cache shared by concurrent searches.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	opts    Options
	logger  zerolog.Logger
}

// NewManager creates an empty cache.
func NewManager(opts Options) *Manager {
	if opts.TTL < 0 {
		opts.TTL = 0
	}
	if opts.MaxEntries < 0 {
		opts.MaxEntries = 0
	}
	return &Manager{
		entries: make(map[string]*Entry),
		opts:    opts,
		logger:  logging.NewLogger("cache"),
	}
}

// Get retrieves the superset cached for sig.
// Returns ErrCacheMiss if the signature is absent or its entry expired.
func (m *Manager) Get(sig QuerySignature) (*Superset, error) {
	key := sig.String()

	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	if entry.IsExpired() {
		m.mu.Lock()
		// Re-check: a concurrent Set may have replaced the entry.
		if current, ok := m.entries[key]; ok && current == entry {
			delete(m.entries, key)
			cacheEntries.Set(float64(len(m.entries)))
			cacheEvictions.WithLabelValues("expired").Inc()
		}
		m.mu.Unlock()
		cacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	cacheHits.Inc()
	return entry.Superset, nil
}

// Set stores superset under sig, replacing any previous entry.
func (m *Manager) Set(sig QuerySignature, superset *Superset) error {
	if superset == nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("%w: superset cannot be nil", ErrInvalidEntry)
	}

	now := time.Now()
	entry := &Entry{Superset: superset, CachedAt: now}
	if m.opts.TTL > 0 {
		entry.Expires = now.Add(m.opts.TTL)
	}

	key := sig.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry
	if m.opts.MaxEntries > 0 {
		for len(m.entries) > m.opts.MaxEntries {
			m.evictOldestLocked(key)
		}
	}
	cacheEntries.Set(float64(len(m.entries)))

	m.logger.Debug().
		Str("signature", key).
		Int("records", superset.Total()).
		Msg("Superset cached")

	return nil
}

// Delete removes the entry for sig.
func (m *Manager) Delete(sig QuerySignature) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sig.String())
	cacheEntries.Set(float64(len(m.entries)))
}

// Len returns the number of resident entries, expired ones included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// evictOldestLocked removes the entry with the earliest CachedAt, never
// the one just written under keep. Caller holds m.mu.
func (m *Manager) evictOldestLocked(keep string) {
	var oldestKey string
	var oldest time.Time
	for key, entry := range m.entries {
		if key == keep {
			continue
		}
		if oldestKey == "" || entry.CachedAt.Before(oldest) {
			oldestKey, oldest = key, entry.CachedAt
		}
	}
	if oldestKey == "" {
		return
	}
	delete(m.entries, oldestKey)
	cacheEvictions.WithLabelValues("capacity").Inc()
	m.logger.Debug().Str("signature", oldestKey).Msg("Evicted oldest superset")
}
