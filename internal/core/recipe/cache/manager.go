package cache

import (
	"container/list"
	"sort"
	"strings"
	"sync"

	"fridge-recipes/internal/pkg/common"
	"fridge-recipes/internal/pkg/metrics"

	"go.uber.org/zap"
)

// DefaultCapacity is the entry bound used when none is configured.
const DefaultCapacity = 100

// KeyDelimiter joins sorted ingredients into a cache key.
const KeyDelimiter = ","

// Manager is the process-wide recipe cache. It is bounded by entry count and
// evicts in insertion order; a hit does not refresh an entry. There is no TTL.
type Manager struct {
	mu       sync.Mutex
	capacity int
	store    map[string]*list.Element
	order    *list.List // front = oldest insertion
	stats    cacheStats
}

type cacheEntry struct {
	key     string
	recipes []common.Recipe
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// Stats is a point-in-time snapshot of the cache.
type Stats struct {
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRatio  float64 `json:"hit_ratio"`
}

// NewManager creates a cache holding at most capacity entries.
func NewManager(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	common.LogInfo("Recipe cache initialized", zap.Int("capacity", capacity))

	return &Manager{
		capacity: capacity,
		store:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Key builds the order- and case-insensitive key of an ingredient set.
func Key(ingredients []string) string {
	parts := make([]string, len(ingredients))
	for i, ing := range ingredients {
		parts[i] = strings.ToLower(strings.TrimSpace(ing))
	}
	sort.Strings(parts)
	return strings.Join(parts, KeyDelimiter)
}

// Get returns the recipes stored under key.
func (m *Manager) Get(key string) ([]common.Recipe, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.store[key]
	if !ok {
		m.stats.misses++
		metrics.CacheOperations.WithLabelValues("memory", "miss").Inc()
		common.LogCacheMiss("memory", key)
		return nil, false
	}

	m.stats.hits++
	metrics.CacheOperations.WithLabelValues("memory", "hit").Inc()
	common.LogCacheHit("memory", key)

	return cloneRecipes(el.Value.(*cacheEntry).recipes), true
}

// Put stores recipes under key. Overwriting keeps the key's original
// insertion position. Oldest entries are evicted while over capacity.
func (m *Manager) Put(key string, recipes []common.Recipe) {
	stored := cloneRecipes(recipes)

	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.store[key]; ok {
		el.Value.(*cacheEntry).recipes = stored
	} else {
		m.store[key] = m.order.PushBack(&cacheEntry{key: key, recipes: stored})
	}

	for m.order.Len() > m.capacity {
		m.evictOldest()
	}
	metrics.CacheEntries.Set(float64(m.order.Len()))
}

// cloneRecipes deep-copies the slices a Recipe holds so cached entries never
// share backing arrays with callers.
func cloneRecipes(recipes []common.Recipe) []common.Recipe {
	out := make([]common.Recipe, len(recipes))
	for i, r := range recipes {
		if r.Ingredients != nil {
			ingredients := make([]string, len(r.Ingredients))
			copy(ingredients, r.Ingredients)
			r.Ingredients = ingredients
		}
		if r.DetailedIngredients != nil {
			detailed := make([]common.DetailedIngredient, len(r.DetailedIngredients))
			copy(detailed, r.DetailedIngredients)
			r.DetailedIngredients = detailed
		}
		out[i] = r
	}
	return out
}

func (m *Manager) evictOldest() {
	front := m.order.Front()
	if front == nil {
		return
	}
	entry := m.order.Remove(front).(*cacheEntry)
	delete(m.store, entry.key)
	m.stats.evictions++
	metrics.CacheOperations.WithLabelValues("memory", "evict").Inc()

	common.LogDebug("Recipe cache entry evicted",
		zap.String("key", entry.key),
		zap.Int("capacity", m.capacity),
	)
}

// Len returns the number of cached keys.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Keys returns the cached keys from oldest to newest insertion.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, m.order.Len())
	for el := m.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*cacheEntry).key)
	}
	return keys
}

// GetStats returns cache statistics.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ratio float64
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return Stats{
		Size:      m.order.Len(),
		Capacity:  m.capacity,
		Hits:      m.stats.hits,
		Misses:    m.stats.misses,
		Evictions: m.stats.evictions,
		HitRatio:  ratio,
	}
}

// Close drops every entry.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]*list.Element)
	m.order.Init()
	metrics.CacheEntries.Set(0)

	common.LogInfo("Recipe cache closed",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions),
	)
	return nil
}
