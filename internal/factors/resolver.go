package factors

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Simplici0/facecost/internal/restaurant"
)

const (
	DefaultCacheTTL  = 5 * time.Minute
	DefaultCacheSize = 1024
)

// Resolver answers factor queries by walking from the most specific scope to
// the generic one, then to the caller's default:
//
//	(name, theme, size) -> (name, theme, *) -> (name, *, size) -> (name, *, *) -> default
//
// Store hits are cached under the requested key for the cache TTL. Writes to
// the store do not invalidate the cache; call ClearCache to see them sooner.
// A Resolver is safe for concurrent use.
type Resolver struct {
	store  Store
	cache  *expirable.LRU[Key, float64]
	ttl    time.Duration
	size   int
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCacheTTL sets how long a resolved value is served from the cache. A
// non-positive TTL disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithCacheSize bounds the number of cached keys.
func WithCacheSize(size int) Option {
	return func(r *Resolver) { r.size = size }
}

// WithLogger sets the logger used for fallback and default tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver returns a resolver reading from store. The cache uses
// DefaultCacheTTL and DefaultCacheSize unless an option overrides them.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		ttl:    DefaultCacheTTL,
		size:   DefaultCacheSize,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.size <= 0 {
		r.size = DefaultCacheSize
	}
	if r.ttl > 0 {
		r.cache = expirable.NewLRU[Key, float64](r.size, nil, r.ttl)
	}
	return r
}

// Resolve returns the value of the named factor for the given scope. A factor
// missing at every scope resolves to def; only store failures return an error.
func (r *Resolver) Resolve(ctx context.Context, name string, theme restaurant.Theme, size restaurant.RevenueSize, def float64) (float64, error) {
	requested := Key{Name: name, Theme: theme, RevenueSize: size}

	if r.cache != nil {
		if v, ok := r.cache.Get(requested); ok {
			return v, nil
		}
	}

	for _, key := range fallbackChain(requested) {
		v, found, err := r.store.Lookup(ctx, key)
		if err != nil {
			return 0, err
		}
		if !found {
			continue
		}

		if r.cache != nil {
			r.cache.Add(requested, v)
		}
		if key != requested {
			r.logger.Debug("factor.fallback", "requested", requested.String(), "resolved", key.String(), "value", v)
		}
		return v, nil
	}

	r.logger.Debug("factor.default", "requested", requested.String(), "value", def)
	return def, nil
}

// ResolveBatch resolves every name in defaults for one scope, using each
// entry's value as that factor's default.
func (r *Resolver) ResolveBatch(ctx context.Context, theme restaurant.Theme, size restaurant.RevenueSize, defaults map[string]float64) (map[string]float64, error) {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]float64, len(names))
	for _, name := range names {
		v, err := r.Resolve(ctx, name, theme, size, defaults[name])
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// ClearCache drops every cached resolution.
func (r *Resolver) ClearCache() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// CacheLen reports the number of cached resolutions.
func (r *Resolver) CacheLen() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}

func fallbackChain(k Key) []Key {
	candidates := []Key{
		k,
		{Name: k.Name, Theme: k.Theme},
		{Name: k.Name, RevenueSize: k.RevenueSize},
		{Name: k.Name},
	}

	chain := make([]Key, 0, len(candidates))
	seen := make(map[Key]bool, len(candidates))
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		chain = append(chain, c)
	}
	return chain
}
