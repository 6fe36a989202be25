package colormanage

import (
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gogpu/colormanage/engine"
	"github.com/gogpu/colormanage/engine/builtin"
	"github.com/gogpu/colormanage/internal/cache"
	"github.com/gogpu/colormanage/internal/catalog"
	"github.com/gogpu/colormanage/internal/dispcache"
	"github.com/gogpu/colormanage/internal/parallel"
)

// Catalog entry types. Indices are 1-based; 0 means unknown.
type (
	// Catalog is the registry of a loaded config.
	Catalog = catalog.Catalog

	ColorSpace = catalog.ColorSpace
	Display    = catalog.Display
	View       = catalog.View
	Look       = catalog.Look
)

// CacheStats reports display buffer cache usage.
type CacheStats = cache.Stats

// Manager is the color management context: it owns the catalog, the
// transform engine, the worker pool and the display buffer caches.
type Manager struct {
	opts options

	cur        atomic.Pointer[session]
	generation atomic.Uint64

	pool  *parallel.WorkerPool
	cache *dispcache.Cache
}

// session is one loaded catalog and the cache layout derived from it.
type session struct {
	cat    *catalog.Catalog
	layout dispcache.Layout
}

// New creates a Manager and loads its config.
//
// New never fails: an unreadable config falls back to the compiled-in
// default and a config without displays or views to a minimal fallback.
// Failures are logged.
func New(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		opts:  o,
		pool:  parallel.NewWorkerPool(o.workers),
		cache: dispcache.New(cache.NewLimiter(o.memoryLimit)),
	}
	m.cur.Store(m.load())
	return m
}

// source returns the config and engine the options select.
func (m *Manager) source() (engine.Config, engine.Engine) {
	if m.opts.engine != nil {
		return m.opts.config, m.opts.engine
	}

	path := m.opts.configFile
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		cfg, err := builtin.LoadConfig(path)
		if err == nil {
			Logger().Info("colormanage: using config", slog.String("path", path))
			return cfg, builtin.New(cfg)
		}
		Logger().Warn("colormanage: config unreadable, using default",
			slog.String("path", path), slog.Any("err", err))
	}

	cfg := builtin.Default()
	return cfg, builtin.New(cfg)
}

func (m *Manager) load() *session {
	cfg, eng := m.source()
	cat := catalog.Load(cfg, eng, Logger)
	if !cat.Usable() {
		Logger().Warn("colormanage: config has no displays or views, using fallback",
			slog.Int("displays", cat.NumDisplays()), slog.Int("views", cat.NumViews()))
		cat.Close()
		fb := builtin.Fallback()
		cat = catalog.Load(fb, builtin.New(fb), Logger)
	}

	return &session{
		cat: cat,
		layout: dispcache.Layout{
			Generation: m.generation.Add(1),
			Displays:   cat.NumDisplays(),
			Views:      cat.NumViews(),
		},
	}
}

func (m *Manager) session() *session {
	return m.cur.Load()
}

// Catalog returns the registry of the loaded config. The returned catalog
// is valid until the next Reload or Close.
func (m *Manager) Catalog() *Catalog {
	return m.session().cat
}

// Reload reloads the config. Cached display buffers built for the previous
// catalog are discarded on their next access.
//
// Reload must not run concurrently with other Manager calls.
func (m *Manager) Reload() {
	old := m.cur.Swap(m.load())
	old.cat.Close()
}

// Close stops the worker pool and releases every compiled transform.
// Display buffers still held by callers stay valid until released.
func (m *Manager) Close() {
	m.pool.Close()
	m.session().cat.Close()
}

// SetMemoryLimit changes the display cache budget and evicts down to it.
func (m *Manager) SetMemoryLimit(bytes int64) {
	m.cache.Limiter().SetLimit(bytes)
}

// CacheStats returns usage of the shared display cache budget.
func (m *Manager) CacheStats() CacheStats {
	return m.cache.Limiter().Stats()
}
