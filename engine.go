// Package rolemanager is a library-only permission-resolution engine:
// no HTTP surface, no session handling, no JWT — a
// store adapter and a logger in, a fast hasRight/explainRight surface
// and a set of CRUD collaborators out, wired from a single top-level
// dependency struct much like an application root, adapted here into
// a plain constructor.
package rolemanager

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rolemanager/rbac-engine/internal/cache"
	"github.com/rolemanager/rbac-engine/internal/config"
	"github.com/rolemanager/rbac-engine/internal/contexts"
	"github.com/rolemanager/rbac-engine/internal/groups"
	"github.com/rolemanager/rbac-engine/internal/logging"
	"github.com/rolemanager/rbac-engine/internal/metrics"
	"github.com/rolemanager/rbac-engine/internal/rbac"
	"github.com/rolemanager/rbac-engine/internal/rightgroups"
	"github.com/rolemanager/rbac-engine/internal/rights"
	"github.com/rolemanager/rbac-engine/internal/righttypes"
	"github.com/rolemanager/rbac-engine/internal/roles"
	"github.com/rolemanager/rbac-engine/internal/store"
	"github.com/rolemanager/rbac-engine/internal/users"
	"github.com/rolemanager/rbac-engine/internal/version"
)

// VERSION identifies this engine build.
const VERSION = "1.0.0"

// Engine is the constructed, ready-to-use permission-resolution
// engine. It owns no connections of its own — the caller hands in an
// already-connected store.Port and, optionally, an already-connected
// Redis client — this is a library, not a service.
type Engine struct {
	store      store.Port
	logger     *logging.Logger
	metrics    *metrics.Metrics
	version    *version.Counter
	cache      *cache.TwoLevel
	depthBound int

	users       *users.Service
	groups      *groups.Service
	rights      *rights.Service
	rightGroups *rightgroups.Service
	rightTypes  *righttypes.Service
	roles       *roles.Service
	contexts    *contexts.Service
}

// Deps are the caller-owned collaborators the engine is built from.
// RedisClient is optional; when nil and opts.LocalCache is false, the
// engine runs L1-only.
type Deps struct {
	Store       store.Port
	RedisClient *redis.Client
}

// New wires an Engine from already-connected dependencies and the
// engine's own tunables.
func New(deps Deps, opts config.Options) (*Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("%w: rolemanager.New requires a store.Port", ErrValidation)
	}

	consoleLevel, err := logging.ParseLevel(opts.ConsoleLogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	dbLevel, err := logging.ParseLevel(opts.DBLogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	logger := logging.New(opts.LogFormat, consoleLevel, dbLevel)

	m := metrics.New()
	vc := version.New(deps.Store)
	version.OnBump = func(int64) { m.VersionBumps.Inc() }
	rbac.OnTruncate = func(n int) { m.GroupTruncation.Add(float64(n)) }

	var l2 cache.Backend
	switch {
	case opts.LocalCache:
		l2 = cache.NewLocalBackend(opts.LocalCacheSize, opts.CacheTTL)
	case deps.RedisClient != nil:
		l2 = cache.NewRedisBackend(deps.RedisClient, opts.CacheTTL)
	}

	depthBound := opts.GroupDepthBound
	if depthBound <= 0 {
		depthBound = rbac.GroupDepthBound
	}

	resolver := func(ctx context.Context, userID int64, contextID *int64) (map[string]any, error) {
		var result map[string]any
		err := deps.Store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
			var err error
			result, err = rbac.Resolve(ctx, tx, logger, userID, contextID, depthBound)
			return err
		})
		return result, err
	}

	tl := cache.NewTwoLevel(l2, resolver, vc.Current)
	tl.OnL1Hit = m.CacheL1Hits.Inc
	tl.OnL2Hit = m.CacheL2Hits.Inc
	tl.OnMiss = m.CacheMisses.Inc

	return &Engine{
		store:      deps.Store,
		logger:     logger,
		metrics:    m,
		version:    vc,
		cache:      tl,
		depthBound: depthBound,

		users:       users.NewService(users.NewRepository(deps.Store)),
		groups:      groups.NewService(groups.NewRepository(deps.Store)),
		rights:      rights.NewService(rights.NewRepository(deps.Store)),
		rightGroups: rightgroups.NewService(rightgroups.NewRepository(deps.Store)),
		rightTypes:  righttypes.NewService(righttypes.NewRepository(deps.Store)),
		roles:       roles.NewService(roles.NewRepository(deps.Store)),
		contexts:    contexts.NewService(contexts.NewRepository(deps.Store)),
	}, nil
}

// Users returns the User CRUD and authentication surface.
func (e *Engine) Users() *users.Service { return e.users }

// Groups returns the Group CRUD, hierarchy and membership surface.
func (e *Engine) Groups() *groups.Service { return e.groups }

// Rights returns the Right CRUD surface.
func (e *Engine) Rights() *rights.Service { return e.rights }

// RightGroups returns the RightGroup CRUD surface.
func (e *Engine) RightGroups() *rightgroups.Service { return e.rightGroups }

// RightTypes returns the RightTypeRange CRUD surface.
func (e *Engine) RightTypes() *righttypes.Service { return e.rightTypes }

// Roles returns the Role CRUD and role-right sub-resource surface.
func (e *Engine) Roles() *roles.Service { return e.roles }

// Contexts returns the Context CRUD surface.
func (e *Engine) Contexts() *contexts.Service { return e.contexts }

// Logger exposes the engine's logger so a host process can share it.
func (e *Engine) Logger() *logging.Logger { return e.logger }

// Metrics exposes the engine's private Prometheus registry.
func (e *Engine) Metrics() *metrics.Metrics { return e.metrics }

// AttachLogDB wires the logger's database sink, so console and
// database log levels can be filtered independently.
func (e *Engine) AttachLogDB(w logging.DBWriter) { e.logger.AttachDB(w) }

// HasRight implements the fast path: resolve every right
// for (userID, contextID) through the two-level cache and report
// whether rightName is granted, plus its resolved value (bool or
// float64). l1 may be nil to opt out of per-request memoization.
func (e *Engine) HasRight(ctx context.Context, l1 *cache.Request, userID int64, contextID *int64, rightName string) (any, bool, error) {
	e.metrics.ResolverCalls.WithLabelValues("fast").Inc()
	values, err := e.cache.Get(ctx, l1, userID, contextID)
	if err != nil {
		return nil, false, fmt.Errorf("rolemanager: has right: %w", err)
	}
	v, ok := values[rightName]
	return v, ok, nil
}

// ExplainRight implements the diagnostic path: a full
// annotated trace for a single right, bypassing the cache entirely
// since a diagnostic call must always reflect the live data.
func (e *Engine) ExplainRight(ctx context.Context, userID int64, contextID *int64, rightName string) (rbac.Explanation, error) {
	traceID := uuid.NewString()
	e.metrics.ResolverCalls.WithLabelValues("explain").Inc()
	e.logger.Debug(ctx, "explain right", map[string]any{
		"trace_id":   traceID,
		"user_id":    userID,
		"context_id": contextID,
		"right":      rightName,
	})

	var exp rbac.Explanation
	err := e.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		var err error
		exp, err = rbac.Explain(ctx, tx, e.logger, userID, contextID, rightName, e.depthBound)
		return err
	})
	if err != nil {
		return rbac.Explanation{}, fmt.Errorf("rolemanager: explain right: %w", err)
	}
	exp.TraceID = traceID
	return exp, nil
}

// WarmCache resolves and caches (userID, contextID) without returning
// anything, for background cache-warmup jobs (internal/jobs) that
// want L2 populated for an active user ahead of their next request.
func (e *Engine) WarmCache(ctx context.Context, userID int64, contextID *int64) error {
	_, err := e.cache.Get(ctx, nil, userID, contextID)
	if err != nil {
		return fmt.Errorf("rolemanager: warm cache: %w", err)
	}
	return nil
}

// CurrentVersion returns the current global permissions_version, for
// callers that want to stamp their own out-of-band cache entries.
func (e *Engine) CurrentVersion(ctx context.Context) (int64, error) {
	return e.version.Current(ctx)
}
