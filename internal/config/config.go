// Package config loads the engine's own operational knobs. The caller
// still owns the database DSN and the Redis address — those are handed in
// as already-connected clients — this only covers settings the engine
// itself decides.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Options holds the engine's tunables.
type Options struct {
	// CacheTTL bounds how long an L2 entry may live even if the version
	// token never changes (a safety net, not the primary invalidation
	// mechanism — that's the version stamp).
	CacheTTL time.Duration `envconfig:"ROLEMANAGER_CACHE_TTL" default:"10m"`

	// GroupDepthBound caps group-closure traversal.
	GroupDepthBound int `envconfig:"ROLEMANAGER_GROUP_DEPTH_BOUND" default:"10"`

	// LogFormat selects "json" or "text" console output.
	LogFormat string `envconfig:"ROLEMANAGER_LOG_FORMAT" default:"text"`

	// ConsoleLogLevel and DBLogLevel are level names from
	// debug/info/notice/warning/error/critical/alert/fatal.
	ConsoleLogLevel string `envconfig:"ROLEMANAGER_CONSOLE_LOG_LEVEL" default:"info"`
	DBLogLevel      string `envconfig:"ROLEMANAGER_DB_LOG_LEVEL" default:"warning"`

	// LocalCache selects the in-process L2 backend instead of Redis when
	// true. Absence of any L2 is also acceptable, via a nil backend,
	// which this flag does not control.
	LocalCache bool `envconfig:"ROLEMANAGER_LOCAL_CACHE" default:"false"`

	// LocalCacheSize bounds the in-process LRU when LocalCache is set.
	LocalCacheSize int `envconfig:"ROLEMANAGER_LOCAL_CACHE_SIZE" default:"4096"`
}

// Load reads Options from the environment, applying the defaults above
// where unset.
func Load() (Options, error) {
	var opts Options
	if err := envconfig.Process("", &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
