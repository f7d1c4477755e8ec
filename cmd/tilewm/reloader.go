package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/util"
)

// reloadTarget is the part of the engine a reload swaps configuration in.
type reloadTarget interface {
	Reload(cfg *config.Config) error
	Keys() []string
}

// binder installs grabs and border colors for an accepted configuration.
type binder interface {
	Bind(cfg *config.Config, chords []string) error
}

type configReloader struct {
	path   string
	logger *util.Logger
	engine reloadTarget
	binder binder

	mu             sync.Mutex
	lastSerialized []byte
	lastConfig     *config.Config
}

func newConfigReloader(path string, logger *util.Logger, eng reloadTarget, b binder, serialized []byte) *configReloader {
	return &configReloader{
		path:           path,
		logger:         logger,
		engine:         eng,
		binder:         b,
		lastSerialized: append([]byte(nil), serialized...),
		lastConfig:     lastValid(serialized),
	}
}

// lastValid parses the running document; an empty one yields the defaults.
func lastValid(serialized []byte) *config.Config {
	cfg, err := config.Parse(serialized)
	if err != nil {
		return nil
	}
	return cfg
}

// Reload re-reads the configuration file. A rejected file leaves the running
// configuration untouched.
func (r *configReloader) Reload(reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Infof("%s, reloading config", reason)
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		r.logDiff(raw)
		return err
	}
	if err := r.engine.Reload(cfg); err != nil {
		r.logDiff(raw)
		return fmt.Errorf("apply config: %w", err)
	}
	if err := r.binder.Bind(cfg, r.engine.Keys()); err != nil {
		return fmt.Errorf("bind keys: %w", err)
	}
	changed := config.ChangedSections(r.lastConfig, cfg)
	r.lastSerialized = append([]byte(nil), raw...)
	r.lastConfig = cfg
	if len(changed) == 0 {
		r.logger.Infof("config reloaded, no effective changes")
		return nil
	}
	r.logger.Infof("config reloaded, changed: %s", strings.Join(changed, ", "))
	return nil
}

func (r *configReloader) logDiff(current []byte) {
	diff := config.DiffSerialized(r.lastSerialized, current)
	if diff == "" {
		r.logger.Warnf("config change rejected; unable to compute diff vs last valid config")
		return
	}
	r.logger.Warnf("config change rejected; diff vs last valid config:\n%s", diff)
}
