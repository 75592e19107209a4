// package config owns the persisted companion configuration: credentials,
// the master switch, and the rendering profiles. A single Config instance
// guards all of it behind one mutex; every caller, whether the update loop,
// the polling path, or a CLI command, goes through View or Update so that
// credential tuples are never observed half-written.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Data is the persisted aggregate. Fields are exported for TOML round
// tripping; mutate them only inside [Config.Update].
type Data struct {
	Enabled bool `toml:"enabled"`

	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RefreshToken string    `toml:"refresh_token"`
	LastAuthTime time.Time `toml:"last_auth_time"`

	EnableDebugLogging bool `toml:"enable_debug_logging"`

	ActiveConfigName string           `toml:"active_config_name"`
	ActivityConfigs  []ActivityConfig `toml:"activity_configs"`
}

// DefaultData returns the configuration used when nothing is persisted yet.
func DefaultData() *Data {
	configs := DefaultActivityConfigs()
	return &Data{
		Enabled:          true,
		ActiveConfigName: configs[0].Name,
		ActivityConfigs:  configs,
	}
}

// ResetDefaults re-seeds the default profiles by name: an existing profile
// with a default's name is overwritten in place, missing ones are appended.
// Appending blindly would silently stack duplicate names, so this upserts.
func (d *Data) ResetDefaults() {
	for _, def := range DefaultActivityConfigs() {
		replaced := false
		for i := range d.ActivityConfigs {
			if d.ActivityConfigs[i].Name == def.Name {
				d.ActivityConfigs[i] = def
				replaced = true
				break
			}
		}
		if !replaced {
			d.ActivityConfigs = append(d.ActivityConfigs, def)
		}
	}
	if d.ActiveConfigName == "" && len(d.ActivityConfigs) > 0 {
		d.ActiveConfigName = d.ActivityConfigs[0].Name
	}
}

// Config is the lock-guarded owner of [Data]. Updates are saved to the
// backing store synchronously, before the lock is released. The mutex is
// not reentrant: a read that belongs to a larger read-modify-write must be
// part of the same closure, never a nested View call.
type Config struct {
	mu     sync.Mutex
	data   Data
	store  Store
	logger *log.Logger
}

// New loads the configuration from store, seeding and saving defaults when
// the store holds nothing yet.
func New(store Store, logger *log.Logger) (*Config, error) {
	data, ok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !ok {
		data = DefaultData()
		if err := store.Save(data); err != nil {
			return nil, fmt.Errorf("failed to seed default config: %w", err)
		}
		logger.Info("seeded default configuration")
	}
	if data.ActiveConfigName == "" && len(data.ActivityConfigs) > 0 {
		data.ActiveConfigName = data.ActivityConfigs[0].Name
	}
	return &Config{data: *data, store: store, logger: logger}, nil
}

// View runs fn with read access to the data under the lock. fn must not
// retain the pointer past its return.
func (c *Config) View(fn func(*Data)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.data)
}

// Update runs fn with write access under the lock and persists the result
// before returning. The mutation is kept even when saving fails, so a
// transient persistence error never rolls back in-memory state; the error
// is returned for the caller to surface.
func (c *Config) Update(fn func(*Data)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.data)
	if err := c.store.Save(&c.data); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
