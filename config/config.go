// Package config loads and hot-reloads the structural parameters a
// store.Container is built from.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	log "github.com/semihalev/zlog/v2"
)

const configver = "1.0.0"

// Config is the on-disk shape of a container's structural parameters.
// GrowthThreshold and PoolSoftCap are read once at process start and
// carried immutably into store.Config: resizing the live structure's shape
// while it is in use is outside this package's scope (§4.E/§4.B call out
// growth and pool sizing as construction-time, not runtime-mutable,
// parameters). LogLevel is the one field this package will hot-reload.
type Config struct {
	Version string

	GrowthThreshold float64
	MaxIndexBits    uint32
	PoolSoftCap     int64

	LogLevel string
}

var defaultConfig = `
# Config version, config and build versions can differ across upgrades.
version = "%s"

# Average chain length (logLen/bucketCount) that triggers widening the
# addressable bucket index by one bit, doubling the bucket count.
growththreshold = 8.0

# Ceiling on the addressable bucket index width, in bits. Growth silently
# stops once this width is reached.
maxindexbits = 10

# Soft cap on the retired-node pool's resident length before excess nodes
# are released back to the allocator. 0 disables trimming.
poolsoftcap = 0

# Log verbosity level [crit, error, warn, info, debug].
loglevel = "info"
`

// Load reads cfgfile, generating a default one in its place if absent.
func Load(cfgfile string) (*Config, error) {
	if _, err := os.Stat(cfgfile); os.IsNotExist(err) {
		if err := generateConfig(cfgfile); err != nil {
			return nil, err
		}
	}

	log.Info("Loading config file...", "path", cfgfile)

	cfg := new(Config)
	if _, err := toml.DecodeFile(cfgfile, cfg); err != nil {
		return nil, fmt.Errorf("could not load config: %s", err)
	}

	if cfg.Version != configver {
		log.Warn("Config file is out of version, you can generate a new one and check the changes.")
	}
	if cfg.GrowthThreshold <= 0 {
		cfg.GrowthThreshold = 8.0
	}
	if cfg.MaxIndexBits == 0 {
		cfg.MaxIndexBits = 10
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func generateConfig(path string) error {
	output, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not generate config: %s", err)
	}
	defer func() {
		if err := output.Close(); err != nil {
			log.Warn("Config generation failed while file closing", "error", err.Error())
		}
	}()

	r := strings.NewReader(fmt.Sprintf(defaultConfig, configver))
	if _, err := io.Copy(output, r); err != nil {
		return fmt.Errorf("could not write default config: %s", err)
	}

	log.Info("Default config file generated", "config", path)
	return nil
}

// Watcher watches a config file for changes and, on write or create,
// re-reads it and makes the new Config available through Current. A change
// of log level is reported with a log line; the process logger's level is
// not changed. Growth threshold and pool soft cap are intentionally not
// live-reloaded (see Config's doc comment).
type Watcher struct {
	path string

	mu  sync.RWMutex
	cfg *Config

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching cfgfile for writes and returns the live Watcher.
// Call Close when finished.
func Watch(cfgfile string) (*Watcher, error) {
	cfg, err := Load(cfgfile)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not start config watcher: %s", err)
	}
	if err := fw.Add(cfgfile); err != nil {
		fw.Close()
		return nil, fmt.Errorf("could not watch config file: %s", err)
	}

	w := &Watcher{path: cfgfile, cfg: cfg, watcher: fw, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				log.Error("Config reload failed", "path", w.path, "error", err.Error())
				continue
			}
			w.mu.Lock()
			prev := w.cfg.LogLevel
			w.cfg = cfg
			w.mu.Unlock()
			if prev != cfg.LogLevel {
				log.Info("Log level changed", "from", prev, "to", cfg.LogLevel)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error("Config watcher error", "error", err.Error())
		case <-w.done:
			return
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
