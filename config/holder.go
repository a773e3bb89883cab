package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

// Change describes one field that differs between two configurations.
type Change struct {
	Field   string
	Old     string
	New     string
	Restart bool // takes effect only in a new process
}

type field struct {
	name    string
	restart bool
	get     func(*Config) string
}

var fields = []field{
	{"logging.level", false, func(c *Config) string { return c.Logging.Level }},
	{"logging.format", true, func(c *Config) string { return c.Logging.Format }},
	{"format.output", false, func(c *Config) string { return c.Format.Output }},
	{"format.width", false, func(c *Config) string { return strconv.Itoa(c.Format.Width) }},
	{"format.name", false, func(c *Config) string { return c.Format.Name }},
	{"metrics.enabled", false, func(c *Config) string { return strconv.FormatBool(c.Metrics.Enabled) }},
	{"verify.iterations", false, func(c *Config) string { return strconv.Itoa(c.Verify.Iterations) }},
	{"verify.workers", false, func(c *Config) string { return strconv.Itoa(c.Verify.Workers) }},
}

// Diff lists the fields that differ between old and new, in declaration order.
func Diff(old, new *Config) []Change {
	var changes []Change
	for _, f := range fields {
		o, n := f.get(old), f.get(new)
		if o != n {
			changes = append(changes, Change{Field: f.name, Old: o, New: n, Restart: f.restart})
		}
	}
	return changes
}

// ReloadableFields returns which fields take effect on the next run after a reload.
func ReloadableFields() []string {
	return fieldNames(false)
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return fieldNames(true)
}

func fieldNames(restart bool) []string {
	var names []string
	for _, f := range fields {
		if f.restart == restart {
			names = append(names, f.name)
		}
	}
	return names
}

// ChangeFunc is called with the new configuration and the fields that changed.
type ChangeFunc func(cfg *Config, changes []Change)

// HolderOption configures a Holder.
type HolderOption func(*Holder)

// WithDebounce sets how long the file watcher waits for events to settle
// before reloading. Zero reloads on every event.
func WithDebounce(d time.Duration) HolderOption {
	return func(h *Holder) {
		h.debounce = d
	}
}

// Holder keeps the current configuration of a long-running command and
// reloads it when the file changes or the process receives SIGHUP.
type Holder struct {
	reloadMu sync.Mutex // one reload, listeners included, at a time

	mu        sync.RWMutex
	config    *Config
	path      string
	logger    zerolog.Logger
	debounce  time.Duration
	listeners []ChangeFunc

	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHolder loads path and returns a holder for it.
func NewHolder(path string, logger zerolog.Logger, opts ...HolderOption) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	h := &Holder{
		config:   cfg,
		path:     absPath,
		logger:   logger.With().Str("component", "config").Logger(),
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Path returns the absolute path of the config file.
func (h *Holder) Path() string {
	return h.path
}

// OnChange registers fn to run after every reload that changed at least one field.
func (h *Holder) OnChange(fn ChangeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Reload reads the file again. An invalid file leaves the current
// configuration in place and returns the error. Concurrent reloads from the
// file watcher, SIGHUP and callers run one after another.
func (h *Holder) Reload() error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	next, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str("path", h.path).Msg("config reload failed, keeping current config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	prev := h.config
	h.config = next
	listeners := append([]ChangeFunc(nil), h.listeners...)
	h.mu.Unlock()

	changes := Diff(prev, next)
	if len(changes) == 0 {
		h.logger.Debug().Msg("config reloaded without changes")
		return nil
	}

	for _, c := range changes {
		ev := h.logger.Info()
		if c.Restart {
			ev = h.logger.Warn()
		}
		ev.Str("field", c.Field).
			Str("old", c.Old).
			Str("new", c.New).
			Bool("restart_required", c.Restart).
			Msg("config field changed")
	}

	for _, fn := range listeners {
		fn(next, changes)
	}
	return nil
}

// WatchFile reloads whenever the config file is written or recreated.
// The parent directory is watched so editors that save by rename are seen.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	h.mu.Lock()
	h.watcher = watcher
	h.mu.Unlock()

	go h.watchLoop(watcher)

	h.logger.Info().Str("path", h.path).Dur("debounce", h.debounce).Msg("watching config file")
	return nil
}

// WatchSignals reloads on SIGHUP until Stop.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("SIGHUP received")
				_ = h.Reload()
			case <-h.stopCh:
				return
			}
		}
	}()
}

// Stop ends file and signal watching. Safe to call more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)

		h.mu.Lock()
		w := h.watcher
		h.mu.Unlock()
		if w != nil {
			w.Close()
		}
	})
}

func (h *Holder) watchLoop(w *fsnotify.Watcher) {
	name := filepath.Base(h.path)

	// fire is nil while no reload is pending.
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.logger.Debug().Str("op", ev.Op.String()).Msg("config file event")

			if h.debounce <= 0 {
				_ = h.Reload()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(h.debounce)
			} else {
				timer.Reset(h.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			_ = h.Reload()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("config watcher error")

		case <-h.stopCh:
			return
		}
	}
}
