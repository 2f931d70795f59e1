// Package parental implements the parental controls: a password, the hours
// of the day play is allowed, and counters of launches and minutes played.
package parental

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// DefaultPassword is used until a parent sets a different one.
const DefaultPassword = "password"

// TimeNow supplies the local hour for the allowed-time check.
var TimeNow = time.Now

var (
	ErrInvalidHour        = errors.New("hour must be between 0 and 23")
	ErrStorageUnavailable = errors.New("parental storage unavailable")
)

// Data is the on-disk parental document.
type Data struct {
	Password         string `json:"password"`
	AllowedHours     []int  `json:"allowedHours"`
	Enabled          bool   `json:"enabled"`
	TotalTimePlayed  int    `json:"totalTimePlayed"`
	NumberOfLaunches int    `json:"numberOfLaunches"`
}

// Stats are the usage counters.
type Stats struct {
	TotalTimePlayed  int // minutes
	NumberOfLaunches int
}

// DefaultData returns the settings written when no valid document exists.
func DefaultData() Data {
	hours := make([]int, 24)
	for h := range hours {
		hours[h] = h
	}
	return Data{Password: DefaultPassword, AllowedHours: hours, Enabled: true}
}

// Gate is the single owner of the parental document. Every mutation takes
// an exclusive file lock, reloads the document, applies the change and writes
// it back, so several game processes converge on the same counters.
type Gate struct {
	path   string
	lock   *flock.Flock
	logger *zap.Logger

	mu   sync.Mutex
	data Data
}

// Open loads path, writing defaults if the document is missing or invalid.
func Open(path string, logger *zap.Logger) (*Gate, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	g := &Gate{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
	if err := g.update(func(*Data) error { return nil }); err != nil {
		return nil, err
	}
	return g, nil
}

// load reads the document. A missing or malformed document yields the
// defaults and reports that they must be written.
func (g *Gate) load() (Data, bool, error) {
	raw, err := os.ReadFile(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		g.logger.Info("parental data missing, using defaults", zap.String("path", g.path))
		return DefaultData(), true, nil
	}
	if err != nil {
		return Data{}, false, fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, g.path, err)
	}

	var doc struct {
		Password         *string `json:"password"`
		AllowedHours     []int   `json:"allowedHours"`
		Enabled          *bool   `json:"enabled"`
		TotalTimePlayed  int     `json:"totalTimePlayed"`
		NumberOfLaunches int     `json:"numberOfLaunches"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Password == nil || doc.AllowedHours == nil {
		g.logger.Warn("parental data invalid, using defaults", zap.String("path", g.path), zap.Error(err))
		return DefaultData(), true, nil
	}

	d := Data{
		Password:         *doc.Password,
		AllowedHours:     normalizeHours(doc.AllowedHours),
		Enabled:          true,
		TotalTimePlayed:  max(doc.TotalTimePlayed, 0),
		NumberOfLaunches: max(doc.NumberOfLaunches, 0),
	}
	if doc.Enabled != nil {
		d.Enabled = *doc.Enabled
	}
	return d, false, nil
}

func (g *Gate) write(d Data) error {
	buf, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrStorageUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, g.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", ErrStorageUnavailable, g.path, err)
	}
	return nil
}

// update runs fn against a freshly loaded document under both locks and
// persists the result.
func (g *Gate) update(fn func(*Data) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.lock.Lock(); err != nil {
		return fmt.Errorf("%w: locking: %v", ErrStorageUnavailable, err)
	}
	defer g.lock.Unlock()

	d, _, err := g.load()
	if err != nil {
		return err
	}
	if err := fn(&d); err != nil {
		return err
	}
	if err := g.write(d); err != nil {
		return err
	}
	g.data = d
	return nil
}

// refresh reloads the document under a shared lock. A missing or invalid
// document is replaced with the defaults on disk. On failure the last known
// values are kept.
func (g *Gate) refresh() (Data, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	d, stale, err := g.readShared()
	if err == nil && stale {
		d, err = g.repair()
	}
	if err != nil {
		g.logger.Warn("parental reload failed, using cached data", zap.Error(err))
		return g.snapshot(), err
	}
	g.data = d
	return g.snapshot(), nil
}

func (g *Gate) readShared() (Data, bool, error) {
	if err := g.lock.RLock(); err != nil {
		return Data{}, false, fmt.Errorf("%w: locking: %v", ErrStorageUnavailable, err)
	}
	defer g.lock.Unlock()
	return g.load()
}

// repair persists the defaults under the exclusive lock, unless another
// process already rewrote the document.
func (g *Gate) repair() (Data, error) {
	if err := g.lock.Lock(); err != nil {
		return Data{}, fmt.Errorf("%w: locking: %v", ErrStorageUnavailable, err)
	}
	defer g.lock.Unlock()

	d, stale, err := g.load()
	if err != nil {
		return Data{}, err
	}
	if stale {
		if err := g.write(d); err != nil {
			return Data{}, err
		}
		g.logger.Info("parental defaults written", zap.String("path", g.path))
	}
	return d, nil
}

func (g *Gate) snapshot() Data {
	d := g.data
	d.AllowedHours = append([]int(nil), g.data.AllowedHours...)
	return d
}

// VerifyPassword reports whether candidate matches the stored password exactly.
func (g *Gate) VerifyPassword(candidate string) bool {
	d, _ := g.refresh()
	return candidate == d.Password
}

// SetPassword replaces the password.
func (g *Gate) SetPassword(password string) error {
	if password == "" {
		return errors.New("password must not be empty")
	}
	return g.update(func(d *Data) error {
		d.Password = password
		return nil
	})
}

// SetAllowedHours replaces the allowed hour set. Every hour must be in 0..23.
func (g *Gate) SetAllowedHours(hours []int) error {
	for _, h := range hours {
		if h < 0 || h > 23 {
			return fmt.Errorf("%w: got %d", ErrInvalidHour, h)
		}
	}
	set := normalizeHours(hours)
	err := g.update(func(d *Data) error {
		d.AllowedHours = set
		return nil
	})
	if err == nil {
		g.logger.Info("allowed hours updated", zap.Ints("hours", set))
	}
	return err
}

// AllowedHours returns the sorted allowed hours.
func (g *Gate) AllowedHours() []int {
	d, _ := g.refresh()
	return d.AllowedHours
}

// SetEnabled turns the time restriction on or off.
func (g *Gate) SetEnabled(enabled bool) error {
	err := g.update(func(d *Data) error {
		d.Enabled = enabled
		return nil
	})
	if err == nil {
		g.logger.Info("parental controls toggled", zap.Bool("enabled", enabled))
	}
	return err
}

// Enabled reports whether the time restriction is active.
func (g *Gate) Enabled() bool {
	d, _ := g.refresh()
	return d.Enabled
}

// IsWithinAllowedTime reports whether play is allowed right now. Disabled
// controls always allow play.
func (g *Gate) IsWithinAllowedTime() bool {
	d, _ := g.refresh()
	return allowedAt(d, TimeNow().Hour())
}

func allowedAt(d Data, hour int) bool {
	if !d.Enabled {
		return true
	}
	for _, h := range d.AllowedHours {
		if h == hour {
			return true
		}
	}
	return false
}

// IncrementLaunchCount records one game launch.
func (g *Gate) IncrementLaunchCount() error {
	return g.update(func(d *Data) error {
		d.NumberOfLaunches++
		return nil
	})
}

// IncrementTimePlayed records one minute of play.
func (g *Gate) IncrementTimePlayed() error {
	return g.update(func(d *Data) error {
		d.TotalTimePlayed++
		return nil
	})
}

// ResetStats sets launches to 1, counting the current run, and minutes to 0.
func (g *Gate) ResetStats() error {
	err := g.update(func(d *Data) error {
		d.NumberOfLaunches = 1
		d.TotalTimePlayed = 0
		return nil
	})
	if err == nil {
		g.logger.Info("parental stats reset")
	}
	return err
}

// Stats returns the counters as currently stored on disk.
func (g *Gate) Stats() (Stats, error) {
	d, err := g.refresh()
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalTimePlayed: d.TotalTimePlayed, NumberOfLaunches: d.NumberOfLaunches}, nil
}

// normalizeHours drops out-of-range values and duplicates and sorts the rest.
func normalizeHours(hours []int) []int {
	seen := make(map[int]bool, len(hours))
	out := make([]int, 0, len(hours))
	for _, h := range hours {
		if h < 0 || h > 23 || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}
