package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"f1-fantasy/internal/model"
)

// Dataset is everything loaded for one season.
type Dataset struct {
	Season       *model.Season
	Drivers      *Table
	Constructors *Table
	// Odds is nil when the season has no odds file.
	Odds *OddsTable
}

// Paths locates the input files of a season.
type Paths struct {
	Drivers      string
	Constructors string
	Odds         string
}

// DirPaths returns the conventional file names for year inside dir:
// <year>_drivers.csv, <year>_constructors.csv and <year>_odds.csv.
func DirPaths(dir string, year int) Paths {
	return Paths{
		Drivers:      filepath.Join(dir, fmt.Sprintf("%d_drivers.csv", year)),
		Constructors: filepath.Join(dir, fmt.Sprintf("%d_constructors.csv", year)),
		Odds:         filepath.Join(dir, fmt.Sprintf("%d_odds.csv", year)),
	}
}

// LoadDataset reads the tables, adds rolling metrics and builds the season.
// A missing odds file is not an error.
func LoadDataset(p Paths, year, window int) (*Dataset, error) {
	drivers, err := LoadTableCSV(p.Drivers, model.KindDriver)
	if err != nil {
		return nil, err
	}
	constructors, err := LoadTableCSV(p.Constructors, model.KindConstructor)
	if err != nil {
		return nil, err
	}
	drivers = DeriveRolling(drivers, window)
	constructors = DeriveRolling(constructors, window)

	season, err := BuildSeason(drivers, constructors, year)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{Season: season, Drivers: drivers, Constructors: constructors}

	if p.Odds != "" {
		if _, err := os.Stat(p.Odds); err == nil {
			if ds.Odds, err = LoadOddsCSV(p.Odds); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "stat odds")
		}
	}
	return ds, nil
}

type cacheEntry struct {
	dataset   *Dataset
	expiresAt time.Time
}

// SeasonCache memoizes loaded datasets by season year. It is owned by the
// caller; call Invalidate or Clear between runs that must reload data.
// A zero ttl keeps entries until they are invalidated.
type SeasonCache struct {
	mu    sync.RWMutex
	store map[int]*cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewSeasonCache(ttl time.Duration) *SeasonCache {
	return &SeasonCache{
		store: make(map[int]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns a cached dataset that has not expired.
func (c *SeasonCache) Get(year int) (*Dataset, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[year]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.dataset, true
}

// Set stores a dataset for year.
func (c *SeasonCache) Set(year int, ds *Dataset) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{dataset: ds}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.store[year] = entry
}

// GetOrLoad returns the cached dataset for year or loads and stores it.
// Concurrent misses may both load; the last one stored wins.
func (c *SeasonCache) GetOrLoad(year int, load func() (*Dataset, error)) (*Dataset, error) {
	if ds, ok := c.Get(year); ok {
		return ds, nil
	}
	ds, err := load()
	if err != nil {
		return nil, err
	}
	c.Set(year, ds)
	return ds, nil
}

// Invalidate drops one season.
func (c *SeasonCache) Invalidate(year int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, year)
}

// Clear removes all entries.
func (c *SeasonCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[int]*cacheEntry)
}

// Len is the number of cached seasons, expired or not.
func (c *SeasonCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
