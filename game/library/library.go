package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/maze-runner/game/codec"
	"github.com/wricardo/maze-runner/game/engine"
	"github.com/wricardo/maze-runner/game/service"
)

// Extension is the suffix of every map file in the library.
const Extension = ".bin"

// DefaultNamePrefix is used by NextDefaultName.
const DefaultNamePrefix = "map"

var (
	ErrMapNotFound = service.ErrMapNotFound
	ErrInvalidName = fmt.Errorf("%w: invalid map name", service.ErrInvalidInput)
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Library manages saved mazes in a directory, one file per map.
type Library struct {
	dir   string
	log   logrus.FieldLogger
	infos map[string]cachedInfo
	mu    sync.RWMutex
}

// cachedInfo avoids decoding unchanged files on every List.
type cachedInfo struct {
	info    service.MapInfo
	modTime time.Time
	size    int64
}

// NewLibrary opens dir, creating it if it does not exist yet.
func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create maps directory: %w", err)
	}
	return &Library{
		dir:   dir,
		log:   logrus.StandardLogger().WithField("component", "library"),
		infos: make(map[string]cachedInfo),
	}, nil
}

// Dir returns the directory backing the library.
func (l *Library) Dir() string {
	return l.dir
}

// normalizeName strips the extension and validates the remainder.
func normalizeName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), Extension)
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q (use letters, digits, '-' or '_')", ErrInvalidName, name)
	}
	return name, nil
}

func (l *Library) path(name string) string {
	return filepath.Join(l.dir, name+Extension)
}

// List returns information about every readable map, sorted by name.
// Files that fail to decode are skipped with a warning.
func (l *Library) List() ([]*service.MapInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read maps directory: %w", err)
	}

	maps := make([]*service.MapInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), Extension)
		if !validName.MatchString(name) {
			continue
		}

		info, err := l.describe(name)
		if err != nil {
			l.log.WithError(err).WithField("map", name).Warn("skipping unreadable map")
			continue
		}
		maps = append(maps, info)
	}

	sort.Slice(maps, func(i, j int) bool { return maps[i].Name < maps[j].Name })
	return maps, nil
}

// describe returns cached info for name, decoding the file when it changed.
func (l *Library) describe(name string) (*service.MapInfo, error) {
	stat, err := os.Stat(l.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMapNotFound, name)
		}
		return nil, err
	}

	l.mu.RLock()
	cached, ok := l.infos[name]
	l.mu.RUnlock()
	if ok && cached.modTime.Equal(stat.ModTime()) && cached.size == stat.Size() {
		info := cached.info
		return &info, nil
	}

	grid, err := codec.Load(l.path(name))
	if err != nil {
		return nil, err
	}
	return l.remember(name, grid, stat), nil
}

func (l *Library) remember(name string, grid *engine.Grid, stat os.FileInfo) *service.MapInfo {
	info := service.MapInfo{
		Name:       name,
		Filename:   name + Extension,
		Width:      grid.Width(),
		Height:     grid.Height(),
		Solved:     grid.Count(engine.Solution) > 0,
		SizeBytes:  stat.Size(),
		ModifiedAt: stat.ModTime(),
	}

	l.mu.Lock()
	l.infos[name] = cachedInfo{info: info, modTime: stat.ModTime(), size: stat.Size()}
	l.mu.Unlock()
	return &info
}

// Load decodes the named map.
func (l *Library) Load(name string) (*engine.Grid, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	grid, err := codec.Load(l.path(name))
	if errors.Is(err, codec.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// Save writes grid under name, replacing any existing map of that name.
func (l *Library) Save(name string, grid *engine.Grid) (*service.MapInfo, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if grid == nil {
		return nil, fmt.Errorf("grid cannot be nil")
	}

	if err := codec.Save(grid, l.path(name)); err != nil {
		return nil, err
	}
	stat, err := os.Stat(l.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to stat saved map: %w", err)
	}
	info := l.remember(name, grid, stat)

	l.log.WithFields(logrus.Fields{
		"map":    name,
		"width":  grid.Width(),
		"height": grid.Height(),
	}).Debug("map saved")
	return info, nil
}

// Delete removes the named map.
func (l *Library) Delete(name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(l.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMapNotFound, name)
		}
		return fmt.Errorf("failed to delete map: %w", err)
	}

	l.mu.Lock()
	delete(l.infos, name)
	l.mu.Unlock()
	return nil
}

// Exists reports whether a map file with this name is present.
func (l *Library) Exists(name string) bool {
	name, err := normalizeName(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(l.path(name))
	return err == nil
}

// NextDefaultName returns the first unused name of the form map1, map2, ...
func (l *Library) NextDefaultName() (string, error) {
	for n := 1; n <= 100000; n++ {
		name := fmt.Sprintf("%s%d", DefaultNamePrefix, n)
		if !l.Exists(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free default map name in %s", l.dir)
}

// Export returns the raw encoded bytes of the named map after checking
// that they decode.
func (l *Library) Export(name string) ([]byte, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMapNotFound, name)
		}
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	if _, err := codec.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("map %s: %w", name, err)
	}
	return data, nil
}
