package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	errs "github.com/kobex777/anymaps/pkg/errors"
)

// FileStore is a file-based map store for CLI applications.
// Each map is a directory holding map.json and one JSON file per version:
//
//	<baseDir>/<mapID>/map.json
//	<baseDir>/<mapID>/versions/000001.json
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// NewFileStore creates a new file-based map store.
// If baseDir is empty, defaults to ~/.local/share/anymaps/maps/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create map dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

// DefaultDir returns the default map directory, honoring XDG_DATA_HOME.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "anymaps", "maps"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "anymaps", "maps"), nil
}

// Path returns the base directory for map files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) mapDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

func (s *FileStore) mapPath(id string) string {
	return filepath.Join(s.mapDir(id), "map.json")
}

func (s *FileStore) versionDir(id string) string {
	return filepath.Join(s.mapDir(id), "versions")
}

func (s *FileStore) CreateMap(ctx context.Context, owner, title string) (*Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := NewMap(owner, title, s.now().UTC())
	if err := os.MkdirAll(s.versionDir(m.ID), 0700); err != nil {
		return nil, Failed(err, "create map dir")
	}
	if err := writeJSON(s.mapPath(m.ID), m); err != nil {
		return nil, Failed(err, "write map")
	}
	return m, nil
}

func (s *FileStore) GetMap(ctx context.Context, id string) (*Map, error) {
	if err := errs.ValidateMapID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMap(id)
}

func (s *FileStore) readMap(id string) (*Map, error) {
	var m Map
	found, err := readJSON(s.mapPath(id), &m)
	if err != nil {
		return nil, Failed(err, "read map "+id)
	}
	if !found {
		return nil, nil
	}
	return &m, nil
}

func (s *FileStore) UpdateTitle(ctx context.Context, id, title string) error {
	if err := errs.ValidateMapID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.readMap(id)
	if err != nil {
		return err
	}
	if m == nil {
		return MapNotFound(id)
	}
	m.Title = title
	m.UpdatedAt = s.now().UTC()
	if err := writeJSON(s.mapPath(id), m); err != nil {
		return Failed(err, "write map")
	}
	return nil
}

func (s *FileStore) SaveVersion(ctx context.Context, mapID string, content Content, syntax string) (*Version, error) {
	if err := errs.ValidateMapID(mapID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.readMap(mapID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, MapNotFound(mapID)
	}
	last, err := s.lastNumber(mapID)
	if err != nil {
		return nil, Failed(err, "list versions")
	}

	now := s.now().UTC()
	v := NewVersion(mapID, last+1, content, syntax, now)
	if err := os.MkdirAll(s.versionDir(mapID), 0700); err != nil {
		return nil, Failed(err, "create version dir")
	}
	if err := writeJSON(s.versionPath(mapID, v.Number), v); err != nil {
		return nil, Failed(err, "write version")
	}
	m.UpdatedAt = now
	if err := writeJSON(s.mapPath(mapID), m); err != nil {
		return nil, Failed(err, "write map")
	}
	return v, nil
}

func (s *FileStore) versionPath(mapID string, n int) string {
	return filepath.Join(s.versionDir(mapID), fmt.Sprintf("%06d.json", n))
}

// lastNumber returns the highest version number on disk, or 0.
func (s *FileStore) lastNumber(mapID string) (int, error) {
	entries, err := os.ReadDir(s.versionDir(mapID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	last := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		last = max(last, n)
	}
	return last, nil
}

func (s *FileStore) LatestVersion(ctx context.Context, mapID string) (*Version, error) {
	if err := errs.ValidateMapID(mapID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	last, err := s.lastNumber(mapID)
	if err != nil {
		return nil, Failed(err, "list versions")
	}
	if last == 0 {
		return nil, nil
	}
	var v Version
	if _, err := readJSON(s.versionPath(mapID, last), &v); err != nil {
		return nil, Failed(err, "read version")
	}
	return &v, nil
}

func (s *FileStore) ListMaps(ctx context.Context, owner string) ([]Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, Failed(err, "read map dir")
	}

	var out []Map
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var m Map
		found, err := readJSON(s.mapPath(entry.Name()), &m)
		if err != nil || !found {
			continue
		}
		if m.Owner == owner {
			out = append(out, m)
		}
	}
	SortByUpdated(out)
	return out, nil
}

func (s *FileStore) DeleteMap(ctx context.Context, id string) error {
	if err := errs.ValidateMapID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.mapPath(id)); err != nil {
		if os.IsNotExist(err) {
			return MapNotFound(id)
		}
		return Failed(err, "stat map")
	}
	if err := os.RemoveAll(s.mapDir(id)); err != nil {
		return Failed(err, "remove map")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readJSON decodes path into v. A missing file reports found=false.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
