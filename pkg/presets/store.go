// Package presets persists named filter presets in an embedded Badger store
// and can seed them from a YAML file.
package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"gopkg.in/yaml.v3"

	"github.com/isometry-app/isometry/pkg/latch"
	"github.com/isometry-app/isometry/pkg/types"
)

const keyPrefix = "preset/"

// Store holds user-defined filter presets keyed by name. Values are stored as
// JSON under a "preset/" key prefix.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a preset store at dir. An empty dir opens an
// in-memory store.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preset store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a preset under its name, overwriting any existing entry.
func (s *Store) Save(preset *types.FilterPreset) error {
	if preset.Name == "" {
		return types.Invalidf("preset name must not be empty")
	}
	data, err := json.Marshal(preset)
	if err != nil {
		return fmt.Errorf("encode preset %s: %w", preset.Name, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+preset.Name), data)
	})
}

// Get returns the preset stored under name.
func (s *Store) Get(name string) (*types.FilterPreset, error) {
	var preset types.FilterPreset
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &preset)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, types.NotFoundf("preset %s", name)
	}
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

// List returns all stored presets sorted by name.
func (s *Store) List() ([]*types.FilterPreset, error) {
	var out []*types.FilterPreset
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var preset types.FilterPreset
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &preset)
			})
			if err != nil {
				return err
			}
			out = append(out, &preset)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the preset stored under name.
func (s *Store) Delete(name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(keyPrefix + name)); err != nil {
			return err
		}
		return txn.Delete([]byte(keyPrefix + name))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return types.NotFoundf("preset %s", name)
	}
	return err
}

// presetFile is the YAML seed format: a list of named expressions.
type presetFile struct {
	Presets []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Expression  string `yaml:"expression"`
	} `yaml:"presets"`
}

// LoadFile reads preset definitions from a YAML file, compiles each
// expression, and saves the results. Existing presets with the same name are
// overwritten. It returns the number of presets loaded.
func (s *Store) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read preset file: %w", err)
	}
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse preset file %s: %w", path, err)
	}

	loaded := 0
	for _, p := range file.Presets {
		if strings.TrimSpace(p.Name) == "" {
			return loaded, types.Invalidf("preset file %s: entry %d has no name", path, loaded)
		}
		filter, err := latch.Compile(p.Expression)
		if err != nil {
			return loaded, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		preset := &types.FilterPreset{
			Name:        p.Name,
			Description: p.Description,
			Filter:      *filter,
		}
		if err := s.Save(preset); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}
