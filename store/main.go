// Package store keeps named tracks in a buntdb database.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lin71008/RollerCoasters/track"
	"github.com/tidwall/buntdb"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("track not found")

type Store struct {
	db *buntdb.DB
}

// Open opens (creating if needed) the database at path.
// ":memory:" opens a database that is never written to disk.
func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var conf buntdb.Config
	if err := db.ReadConfig(&conf); err != nil {
		db.Close()
		return nil, fmt.Errorf("read config: %w", err)
	}
	conf.SyncPolicy = buntdb.Always
	if err := db.SetConfig(conf); err != nil {
		db.Close()
		return nil, fmt.Errorf("set config: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(id uuid.UUID) string {
	return fmt.Sprintf("track:%s:data", id)
}

func (s *Store) Save(id uuid.UUID, tr track.Track) error {
	if err := tr.Check(); err != nil {
		return err
	}
	data, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("marshal track: %w", err)
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, replaced, err := tx.Set(key(id), string(data), nil)
		if err != nil {
			return err
		}
		zap.S().Infof("store: saved track %s (%d points, replaced %t)", id, tr.Len(), replaced)
		return nil
	})
}

func (s *Store) Load(id uuid.UUID) (track.Track, error) {
	var tr track.Track
	err := s.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(key(id))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(value), &tr)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return track.Track{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return track.Track{}, fmt.Errorf("load track %s: %w", id, err)
	}
	if err := tr.Check(); err != nil {
		return track.Track{}, fmt.Errorf("load track %s: %w", id, err)
	}
	tr.TrainParam = track.Wrap(tr.TrainParam, tr.Len())
	return tr, nil
}

// List returns the ids of all stored tracks in key order.
func (s *Store) List() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("track:*:data", func(k, _ string) bool {
			raw := strings.TrimSuffix(strings.TrimPrefix(k, "track:"), ":data")
			id, err := uuid.Parse(raw)
			if err != nil {
				zap.S().Warnf("store: skipping key %s: %s", k, err)
				return true
			}
			ids = append(ids, id)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) Delete(id uuid.UUID) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key(id))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}
