// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// geocodeBucket is the bbolt bucket holding cached geocoding results,
// keyed by the raw query string.
const geocodeBucket = "geocode"

// Cache persists geocoding results across restarts.
//
// Nominatim's public instance allows one request per second; a disk cache
// means each distinct address costs that budget exactly once.
type Cache struct {
	db *bbolt.DB
}

// OpenCache opens (creating if needed) the bbolt file at dbPath.
func OpenCache(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("geo: create cache directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("geo: open cache at %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(geocodeBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("geo: create cache bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the cached point for a query, with found=false on a miss.
func (c *Cache) Get(query string) (Point, bool, error) {
	var (
		point Point
		found bool
	)

	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(geocodeBucket)).Get([]byte(query))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &point)
	})
	if err != nil {
		return Point{}, false, fmt.Errorf("geo: cache get %q: %w", query, err)
	}

	return point, found, nil
}

// Set stores the point for a query.
func (c *Cache) Set(query string, point Point) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(point)
		if err != nil {
			return fmt.Errorf("geo: marshal cache entry: %w", err)
		}
		return tx.Bucket([]byte(geocodeBucket)).Put([]byte(query), data)
	})
}

// Close releases the underlying database file.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
