/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fed

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dimkr/apfeed/ap"
)

// Cache stores fetched objects in a database.
type Cache struct {
	db *sql.DB
}

// NewCache returns a new [Cache] and creates its table if needed.
func NewCache(ctx context.Context, db *sql.DB) (*Cache, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS objects(id STRING NOT NULL PRIMARY KEY, object STRING NOT NULL, updated INTEGER NOT NULL)`); err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns a cached object and the time it was cached.
// It returns nil if the object is not cached.
func (c *Cache) Get(ctx context.Context, id string) (*ap.Object, time.Time, error) {
	var raw string
	var updated int64
	if err := c.db.QueryRowContext(ctx, `SELECT object, updated FROM objects WHERE id = ?`, id).Scan(&raw, &updated); errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	} else if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to fetch %s from cache: %w", id, err)
	}

	var o ap.Object
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to unmarshal cached %s: %w", id, err)
	}

	return &o, time.Unix(updated, 0), nil
}

// Store adds an object to the cache or replaces the cached copy.
func (c *Cache) Store(ctx context.Context, id string, o *ap.Object) error {
	buf, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	if _, err := c.db.ExecContext(
		ctx,
		`INSERT INTO objects(id, object, updated) VALUES ($1, $2, $3) ON CONFLICT(id) DO UPDATE SET object = $2, updated = $3`,
		id,
		string(buf),
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to cache %s: %w", id, err)
	}

	return nil
}

// Delete removes an object from the cache.
func (c *Cache) Delete(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete %s from cache: %w", id, err)
	}

	return nil
}

// CollectGarbage deletes objects cached before a given time.
func (c *Cache) CollectGarbage(ctx context.Context, before time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM objects WHERE updated < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to collect garbage: %w", err)
	}

	return res.RowsAffected()
}
