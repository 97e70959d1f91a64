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

package fedtest

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dimkr/apfeed/cfg"
	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens a temporary database that gets closed when the test ends.
func OpenDB(t *testing.T) *sql.DB {
	dbPath := filepath.Join(t.TempDir(), "cache.sqlite3")

	var c cfg.Config
	c.FillDefaults()

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?%s", dbPath, c.DatabaseOptions))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
