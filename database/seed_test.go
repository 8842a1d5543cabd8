/*
 * Copyright 2026 keelstack.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, root, environment, name, content string) {
	t.Helper()
	dir := filepath.Join(root, environment)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestSeedRunOrdered(t *testing.T) {
	_, db := newTestManager(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "CREATE TABLE fixtures (id INTEGER PRIMARY KEY AUTOINCREMENT, label TEXT NOT NULL)")
	require.NoError(t, err)

	root := t.TempDir()
	writeSeedFile(t, root, "development", "002_second.sql",
		"INSERT INTO fixtures (label) VALUES ('b');\n")
	writeSeedFile(t, root, "development", "001_first.sql",
		"-- initial rows\nINSERT INTO fixtures (label) VALUES ('a');\n\nINSERT INTO fixtures (label) VALUES ('a2');\n")
	// Files for other environments are ignored.
	writeSeedFile(t, root, "production", "001_prod.sql",
		"INSERT INTO fixtures (label) VALUES ('prod');\n")

	seeder := NewSeedManager(db, "development")
	seeder.SetRootPath(root)

	results, err := seeder.Run(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].File, "001_first.sql")
	assert.Contains(t, results[1].File, "002_second.sql")

	count, err := db.NewSelect().Table("fixtures").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSeedRunFailureAborts(t *testing.T) {
	_, db := newTestManager(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "CREATE TABLE fixtures (id INTEGER PRIMARY KEY AUTOINCREMENT, label TEXT NOT NULL)")
	require.NoError(t, err)

	root := t.TempDir()
	writeSeedFile(t, root, "development", "001_ok.sql",
		"INSERT INTO fixtures (label) VALUES ('ok');\n")
	writeSeedFile(t, root, "development", "002_bad.sql",
		"INSERT INTO fixtures (label) VALUES ('kept');\nINSERT INTO missing_table (x) VALUES (1);\n")
	writeSeedFile(t, root, "development", "003_never.sql",
		"INSERT INTO fixtures (label) VALUES ('never');\n")

	seeder := NewSeedManager(db, "development")
	seeder.SetRootPath(root)

	results, err := seeder.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_bad.sql")
	require.Len(t, results, 1)

	// The failing file rolls back as a unit; earlier files stay committed.
	count, err := db.NewSelect().Table("fixtures").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSeedRunNoFiles(t *testing.T) {
	_, db := newTestManager(t)

	seeder := NewSeedManager(db, "development")
	seeder.SetRootPath(t.TempDir())

	results, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSplitStatements(t *testing.T) {
	script := `
-- seed users
INSERT INTO users (name)
VALUES ('a');

INSERT INTO users (name) VALUES ('b');
-- trailing comment
UPDATE users SET name = 'c' WHERE name = 'b'
`
	statements := splitStatements(script)
	require.Len(t, statements, 3)
	assert.Contains(t, statements[0], "VALUES ('a');")
	assert.Contains(t, statements[1], "('b');")
	assert.Contains(t, statements[2], "UPDATE users")
}
