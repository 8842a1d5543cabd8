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

package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()

	written, err := Generate(dir, Options{Module: "github.com/acme/shop"})
	require.NoError(t, err)
	assert.Len(t, written, len(layout))

	for _, rel := range []string{
		"go.mod",
		"main.go",
		"models.go",
		"migrations/migrations.go",
		".env",
		"keel.yaml",
		filepath.Join("configs", "sql", "development", "001_example.sql"),
	} {
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.NoError(t, err, rel)
	}

	gomod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(gomod), "module github.com/acme/shop")

	env, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Contains(t, string(env), "DB_NAME=shop")
}

func TestGenerateSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	custom := []byte("# customized\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keel.yaml"), custom, 0o644))

	written, err := Generate(dir, Options{Module: "app"})
	require.NoError(t, err)
	assert.Len(t, written, len(layout)-1)

	kept, err := os.ReadFile(filepath.Join(dir, "keel.yaml"))
	require.NoError(t, err)
	assert.Equal(t, custom, kept)
}

func TestGenerateForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keel.yaml"), []byte("old"), 0o644))

	written, err := Generate(dir, Options{Module: "app", Force: true})
	require.NoError(t, err)
	assert.Len(t, written, len(layout))

	fresh, err := os.ReadFile(filepath.Join(dir, "keel.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(fresh), "name: app")
}

func TestGenerateDefaultsName(t *testing.T) {
	dir := t.TempDir()

	_, err := Generate(dir, Options{Module: "github.com/acme/billing"})
	require.NoError(t, err)

	yaml, err := os.ReadFile(filepath.Join(dir, "keel.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(yaml), "name: billing")
}
