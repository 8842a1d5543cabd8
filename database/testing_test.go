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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// newTestManager connects an isolated in-memory SQLite database through the
// manager, so tests exercise the same path production code uses.
func newTestManager(t *testing.T) (Manager, *bun.DB) {
	t.Helper()

	cfg := DefaultConnectionConfig()
	cfg.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	cfg.HealthCheckInterval = 0
	cfg.EnableQueryLog = false
	cfg.SlowQueryTime = 0

	manager := NewManager(cfg)
	require.NoError(t, manager.Connect(context.Background()))
	t.Cleanup(func() { _ = manager.Disconnect() })

	db := manager.GetDB()
	// Shared-cache in-memory databases vanish when the last connection
	// closes; pin the pool.
	manager.GetSQLDB().SetMaxIdleConns(1000)
	manager.GetSQLDB().SetConnMaxLifetime(0)
	return manager, db
}
