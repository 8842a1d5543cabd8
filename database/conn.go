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
	"sync"

	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalManager Manager
)

// InitDB connects the process-wide database using the given settings and
// returns the Bun handle. When settings.AutoMigrate is set, tables for all
// registered models are created before returning.
func InitDB(ctx context.Context, settings *Settings) (*bun.DB, error) {
	if settings == nil {
		return nil, fmt.Errorf("database settings cannot be empty")
	}
	return InitDBWithConfig(ctx, settings.ConnectionConfig(), settings.AutoMigrate)
}

// InitDBWithConfig connects the process-wide database from a raw connection
// config and optionally creates tables for registered models.
func InitDBWithConfig(ctx context.Context, cfg *ConnectionConfig, autoMigrate bool) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	manager := NewManager(cfg)
	manager.SetLogger(GetLogger())

	if err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := manager.GetDB()
	if autoMigrate {
		if err := CreateTables(ctx, db); err != nil {
			_ = manager.Disconnect()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	globalMu.Lock()
	globalManager = manager
	globalMu.Unlock()
	return db, nil
}

// GetDB returns the global Bun database instance, or nil before InitDB.
func GetDB() *bun.DB {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalManager == nil {
		return nil
	}
	return globalManager.GetDB()
}

// GetManager returns the global database manager, or nil before InitDB.
func GetManager() Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// CloseDB closes the global database connection.
func CloseDB() error {
	globalMu.Lock()
	manager := globalManager
	globalManager = nil
	globalMu.Unlock()

	if manager == nil {
		return nil
	}
	return manager.Disconnect()
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	manager := GetManager()
	if manager == nil {
		return &HealthStatus{
			Healthy:   false,
			Connected: false,
			LastError: "Database not initialized",
		}
	}
	return manager.HealthCheck(ctx)
}

// GetDatabaseStats returns global database connection statistics.
func GetDatabaseStats() *DBStats {
	manager := GetManager()
	if manager == nil {
		return &DBStats{}
	}
	return manager.GetStats()
}

// CreateTables creates tables for every registered model, in priority order,
// skipping tables that already exist.
func CreateTables(ctx context.Context, db bun.IDB) error {
	for _, instance := range RegisteredModelInstances() {
		_, err := db.NewCreateTable().
			Model(instance).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table %T: %w", instance, err)
		}
	}
	return nil
}
