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

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// MigrationManager wraps the Bun migration engine. It owns no migration
// logic itself: every operation forwards to the engine and surfaces its
// errors unchanged.
type MigrationManager struct {
	db         *bun.DB
	migrations *migrate.Migrations
	migrator   *migrate.Migrator
	logger     Logger
}

// NewMigrationManager builds a manager over the given migration collection.
// A nil collection yields an empty one, which still supports Init, History,
// and revision scaffolding.
func NewMigrationManager(db *bun.DB, migrations *migrate.Migrations, logger Logger) *MigrationManager {
	if migrations == nil {
		migrations = migrate.NewMigrations()
	}
	return &MigrationManager{
		db:         db,
		migrations: migrations,
		migrator:   migrate.NewMigrator(db, migrations),
		logger:     logger,
	}
}

// Init creates the migration bookkeeping tables.
func (mm *MigrationManager) Init(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := mm.migrator.Init(ctx); err != nil {
		return err
	}
	if mm.logger != nil {
		mm.logger.Info("Migration tables initialized")
	}
	return nil
}

// Revision scaffolds a new migration. With sql set it creates a pair of
// up/down SQL files, otherwise a single Go migration file. The returned
// paths point at the created files.
func (mm *MigrationManager) Revision(ctx context.Context, name string, sql bool) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("revision name cannot be empty")
	}

	if sql {
		files, err := mm.migrator.CreateTxSQLMigrations(ctx, name)
		if err != nil {
			return nil, err
		}
		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, f.Path)
		}
		return paths, nil
	}

	file, err := mm.migrator.CreateGoMigration(ctx, name)
	if err != nil {
		return nil, err
	}
	return []string{file.Path}, nil
}

// Upgrade applies all pending migrations as one group.
func (mm *MigrationManager) Upgrade(ctx context.Context) (*migrate.MigrationGroup, error) {
	if err := mm.migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer mm.migrator.Unlock(ctx) //nolint:errcheck

	group, err := mm.migrator.Migrate(ctx)
	if err != nil {
		return nil, err
	}
	if mm.logger != nil {
		if group.IsZero() {
			mm.logger.Info("No new migrations to run, database is up to date")
		} else {
			mm.logger.Info("Migrated", "group", group.String())
		}
	}
	return group, nil
}

// Downgrade rolls back the last applied migration group.
func (mm *MigrationManager) Downgrade(ctx context.Context) (*migrate.MigrationGroup, error) {
	if err := mm.migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer mm.migrator.Unlock(ctx) //nolint:errcheck

	group, err := mm.migrator.Rollback(ctx)
	if err != nil {
		return nil, err
	}
	if mm.logger != nil {
		if group.IsZero() {
			mm.logger.Info("No migration groups to roll back")
		} else {
			mm.logger.Info("Rolled back", "group", group.String())
		}
	}
	return group, nil
}

// History returns every known migration with its applied status.
func (mm *MigrationManager) History(ctx context.Context) (migrate.MigrationSlice, error) {
	return mm.migrator.MigrationsWithStatus(ctx)
}

// Heads returns the last applied migration group and the names of pending
// migrations.
func (mm *MigrationManager) Heads(ctx context.Context) (*migrate.MigrationGroup, []string, error) {
	ms, err := mm.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, nil, err
	}
	pending := make([]string, 0)
	for _, m := range ms.Unapplied() {
		pending = append(pending, m.Name)
	}
	last := ms.LastGroup()
	return last, pending, nil
}

// Stamp marks all pending migrations as applied without running them.
func (mm *MigrationManager) Stamp(ctx context.Context) (*migrate.MigrationGroup, error) {
	group, err := mm.migrator.Migrate(ctx, migrate.WithNopMigration())
	if err != nil {
		return nil, err
	}
	if mm.logger != nil && !group.IsZero() {
		mm.logger.Info("Stamped without running migrations", "group", group.String())
	}
	return group, nil
}
