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

package keel_test

import (
	"context"
	"testing"

	"github.com/keelstack/keel"
	"github.com/keelstack/keel/database"
	"github.com/keelstack/keel/model"
	"github.com/keelstack/keel/repository"
	"github.com/keelstack/keel/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type Gadget struct {
	bun.BaseModel `bun:"table:gadgets,alias:g"`
	model.Base

	Name string `bun:"name,notnull,unique" json:"name"`
}

func init() {
	database.RegisterModels((*Gadget)(nil))
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	cfg := database.DefaultConnectionConfig()
	cfg.DSN = "file:keel_service_test?mode=memory&cache=shared"
	cfg.HealthCheckInterval = 0
	cfg.EnableQueryLog = false
	cfg.SlowQueryTime = 0

	db, err := database.InitDBWithConfig(ctx, cfg, true)
	require.NoError(t, err)
	defer func() { require.NoError(t, database.CloseDB()) }()
	db.SetMaxIdleConns(1000)
	db.SetConnMaxLifetime(0)

	svc := keel.NewService[Gadget]()

	g := &Gadget{Name: "probe"}
	require.NoError(t, svc.Save(ctx, g))
	require.NotZero(t, g.ID)

	got, err := svc.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "probe", got.Name)

	created, err := svc.GetOrCreate(ctx, &Gadget{Name: "probe"}, "name")
	require.NoError(t, err)
	assert.False(t, created)

	updated, err := svc.UpdateFields(ctx, g.ID, map[string]interface{}{"name": "probe2"})
	require.NoError(t, err)
	assert.Equal(t, "probe2", updated.Name)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	page, err := svc.Page(ctx, types.NewDefaultPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	exists, err := svc.Exists(ctx, types.NewQueryFilter("name = ?", "probe2"))
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, svc.Delete(ctx, g.ID))
	_, err = svc.Get(ctx, g.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestServiceWithExplicitDB(t *testing.T) {
	ctx := context.Background()

	cfg := database.DefaultConnectionConfig()
	cfg.DSN = "file:keel_explicit_test?mode=memory&cache=shared"
	cfg.HealthCheckInterval = 0
	cfg.SlowQueryTime = 0

	manager := database.NewManager(cfg)
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })

	db := manager.GetDB()
	db.SetMaxIdleConns(1000)
	db.SetConnMaxLifetime(0)
	require.NoError(t, database.CreateTables(ctx, db))

	svc := keel.NewServiceWithDB[Gadget](db)
	require.NoError(t, svc.Save(ctx, &Gadget{Name: "standalone"}))

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return svc.SaveWithTx(ctx, &tx, &Gadget{Name: "in-tx"})
	})
	require.NoError(t, err)

	count, err = svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
