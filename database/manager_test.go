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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerConnectAndHealth(t *testing.T) {
	manager, db := newTestManager(t)
	ctx := context.Background()

	require.NotNil(t, db)
	require.NoError(t, manager.Ping(ctx))

	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Empty(t, status.LastError)

	stats := manager.GetStats()
	assert.Greater(t, stats.MaxOpenConns, 0)

	// Connect is idempotent while connected.
	require.NoError(t, manager.Connect(ctx))
}

func TestManagerDisconnect(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, manager.Disconnect())
	assert.Nil(t, manager.GetDB())
	assert.Error(t, manager.Ping(ctx))

	status := manager.HealthCheck(ctx)
	assert.False(t, status.Healthy)
}

func TestManagerUnsupportedType(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Type = "oracle"
	cfg.HealthCheckInterval = 0

	manager := NewManager(cfg)
	err := manager.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestInitDBAndGlobals(t *testing.T) {
	s := DefaultSettings()
	s.Name = "file:init_db_test?mode=memory&cache=shared"
	s.Environment = "production"

	ctx := context.Background()
	db, err := InitDB(ctx, s)
	require.NoError(t, err)
	defer func() { require.NoError(t, CloseDB()) }()

	assert.Same(t, db, GetDB())
	require.NotNil(t, GetManager())

	status := GetHealthStatus(ctx)
	assert.True(t, status.Healthy)
	assert.NotNil(t, GetDatabaseStats())
}

func TestGlobalsBeforeInit(t *testing.T) {
	// Run after CloseDB resets the globals in other tests; the accessors
	// degrade instead of panicking.
	if GetManager() != nil {
		t.Skip("global database initialized by a parallel test")
	}
	assert.Nil(t, GetDB())
	status := GetHealthStatus(context.Background())
	assert.False(t, status.Healthy)
}

func TestInitDBValidation(t *testing.T) {
	_, err := InitDB(context.Background(), nil)
	require.Error(t, err)

	_, err = InitDBWithConfig(context.Background(), nil, false)
	require.Error(t, err)
}
