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

package model_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/keelstack/keel/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`
	model.Base

	Body string `bun:"body,notnull"`
}

type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:t"`
	model.UUIDBase

	Value string `bun:"value,notnull"`
}

func newModelDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:model_test?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxIdleConns(1000)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, m := range []interface{}{(*Note)(nil), (*Token)(nil)} {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

func TestBaseTimestampsOnInsertAndUpdate(t *testing.T) {
	db := newModelDB(t)
	ctx := context.Background()

	n := &Note{Body: "draft"}
	_, err := db.NewInsert().Model(n).Exec(ctx)
	require.NoError(t, err)

	assert.NotZero(t, n.ID)
	require.False(t, n.CreatedAt.IsZero())
	require.False(t, n.UpdatedAt.IsZero())
	created := n.CreatedAt

	time.Sleep(10 * time.Millisecond)
	n.Body = "final"
	_, err = db.NewUpdate().Model(n).WherePK().Exec(ctx)
	require.NoError(t, err)

	assert.True(t, n.CreatedAt.Equal(created), "created_at is immutable")
	assert.True(t, n.UpdatedAt.After(created), "updated_at advances on update")
}

func TestBasePresetCreatedAtIsKept(t *testing.T) {
	db := newModelDB(t)
	ctx := context.Background()

	preset := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	n := &Note{Body: "imported"}
	n.CreatedAt = preset

	_, err := db.NewInsert().Model(n).Exec(ctx)
	require.NoError(t, err)
	assert.True(t, n.CreatedAt.Equal(preset))
	assert.False(t, n.UpdatedAt.IsZero())
}

func TestUUIDBaseAssignsIdentifier(t *testing.T) {
	db := newModelDB(t)
	ctx := context.Background()

	tok := &Token{Value: "v"}
	_, err := db.NewInsert().Model(tok).Exec(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tok.ID)
	assert.False(t, tok.CreatedAt.IsZero())

	// An explicit identifier is never overwritten.
	fixed := uuid.New()
	tok2 := &Token{Value: "w"}
	tok2.ID = fixed
	_, err = db.NewInsert().Model(tok2).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixed, tok2.ID)

	assert.Equal(t, tok.ID, tok.PK())
}

func TestSoftDeleteMixin(t *testing.T) {
	var s model.SoftDelete
	assert.False(t, s.IsDeleted)

	s.MarkDeleted()
	assert.True(t, s.IsDeleted)
	require.NotNil(t, s.DeletedAt)

	s.Restore()
	assert.False(t, s.IsDeleted)
	assert.Nil(t, s.DeletedAt)
}
