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

package repository

import (
	"context"

	"github.com/keelstack/keel/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
// All read misses and vanished rows are reported as *NotFoundError
// (errors.Is(err, ErrNotFound)); schema violations on writes map to
// *ValidationError or *ConflictError.
type CrudRepository[T any] interface {
	// Get returns the entity with the given identifier.
	Get(ctx context.Context, id any) (*T, error)

	// GetAll returns all entities in primary key order.
	GetAll(ctx context.Context) ([]*T, error)

	// List returns entities matching the filter, bounded and ordered by the
	// page request. A nil filter matches everything; a nil page request
	// returns all matches in primary key order.
	List(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest) ([]*T, error)

	// Query executes a raw WHERE clause and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Count returns the number of persisted entities.
	Count(ctx context.Context) (int, error)

	// Exists reports whether any entity matches the filter.
	Exists(ctx context.Context, filter *types.QueryFilter) (bool, error)

	// Create persists new entities; identifiers and timestamps are populated
	// on the passed values.
	Create(ctx context.Context, entity ...*T) error

	// Update rewrites an existing entity by primary key.
	Update(ctx context.Context, entity *T) error

	// UpdateFields applies a partial update to the entity with the given
	// identifier and returns the refreshed entity. The identifier and
	// created-at columns cannot be changed.
	UpdateFields(ctx context.Context, id any, fields map[string]interface{}) (*T, error)

	// Delete removes the entity with the given identifier.
	Delete(ctx context.Context, id any) error

	// SoftDelete flags the entity as deleted instead of removing the row;
	// the model must carry soft-deletion columns.
	SoftDelete(ctx context.Context, id any) (*T, error)

	// GetOrCreate finds the entity whose lookup columns match the given
	// entity's values, loading it into entity; otherwise it inserts entity.
	// A concurrent duplicate insert resolves to the winning row via the
	// table's unique constraint. Reports whether a new row was created.
	GetOrCreate(ctx context.Context, entity *T, lookupColumns ...string) (bool, error)

	// Upsert inserts entities, updating the given fields on duplicate keys.
	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error
}

// TransactionRepository defines CRUD operations executed within a transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error
	UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error
	UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD, pagination, and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
