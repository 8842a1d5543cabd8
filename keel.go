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

// Package keel is a scaffolding library for database-backed Go services:
// a base entity model, a generic CRUD repository over Bun, environment-driven
// configuration, and a migration/seeding CLI.
package keel

import (
	"context"
	"sync"

	"github.com/keelstack/keel/database"
	"github.com/keelstack/keel/repository"
	"github.com/keelstack/keel/types"

	"github.com/uptrace/bun"
)

// Service exposes the generic repository operations for one entity type,
// backed by the global database connection established via database.InitDB.
type Service[T any] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities in primary key order.
	All(ctx context.Context) ([]*T, error)

	// List returns entities matching the filter, bounded by the page request.
	List(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest) ([]*T, error)

	// Query executes a raw WHERE clause and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Page returns a paginated list of entities with the total count.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Count returns the number of persisted entities.
	Count(ctx context.Context) (int, error)

	// Exists reports whether any entity matches the filter.
	Exists(ctx context.Context, filter *types.QueryFilter) (bool, error)

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error

	// GetOrCreate returns the entity matching the lookup columns, creating it
	// when absent. Reports whether a new row was created.
	GetOrCreate(ctx context.Context, model *T, lookupColumns ...string) (bool, error)

	// Update rewrites an existing entity by primary key.
	Update(ctx context.Context, model *T) error

	// UpdateFields applies a partial update and returns the refreshed entity.
	UpdateFields(ctx context.Context, id any, fields map[string]interface{}) (*T, error)

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id any) error

	// SoftDelete flags the entity as deleted instead of removing the row.
	SoftDelete(ctx context.Context, id any) (*T, error)

	// SaveWithTx inserts entities within an existing transaction.
	SaveWithTx(ctx context.Context, tx *bun.Tx, model ...*T) error

	// SaveOrUpdateWithTx upserts entities within a transaction.
	SaveOrUpdateWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, model ...*T) error

	// UpdateWithTx updates an entity within a transaction.
	UpdateWithTx(ctx context.Context, tx *bun.Tx, model *T) error

	// DeleteWithTx removes an entity within a transaction.
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	db   *bun.DB
	repo repository.Repository[T]
	once sync.Once
}

// NewService returns a Service using the generic repository backed by the
// global database connection. The connection is resolved lazily on first use
// so services can be declared before database.InitDB runs.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

// NewServiceWithDB returns a Service bound to an explicit Bun handle instead
// of the global connection.
func NewServiceWithDB[T any](db *bun.DB) Service[T] {
	return &baseServiceImpl[T]{db: db}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() {
		if s.db == nil {
			s.db = database.GetDB()
		}
		s.repo = repository.NewRepository[T](s.db)
	})
	return s.repo
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().Get(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest) ([]*T, error) {
	return s.baseRepo().List(ctx, filter, page)
}

func (s *baseServiceImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	return s.baseRepo().Query(ctx, query, args...)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context) (int, error) {
	return s.baseRepo().Count(ctx)
}

func (s *baseServiceImpl[T]) Exists(ctx context.Context, filter *types.QueryFilter) (bool, error) {
	return s.baseRepo().Exists(ctx, filter)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.baseRepo().Create(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error {
	return s.baseRepo().Upsert(ctx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) GetOrCreate(ctx context.Context, model *T, lookupColumns ...string) (bool, error) {
	return s.baseRepo().GetOrCreate(ctx, model, lookupColumns...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T) error {
	return s.baseRepo().Update(ctx, model)
}

func (s *baseServiceImpl[T]) UpdateFields(ctx context.Context, id any, fields map[string]interface{}) (*T, error) {
	return s.baseRepo().UpdateFields(ctx, id, fields)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[T]) SoftDelete(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().SoftDelete(ctx, id)
}

func (s *baseServiceImpl[T]) SaveWithTx(ctx context.Context, tx *bun.Tx, model ...*T) error {
	return s.baseRepo().CreateWithTx(ctx, tx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdateWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, model ...*T) error {
	return s.baseRepo().UpsertWithTx(ctx, tx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) UpdateWithTx(ctx context.Context, tx *bun.Tx, model *T) error {
	return s.baseRepo().UpdateWithTx(ctx, tx, model)
}

func (s *baseServiceImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	return s.baseRepo().DeleteWithTx(ctx, tx, id)
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}
