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
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/keelstack/keel/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

const (
	createdAtColumn = "created_at"
	updatedAtColumn = "updated_at"
	deletedAtColumn = "deleted_at"
	isDeletedColumn = "is_deleted"
)

type baseRepositoryImpl[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository backed by the provided Bun DB.
// The repository is stateless; it borrows the connection and never owns it.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) modelName() string {
	return reflect.TypeOf((*T)(nil)).Elem().Name()
}

func (r *baseRepositoryImpl[T]) table() *schema.Table {
	return r.db.Table(reflect.TypeOf((*T)(nil)).Elem())
}

func (r *baseRepositoryImpl[T]) pkColumn() string {
	if pks := r.table().PKs; len(pks) > 0 {
		return pks[0].Name
	}
	return "id"
}

func (r *baseRepositoryImpl[T]) valsToSlice(entity ...*T) []*T {
	entities := make([]*T, len(entity))
	copy(entities, entity)
	return entities
}

func (r *baseRepositoryImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.NewSelect().
		Model(&entity).
		Where("? = ?", bun.Ident(r.pkColumn()), id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Model: r.modelName(), ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.db.NewSelect().
		Model(&entities).
		OrderExpr("? ASC", bun.Ident(r.pkColumn())).
		Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter, page *types.PageRequest) ([]*T, error) {
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}

	ordered := false
	if page != nil {
		query = query.Offset(page.GetOffset()).Limit(page.GetPageSize())
		if orders := page.GetOrders(); len(orders) > 0 {
			query = query.Order(orders...)
			ordered = true
		}
	}
	if !ordered {
		query = query.OrderExpr("? ASC", bun.Ident(r.pkColumn()))
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.db.NewSelect().Model(&entities).Where(query, args...).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().Model((*T)(nil)).Count(ctx)
}

func (r *baseRepositoryImpl[T]) Exists(ctx context.Context, filter *types.QueryFilter) (bool, error) {
	query := r.db.NewSelect().Model((*T)(nil))
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	return query.Exists(ctx)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if pageRequest.GetFilter() != nil {
		query = query.Where(pageRequest.GetFilter().Schema, pageRequest.GetFilter().Args...)
	}
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}

	query = query.Offset(pageRequest.GetOffset()).Limit(pageRequest.GetPageSize())
	if orders := pageRequest.GetOrders(); len(orders) > 0 {
		query = query.Order(orders...)
	} else {
		query = query.OrderExpr("? ASC", bun.Ident(r.pkColumn()))
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	entities := r.valsToSlice(entity...)
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return wrapWriteError(r.modelName(), err)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return wrapWriteError(r.modelName(), err)
}

func (r *baseRepositoryImpl[T]) UpdateFields(ctx context.Context, id any, fields map[string]interface{}) (*T, error) {
	if len(fields) == 0 {
		return nil, &ValidationError{Model: r.modelName(), Reason: "no fields provided for update"}
	}

	table := r.table()
	pk := r.pkColumn()
	for column := range fields {
		if _, ok := table.FieldMap[column]; !ok {
			return nil, &ValidationError{Model: r.modelName(), Reason: fmt.Sprintf("unknown column %q", column)}
		}
		if column == pk || column == createdAtColumn {
			return nil, &ValidationError{Model: r.modelName(), Reason: fmt.Sprintf("column %q is immutable", column)}
		}
	}

	entity, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	query := r.db.NewUpdate().Model(entity).WherePK()
	for column, value := range fields {
		query = query.Set("? = ?", bun.Ident(column), value)
	}
	if _, ok := table.FieldMap[updatedAtColumn]; ok {
		if _, explicit := fields[updatedAtColumn]; !explicit {
			query = query.Set("? = ?", bun.Ident(updatedAtColumn), time.Now().UTC())
		}
	}

	if _, err := query.Exec(ctx); err != nil {
		return nil, wrapWriteError(r.modelName(), err)
	}
	return r.Get(ctx, id)
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	var entity T
	res, err := r.db.NewDelete().
		Model(&entity).
		Where("? = ?", bun.Ident(r.pkColumn()), id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Model: r.modelName(), ID: id}
	}
	return nil
}

// SoftDelete flags the entity as deleted instead of removing the row. The
// model must carry is_deleted/deleted_at columns.
func (r *baseRepositoryImpl[T]) SoftDelete(ctx context.Context, id any) (*T, error) {
	table := r.table()
	if _, ok := table.FieldMap[isDeletedColumn]; !ok {
		return nil, &ValidationError{Model: r.modelName(), Reason: "model does not support soft deletion"}
	}
	fields := map[string]interface{}{isDeletedColumn: true}
	if _, ok := table.FieldMap[deletedAtColumn]; ok {
		fields[deletedAtColumn] = time.Now().UTC()
	}
	return r.UpdateFields(ctx, id, fields)
}

func (r *baseRepositoryImpl[T]) GetOrCreate(ctx context.Context, entity *T, lookupColumns ...string) (bool, error) {
	if entity == nil {
		return false, &ValidationError{Model: r.modelName(), Reason: "entity cannot be nil"}
	}
	if len(lookupColumns) == 0 {
		return false, &ValidationError{Model: r.modelName(), Reason: "at least one lookup column must be provided"}
	}

	table := r.table()
	strct := reflect.ValueOf(entity).Elem()
	lookup := make(map[string]interface{}, len(lookupColumns))
	for _, column := range lookupColumns {
		field, ok := table.FieldMap[column]
		if !ok {
			return false, &ValidationError{Model: r.modelName(), Reason: fmt.Sprintf("unknown lookup column %q", column)}
		}
		lookup[column] = field.Value(strct).Interface()
	}

	err := r.lookupQuery(entity, lookup).Scan(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		// A concurrent insert won the race; the unique constraint resolves
		// the duplicate and the winner becomes the result.
		if isDuplicateKey(err) {
			if selErr := r.lookupQuery(entity, lookup).Scan(ctx); selErr != nil {
				return false, selErr
			}
			return false, nil
		}
		return false, wrapWriteError(r.modelName(), err)
	}
	return true, nil
}

func (r *baseRepositoryImpl[T]) lookupQuery(entity *T, lookup map[string]interface{}) *bun.SelectQuery {
	query := r.db.NewSelect().Model(entity)
	for column, value := range lookup {
		query = query.Where("? = ?", bun.Ident(column), value)
	}
	return query.Limit(1)
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	return r.multipleUpsert(ctx, nil, fields, duplicateKeys, entity...)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error {
	entities := r.valsToSlice(entity...)
	_, err := tx.NewInsert().Model(&entities).Exec(ctx)
	return wrapWriteError(r.modelName(), err)
}

func (r *baseRepositoryImpl[T]) UpsertWithTx(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error {
	return r.multipleUpsert(ctx, tx, fields, duplicateKeys, entity...)
}

func (r *baseRepositoryImpl[T]) UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T) error {
	_, err := tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return wrapWriteError(r.modelName(), err)
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	var entity T
	res, err := tx.NewDelete().
		Model(&entity).
		Where("? = ?", bun.Ident(r.pkColumn()), id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Model: r.modelName(), ID: id}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) multipleUpsert(ctx context.Context, tx *bun.Tx, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return &ValidationError{Model: r.modelName(), Reason: "upsert fields cannot be empty"}
	}

	var insertQuery *bun.InsertQuery
	if tx != nil {
		insertQuery = tx.NewInsert()
	} else {
		insertQuery = r.db.NewInsert()
	}

	entities := r.valsToSlice(entity...)

	if r.db.HasFeature(feature.InsertOnConflict) {
		return r.upsertOnConflict(ctx, insertQuery, fields, duplicateKeys, entities)
	} else if r.db.HasFeature(feature.InsertOnDuplicateKey) {
		return r.upsertOnDuplicateKey(ctx, insertQuery, fields, entities)
	}
	return r.upsertFallback(ctx, entities)
}

func (r *baseRepositoryImpl[T]) upsertOnConflict(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{r.pkColumn()}
	}
	keyNames := strings.Join(duplicateKeys, ",")
	var assignments []string
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", bun.Ident(field), bun.Ident(field)))
	}
	_, err := insertQuery.
		Model(&entities).
		On("CONFLICT (" + keyNames + ") DO UPDATE").
		Set(strings.Join(assignments, ", ")).
		Exec(ctx)
	return wrapWriteError(r.modelName(), err)
}

func (r *baseRepositoryImpl[T]) upsertOnDuplicateKey(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, entities []*T) error {
	var assignments []string
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", bun.Ident(field), bun.Ident(field)))
	}
	_, err := insertQuery.
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")).
		Exec(ctx)
	return wrapWriteError(r.modelName(), err)
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		_, err := r.db.NewInsert().Model(entity).Exec(ctx)
		if err != nil {
			_, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
			if updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %v", err, updateErr)
			}
		}
	}
	return nil
}
