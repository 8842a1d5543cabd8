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

package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Timestamps adds created/updated audit columns to a model. CreatedAt is set
// once on insert and never rewritten by the hook; UpdatedAt is refreshed on
// every insert and update.
type Timestamps struct {
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

var _ bun.BeforeAppendModelHook = (*Timestamps)(nil)

// BeforeAppendModel maintains the audit columns whenever Bun appends the
// model to an INSERT or UPDATE statement.
func (t *Timestamps) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		t.UpdatedAt = now
	}
	return nil
}

// Base is the common ancestor for persisted records keyed by an
// auto-increment integer identifier.
type Base struct {
	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	Timestamps
}

// PK returns the surrogate identifier.
func (b *Base) PK() any { return b.ID }

// UUIDBase is the common ancestor for persisted records keyed by a UUID
// assigned at insert time.
type UUIDBase struct {
	ID uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Timestamps
}

var _ bun.BeforeAppendModelHook = (*UUIDBase)(nil)

// BeforeAppendModel assigns the UUID identifier on first insert and keeps
// the timestamp columns maintained.
func (b *UUIDBase) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return b.Timestamps.BeforeAppendModel(ctx, query)
}

// PK returns the surrogate identifier.
func (b *UUIDBase) PK() any { return b.ID }

// SoftDelete adds soft-deletion columns to a model.
type SoftDelete struct {
	IsDeleted bool       `bun:"is_deleted,notnull,default:false" json:"is_deleted"`
	DeletedAt *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
}

// MarkDeleted flags the record as deleted.
func (s *SoftDelete) MarkDeleted() {
	now := time.Now().UTC()
	s.IsDeleted = true
	s.DeletedAt = &now
}

// Restore clears the soft-deletion flags.
func (s *SoftDelete) Restore() {
	s.IsDeleted = false
	s.DeletedAt = nil
}

// SoftDeletable is satisfied by models embedding SoftDelete.
type SoftDeletable interface {
	MarkDeleted()
	Restore()
}
