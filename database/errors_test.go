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
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsSQLErrorMySQLCodes(t *testing.T) {
	cases := map[uint16]SQLError{
		1054: NoColumnErr,
		1062: DuplicateKeyErr,
		1048: NotNullViolationErr,
		1452: ForeignKeyViolationErr,
		3819: CheckConstraintViolationErr,
		1265: DataTruncatedErr,
		1146: NoTableErr,
		1050: ExistTableErr,
		9999: UnknownErr,
	}
	for code, want := range cases {
		err := &mysql.MySQLError{Number: code, Message: "x"}
		is, kind := IsSQLError(err)
		assert.True(t, is, code)
		assert.Equal(t, want, kind, code)
	}

	// Classification survives %w wrapping.
	wrapped := fmt.Errorf("insert failed: %w", &mysql.MySQLError{Number: 1062})
	is, kind := IsSQLError(wrapped)
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, kind)
}

func TestIsSQLErrorMessages(t *testing.T) {
	cases := map[string]SQLError{
		"ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)": DuplicateKeyErr,
		"UNIQUE constraint failed: widgets.name":                                 DuplicateKeyErr,
		"NOT NULL constraint failed: widgets.name":                               NotNullViolationErr,
		"null value violates not-null constraint (SQLSTATE 23502)":               NotNullViolationErr,
		"FOREIGN KEY constraint failed":                                          ForeignKeyViolationErr,
		"CHECK constraint failed: price":                                         CheckConstraintViolationErr,
		"no such table: widgets":                                                 NoTableErr,
		"no such column: bogus":                                                  NoColumnErr,
		`relation "widgets" already exists (SQLSTATE 42P07)`:                     ExistTableErr,
	}
	for msg, want := range cases {
		is, kind := IsSQLError(errors.New(msg))
		assert.True(t, is, msg)
		assert.Equal(t, want, kind, msg)
	}
}

func TestIsSQLErrorPassThrough(t *testing.T) {
	is, kind := IsSQLError(nil)
	assert.False(t, is)
	assert.Equal(t, UnknownErr, kind)

	is, _ = IsSQLError(errors.New("connection refused"))
	assert.False(t, is)
}
