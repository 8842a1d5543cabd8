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
	"errors"
	"fmt"

	"github.com/keelstack/keel/database"
)

// Sentinel errors for errors.Is checks. The typed errors below wrap them and
// carry the entity name and offending value.
var (
	ErrNotFound = errors.New("entity not found")
	ErrConflict = errors.New("entity already exists")
	ErrInvalid  = errors.New("invalid entity data")
)

// NotFoundError reports that no entity with the given identifier exists. It
// is recoverable by the caller.
type NotFoundError struct {
	Model string
	ID    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v not found", e.Model, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a unique constraint violation.
type ConflictError struct {
	Model string
	cause error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %v", e.Model, e.cause)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Cause returns the underlying driver error.
func (e *ConflictError) Cause() error { return e.cause }

// ValidationError reports malformed input fields: unknown columns, missing
// required values, or values violating schema constraints.
type ValidationError struct {
	Model  string
	Reason string
	cause  error
}

func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s validation failed: %s: %v", e.Model, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Model, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Cause returns the underlying driver error, if any.
func (e *ValidationError) Cause() error { return e.cause }

// wrapWriteError maps driver errors from INSERT/UPDATE statements onto the
// repository error kinds. Errors that are not schema violations pass through
// unchanged.
func wrapWriteError(model string, err error) error {
	if err == nil {
		return nil
	}
	is, kind := database.IsSQLError(err)
	if !is {
		return err
	}
	switch kind {
	case database.DuplicateKeyErr:
		return &ConflictError{Model: model, cause: err}
	case database.NotNullViolationErr:
		return &ValidationError{Model: model, Reason: "required field is missing", cause: err}
	case database.CheckConstraintViolationErr:
		return &ValidationError{Model: model, Reason: "field violates check constraint", cause: err}
	case database.DataTruncatedErr:
		return &ValidationError{Model: model, Reason: "field value too long", cause: err}
	case database.InvalidTypeCastErr:
		return &ValidationError{Model: model, Reason: "field has wrong type", cause: err}
	default:
		return err
	}
}

func isDuplicateKey(err error) bool {
	is, kind := database.IsSQLError(err)
	return is && kind == database.DuplicateKeyErr
}
