// Package model provides base types and mixins for persisted records:
// surrogate identifiers, audit timestamps, and soft deletion.
package model
