// Package repository provides a generic repository abstraction built on Bun
// for CRUD operations, querying, pagination, transactions, conditional
// creation, and upsert support.
package repository
