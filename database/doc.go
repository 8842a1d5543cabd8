// Package database provides environment-driven configuration, connection
// management, migrations, data seeding, logging, health checks, and related
// utilities built on top of Bun.
package database
