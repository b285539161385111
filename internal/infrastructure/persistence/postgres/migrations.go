package postgres

import "embed"

// Migrations holds the schema for the pricing tables, applied at startup
// with pkg/postgres.RunMigrations(dsn, Migrations, MigrationsDir).
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the files.
const MigrationsDir = "migrations"
