// Package postgres provides a UserStore backed by PostgreSQL via pgx.
//
// The pool is owned by the caller and is never closed by the store. Schema
// migrations ship embedded and are applied with RunMigrations, which
// deployments call once at startup before building the engine.
package postgres
