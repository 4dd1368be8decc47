// Package store provides the relational store for tire-logger data.
//
// The default backend is SQLite (github.com/mattn/go-sqlite3) using the
// same table layout as the desktop application, so an existing
// tire-logger.db can be opened directly. PostgreSQL is available through
// pgx for shared deployments.
//
// Besides typed CRUD for cars, tracks, tires and stints, the package exposes
// schema metadata (table names, columns, primary and foreign keys) that the
// transfer package uses to import arbitrary table/row documents.
package store
