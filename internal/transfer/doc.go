// Package transfer imports and exports whole tire-logger datasets.
//
// An import document maps table names to row arrays, either under a "data"
// field (the export format) or as a bare mapping. Import runs in a single
// transaction: every table is applied or none is.
//
// In merge mode each row is matched against the store by primary key
// (discovered from store metadata) or, for key-less tables, by equality on
// every incoming field. A matched row is updated with record.Merge, so
// incoming nulls and empty strings never erase stored values; an unmatched
// row is inserted as-is. The replace, ignore and fail modes skip merging and
// rely on INSERT conflict handling instead.
//
// Export produces the same document shape with every row of every table,
// so an export can be merged back without changing the store.
package transfer
