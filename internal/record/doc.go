// Package record provides the row representation shared by the import and
// export paths.
//
// A Record is an ordered list of named scalar values. Order matters: the
// first row of an imported table decides the insert column order, and
// exported rows keep the store's declared column order.
//
// Values are a sealed set of types (Null, String, Int, Real, Bool). Nested
// arrays and objects are rejected because every field maps to one column.
//
// Merge implements the non-destructive overwrite rule used by merge-import:
// an incoming null, absent or empty-string value never erases an existing one.
package record
