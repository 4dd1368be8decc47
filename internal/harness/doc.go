// Package harness runs import scenarios against a fresh store and checks
// the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: merge_keeps_stored_values
//	description: "Empty incoming fields never overwrite stored data"
//	setup:
//	  - CREATE TABLE lap_log(carId varchar, lap int)
//	seed:
//	  cars: [{carId: c1, name: Miata}]
//	steps:
//	  - document:
//	      data:
//	        cars: [{carId: c1, name: ""}]
//	    mode: merge
//	    expect:
//	      tables:
//	        cars: {updated: 0, unchanged: 1}
//	  - raw: '{"cars": ['
//	    expect:
//	      error: E201
//	assertions:
//	  - type: row
//	    table: cars
//	    where: {carId: c1}
//	    expect: {name: Miata}
//	  - type: row_count
//	    table: tires
//	    count: 0
//
// Setup statements run first, then the seed tables are imported in merge
// mode. Each step imports either a document (any YAML mapping, converted to
// JSON with its key order kept) or a raw JSON string.
//
// # Assertion Types
//
//   - row: exactly one row matches where, and its fields include expect
//   - row_count: the table holds count rows matching where
//   - absent: no row matches where
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory SQLite database with a fixed
// clock (testutil.Epoch) and sequential import ids (import-1, import-2, ...),
// so the final export can be compared with a golden file:
//
//	go test ./internal/harness -update
package harness
