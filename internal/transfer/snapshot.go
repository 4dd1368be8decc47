package transfer

import (
	"context"
	"slices"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// Snapshot is a content fingerprint of a store. Two stores holding the
// same rows have equal digests regardless of row or field order.
type Snapshot struct {
	Tables []TableDigest `json:"tables"`
	Digest string        `json:"digest"`
}

// TableDigest fingerprints one table.
type TableDigest struct {
	Table  string `json:"table"`
	Rows   int    `json:"rows"`
	Digest string `json:"digest"`
}

// Table returns the digest of the named table.
func (s *Snapshot) Table(name string) (TableDigest, bool) {
	for _, t := range s.Tables {
		if t.Table == name {
			return t, true
		}
	}
	return TableDigest{}, false
}

// TakeSnapshot reads every table through q and fingerprints it.
func TakeSnapshot(ctx context.Context, q store.Querier, d store.Dialect) (*Snapshot, error) {
	tables, err := readTables(ctx, q, d)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Tables: make([]TableDigest, 0, len(tables))}
	all := make(map[string]any, len(tables))
	for _, t := range tables {
		hashes := make([]string, len(t.Rows))
		for i, r := range t.Rows {
			h, err := record.Fingerprint(record.DomainRow, r)
			if err != nil {
				return nil, newError(ErrCodeStore, t.Name, i, "fingerprint row", err)
			}
			hashes[i] = h
		}
		slices.Sort(hashes)

		list := make([]any, len(hashes))
		for i, h := range hashes {
			list[i] = h
		}
		digest, err := record.Fingerprint(record.DomainTable, list)
		if err != nil {
			return nil, newError(ErrCodeStore, t.Name, -1, "fingerprint table", err)
		}
		snap.Tables = append(snap.Tables, TableDigest{Table: t.Name, Rows: len(t.Rows), Digest: digest})
		all[t.Name] = digest
	}

	digest, err := record.Fingerprint(record.DomainSnapshot, all)
	if err != nil {
		return nil, newError(ErrCodeStore, "", -1, "fingerprint snapshot", err)
	}
	snap.Digest = digest
	return snap, nil
}
