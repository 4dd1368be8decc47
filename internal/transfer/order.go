package transfer

import (
	"context"

	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// dependencyOrder sorts tables so that every table comes after the tables
// it references. Ties keep the input order; tables caught in a reference
// cycle are appended in input order.
func dependencyOrder(ctx context.Context, r *KeyResolver, tables []string) ([]string, error) {
	in := make(map[string]bool, len(tables))
	for _, t := range tables {
		in[t] = true
	}

	parents := make(map[string][]string, len(tables))
	for _, t := range tables {
		if _, err := r.meta(ctx, t); err != nil {
			return nil, err
		}
		fks, err := store.ForeignKeys(ctx, r.q, r.d, t)
		if err != nil {
			return nil, newError(ErrCodeStore, t, -1, "read foreign keys", err)
		}
		for _, fk := range fks {
			if fk.RefTable != t && in[fk.RefTable] {
				parents[t] = append(parents[t], fk.RefTable)
			}
		}
	}

	done := make(map[string]bool, len(tables))
	out := make([]string, 0, len(tables))
	for len(out) < len(tables) {
		next := ""
		for _, t := range tables {
			if done[t] {
				continue
			}
			ready := true
			for _, p := range parents[t] {
				if !done[p] {
					ready = false
					break
				}
			}
			if ready {
				next = t
				break
			}
		}
		if next == "" {
			for _, t := range tables {
				if !done[t] {
					done[t] = true
					out = append(out, t)
				}
			}
			break
		}
		done[next] = true
		out = append(out, next)
	}
	return out, nil
}

func reversed(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[len(names)-1-i] = n
	}
	return out
}
