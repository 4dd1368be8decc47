package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/OscarFredriksson/tire-logger/internal/store"
	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

// TableInfo is one entry of GET /api/tables.
type TableInfo struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		respondError(w, r, fmt.Errorf("ping store: %w", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	db, d := s.store.DB(), s.store.Dialect()

	names, err := store.TableNames(ctx, db, d)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]TableInfo, 0, len(names))
	for _, name := range names {
		n, err := store.CountRows(ctx, db, d, name)
		if err != nil {
			respondError(w, r, err)
			return
		}
		out = append(out, TableInfo{Table: name, Rows: n})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.exporter.Export(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	name := transfer.DefaultExportName(s.now())
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", attachment(name))
		if err := transfer.WriteJSON(w, doc); err != nil {
			respondError(w, r, err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", attachment(strings.TrimSuffix(name, ".json")+".xlsx"))
		if err := transfer.WriteXLSX(w, doc); err != nil {
			respondError(w, r, err)
		}
	default:
		respondError(w, r, badRequest("unknown format %q (want json or xlsx)", format))
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !s.importing.TryLock() {
		respondError(w, r, errImportRunning)
		return
	}
	defer s.importing.Unlock()

	opts, err := s.importOptions(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		respondJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
		return
	}

	res, err := s.importer.ImportJSON(r.Context(), raw, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("X-Import-ID", res.ImportID)
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) importOptions(r *http.Request) (transfer.Options, error) {
	q := r.URL.Query()
	opts := transfer.Options{Mode: s.cfg.DefaultMode}
	if m := q.Get("mode"); m != "" {
		mode, err := transfer.ParseMode(m)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}

	var err error
	if opts.ClearExisting, err = queryBool(q.Get("clear")); err != nil {
		return opts, err
	}
	if opts.DryRun, err = queryBool(q.Get("dry_run")); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("invalid boolean %q", v)
	}
	return b, nil
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
