package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"

	"github.com/OscarFredriksson/tire-logger/internal/record"
	"github.com/OscarFredriksson/tire-logger/internal/schema"
)

// AppName is stamped on every export.
const AppName = "tire-logger"

// Document is a parsed import document or an export.
type Document struct {
	ExportDate string
	Version    string
	AppName    string

	// Tables in document order.
	Tables []Table
}

// Table is one table's rows.
type Table struct {
	Name string
	Rows []record.Record

	// Columns is the declared column order; set on exports only.
	Columns []string
}

// Table returns the named table.
func (d *Document) Table(name string) (Table, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// RowCount returns the number of rows across all tables.
func (d *Document) RowCount() int {
	n := 0
	for _, t := range d.Tables {
		n += len(t.Rows)
	}
	return n
}

// ParseDocument decodes and validates an import document. The top-level
// object is treated as the export wrapper when it has a "data" object and as
// a bare table mapping otherwise. All checks happen here, before any store
// access.
func ParseDocument(raw []byte, v *schema.Validator) (*Document, error) {
	if !gjson.ValidBytes(raw) {
		return nil, newError(ErrCodeMalformed, "", -1, "document is not valid JSON", nil)
	}
	top := gjson.ParseBytes(raw)
	if !top.IsObject() {
		return nil, newError(ErrCodeShape, "", -1, "document must be a JSON object", nil)
	}

	data := top.Get("data")
	wrapped := data.IsObject()

	if errs := v.ValidateDocument(raw, wrapped); len(errs) > 0 {
		e := newError(ErrCodeShape, "", -1, "document does not match the import schema", errs)
		e.Validation = errs
		return nil, e
	}

	body := raw
	doc := &Document{}
	if wrapped {
		body = []byte(data.Raw)
		doc.ExportDate = top.Get("exportDate").String()
		doc.Version = top.Get("version").String()
		doc.AppName = top.Get("appName").String()
	}

	tables, err := decodeTables(body)
	if err != nil {
		return nil, err
	}
	doc.Tables = tables

	if err := checkHomogeneous(doc.Tables); err != nil {
		return nil, err
	}
	return doc, nil
}

// decodeTables streams the table mapping, keeping table and field order.
func decodeTables(body []byte) ([]Table, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, newError(ErrCodeShape, "", -1, "tables must be an object", err)
	}

	var tables []Table
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, newError(ErrCodeMalformed, "", -1, "read table name", err)
		}
		name, _ := tok.(string)
		if seen[name] {
			return nil, newError(ErrCodeShape, name, -1, "table listed twice", nil)
		}
		seen[name] = true

		if err := expectDelim(dec, '['); err != nil {
			return nil, newError(ErrCodeShape, name, -1, "rows must be an array", err)
		}
		t := Table{Name: name, Rows: []record.Record{}}
		for dec.More() {
			r, err := record.Decode(dec)
			if err != nil {
				return nil, newError(ErrCodeShape, name, len(t.Rows), "invalid row", err)
			}
			t.Rows = append(t.Rows, r)
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, newError(ErrCodeMalformed, name, -1, "unterminated rows", err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// checkHomogeneous enforces that later rows use no field the first row
// lacks, since the first row's fields are the insert columns.
func checkHomogeneous(tables []Table) error {
	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}
		first := t.Rows[0]
		for i, r := range t.Rows[1:] {
			for _, name := range r.Names() {
				if !first.Has(name) {
					return newError(ErrCodeShape, t.Name, i+1,
						fmt.Sprintf("field %q is not present on the first row", name), nil)
				}
			}
		}
	}
	return nil
}

// MarshalJSON encodes the document in the export format.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, kv := range [][2]string{
		{"exportDate", d.ExportDate},
		{"version", d.Version},
		{"appName", d.AppName},
	} {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(&buf, "%q:", kv[0])
		val, err := json.Marshal(kv[1])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
		buf.WriteByte(',')
	}

	buf.WriteString(`"data":{`)
	for i, t := range d.Tables {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(":[")
		for j, r := range t.Rows {
			if j > 0 {
				buf.WriteByte(',')
			}
			row, err := r.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("table %s row %d: %w", t.Name, j, err)
			}
			buf.Write(row)
		}
		buf.WriteByte(']')
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// WriteJSON writes doc indented by two spaces with a trailing newline.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// DefaultExportName is the suggested export file name for a given day.
func DefaultExportName(t time.Time) string {
	return "tire-logger-export-" + t.UTC().Format("2006-01-02") + ".json"
}
