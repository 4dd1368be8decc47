package record

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value Value
}

// F is a shorthand Field constructor.
// Example: New(F("carId", String("c1")), F("name", String("Miata")))
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Record is an ordered set of uniquely named fields.
// The zero value is an empty record ready for use.
type Record struct {
	fields []Field
	index  map[string]int
}

// New builds a Record from fields. A repeated name keeps its first
// position and takes the last value.
func New(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Get returns the value of the named field.
func (r Record) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Has reports whether the field is present (even when Null).
func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Set assigns a field, appending it when it is new.
func (r *Record) Set(name string, v Value) {
	if v == nil {
		v = Null{}
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = v
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

// Names returns field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Clone returns an independent copy.
func (r Record) Clone() Record {
	return New(r.fields...)
}

// Equal reports whether both records hold the same names with equal values.
// Field order is ignored.
func (r Record) Equal(other Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	for _, f := range r.fields {
		v, ok := other.Get(f.Name)
		if !ok || !Equal(f.Value, v) {
			return false
		}
	}
	return true
}

// Map converts the record to a plain map of database/sql values.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = Any(f.Value)
	}
	return m
}

// FromMap builds a Record from a map, ordering fields by the given names
// first and then any remaining keys in canonical key order.
func FromMap(m map[string]any, order ...string) (Record, error) {
	var r Record
	seen := make(map[string]bool, len(m))
	add := func(k string) error {
		if seen[k] {
			return nil
		}
		raw, ok := m[k]
		if !ok {
			return nil
		}
		seen[k] = true
		v, err := FromAny(raw)
		if err != nil {
			return fieldError(k, err)
		}
		r.Set(k, v)
		return nil
	}
	for _, k := range order {
		if err := add(k); err != nil {
			return Record{}, err
		}
	}
	for _, k := range sortedKeys(m) {
		if err := add(k); err != nil {
			return Record{}, err
		}
	}
	return r, nil
}
