package record

// Merge combines an existing row with an incoming one.
//
// The result starts as a copy of existing. Every incoming field that is not
// empty (see IsEmpty) overwrites the field of the same name, or is appended
// when existing lacks it. Absent or empty incoming fields keep the existing
// value. Neither argument is modified.
func Merge(existing, incoming Record) Record {
	merged := existing.Clone()
	for _, f := range incoming.fields {
		if IsEmpty(f.Value) {
			continue
		}
		merged.Set(f.Name, f.Value)
	}
	return merged
}

// Changed returns the names of fields whose value differs between before
// and after, in after's order.
func Changed(before, after Record) []string {
	var names []string
	for _, f := range after.fields {
		v, ok := before.Get(f.Name)
		if !ok || !Equal(v, f.Value) {
			names = append(names, f.Name)
		}
	}
	return names
}
