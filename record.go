package recordkv

// Record is one record instance: a mapping from field name to a primitive
// value. Records passed into Save, DeleteRecord and friends are treated as
// immutable snapshots; the layer never mutates a caller's map.
type Record map[string]Value

// Field returns the named field's value. The second result is false when
// the field is absent or holds an invalid value.
func (r Record) Field(name string) (Value, bool) {
	v, ok := r[name]
	if !ok || !v.IsValid() {
		return Value{}, false
	}
	return v, true
}

func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for name, v := range r {
		out[name] = v
	}
	return out
}

// Untyped converts the record into plain Go values, e.g. for JSON output.
func (r Record) Untyped() map[string]any {
	out := make(map[string]any, len(r))
	for name, v := range r {
		out[name] = v.Any()
	}
	return out
}
