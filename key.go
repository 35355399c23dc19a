package recordkv

import (
	"fmt"
	"strings"
)

// Key is an ordered sequence of key parts locating a stored value.
type Key []Value

func (k Key) Clone() Key {
	return append(Key(nil), k...)
}

func (k Key) String() string {
	var buf strings.Builder
	for i, v := range k {
		if i > 0 {
			buf.WriteByte('|')
		}
		buf.WriteString(v.String())
	}
	return buf.String()
}

func composeUniqueKey(prefix Key, typeID, field string, value Value) Key {
	key := make(Key, 0, len(prefix)+3)
	key = append(key, prefix...)
	return append(key, String(typeID), String(field), value)
}

// composeAllUniqueKeys derives one key per declared unique field, in
// declaration order.
func composeAllUniqueKeys(prefix Key, def *Definition, rec Record) ([]Key, error) {
	keys := make([]Key, 0, len(def.UniqueFields))
	for _, field := range def.UniqueFields {
		v, ok := rec.Field(field)
		if !ok {
			return nil, fieldErrf(def.TypeID, field, "record is missing a unique field")
		}
		keys = append(keys, composeUniqueKey(prefix, def.TypeID, field, v))
	}
	return keys, nil
}

// composeIndexedKey interleaves the chain's field names with the record's
// values and appends the primary unique value, which keeps the key unique
// per record.
func composeIndexedKey(prefix Key, typeID string, chain []string, rec Record, primary Value) (Key, error) {
	key := make(Key, 0, len(prefix)+2+2*len(chain))
	key = append(key, prefix...)
	key = append(key, String(typeID))
	for _, field := range chain {
		v, ok := rec.Field(field)
		if !ok {
			return nil, fieldErrf(typeID, field, "record is missing an indexed field")
		}
		key = append(key, String(field), v)
	}
	return append(key, primary), nil
}

func composeAllIndexedKeys(prefix Key, def *Definition, rec Record) ([]Key, error) {
	primary, ok := rec.Field(def.PrimaryField())
	if !ok {
		return nil, fieldErrf(def.TypeID, def.PrimaryField(), "record is missing its primary unique field")
	}
	keys := make([]Key, 0, len(def.IndexedChains))
	for _, chain := range def.IndexedChains {
		key, err := composeIndexedKey(prefix, def.TypeID, chain, rec, primary)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// recordKeys returns the full physical key set of one record instance:
// all unique keys followed by all indexed keys.
func recordKeys(prefix Key, def *Definition, rec Record) ([]Key, error) {
	keys, err := composeAllUniqueKeys(prefix, def, rec)
	if err != nil {
		return nil, err
	}
	indexed, err := composeAllIndexedKeys(prefix, def, rec)
	if err != nil {
		return nil, err
	}
	return append(keys, indexed...), nil
}

// composeScanPrefix builds the partial key bounding a range scan. Any
// selector other than the empty one requires a type id: without one,
// "search everything" and "search one type with a filter" would be
// indistinguishable.
func composeScanPrefix(prefix Key, typeID string, sel *Selector) (Key, error) {
	if typeID == "" {
		if !sel.isEmpty() {
			return nil, fmt.Errorf("%w: selector requires a type id", ErrInvalidArgument)
		}
		return prefix.Clone(), nil
	}
	key := append(prefix.Clone(), String(typeID))
	if sel.isEmpty() {
		return key, nil
	}
	if sel.Field != "" {
		if len(sel.Match) > 0 || sel.Primary.IsValid() {
			return nil, fmt.Errorf("%w: selector cannot combine a bare field with match conditions", ErrInvalidArgument)
		}
		return append(key, String(sel.Field)), nil
	}
	for _, cond := range sel.Match {
		if cond.Field == "" || !cond.Value.IsValid() {
			return nil, fmt.Errorf("%w: malformed match condition", ErrInvalidArgument)
		}
		key = append(key, String(cond.Field), cond.Value)
	}
	if sel.Primary.IsValid() {
		if len(sel.Match) == 0 {
			return nil, fmt.Errorf("%w: trailing primary value requires match conditions", ErrInvalidArgument)
		}
		key = append(key, sel.Primary)
	}
	return key, nil
}
