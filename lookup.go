package recordkv

import (
	"bytes"
	"fmt"
)

// Selector narrows a FindAll scan within one record type. Exactly one of
// Field and Match may be used: Field matches every record indexed under
// that field name regardless of value; Match is an ordered list of
// field-value pairs forming an exact prefix of a declared indexed chain
// (a leading subsequence of the chain is allowed). Primary, when set,
// narrows a Match selector further to one record's trailing primary value.
type Selector struct {
	Field   string
	Match   []Cond
	Primary Value
}

type Cond struct {
	Field string
	Value Value
}

func Eq(field string, value Value) Cond {
	return Cond{Field: field, Value: value}
}

// ByField selects every record of a type that has been indexed under the
// given field name, regardless of value.
func ByField(name string) *Selector {
	return &Selector{Field: name}
}

// Where selects records whose indexed chain values match the given pairs
// in order.
func Where(conds ...Cond) *Selector {
	return &Selector{Match: conds}
}

func (sel *Selector) isEmpty() bool {
	return sel == nil || (sel.Field == "" && len(sel.Match) == 0 && !sel.Primary.IsValid())
}

// Find performs a point lookup by a single unique field. A missing record
// yields a nil Record and no error.
func (db *DB) Find(typeID, field string, value Value) (Record, error) {
	def, err := db.definitionOf(typeID)
	if err != nil {
		return nil, err
	}
	if !def.isUniqueField(field) {
		return nil, fmt.Errorf("%w: %q is not a unique field of %q", ErrInvalidArgument, field, typeID)
	}
	if !value.IsValid() {
		return nil, fmt.Errorf("%w: invalid lookup value", ErrInvalidArgument)
	}
	keyRaw := encodeKey(nil, composeUniqueKey(db.prefix, typeID, field, value))

	var rec Record
	err = db.withSession(func(s session) error {
		v, err := s.get(keyRaw)
		if err != nil {
			return err
		}
		if v == nil {
			return nil
		}
		rec, err = DecodeRecord(v)
		return err
	})
	if err != nil {
		return nil, err
	}
	if db.verbose {
		if rec != nil {
			db.logf("recordkv: FIND %s/%s=%v => %s", typeID, field, value, loggableRecord(rec))
		} else {
			db.logf("recordkv: FIND.NOTFOUND %s/%s=%v", typeID, field, value)
		}
	}
	return rec, nil
}

// FindAll returns every record matching the selector, in ascending key
// order. With a Match selector bounded by a full or partial indexed chain,
// records come back ordered by their primary unique value. An empty typeID
// with a nil selector scans every record of every type; any non-empty
// selector requires a typeID.
//
// A record occupies one physical key per unique field and per indexed
// chain; FindAll suppresses duplicate copies of the same stored instance,
// so each record appears once per distinct stored content.
func (db *DB) FindAll(typeID string, sel *Selector) ([]Record, error) {
	if typeID != "" {
		if _, err := db.definitionOf(typeID); err != nil {
			return nil, err
		}
	}
	prefix, err := composeScanPrefix(db.prefix, typeID, sel)
	if err != nil {
		return nil, err
	}
	prefixRaw := encodeKey(nil, prefix)

	var out []Record
	seen := make(map[string]struct{})
	err = db.withSession(func(s session) error {
		var scanErr error
		err := s.scan(prefixRaw, func(k, v []byte) bool {
			// A Primary-narrowed selector's prefix is itself a complete key.
			if !bytes.Equal(k, prefixRaw) && !keyExtends(k, prefixRaw) {
				return true
			}
			id, err := db.dedupID(typeID, k, v)
			if err != nil {
				scanErr = err
				return false
			}
			if _, dup := seen[id]; dup {
				return true
			}
			seen[id] = struct{}{}

			rec, err := DecodeRecord(v)
			if err != nil {
				scanErr = err
				return false
			}
			out = append(out, rec)
			return true
		})
		if err != nil {
			return err
		}
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	if db.verbose {
		db.logf("recordkv: FIND_ALL %s (%d records)", scanLabel(typeID, sel), len(out))
	}
	return out, nil
}

// dedupID identifies one stored instance: the type id plus the exact value
// bytes. All keys of one record hold identical bytes, so copies collapse;
// a stale index copy left by a changed indexed field has different bytes
// and still surfaces, matching the documented limitation.
func (db *DB) dedupID(typeID string, k, v []byte) (string, error) {
	if typeID == "" {
		part, _, err := decodeKeyPart(k[len(db.prefixRaw):])
		if err != nil {
			return "", &KeyError{Key: append([]byte(nil), k...), Msg: "invalid type id part", Err: err}
		}
		typeID = part.Str()
	}
	return typeID + "\x00" + string(v), nil
}

func scanLabel(typeID string, sel *Selector) string {
	if typeID == "" {
		return "*"
	}
	if sel.isEmpty() {
		return typeID
	}
	if sel.Field != "" {
		return typeID + "." + sel.Field
	}
	label := typeID
	for _, cond := range sel.Match {
		label += fmt.Sprintf(".%s=%v", cond.Field, cond.Value)
	}
	return label
}
