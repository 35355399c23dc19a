package recordkv

import "sort"

// VisitRaw iterates the physical keys of one type (or of everything, with
// an empty typeID), in ascending key order. Keys are decoded into parts
// with the global prefix stripped; value bytes are passed raw and are only
// valid for the duration of the call. Intended for inspection tooling and
// diagnostics.
func (db *DB) VisitRaw(typeID string, f func(key Key, value []byte) error) error {
	prefix, err := composeScanPrefix(db.prefix, typeID, nil)
	if err != nil {
		return err
	}
	prefixRaw := encodeKey(nil, prefix)

	return db.withSession(func(s session) error {
		var visitErr error
		err := s.scan(prefixRaw, func(k, v []byte) bool {
			if !keyExtends(k, prefixRaw) {
				return true
			}
			key, err := decodeKey(k[len(db.prefixRaw):])
			if err != nil {
				visitErr = err
				return false
			}
			if err := f(key, v); err != nil {
				visitErr = err
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		return visitErr
	})
}

// TypeStats counts the physical keys of one record type.
type TypeStats struct {
	TypeID string
	Keys   int
}

// Stats counts physical keys per type id under the global prefix, sorted
// by type id.
func (db *DB) Stats() ([]TypeStats, error) {
	counts := make(map[string]int)
	err := db.VisitRaw("", func(key Key, value []byte) error {
		if len(key) > 0 {
			counts[key[0].Str()]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]TypeStats, 0, len(counts))
	for typeID, n := range counts {
		out = append(out, TypeStats{TypeID: typeID, Keys: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeID < out[j].TypeID })
	return out, nil
}
