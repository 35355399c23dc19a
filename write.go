package recordkv

import "fmt"

// Save persists the record under all of its derived physical keys as one
// atomic transaction. Every key receives a full, identical copy of the
// instance; partial field updates are not supported.
//
// Known limitation: if an indexed field's value changed since the previous
// save of the same record, the indexed key derived from the old value is
// not removed, and the record stays reachable there with its old contents.
func (db *DB) Save(typeID string, rec Record) error {
	def, err := db.definitionOf(typeID)
	if err != nil {
		return err
	}
	keys, err := recordKeys(db.prefix, def, rec)
	if err != nil {
		return err
	}
	valueRaw, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	b := new(batch)
	for _, key := range keys {
		b.set(encodeKey(nil, key), valueRaw)
	}

	return db.withSession(func(s session) error {
		if err := s.apply(b); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}
		if db.verbose {
			primary, _ := rec.Field(def.PrimaryField())
			db.logf("recordkv: SAVE %s/%v (%d keys)", typeID, primary, len(keys))
		}
		return nil
	})
}

// DeleteRecord removes the record from all of its derived physical keys as
// one atomic transaction. The full instance is required because indexed
// keys cannot be recomputed from a single unique value.
func (db *DB) DeleteRecord(typeID string, rec Record) error {
	def, err := db.definitionOf(typeID)
	if err != nil {
		return err
	}
	keys, err := recordKeys(db.prefix, def, rec)
	if err != nil {
		return err
	}

	b := new(batch)
	for _, key := range keys {
		b.del(encodeKey(nil, key))
	}

	return db.withSession(func(s session) error {
		if err := s.apply(b); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}
		if db.verbose {
			primary, _ := rec.Field(def.PrimaryField())
			db.logf("recordkv: DELETE %s/%v (%d keys)", typeID, primary, len(keys))
		}
		return nil
	})
}

// Delete looks the record up by one unique field and, when found, removes
// it from all of its keys. A missing record is a no-op, not an error.
func (db *DB) Delete(typeID, field string, value Value) error {
	rec, err := db.Find(typeID, field, value)
	if err != nil {
		return err
	}
	if rec == nil {
		if db.verbose {
			db.logf("recordkv: DELETE.NOOP %s %s=%v", typeID, field, value)
		}
		return nil
	}
	return db.DeleteRecord(typeID, rec)
}

// ClearType removes every physical key of one record type, unique and
// indexed alike. The type id must be non-empty (guarding against a
// malformed call clearing everything) but does not have to be registered,
// so leftovers of removed definitions can still be cleared.
func (db *DB) ClearType(typeID string) error {
	if typeID == "" {
		return fmt.Errorf("%w: empty type id", ErrInvalidArgument)
	}
	prefix := append(db.prefix.Clone(), String(typeID))
	return db.clearPrefix(encodeKey(nil, prefix), typeID)
}

// ClearAll removes every physical key under the global prefix, across all
// types.
func (db *DB) ClearAll() error {
	return db.clearPrefix(db.prefixRaw, "*")
}

func (db *DB) clearPrefix(prefixRaw []byte, label string) error {
	return db.withSession(func(s session) error {
		b := new(batch)
		err := s.scan(prefixRaw, func(k, v []byte) bool {
			if !keyExtends(k, prefixRaw) {
				return true
			}
			b.del(append([]byte(nil), k...))
			return true
		})
		if err != nil {
			return err
		}
		if b.empty() {
			return nil
		}
		if err := s.apply(b); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitFailed, err)
		}
		if db.verbose {
			db.logf("recordkv: CLEAR %s (%d keys)", label, len(b.dels))
		}
		return nil
	})
}
