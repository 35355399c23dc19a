package recordkv

import (
	"encoding/json"
	"fmt"
	"log"
)

// DB is a typed indexing layer over one underlying store. All methods are
// safe for concurrent use; the DB holds no mutable state beyond the store
// handle, and every operation runs in its own session.
type DB struct {
	store     storage
	reg       *Registry
	prefix    Key
	prefixRaw []byte
	logf      func(format string, args ...any)
	verbose   bool
}

type Options struct {
	// Prefix is prepended to every physical key, namespacing all data of
	// this DB within the store.
	Prefix Key

	Logf    func(format string, args ...any)
	Verbose bool

	// IsTesting trades durability for speed in the Bolt backend.
	IsTesting bool
}

// Open opens the store at path and wires it to the given definitions.
// An empty path selects a transient in-memory store. A nil registry is
// treated as empty (raw visitation and clearing still work).
func Open(path string, reg *Registry, opt Options) (*DB, error) {
	if reg == nil {
		reg = &Registry{defs: map[string]*Definition{}}
	}
	for _, v := range opt.Prefix {
		if !v.IsValid() {
			return nil, fmt.Errorf("%w: invalid global prefix part", ErrInvalidArgument)
		}
	}

	var store storage
	var err error
	if path == "" {
		store = newMemStorage()
	} else {
		store, err = openBoltStorage(path, opt.IsTesting)
		if err != nil {
			return nil, err
		}
	}

	logf := opt.Logf
	if logf == nil {
		logf = log.Printf
	}

	return &DB{
		store:     store,
		reg:       reg,
		prefix:    opt.Prefix.Clone(),
		prefixRaw: encodeKey(nil, opt.Prefix),
		logf:      logf,
		verbose:   opt.Verbose,
	}, nil
}

func (db *DB) Registry() *Registry {
	return db.reg
}

func (db *DB) Close() error {
	return db.store.close()
}

// withSession scopes one logical operation to one store session and
// guarantees the session is closed on every exit path.
func (db *DB) withSession(f func(s session) error) (err error) {
	s, err := db.store.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return f(s)
}

func (db *DB) definitionOf(typeID string) (*Definition, error) {
	def := db.reg.Definition(typeID)
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeID)
	}
	return def, nil
}

func loggableRecord(rec Record) string {
	if rec == nil {
		return "<none>"
	}
	raw, err := json.Marshal(rec.Untyped())
	if err != nil {
		return "<unencodable>"
	}
	return string(raw)
}
