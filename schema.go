package recordkv

import "fmt"

// Definition describes one kind of storable record: its type identifier,
// the fields that uniquely identify an instance, and the field chains that
// serve as secondary indexes.
type Definition struct {
	// TypeID is a short identifier usable as a key part, unique across
	// all definitions registered with one database instance.
	TypeID string

	// UniqueFields is an ordered, non-empty list of field names. Each
	// field's value, together with TypeID and the field name, maps
	// directly to one record instance. The first entry is the record's
	// primary identifier. Uniqueness of the values themselves is the
	// caller's responsibility; this layer does not enforce it.
	UniqueFields []string

	// IndexedChains lists secondary indexes, each an ordered, non-empty
	// chain of field names. Records sharing a value prefix along a chain
	// are discoverable together via FindAll.
	IndexedChains [][]string
}

// PrimaryField returns the name of the record's primary identifier.
func (def *Definition) PrimaryField() string {
	return def.UniqueFields[0]
}

func (def *Definition) isUniqueField(field string) bool {
	for _, f := range def.UniqueFields {
		if f == field {
			return true
		}
	}
	return false
}

func (def *Definition) validate() error {
	if def.TypeID == "" {
		return fmt.Errorf("%w: definition with empty type id", ErrInvalidArgument)
	}
	if len(def.UniqueFields) == 0 {
		return fmt.Errorf("%w: %s: no unique fields declared", ErrInvalidArgument, def.TypeID)
	}
	for _, f := range def.UniqueFields {
		if f == "" {
			return fmt.Errorf("%w: %s: empty unique field name", ErrInvalidArgument, def.TypeID)
		}
	}
	for i, chain := range def.IndexedChains {
		if len(chain) == 0 {
			return fmt.Errorf("%w: %s: indexed chain %d is empty", ErrInvalidArgument, def.TypeID, i)
		}
		for _, f := range chain {
			if f == "" {
				return fmt.Errorf("%w: %s: indexed chain %d has an empty field name", ErrInvalidArgument, def.TypeID, i)
			}
		}
	}
	return nil
}

// Registry holds the record definitions of one database instance. It is
// immutable after construction.
type Registry struct {
	defs   map[string]*Definition
	sorted []*Definition // declaration order
}

// NewRegistry validates the given definitions and builds a registry.
// Definitions are looked up by the type id they themselves declare, so a
// declaration can never end up registered under a foreign identifier.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	reg := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, def := range defs {
		if err := def.validate(); err != nil {
			return nil, err
		}
		if reg.defs[def.TypeID] != nil {
			return nil, fmt.Errorf("%w: duplicate type id %q", ErrInvalidArgument, def.TypeID)
		}
		reg.defs[def.TypeID] = def
		reg.sorted = append(reg.sorted, def)
	}
	return reg, nil
}

// Definition returns the declaration for the given type id, or nil.
func (reg *Registry) Definition(typeID string) *Definition {
	return reg.defs[typeID]
}

// Definitions returns all declarations in registration order.
func (reg *Registry) Definitions() []*Definition {
	return append([]*Definition(nil), reg.sorted...)
}
