package recordkv

// storage represents a key-value storage backend (Bolt or in-memory).
type storage interface {
	// open acquires a session for one logical operation. Sessions are
	// exclusively owned by that operation for its duration.
	open() (session, error)
	// close closes the storage.
	close() error
}

// session is a store connection scoped to one logical operation.
type session interface {
	// get performs a point read. Returns nil when the key is absent.
	// The returned bytes are owned by the caller.
	get(key []byte) ([]byte, error)

	// scan iterates keys sharing the given byte prefix in ascending key
	// order, calling f until it returns false or keys run out. The byte
	// slices passed to f are only valid for the duration of the call.
	scan(prefix []byte, f func(k, v []byte) bool) error

	// apply commits a batch of staged mutations atomically: either every
	// staged set and delete becomes visible, or none does.
	apply(b *batch) error

	// close releases the session. Must be called exactly once, on every
	// exit path of the owning operation.
	close() error
}

// batch stages mutations for one atomic commit.
type batch struct {
	sets []kvPair
	dels [][]byte
}

type kvPair struct {
	k, v []byte
}

func (b *batch) set(k, v []byte) {
	b.sets = append(b.sets, kvPair{k, v})
}

func (b *batch) del(k []byte) {
	b.dels = append(b.dels, k)
}

func (b *batch) empty() bool {
	return len(b.sets) == 0 && len(b.dels) == 0
}
