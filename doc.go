/*
Package recordkv implements a typed indexing layer on top of an ordered
key-value store (in this case, on top of Bolt, with an in-memory store for
tests and ephemeral use).

Callers declare, per record type, which fields are unique identifiers and
which field chains serve as secondary indexes. The layer then maintains a
denormalized multi-key representation of every record so that point lookups
by a unique field and prefix lookups by an indexed chain are both single
store operations.

We implement:

1. A key composer deriving the full physical key set of a record.

2. An atomic multi-key write/delete protocol on top of the store's batch
transaction primitive.

3. Point and prefix lookups materialized into plain record slices.

# Technical Details

**Key families.**
Each record instance of type T occupies exactly
len(UniqueFields) + len(IndexedChains) physical keys, all holding an
identical serialized copy of the instance:

	unique:  [prefix..., typeID, uniqueField, value]
	indexed: [prefix..., typeID, f1, v1, ..., fn, vn, primaryValue]

primaryValue is the value of the first declared unique field; it keeps
indexed keys individually unique, so range scans yield one entry per record.

**Key encoding.**
Physical keys are ordered sequences of typed parts (string, int64, float64,
bool, bytes). Every part is encoded order-preserving and self-terminating:
a tag byte, then NUL-escaped content with a NUL terminator for strings and
bytes, or a fixed-width big-endian payload for numbers. The encoding of a
part sequence is a byte prefix of exactly the keys extending it by whole
parts, which lets one scan algorithm serve both key families.

**Value encoding.**
Values are msgpack of the whole record with field names written in sorted
order, so identical instances always produce identical bytes.

**Known limitation.**
If an indexed field's value changes between two saves of the same record,
the indexed key derived from the old value is not removed; the record stays
reachable at the stale location with its old contents. See DB.Save.
*/
package recordkv
