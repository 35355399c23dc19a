package recordkv

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// encodeRecord serializes a record as a msgpack map with field names in
// sorted order. Identical records always encode to identical bytes, which
// re-save idempotence and scan-time duplicate suppression rely on.
func encodeRecord(rec Record) ([]byte, error) {
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)

	var bb bytesBuilder
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(&bb)

	if err := enc.EncodeMapLen(len(rec)); err != nil {
		return nil, fmt.Errorf("recordkv: encoding record: %w", err)
	}
	for _, name := range names {
		if err := enc.EncodeString(name); err != nil {
			return nil, fmt.Errorf("recordkv: encoding record: %w", err)
		}
		v := rec[name]
		if err := v.EncodeMsgpack(enc); err != nil {
			return nil, fmt.Errorf("recordkv: encoding field %q: %w", name, err)
		}
	}
	return bb.Buf, nil
}

// DecodeRecord reconstructs a record instance from its stored value bytes.
// msgpack is self-describing, so no definition is needed.
func DecodeRecord(data []byte) (Record, error) {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(&r)

	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, &KeyError{Key: data, Msg: "invalid record value", Err: err}
	}
	rec := make(Record, n)
	for i := 0; i < n; i++ {
		name, err := dec.DecodeString()
		if err != nil {
			return nil, &KeyError{Key: data, Msg: "invalid record field name", Err: err}
		}
		var v Value
		if err := v.DecodeMsgpack(dec); err != nil {
			return nil, &KeyError{Key: data, Msg: fmt.Sprintf("invalid value for field %q", name), Err: err}
		}
		rec[name] = v
	}
	return rec, nil
}
