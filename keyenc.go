package recordkv

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Key parts are encoded order-preserving and self-terminating: a tag byte
// establishes ordering across kinds, strings and byte sequences are
// NUL-escaped (0x00 -> 0x00 0xFF) and NUL-terminated, numbers are fixed
// 8-byte big-endian payloads adjusted to sort naturally. Because every part
// encoding is complete in itself, the encoding of a part sequence is a byte
// prefix of exactly those keys that extend the sequence by whole parts.
const (
	kpTerm = 0x00
	kpEsc  = 0xFF

	kpBytes  = 0x01
	kpString = 0x02
	kpInt    = 0x03
	kpFloat  = 0x04
	kpFalse  = 0x05
	kpTrue   = 0x06
)

const signBit = uint64(1) << 63

func appendKeyPart(buf []byte, v Value) []byte {
	switch v.kind {
	case KindBytes:
		buf = append(buf, kpBytes)
		buf = appendEscaped(buf, v.raw)
		return append(buf, kpTerm)
	case KindString:
		buf = append(buf, kpString)
		buf = appendEscaped(buf, []byte(v.str))
		return append(buf, kpTerm)
	case KindInt:
		buf = append(buf, kpInt)
		return appendUint64(buf, v.num^signBit)
	case KindFloat:
		bits := v.num
		if bits&signBit != 0 {
			bits = ^bits
		} else {
			bits |= signBit
		}
		buf = append(buf, kpFloat)
		return appendUint64(buf, bits)
	case KindBool:
		if v.num != 0 {
			return append(buf, kpTrue)
		}
		return append(buf, kpFalse)
	default:
		panic(fmt.Errorf("recordkv: attempt to encode invalid key part"))
	}
}

func appendEscaped(buf []byte, data []byte) []byte {
	for {
		i := bytes.IndexByte(data, kpTerm)
		if i < 0 {
			return append(buf, data...)
		}
		buf = append(buf, data[:i+1]...)
		buf = append(buf, kpEsc)
		data = data[i+1:]
	}
}

func encodeKey(buf []byte, key Key) []byte {
	for _, v := range key {
		buf = appendKeyPart(buf, v)
	}
	return buf
}

func decodeKey(raw []byte) (Key, error) {
	var key Key
	rest := raw
	for len(rest) > 0 {
		v, n, err := decodeKeyPart(rest)
		if err != nil {
			return nil, &KeyError{Key: raw, Msg: "invalid key", Err: err}
		}
		key = append(key, v)
		rest = rest[n:]
	}
	return key, nil
}

func decodeKeyPart(raw []byte) (Value, int, error) {
	if len(raw) == 0 {
		return Value{}, 0, fmt.Errorf("empty key part")
	}
	switch tag := raw[0]; tag {
	case kpBytes, kpString:
		data, n, err := unescape(raw[1:])
		if err != nil {
			return Value{}, 0, err
		}
		if tag == kpBytes {
			return Bytes(data), 1 + n, nil
		}
		return String(string(data)), 1 + n, nil
	case kpInt:
		if len(raw) < 9 {
			return Value{}, 0, fmt.Errorf("truncated int part")
		}
		return Int(int64(binary.BigEndian.Uint64(raw[1:9]) ^ signBit)), 9, nil
	case kpFloat:
		if len(raw) < 9 {
			return Value{}, 0, fmt.Errorf("truncated float part")
		}
		bits := binary.BigEndian.Uint64(raw[1:9])
		if bits&signBit != 0 {
			bits &^= signBit
		} else {
			bits = ^bits
		}
		return Value{kind: KindFloat, num: bits}, 9, nil
	case kpFalse:
		return Bool(false), 1, nil
	case kpTrue:
		return Bool(true), 1, nil
	default:
		return Value{}, 0, fmt.Errorf("unknown key part tag %#02x", tag)
	}
}

// unescape reads NUL-escaped content up to and including its terminator,
// returning the content and the number of bytes consumed.
func unescape(raw []byte) ([]byte, int, error) {
	var data []byte
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b != kpTerm {
			data = append(data, b)
			continue
		}
		if i+1 < len(raw) && raw[i+1] == kpEsc {
			data = append(data, kpTerm)
			i++
			continue
		}
		return data, i + 1, nil
	}
	return nil, 0, fmt.Errorf("unterminated part")
}

// keyExtends reports whether raw encodes a key that extends the given
// encoded part sequence by at least one whole part. A 0xFF continuation
// byte means the prefix's final part merely shares bytes with a longer
// part (an escaped NUL), not that the key extends it.
func keyExtends(raw, prefix []byte) bool {
	if len(raw) <= len(prefix) || !bytes.HasPrefix(raw, prefix) {
		return false
	}
	return raw[len(prefix)] != kpEsc
}
