package recordkv

import (
	"bytes"
	"math"
	"testing"
)

func TestKeyPartRoundTrip(t *testing.T) {
	values := []Value{
		String(""),
		String("US"),
		String("USA"),
		String("has\x00nul"),
		String("has\x00\xffnul-esc"),
		Int(0),
		Int(1),
		Int(-1),
		Int(math.MaxInt64),
		Int(math.MinInt64),
		Float(0),
		Float(1.5),
		Float(-2.25),
		Float(math.Inf(1)),
		Float(math.Inf(-1)),
		Bool(false),
		Bool(true),
		Bytes(nil),
		Bytes([]byte{0, 1, 2, 0xFF, 0}),
	}
	for _, v := range values {
		raw := appendKeyPart(nil, v)
		got, n, err := decodeKeyPart(raw)
		if err != nil {
			t.Errorf("** decodeKeyPart(%v): %v", v, err)
			continue
		}
		if n != len(raw) {
			t.Errorf("** decodeKeyPart(%v) consumed %d of %d bytes", v, n, len(raw))
		}
		if !got.Equal(v) {
			t.Errorf("** decodeKeyPart(%v) = %v", v, got)
		}
	}
}

func TestKeyPartOrdering(t *testing.T) {
	// Each pair must encode in strictly ascending byte order.
	pairs := [][2]Value{
		{String(""), String("a")},
		{String("US"), String("USA")},
		{String("a"), String("b")},
		{Int(-5), Int(-1)},
		{Int(-1), Int(0)},
		{Int(0), Int(1)},
		{Int(41), Int(42)},
		{Int(math.MinInt64), Int(math.MaxInt64)},
		{Float(-1.5), Float(-0.5)},
		{Float(-0.5), Float(0)},
		{Float(0), Float(0.5)},
		{Float(math.Inf(-1)), Float(math.Inf(1))},
		{Bool(false), Bool(true)},
		{Bytes([]byte{1}), Bytes([]byte{2})},
	}
	for _, pair := range pairs {
		a := appendKeyPart(nil, pair[0])
		b := appendKeyPart(nil, pair[1])
		if bytes.Compare(a, b) >= 0 {
			t.Errorf("** %v (%x) should sort before %v (%x)", pair[0], a, pair[1], b)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	key := Key{String("person"), String("ssn"), String("123-45-6789")}
	raw := encodeKey(nil, key)
	got := must(decodeKey(raw))
	deepEqual(t, got.String(), key.String())

	if _, err := decodeKey([]byte{0x7F}); err == nil {
		t.Errorf("** decodeKey accepted an unknown tag")
	}
	if _, err := decodeKey([]byte{kpString, 'a'}); err == nil {
		t.Errorf("** decodeKey accepted an unterminated part")
	}
	if _, err := decodeKey([]byte{kpInt, 1, 2}); err == nil {
		t.Errorf("** decodeKey accepted a truncated int part")
	}
}

func TestKeyPrefixSafety(t *testing.T) {
	prefix := encodeKey(nil, Key{String("person"), String("country"), String("US")})

	extension := encodeKey(nil, Key{String("person"), String("country"), String("US"), String("12345")})
	if !keyExtends(extension, prefix) {
		t.Errorf("** whole-part extension not matched")
	}

	longerPart := encodeKey(nil, Key{String("person"), String("country"), String("USA"), String("12345")})
	if keyExtends(longerPart, prefix) {
		t.Errorf("** %q must not match the %q prefix", "USA", "US")
	}

	// "US\x00..." shares the byte prefix via the escape sequence but is a
	// different part.
	nulPart := encodeKey(nil, Key{String("person"), String("country"), String("US\x00x"), String("12345")})
	if !bytes.HasPrefix(nulPart, prefix) {
		t.Fatalf("test assumption broken: escaped part does not share bytes")
	}
	if keyExtends(nulPart, prefix) {
		t.Errorf("** %q must not match the %q prefix", "US\x00x", "US")
	}

	if keyExtends(prefix, prefix) {
		t.Errorf("** a key must not extend itself")
	}
}
