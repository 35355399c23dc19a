package recordkv

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Kind identifies the primitive type held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindBytes
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a key-part-compatible primitive: a string, an int64, a float64,
// a bool or a raw byte sequence. The zero Value is invalid and unusable as
// either a key part or a record field.
type Value struct {
	kind Kind
	str  string
	num  uint64 // int64 bits, Float64bits, or 0/1 for bool
	raw  []byte
}

func String(v string) Value { return Value{kind: KindString, str: v} }
func Int(v int64) Value     { return Value{kind: KindInt, num: uint64(v)} }
func Float(v float64) Value { return Value{kind: KindFloat, num: math.Float64bits(v)} }
func Bytes(v []byte) Value  { return Value{kind: KindBytes, raw: v} }

func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) Str() string    { return v.str }
func (v Value) Int() int64     { return int64(v.num) }
func (v Value) Float() float64 { return math.Float64frombits(v.num) }
func (v Value) Bool() bool     { return v.num != 0 }
func (v Value) Raw() []byte    { return v.raw }

// Any returns the underlying primitive as an untyped value.
func (v Value) Any() any {
	switch v.kind {
	case KindBytes:
		return v.raw
	case KindString:
		return v.str
	case KindInt:
		return v.Int()
	case KindFloat:
		return v.Float()
	case KindBool:
		return v.Bool()
	default:
		return nil
	}
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBytes:
		return bytes.Equal(v.raw, other.raw)
	case KindString:
		return v.str == other.str
	default:
		return v.num == other.num
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBytes:
		return hex.EncodeToString(v.raw)
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool())
	default:
		return "<invalid>"
	}
}

var (
	_ msgpack.CustomEncoder = (*Value)(nil)
	_ msgpack.CustomDecoder = (*Value)(nil)
)

func (v *Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindBytes:
		return enc.EncodeBytes(v.raw)
	case KindString:
		return enc.EncodeString(v.str)
	case KindInt:
		return enc.EncodeInt(v.Int())
	case KindFloat:
		return enc.EncodeFloat64(v.Float())
	case KindBool:
		return enc.EncodeBool(v.Bool())
	default:
		return fmt.Errorf("cannot encode invalid Value")
	}
}

func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}
	switch {
	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*v = String(s)
	case msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		if err != nil {
			return err
		}
		*v = Bytes(b)
	case c == msgpcode.True || c == msgpcode.False:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		*v = Bool(b)
	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		*v = Float(f)
	case msgpcode.IsFixedNum(c),
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64,
		c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32, c == msgpcode.Uint64:
		n, err := dec.DecodeInt64()
		if err != nil {
			return err
		}
		*v = Int(n)
	default:
		return fmt.Errorf("unsupported msgpack code %x for Value", c)
	}
	return nil
}
