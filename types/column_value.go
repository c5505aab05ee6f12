package types

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Value is a typed scalar literal: an INT, FLOAT or STRING, or NULL.
// It is how the parser and the INSERT/UPDATE entry points hand a literal
// to the executor; the executor itself operates on raw tuple bytes, not
// on Value, once a value has been written into a tuple buffer.
type Value struct {
	typ TypeID
	i   int32
	f   float32
	s   string
}

func NewInteger(v int32) Value { return Value{typ: Integer, i: v} }
func NewFloat(v float32) Value { return Value{typ: Float, f: v} }
func NewString(v string) Value { return Value{typ: String, s: v} }
func NewNull() Value           { return Value{typ: Null} }

func (v Value) Type() TypeID { return v.typ }
func (v Value) IsNull() bool { return v.typ == Null }

// if you use this to get column value, NULL value check is needed in general
func (v Value) ToInteger() int32 { return v.i }
func (v Value) ToFloat() float32 { return v.f }
func (v Value) ToString() string { return v.s }

func (v Value) String() string {
	switch v.typ {
	case Null:
		return "NULL"
	case Integer:
		return fmt.Sprintf("%d", v.i)
	case Float:
		return fmt.Sprintf("%f", v.f)
	case String:
		return v.s
	}
	return "?"
}

// CanAssign reports whether a value may be written into an attribute of
// targetType:
//   - the value is NULL and the attribute is nullable,
//   - the value is INT and the attribute is INT or FLOAT (implicit widening),
//   - the value is FLOAT and the attribute is FLOAT,
//   - the value is STRING and the attribute is STRING.
func CanAssign(targetType TypeID, valueType TypeID, nullable bool) bool {
	switch {
	case valueType == Null:
		return nullable
	case valueType == Integer:
		return targetType == Integer || targetType == Float
	case valueType == Float:
		return targetType == Float
	case valueType == String:
		return targetType == String
	}
	return false
}

// EncodeInto writes the value's raw bytes into dst, which must be large
// enough to hold the attribute's on-disk representation: 4 bytes for
// INT/FLOAT, up to displayLength+1 (NUL terminator) for STRING. The
// caller is responsible for the STRING_VAL_TOO_LONG length check before
// calling EncodeInto.
func (v Value) EncodeInto(dst []byte) {
	switch v.typ {
	case Integer:
		binary.LittleEndian.PutUint32(dst, uint32(v.i))
	case Float:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v.f))
	case String:
		n := copy(dst, v.s)
		if n < len(dst) {
			dst[n] = 0
		}
	}
}

// DecodeInt reads a 4-byte little-endian INT out of a tuple buffer.
func DecodeInt(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// DecodeFloat reads a 4-byte little-endian FLOAT out of a tuple buffer.
func DecodeFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// DecodeString reads a NUL-terminated STRING out of a tuple buffer,
// scanning at most maxLen bytes.
func DecodeString(b []byte, maxLen int) string {
	if maxLen > len(b) {
		maxLen = len(b)
	}
	for i := 0; i < maxLen; i++ {
		if b[i] == 0 {
			return string(b[:i])
		}
	}
	return string(b[:maxLen])
}

// CompareStringBytes performs a lexicographic, NUL-terminated byte
// comparison for STRING predicates.
func CompareStringBytes(a, b []byte) int {
	as := DecodeString(a, len(a))
	bs := DecodeString(b, len(b))
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
