package dex

import "fmt"

// ValueKind tags the payload of an EncodedValue with its primitive type.
type ValueKind uint8

const (
	ValueBoolean ValueKind = iota
	ValueByte
	ValueShort
	ValueChar
	ValueInt
	ValueLong
	ValueFloat
	ValueDouble
	ValueNull
)

func (k ValueKind) String() string {
	switch k {
	case ValueBoolean:
		return "boolean"
	case ValueByte:
		return "byte"
	case ValueShort:
		return "short"
	case ValueChar:
		return "char"
	case ValueInt:
		return "int"
	case ValueLong:
		return "long"
	case ValueFloat:
		return "float"
	case ValueDouble:
		return "double"
	case ValueNull:
		return "null"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// EncodedValue is a constant payload attached directly to a field definition.
// The payload is the raw bit pattern of the constant, so float constants are
// carried without rounding.
type EncodedValue struct {
	kind ValueKind
	bits uint64
}

func NewEncodedValue(kind ValueKind, bits uint64) *EncodedValue {
	return &EncodedValue{kind: kind, bits: bits}
}

func (v *EncodedValue) Kind() ValueKind {
	return v.kind
}

func (v *EncodedValue) Bits() uint64 {
	return v.bits
}

func (v *EncodedValue) SetBits(bits uint64) {
	v.bits = bits
}

// IsPrimitive reports whether the payload is a primitive constant
// (as opposed to a null reference).
func (v *EncodedValue) IsPrimitive() bool {
	return v.kind != ValueNull
}

// Clone returns an independent copy. Propagated fields must not share the
// payload of their source field: later mutation of one would silently change
// the other. Clone(nil) is nil.
func (v *EncodedValue) Clone() *EncodedValue {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (v *EncodedValue) String() string {
	if v == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s(0x%x)", v.kind, v.bits)
}

// UnsupportedEncodingError reports a field type whose constants cannot be
// expressed as an encoded static value by this optimizer. Wide and reference
// types land here; callers treat it as a soft rejection of the enclosing
// class rather than a model error.
type UnsupportedEncodingError struct {
	Type Type
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("type %q has no supported encoded-value form", string(e.Type))
}

// ZeroValueForType returns a zero-initialized encoded value skeleton for the
// given field type. Wide and reference types return UnsupportedEncodingError;
// a descriptor that is not a field type at all is a model-consistency error.
func ZeroValueForType(t Type) (*EncodedValue, error) {
	switch t {
	case TypeBoolean:
		return &EncodedValue{kind: ValueBoolean}, nil
	case TypeByte:
		return &EncodedValue{kind: ValueByte}, nil
	case TypeShort:
		return &EncodedValue{kind: ValueShort}, nil
	case TypeChar:
		return &EncodedValue{kind: ValueChar}, nil
	case TypeInt:
		return &EncodedValue{kind: ValueInt}, nil
	case TypeFloat:
		return &EncodedValue{kind: ValueFloat}, nil
	case TypeLong, TypeDouble:
		return nil, &UnsupportedEncodingError{Type: t}
	}
	if t.IsReference() {
		return nil, &UnsupportedEncodingError{Type: t}
	}
	return nil, fmt.Errorf("no encoded value for descriptor %q", string(t))
}
