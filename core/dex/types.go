package dex

// Type is a DEX-style type descriptor: single-letter primitives ("I", "J", ...),
// "Lpkg/Name;" for class references and "[..." for arrays.
type Type string

const (
	TypeVoid    Type = "V"
	TypeBoolean Type = "Z"
	TypeByte    Type = "B"
	TypeShort   Type = "S"
	TypeChar    Type = "C"
	TypeInt     Type = "I"
	TypeLong    Type = "J"
	TypeFloat   Type = "F"
	TypeDouble  Type = "D"
)

func (t Type) IsPrimitive() bool {
	switch t {
	case TypeBoolean, TypeByte, TypeShort, TypeChar, TypeInt, TypeLong, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// IsWide reports whether values of this type occupy a register pair.
func (t Type) IsWide() bool {
	return t == TypeLong || t == TypeDouble
}

func (t Type) IsReference() bool {
	if len(t) == 0 {
		return false
	}
	return t[0] == 'L' || t[0] == '['
}
