package dex

// AccessFlags mirrors the DEX access_flags bitfield for classes, fields and
// methods. Only the bits this optimizer inspects are named.
type AccessFlags uint32

const (
	AccPublic      AccessFlags = 0x00001
	AccPrivate     AccessFlags = 0x00002
	AccProtected   AccessFlags = 0x00004
	AccStatic      AccessFlags = 0x00008
	AccFinal       AccessFlags = 0x00010
	AccVolatile    AccessFlags = 0x00040
	AccTransient   AccessFlags = 0x00080
	AccSynthetic   AccessFlags = 0x01000
	AccConstructor AccessFlags = 0x10000
)

func (a AccessFlags) IsStatic() bool {
	return a&AccStatic != 0
}

func (a AccessFlags) IsFinal() bool {
	return a&AccFinal != 0
}

func (a AccessFlags) IsConstructor() bool {
	return a&AccConstructor != 0
}

// HasAll reports whether every bit in mask is set.
func (a AccessFlags) HasAll(mask AccessFlags) bool {
	return a&mask == mask
}
