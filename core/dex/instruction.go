package dex

import (
	"fmt"
	"strings"
)

// RegID identifies a virtual register within a method frame.
type RegID uint16

// Opcode enumerates the register-based instructions this optimizer models.
// The surface is the subset of the DEX instruction set the pass inspects or
// emits, plus a few generic operations so tests can express register traffic.
type Opcode uint8

const (
	OpNop Opcode = iota
	OpConst4
	OpConst16
	OpConst
	OpConstHigh16
	OpConstWide16
	OpConstWide
	OpSget
	OpSgetWide
	OpSgetObject
	OpSgetBoolean
	OpSgetByte
	OpSgetChar
	OpSgetShort
	OpSput
	OpSputWide
	OpSputObject
	OpSputBoolean
	OpSputByte
	OpSputChar
	OpSputShort
	OpReturnVoid
	OpMove
	OpAddInt
	OpInvokeStatic
)

var opcodeNames = map[Opcode]string{
	OpNop:          "nop",
	OpConst4:       "const/4",
	OpConst16:      "const/16",
	OpConst:        "const",
	OpConstHigh16:  "const/high16",
	OpConstWide16:  "const-wide/16",
	OpConstWide:    "const-wide",
	OpSget:         "sget",
	OpSgetWide:     "sget-wide",
	OpSgetObject:   "sget-object",
	OpSgetBoolean:  "sget-boolean",
	OpSgetByte:     "sget-byte",
	OpSgetChar:     "sget-char",
	OpSgetShort:    "sget-short",
	OpSput:         "sput",
	OpSputWide:     "sput-wide",
	OpSputObject:   "sput-object",
	OpSputBoolean:  "sput-boolean",
	OpSputByte:     "sput-byte",
	OpSputChar:     "sput-char",
	OpSputShort:    "sput-short",
	OpReturnVoid:   "return-void",
	OpMove:         "move",
	OpAddInt:       "add-int",
	OpInvokeStatic: "invoke-static",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// IsConstLoad reports whether op writes a literal into its destination register.
func (op Opcode) IsConstLoad() bool {
	switch op {
	case OpConst4, OpConst16, OpConst, OpConstHigh16, OpConstWide16, OpConstWide:
		return true
	}
	return false
}

func (op Opcode) IsStaticGet() bool {
	switch op {
	case OpSget, OpSgetWide, OpSgetObject, OpSgetBoolean, OpSgetByte, OpSgetChar, OpSgetShort:
		return true
	}
	return false
}

func (op Opcode) IsStaticPut() bool {
	switch op {
	case OpSput, OpSputWide, OpSputObject, OpSputBoolean, OpSputByte, OpSputChar, OpSputShort:
		return true
	}
	return false
}

// IsWide reports whether op moves a register pair.
func (op Opcode) IsWide() bool {
	switch op {
	case OpConstWide16, OpConstWide, OpSgetWide, OpSputWide:
		return true
	}
	return false
}

// Instruction is a single operation within a method's instruction sequence.
// Instructions are exclusively owned by their Code; sharing one between two
// sequences breaks in-place replacement.
type Instruction struct {
	op      Opcode
	dest    RegID
	hasDest bool
	srcs    []RegID
	literal int64
	field   *FieldRef
}

func NewConst(op Opcode, dest RegID, literal int64) *Instruction {
	return &Instruction{op: op, dest: dest, hasDest: true, literal: literal}
}

func NewStaticGet(op Opcode, dest RegID, field FieldRef) *Instruction {
	return &Instruction{op: op, dest: dest, hasDest: true, field: &field}
}

func NewStaticPut(op Opcode, src RegID, field FieldRef) *Instruction {
	return &Instruction{op: op, srcs: []RegID{src}, field: &field}
}

func NewReturnVoid() *Instruction {
	return &Instruction{op: OpReturnVoid}
}

func NewMove(dest, src RegID) *Instruction {
	return &Instruction{op: OpMove, dest: dest, hasDest: true, srcs: []RegID{src}}
}

func NewAddInt(dest, a, b RegID) *Instruction {
	return &Instruction{op: OpAddInt, dest: dest, hasDest: true, srcs: []RegID{a, b}}
}

func NewInvokeStatic(args ...RegID) *Instruction {
	return &Instruction{op: OpInvokeStatic, srcs: args}
}

func (i *Instruction) Op() Opcode {
	return i.op
}

// Dest returns the destination register. Only meaningful when HasDest is true.
func (i *Instruction) Dest() RegID {
	return i.dest
}

func (i *Instruction) HasDest() bool {
	return i.hasDest
}

func (i *Instruction) Srcs() []RegID {
	return i.srcs
}

func (i *Instruction) Src(n int) RegID {
	return i.srcs[n]
}

func (i *Instruction) Literal() int64 {
	return i.literal
}

// Field returns the symbolic field reference, or nil for non-field operations.
func (i *Instruction) Field() *FieldRef {
	return i.field
}

func (i *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(i.op.String())
	if i.hasDest {
		fmt.Fprintf(&sb, " v%d", i.dest)
	}
	for _, s := range i.srcs {
		fmt.Fprintf(&sb, " v%d", s)
	}
	if i.op.IsConstLoad() {
		fmt.Fprintf(&sb, ", #%d", i.literal)
	}
	if i.field != nil {
		fmt.Fprintf(&sb, ", %s", i.field)
	}
	return sb.String()
}
