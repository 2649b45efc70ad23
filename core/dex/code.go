package dex

// Code holds a method's instruction sequence. All structural edits happen
// in place so that instruction pointers collected during a scan stay valid
// until they are explicitly replaced or removed.
type Code struct {
	insns []*Instruction
}

func NewCode(insns ...*Instruction) *Code {
	return &Code{insns: insns}
}

// Instructions returns the live instruction slice. Callers must not append;
// use Replace/Remove for edits.
func (c *Code) Instructions() []*Instruction {
	return c.insns
}

func (c *Code) Len() int {
	return len(c.insns)
}

// Replace swaps from for to at its current position. Returns false when from
// is not part of this sequence.
func (c *Code) Replace(from, to *Instruction) bool {
	for i, insn := range c.insns {
		if insn == from {
			c.insns[i] = to
			return true
		}
	}
	return false
}

// Remove deletes insn from the sequence, preserving the order of the rest.
func (c *Code) Remove(insn *Instruction) bool {
	for i, cur := range c.insns {
		if cur == insn {
			c.insns = append(c.insns[:i], c.insns[i+1:]...)
			return true
		}
	}
	return false
}
