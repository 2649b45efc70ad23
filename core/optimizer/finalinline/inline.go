package finalinline

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Briagont/redex/core/dex"
)

// validateGet classifies a static read about to be inlined. Wide reads are
// counted and skipped. Anything else that is not a narrow read means an
// eligible field is being accessed through an opcode the eligibility rules
// should have excluded: a model-consistency error.
func (pass *Pass) validateGet(m *dex.Method, insn *dex.Instruction) (bool, error) {
	if narrowStaticGet(insn, func() { pass.unhandledInline++ }) {
		return true, nil
	}
	if insn.Op() == dex.OpSgetWide {
		return false, nil
	}
	field := pass.program.ResolveField(*insn.Field())
	return false, fmt.Errorf("unexpected opcode %s for inlineable field %s (value %s) in method %s",
		insn.Op(), field, field.StaticValue(), m)
}

// cheapBits reports whether the bit pattern fits the 16-bit immediate form:
// either the low 16 bits alone reproduce it, or the high 16 bits of a 32-bit
// pattern do with the low 16 bits zero.
func cheapBits(v uint64) bool {
	return v&0xffff == v || v&0xffff0000 == v
}

// inlineCheapGet rewrites a static read of a cheap constant into the
// narrowest 16-bit constant load with the same destination register.
func (pass *Pass) inlineCheapGet(m *dex.Method, insn *dex.Instruction) error {
	ok, err := pass.validateGet(m, insn)
	if err != nil || !ok {
		return err
	}
	field := pass.program.ResolveField(*insn.Field())
	v := uint32(0)
	if value := field.StaticValue(); value != nil {
		v = uint32(value.Bits())
	}
	var op dex.Opcode
	switch {
	case uint64(v)&0xffff == uint64(v):
		op = dex.OpConst16
	case uint64(v)&0xffff0000 == uint64(v):
		op = dex.OpConstHigh16
	default:
		return fmt.Errorf("field %s queued as cheap but value 0x%x fits neither const/16 nor const/high16", field, v)
	}
	m.Code().Replace(insn, dex.NewConst(op, insn.Dest(), int64(v)))
	return nil
}

// inlineGet rewrites a static read into the general-width constant load.
func (pass *Pass) inlineGet(m *dex.Method, insn *dex.Instruction) error {
	ok, err := pass.validateGet(m, insn)
	if err != nil || !ok {
		return err
	}
	field := pass.program.ResolveField(*insn.Field())
	v := uint32(0)
	if value := field.StaticValue(); value != nil {
		v = uint32(value.Bits())
	}
	m.Code().Replace(insn, dex.NewConst(dex.OpConst, insn.Dest(), int64(v)))
	return nil
}

type getRewrite struct {
	method *dex.Method
	insn   *dex.Instruction
}

// inlineFieldValues rewrites every read of a statically-resolved constant
// field in the program into a constant load. Eligibility and the cheap-vs-
// general encoding are decided once per field before any rewriting.
func (pass *Pass) inlineFieldValues() error {
	p := pass.program

	inlineable := make(map[*dex.Field]bool)
	cheap := make(map[*dex.Field]bool)
	for _, cls := range p.Classes() {
		assigned, err := runtimeAssignedStatics(p, cls)
		if err != nil {
			return err
		}
		for _, field := range cls.StaticFields() {
			if !field.Access().HasAll(dex.AccStatic | dex.AccFinal) {
				continue
			}
			if assigned[field] {
				continue
			}
			value := field.StaticValue()
			if value == nil && !field.Type().IsPrimitive() {
				continue
			}
			if value != nil && !value.IsPrimitive() {
				continue
			}
			bits := uint64(0)
			if value != nil {
				bits = value.Bits()
			}
			if cheapBits(bits) {
				cheap[field] = true
			}
			inlineable[field] = true
		}
	}

	// Collect first, mutate after: rewriting while walking would edit the
	// sequences being iterated.
	var cheapRewrites, simpleRewrites []getRewrite
	dex.WalkInstructions(p, func(m *dex.Method, insn *dex.Instruction) {
		if insn.Field() == nil || !insn.Op().IsStaticGet() {
			return
		}
		field := p.ResolveField(*insn.Field())
		if field == nil || !field.IsConcrete() || !inlineable[field] {
			return
		}
		if cheap[field] {
			cheapRewrites = append(cheapRewrites, getRewrite{method: m, insn: insn})
			return
		}
		simpleRewrites = append(simpleRewrites, getRewrite{method: m, insn: insn})
	})
	log.Debug("field read rewrites", "cheap", len(cheapRewrites), "simple", len(simpleRewrites))

	for _, rw := range cheapRewrites {
		if err := pass.inlineCheapGet(rw.method, rw.insn); err != nil {
			return err
		}
	}
	for _, rw := range simpleRewrites {
		if err := pass.inlineGet(rw.method, rw.insn); err != nil {
			return err
		}
	}
	return nil
}
