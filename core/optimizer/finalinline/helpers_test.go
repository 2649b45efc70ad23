package finalinline

import (
	"testing"

	"github.com/Briagont/redex/core/dex"
)

func intValue(bits uint64) *dex.EncodedValue {
	return dex.NewEncodedValue(dex.ValueInt, bits)
}

func staticFinal(cls *dex.Class, name string, typ dex.Type, value *dex.EncodedValue) *dex.Field {
	f := dex.NewField(dex.FieldRef{Class: cls.Name(), Name: name, Type: typ}, dex.AccPublic|dex.AccStatic|dex.AccFinal)
	f.SetStaticValue(value)
	cls.AddStaticField(f)
	return f
}

func fieldRef(f *dex.Field) dex.FieldRef {
	return f.Ref()
}

func addClinit(cls *dex.Class, insns ...*dex.Instruction) *dex.Method {
	m := dex.NewMethod(cls.Name(), dex.ClinitName, dex.AccStatic|dex.AccConstructor, dex.NewCode(insns...))
	cls.AddMethod(m)
	return m
}

func addMethod(cls *dex.Class, name string, insns ...*dex.Instruction) *dex.Method {
	m := dex.NewMethod(cls.Name(), name, dex.AccPublic, dex.NewCode(insns...))
	cls.AddMethod(m)
	return m
}

func newTestPass(p *dex.Program) *Pass {
	return NewPass(p, dex.NewRetentionRules(), DefaultConfig())
}

func mustRun(t *testing.T, pass *Pass) Summary {
	t.Helper()
	sum, err := pass.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return sum
}

func mustOpcodes(t *testing.T, m *dex.Method, want ...dex.Opcode) {
	t.Helper()
	insns := m.Code().Instructions()
	if len(insns) != len(want) {
		t.Fatalf("%s has %d instructions (%v), want %d", m, len(insns), insns, len(want))
	}
	for i, insn := range insns {
		if insn.Op() != want[i] {
			t.Fatalf("%s insn %d = %s, want %s", m, i, insn.Op(), want[i])
		}
	}
}

func mustValueBits(t *testing.T, f *dex.Field, bits uint64) {
	t.Helper()
	v := f.StaticValue()
	if v == nil {
		t.Fatalf("field %s has no static value, want bits 0x%x", f, bits)
	}
	if v.Bits() != bits {
		t.Fatalf("field %s value bits = 0x%x, want 0x%x", f, v.Bits(), bits)
	}
}
