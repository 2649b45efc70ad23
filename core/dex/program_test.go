package dex

import "testing"

func newTestField(class, name string, typ Type, flags AccessFlags) *Field {
	return NewField(FieldRef{Class: class, Name: name, Type: typ}, flags)
}

func TestResolveField_WalksSuperclassChain(t *testing.T) {
	base := NewClass("LBase;", "", AccPublic)
	baseField := newTestField("LBase;", "X", TypeInt, AccStatic|AccFinal)
	base.AddStaticField(baseField)

	derived := NewClass("LDerived;", "LBase;", AccPublic)
	p := NewProgram(base, derived)

	got := p.ResolveField(FieldRef{Class: "LDerived;", Name: "X", Type: TypeInt})
	if got != baseField {
		t.Fatalf("ResolveField via subclass = %v, want base definition", got)
	}
}

func TestResolveField_UnresolvedReturnsNil(t *testing.T) {
	p := NewProgram(NewClass("LOnly;", "", AccPublic))
	if f := p.ResolveField(FieldRef{Class: "LMissing;", Name: "X", Type: TypeInt}); f != nil {
		t.Fatalf("expected nil for reference into missing class, got %v", f)
	}
	if f := p.ResolveField(FieldRef{Class: "LOnly;", Name: "NOPE", Type: TypeInt}); f != nil {
		t.Fatalf("expected nil for missing field, got %v", f)
	}
}

func TestResolveField_TypeMustMatch(t *testing.T) {
	cls := NewClass("LC;", "", AccPublic)
	cls.AddStaticField(newTestField("LC;", "X", TypeInt, AccStatic))
	p := NewProgram(cls)

	if f := p.ResolveField(FieldRef{Class: "LC;", Name: "X", Type: TypeLong}); f != nil {
		t.Fatalf("resolution must match the full reference including type, got %v", f)
	}
}

func TestResolveField_CacheResetAfterRemoval(t *testing.T) {
	cls := NewClass("LC;", "", AccPublic)
	field := newTestField("LC;", "X", TypeInt, AccStatic|AccFinal)
	cls.AddStaticField(field)
	p := NewProgram(cls)

	ref := FieldRef{Class: "LC;", Name: "X", Type: TypeInt}
	if p.ResolveField(ref) != field {
		t.Fatalf("expected resolution before removal")
	}

	cls.RemoveStaticFields(map[*Field]bool{field: true})
	p.ResetResolutionCache()
	if f := p.ResolveField(ref); f != nil {
		t.Fatalf("stale definition handed out after removal: %v", f)
	}
}

func TestCode_ReplaceAndRemove(t *testing.T) {
	a := NewConst(OpConst16, 0, 1)
	b := NewReturnVoid()
	code := NewCode(a, b)

	c := NewConst(OpConst, 0, 2)
	if !code.Replace(a, c) {
		t.Fatalf("Replace failed for present instruction")
	}
	if code.Instructions()[0] != c {
		t.Fatalf("Replace did not keep position")
	}
	if code.Replace(a, c) {
		t.Fatalf("Replace of absent instruction should fail")
	}

	if !code.Remove(c) {
		t.Fatalf("Remove failed for present instruction")
	}
	if code.Len() != 1 || code.Instructions()[0] != b {
		t.Fatalf("Remove did not preserve remaining order: %v", code.Instructions())
	}
}

func TestClass_ClinitLookupAndRemoval(t *testing.T) {
	cls := NewClass("LC;", "", AccPublic)
	init := NewMethod("LC;", ClinitName, AccStatic|AccConstructor, NewCode(NewReturnVoid()))
	other := NewMethod("LC;", "work", AccPublic, NewCode(NewReturnVoid()))
	cls.AddMethod(other)
	cls.AddMethod(init)

	if cls.Clinit() != init {
		t.Fatalf("Clinit lookup failed")
	}
	if !cls.RemoveMethod(init) {
		t.Fatalf("RemoveMethod failed")
	}
	if cls.Clinit() != nil {
		t.Fatalf("Clinit should be gone after removal")
	}
	if len(cls.Methods()) != 1 || cls.Methods()[0] != other {
		t.Fatalf("unrelated methods must survive removal")
	}
}

func TestWalkInstructions_DeterministicOrder(t *testing.T) {
	c1 := NewClass("LA;", "", AccPublic)
	c1.AddMethod(NewMethod("LA;", "m", AccPublic, NewCode(
		NewConst(OpConst16, 0, 1),
		NewReturnVoid(),
	)))
	c2 := NewClass("LB;", "", AccPublic)
	c2.AddMethod(NewMethod("LB;", "m", AccPublic, NewCode(NewReturnVoid())))
	p := NewProgram(c1, c2)

	var seen []string
	WalkInstructions(p, func(m *Method, insn *Instruction) {
		seen = append(seen, m.Class()+" "+insn.Op().String())
	})
	want := []string{"LA; const/16", "LA; return-void", "LB; return-void"}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("visit order differs at %d: %v, want %v", i, seen, want)
		}
	}
}

func TestRetentionRules(t *testing.T) {
	unconfigured := &RetentionRules{}
	if unconfigured.HasKeepRules() {
		t.Fatalf("zero-value rules must report no keep configuration")
	}

	rules := NewRetentionRules()
	if !rules.HasKeepRules() {
		t.Fatalf("constructed rules must report keep configuration")
	}

	keepCls := NewClass("LKeep;", "", AccPublic)
	freeCls := NewClass("LFree;", "", AccPublic)
	rules.KeepClass("LKeep;")

	if rules.CanDeleteClass(keepCls) {
		t.Fatalf("kept class reported deletable")
	}
	if !rules.CanDeleteClass(freeCls) {
		t.Fatalf("unkept class reported undeletable")
	}

	keptField := newTestField("LKeep;", "X", TypeInt, AccStatic)
	if rules.CanDeleteField(keptField) {
		t.Fatalf("field of kept class reported deletable")
	}

	pinned := newTestField("LFree;", "PIN", TypeInt, AccStatic)
	rules.KeepField(pinned.Ref())
	if rules.CanDeleteField(pinned) {
		t.Fatalf("kept field reported deletable")
	}
	if !rules.CanDeleteField(newTestField("LFree;", "Y", TypeInt, AccStatic)) {
		t.Fatalf("free field reported undeletable")
	}
}
