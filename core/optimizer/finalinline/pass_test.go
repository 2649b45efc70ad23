package finalinline

import (
	"testing"

	"github.com/Briagont/redex/core/dex"
)

// buildChainProgram wires the canonical three-class shape: LA; declares a
// blank constant, LB;'s initializer copies it, LC; has a directly encodable
// initializer and a method that reads LB;'s copy.
func buildChainProgram(t *testing.T) (*dex.Program, *dex.Class, *dex.Class, *dex.Class, *dex.Method) {
	t.Helper()

	a := dex.NewClass("LA;", "", dex.AccPublic)
	aConst := staticFinal(a, "CONST", dex.TypeInt, intValue(3))

	b := dex.NewClass("LB;", "", dex.AccPublic)
	bConst := staticFinal(b, "CONST", dex.TypeInt, nil)
	addClinit(b,
		dex.NewStaticGet(dex.OpSget, 0, fieldRef(aConst)),
		dex.NewStaticPut(dex.OpSput, 0, fieldRef(bConst)),
		dex.NewReturnVoid(),
	)

	c := dex.NewClass("LC;", "", dex.AccPublic)
	cX := staticFinal(c, "X", dex.TypeInt, nil)
	addClinit(c,
		dex.NewConst(dex.OpConst16, 0, 7),
		dex.NewStaticPut(dex.OpSput, 0, fieldRef(cX)),
		dex.NewReturnVoid(),
	)
	reader := addMethod(c, "read",
		dex.NewStaticGet(dex.OpSget, 0, fieldRef(bConst)),
		dex.NewReturnVoid(),
	)

	return dex.NewProgram(a, b, c), a, b, c, reader
}

func TestRun_FullPhaseSequence(t *testing.T) {
	p, a, b, c, reader := buildChainProgram(t)

	sum := mustRun(t, newTestPass(p))

	// LC;'s initializer converts on the first round; LB;'s converts on the
	// second, once propagation has emptied it.
	if sum.ClinitsReplaced != 2 {
		t.Fatalf("ClinitsReplaced = %d, want 2", sum.ClinitsReplaced)
	}
	if sum.StaticFinalsResolved != 1 {
		t.Fatalf("StaticFinalsResolved = %d, want 1", sum.StaticFinalsResolved)
	}
	if sum.UnhandledInline != 0 {
		t.Fatalf("UnhandledInline = %d, want 0", sum.UnhandledInline)
	}

	if b.Clinit() != nil || c.Clinit() != nil {
		t.Fatalf("initializers must be gone after the run")
	}

	mustOpcodes(t, reader, dex.OpConst16, dex.OpReturnVoid)
	if got := reader.Code().Instructions()[0].Literal(); got != 3 {
		t.Fatalf("inlined literal = %d, want 3", got)
	}

	for _, cls := range []*dex.Class{a, b, c} {
		if n := len(cls.StaticFields()); n != 0 {
			t.Fatalf("%s still holds %d static fields after removal", cls.Name(), n)
		}
	}
}

func TestRun_IsIdempotent(t *testing.T) {
	p, _, _, _, reader := buildChainProgram(t)
	mustRun(t, newTestPass(p))

	sum := mustRun(t, newTestPass(p))
	if sum != (Summary{}) {
		t.Fatalf("second run must be a no-op, got %+v", sum)
	}
	mustOpcodes(t, reader, dex.OpConst16, dex.OpReturnVoid)
}

func TestRun_NoKeepRulesIsNoOp(t *testing.T) {
	p, a, b, c, reader := buildChainProgram(t)

	sum := mustRun(t, NewPass(p, &dex.RetentionRules{}, DefaultConfig()))
	if sum != (Summary{}) {
		t.Fatalf("run without retention rules must report nothing, got %+v", sum)
	}
	if b.Clinit() == nil || c.Clinit() == nil {
		t.Fatalf("program mutated despite missing retention rules")
	}
	mustOpcodes(t, reader, dex.OpSget, dex.OpReturnVoid)
	if len(a.StaticFields()) != 1 {
		t.Fatalf("fields deleted despite missing retention rules")
	}
}

func TestRun_DisabledTogglesSkipPhases(t *testing.T) {
	p, _, b, c, _ := buildChainProgram(t)

	cfg := DefaultConfig()
	cfg.ReplaceEncodableClinits = false
	cfg.PropagateStaticFinals = false

	sum := mustRun(t, NewPass(p, dex.NewRetentionRules(), cfg))
	if sum.ClinitsReplaced != 0 || sum.StaticFinalsResolved != 0 {
		t.Fatalf("disabled phases must not run, got %+v", sum)
	}
	if b.Clinit() == nil || c.Clinit() == nil {
		t.Fatalf("initializers converted despite disabled toggle")
	}
}

func TestRun_MalformedInitializerAborts(t *testing.T) {
	cls := dex.NewClass("LBad;", "", dex.AccPublic)
	staticFinal(cls, "X", dex.TypeInt, nil)
	// Wrong access bits and a body the conversion phase will not touch, so
	// the consistency check in the propagation phase sees it.
	cls.AddMethod(dex.NewMethod(cls.Name(), dex.ClinitName, dex.AccStatic, dex.NewCode(
		dex.NewInvokeStatic(),
		dex.NewReturnVoid(),
	)))

	p := dex.NewProgram(cls)
	if _, err := newTestPass(p).Run(); err == nil {
		t.Fatalf("initializer without static|constructor bits must abort the run")
	}
}
