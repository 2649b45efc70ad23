package finalinline

import (
	"fmt"

	"github.com/Briagont/redex/core/dex"
)

// runtimeAssignedStatics reports which of the class's own static fields
// receive a value inside its initializer. There is no direct way to tell a
// blank final from one assigned at runtime, so the initializer's instruction
// sequence is scanned for static writes. Fields absent from the map are
// compile-time constant candidates.
//
// An initializer without the static and constructor access bits is a
// model-consistency violation and aborts the pass.
func runtimeAssignedStatics(p *dex.Program, cls *dex.Class) (map[*dex.Field]bool, error) {
	assigned := make(map[*dex.Field]bool)
	clinit := cls.Clinit()
	if clinit == nil {
		return assigned, nil
	}
	if !clinit.Access().IsStatic() || !clinit.Access().IsConstructor() {
		return nil, fmt.Errorf("class initializer %s does not have the static|constructor access bits set", clinit)
	}
	if clinit.Code() == nil {
		return assigned, nil
	}
	for _, insn := range clinit.Code().Instructions() {
		if insn.Field() == nil || !insn.Op().IsStaticPut() {
			continue
		}
		field := p.ResolveField(*insn.Field())
		if field == nil || !field.IsConcrete() {
			continue
		}
		if field.Class() != cls.Name() {
			continue
		}
		assigned[field] = true
	}
	return assigned, nil
}
