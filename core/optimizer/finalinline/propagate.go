package finalinline

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/Briagont/redex/core/dex"
	"github.com/Briagont/redex/core/optimizer/propagation"
)

// fieldDependency records that resolving a source field enables resolving
// dst: the owning initializer copies the source's value into dst through the
// exact get/put instruction pair referenced here. Edges are consumed exactly
// once during resolution and never persisted.
type fieldDependency struct {
	clinit *dex.Method
	get    *dex.Instruction
	put    *dex.Instruction
	dst    *dex.Field
}

// narrowStaticGet reports whether insn is a static read the propagator can
// handle. Wide reads are counted via onUnhandled; object reads are simply
// not candidates.
func narrowStaticGet(insn *dex.Instruction, onUnhandled func()) bool {
	switch insn.Op() {
	case dex.OpSgetWide:
		if onUnhandled != nil {
			onUnhandled()
		}
		return false
	case dex.OpSget, dex.OpSgetBoolean, dex.OpSgetByte, dex.OpSgetChar, dex.OpSgetShort:
		return true
	}
	return false
}

// sourceRegisterReused scans forward from the instruction pair to the end of
// the initializer. Overwriting the pair register before any further read
// means the pair can be deleted safely; a read first means some later
// instruction still needs the value and the pair must stay.
func sourceRegisterReused(insns []*dex.Instruction, after int, reg dex.RegID) bool {
	for j := after; j < len(insns); j++ {
		insn := insns[j]
		if insn.HasDest() && insn.Dest() == reg {
			return false
		}
		for _, src := range insn.Srcs() {
			if src == reg {
				return true
			}
		}
	}
	return false
}

// buildFieldDependencies constructs the dependency graph from every class
// initializer: a narrow static read of a static final field immediately
// followed by a static write to an own static final field through the same
// register, with the register not needed afterwards. Malformed pairs are
// missed opportunities, not errors.
func buildFieldDependencies(p *dex.Program, onUnhandled func()) *propagation.Graph[*dex.Field, fieldDependency] {
	deps := propagation.NewGraph[*dex.Field, fieldDependency]()
	for _, cls := range p.Classes() {
		clinit := cls.Clinit()
		if clinit == nil || clinit.Code() == nil {
			continue
		}
		insns := clinit.Code().Instructions()
		for i := 0; i+1 < len(insns); i++ {
			get := insns[i]
			if get.Field() == nil || !narrowStaticGet(get, onUnhandled) {
				continue
			}
			src := p.ResolveField(*get.Field())
			if src == nil || !src.Access().HasAll(dex.AccStatic|dex.AccFinal) {
				continue
			}

			put := insns[i+1]
			if !validPutForValue(p, cls, put) {
				continue
			}
			dst := p.ResolveField(*put.Field())
			if !dst.Access().HasAll(dex.AccStatic | dex.AccFinal) {
				continue
			}

			// Direct pass-through only: the read's destination must feed the
			// write with no intervening transformation.
			if get.Dest() != put.Src(0) {
				continue
			}

			if sourceRegisterReused(insns, i+2, get.Dest()) {
				log.Trace("cannot propagate: source register reused",
					"src", src, "dst", dst, "clinit", clinit)
				continue
			}

			log.Trace("field dependency found", "dst", dst, "src", src)
			deps.Add(src, fieldDependency{clinit: clinit, get: get, put: put, dst: dst})
		}
	}
	return deps
}

// propagateStaticFinals resolves constants along initializer-to-initializer
// dependency chains. Seeds are the blank static finals: fields never assigned
// at runtime, whose declared static value is therefore already known.
func (pass *Pass) propagateStaticFinals() (int, error) {
	p := pass.program

	log.Debug("building field dependency map")
	deps := buildFieldDependencies(p, func() { pass.unhandledInline++ })

	var seeds []*dex.Field
	for _, cls := range p.Classes() {
		assigned, err := runtimeAssignedStatics(p, cls)
		if err != nil {
			return 0, err
		}
		for _, field := range cls.StaticFields() {
			if !field.Access().HasAll(dex.AccStatic|dex.AccFinal) || assigned[field] {
				continue
			}
			seeds = append(seeds, field)
		}
	}

	resolved := deps.Resolve(seeds, func(src *dex.Field, dep fieldDependency) *dex.Field {
		dep.dst.MakeConcrete(dep.dst.Access(), src.StaticValue().Clone())
		dep.clinit.Code().Remove(dep.get)
		dep.clinit.Code().Remove(dep.put)
		log.Trace("resolved field", "field", dep.dst, "from", src)
		return dep.dst
	})

	log.Debug("static finals resolved via constant propagation", "resolved", resolved)
	return resolved, nil
}
