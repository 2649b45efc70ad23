package finalinline

import (
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Briagont/redex/core/dex"
)

// keepMember reports whether the field's bare name is on the configured keep
// list. Matching ignores the owning class.
func keepMember(keep []string, field *dex.Field) bool {
	for _, name := range keep {
		if name == field.Name() {
			return true
		}
	}
	return false
}

// forceRemovable reports whether the class name contains any configured
// remove fragment, making its fields eligible for removal even when the
// class itself is not deletable.
func forceRemovable(fragments []string, cls *dex.Class) bool {
	for _, fragment := range fragments {
		if strings.Contains(cls.Name(), fragment) {
			return true
		}
	}
	return false
}

// referencedFieldDefs resolves every field reference in the program to its
// concrete definition and returns the set of definitions actually touched by
// any instruction, read or write.
func referencedFieldDefs(p *dex.Program) map[*dex.Field]bool {
	defs := make(map[*dex.Field]bool)
	dex.WalkInstructions(p, func(_ *dex.Method, insn *dex.Instruction) {
		if insn.Field() == nil {
			return
		}
		field := p.ResolveField(*insn.Field())
		if field == nil || !field.IsConcrete() {
			return
		}
		defs[field] = true
	})
	return defs
}

// removeUnusedFields deletes static final fields that are no longer
// referenced anywhere after inlining. Removal is gated per class by the
// deletability oracle and the force-remove fragments; individually deletable
// fields pass the gate on their own. Keep-listed names are never removed.
func (pass *Pass) removeUnusedFields() error {
	p := pass.program

	var movable []*dex.Field
	owner := make(map[*dex.Field]*dex.Class)
	for _, cls := range p.Classes() {
		classRemovable := pass.retention.CanDeleteClass(cls) || forceRemovable(pass.cfg.RemoveClassMembers, cls)
		if !classRemovable {
			log.Debug("class not deletable, fields gated individually", "class", cls.Name())
		}
		for _, field := range cls.StaticFields() {
			if keepMember(pass.cfg.KeepClassMembers, field) {
				continue
			}
			if !field.Access().HasAll(dex.AccStatic | dex.AccFinal) {
				continue
			}
			if field.StaticValue() == nil && !field.Type().IsPrimitive() {
				continue
			}
			if !classRemovable && !pass.retention.CanDeleteField(field) {
				continue
			}
			movable = append(movable, field)
			owner[field] = cls
		}
	}

	referenced := referencedFieldDefs(p)
	dead := make(map[*dex.Field]bool)
	for _, field := range movable {
		if !referenced[field] {
			dead[field] = true
		}
	}
	log.Debug("removable fields", "dead", len(dead), "candidates", len(movable))
	log.Debug("unhandled inline reads", "count", pass.unhandledInline)

	removed := 0
	seen := make(map[*dex.Class]bool)
	for _, field := range movable {
		cls := owner[field]
		if !dead[field] || seen[cls] {
			continue
		}
		seen[cls] = true
		removed += cls.RemoveStaticFields(dead)
	}
	if removed > 0 {
		p.ResetResolutionCache()
	}
	return nil
}
