package dex

import (
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/ethereum/go-ethereum/log"
)

// resolveCacheSize bounds the field resolution memo. Whole-program scans
// resolve the same handful of references over and over; the cache only needs
// to cover the hot set, not the program.
const resolveCacheSize = 4096

// Program is the shared, mutable whole-program object graph every
// optimization phase operates on. Each run constructs and threads its own
// Program; there is no process-wide instance.
type Program struct {
	classes []*Class
	byName  map[string]*Class

	resolved *lru.Cache[FieldRef, *Field]
}

func NewProgram(classes ...*Class) *Program {
	p := &Program{
		byName:   make(map[string]*Class, len(classes)),
		resolved: lru.NewCache[FieldRef, *Field](resolveCacheSize),
	}
	for _, c := range classes {
		p.AddClass(c)
	}
	return p
}

// Classes returns every class in deterministic load order.
func (p *Program) Classes() []*Class {
	return p.classes
}

func (p *Program) Class(name string) *Class {
	return p.byName[name]
}

func (p *Program) AddClass(c *Class) {
	if _, dup := p.byName[c.name]; dup {
		log.Warn("duplicate class definition ignored", "class", c.name)
		return
	}
	p.classes = append(p.classes, c)
	p.byName[c.name] = c
}

// ResolveField resolves a symbolic field reference to its concrete definition
// by searching the referenced class and then its superclass chain, statics
// before instance fields. It never mutates the graph and returns nil for
// references that do not resolve inside this program.
func (p *Program) ResolveField(ref FieldRef) *Field {
	if f, ok := p.resolved.Get(ref); ok {
		return f
	}
	f := p.resolveFieldSlow(ref)
	p.resolved.Add(ref, f)
	return f
}

func (p *Program) resolveFieldSlow(ref FieldRef) *Field {
	for name := ref.Class; name != ""; {
		cls := p.byName[name]
		if cls == nil {
			log.Trace("field reference escapes program", "ref", ref, "missing", name)
			return nil
		}
		if f := cls.FindStaticField(ref.Name, ref.Type); f != nil {
			return f
		}
		for _, f := range cls.ifields {
			if f.ref.Name == ref.Name && f.ref.Type == ref.Type {
				return f
			}
		}
		name = cls.superName
	}
	return nil
}

// ResetResolutionCache drops memoized resolutions. Must be called after any
// structural field mutation (definition removal) so stale definitions cannot
// be handed out.
func (p *Program) ResetResolutionCache() {
	p.resolved.Purge()
}

// WalkMethods visits every method of every class in deterministic order.
func WalkMethods(p *Program, fn func(*Class, *Method)) {
	for _, cls := range p.classes {
		for _, m := range cls.methods {
			fn(cls, m)
		}
	}
}

// WalkInstructions visits every instruction of every method with a body,
// in deterministic program order.
func WalkInstructions(p *Program, fn func(*Method, *Instruction)) {
	WalkMethods(p, func(_ *Class, m *Method) {
		if m.code == nil {
			return
		}
		for _, insn := range m.code.insns {
			fn(m, insn)
		}
	})
}
