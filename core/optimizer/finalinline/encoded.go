package finalinline

import (
	"errors"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Briagont/redex/core/dex"
)

// validConstForValue reports whether the literal in a constant load can be
// carried over into an encoded value. Wide and high-16 forms are not
// convertible; neither are string or object constants.
func validConstForValue(insn *dex.Instruction) bool {
	switch insn.Op() {
	case dex.OpConst4, dex.OpConst16, dex.OpConst:
		return true
	}
	return false
}

// validPutForValue reports whether a static write targets a field that can
// take an encoded value: the reference must resolve and the definition must
// belong to the class under conversion.
func validPutForValue(p *dex.Program, cls *dex.Class, insn *dex.Instruction) bool {
	if insn.Field() == nil || !insn.Op().IsStaticPut() {
		return false
	}
	field := p.ResolveField(*insn.Field())
	return field != nil && field.Class() == cls.Name()
}

type constPut struct {
	load *dex.Instruction
	put  *dex.Instruction
}

// tryReplaceClinit converts an initializer that is exactly alternating
// (const load, static write to self) pairs terminated by return-void into
// encoded values on the written fields, then deletes the initializer.
// Validation is all-or-nothing: any deviation rejects the class unchanged.
func tryReplaceClinit(p *dex.Program, cls *dex.Class, clinit *dex.Method) (bool, error) {
	if clinit.Code() == nil {
		return false, nil
	}
	insns := clinit.Code().Instructions()

	var pairs []constPut
	for i := 0; i < len(insns); i += 2 {
		first := insns[i]
		if i+1 == len(insns) {
			if first.Op() != dex.OpReturnVoid {
				return false, nil
			}
			break
		}
		put := insns[i+1]
		if !validConstForValue(first) || !validPutForValue(p, cls, put) || first.Dest() != put.Src(0) {
			return false, nil
		}
		pairs = append(pairs, constPut{load: first, put: put})
	}

	// Compute every encoded value before touching the graph, so a rejection
	// halfway through cannot leave the class partially converted.
	values := make([]*dex.EncodedValue, len(pairs))
	fields := make([]*dex.Field, len(pairs))
	for i, pair := range pairs {
		field := p.ResolveField(*pair.put.Field())
		ev, err := dex.ZeroValueForType(field.Type())
		if err != nil {
			var unsupported *dex.UnsupportedEncodingError
			if errors.As(err, &unsupported) {
				log.Trace("initializer not convertible", "class", cls.Name(), "field", field, "reason", err)
				return false, nil
			}
			return false, err
		}
		ev.SetBits(uint64(pair.load.Literal()))
		values[i] = ev
		fields[i] = field
	}
	for i, field := range fields {
		field.MakeConcrete(field.Access(), values[i])
	}
	cls.RemoveMethod(clinit)
	return true, nil
}

// replaceEncodableClinits runs the direct encoded-value conversion over every
// class and returns how many initializers were replaced.
func (pass *Pass) replaceEncodableClinits() (int, error) {
	replaced, total := 0, 0
	for _, cls := range pass.program.Classes() {
		clinit := cls.Clinit()
		if clinit == nil {
			continue
		}
		total++
		ok, err := tryReplaceClinit(pass.program, cls, clinit)
		if err != nil {
			return replaced, err
		}
		if ok {
			log.Debug("replaced class initializer with encoded values", "class", cls.Name())
			replaced++
		}
	}
	log.Debug("encoded-value conversion finished", "replaced", replaced, "initializers", total)
	return replaced, nil
}
