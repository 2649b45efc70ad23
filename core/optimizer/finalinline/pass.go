// Package finalinline inlines the values of static final fields across a
// whole program: class initializers that only assign constants are converted
// into encoded static values, constants are propagated along cross-class
// initializer dependency chains, every read of a resolved field is rewritten
// into a constant load, and fields that end up unread are deleted.
package finalinline

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/Briagont/redex/core/dex"
)

var (
	clinitsReplacedCounter      = metrics.NewRegisteredCounter("finalinline/clinits_replaced", nil)
	staticFinalsResolvedCounter = metrics.NewRegisteredCounter("finalinline/static_finals_resolved", nil)
	unhandledInlineCounter      = metrics.NewRegisteredCounter("finalinline/unhandled_inline", nil)
)

// Summary reports what a run changed.
type Summary struct {
	ClinitsReplaced      int
	StaticFinalsResolved int
	UnhandledInline      int
}

// Pass is one invocation of the optimizer over a single program graph.
// It is single-threaded; the phase order is mandatory because each phase's
// precondition depends on the mutations of the previous one.
type Pass struct {
	cfg       Config
	program   *dex.Program
	retention dex.Retention

	// Wide static reads cannot be inlined; counted for visibility only.
	unhandledInline int
}

func NewPass(program *dex.Program, retention dex.Retention, cfg Config) *Pass {
	return &Pass{cfg: cfg, program: program, retention: retention}
}

// Run executes the full phase sequence: encoded-value conversion, cross-class
// propagation, a second conversion run (propagation may unlock initializers
// the first run rejected), field value inlining, dead field removal.
// Without retention configuration the deletability oracle cannot be trusted
// and the whole pass is a no-op.
func (pass *Pass) Run() (Summary, error) {
	var sum Summary
	if !pass.retention.HasKeepRules() {
		log.Info("final inline pass not run: no retention configuration was provided")
		return sum, nil
	}

	if pass.cfg.ReplaceEncodableClinits {
		n, err := pass.replaceEncodableClinits()
		if err != nil {
			return sum, err
		}
		sum.ClinitsReplaced += n
	}

	if pass.cfg.PropagateStaticFinals {
		n, err := pass.propagateStaticFinals()
		if err != nil {
			return sum, err
		}
		sum.StaticFinalsResolved = n
	}

	// Propagation may resolve statics that were initialized via the class
	// initializer, opening up another round of conversions.
	if pass.cfg.ReplaceEncodableClinits && pass.cfg.PropagateStaticFinals {
		n, err := pass.replaceEncodableClinits()
		if err != nil {
			return sum, err
		}
		sum.ClinitsReplaced += n
	}

	if err := pass.inlineFieldValues(); err != nil {
		return sum, err
	}
	if err := pass.removeUnusedFields(); err != nil {
		return sum, err
	}

	sum.UnhandledInline = pass.unhandledInline
	clinitsReplacedCounter.Inc(int64(sum.ClinitsReplaced))
	staticFinalsResolvedCounter.Inc(int64(sum.StaticFinalsResolved))
	unhandledInlineCounter.Inc(int64(sum.UnhandledInline))
	return sum, nil
}
