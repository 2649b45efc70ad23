package dex

// Retention is the external deletability oracle. The optimizer never decides
// on its own whether a symbol may disappear; it asks this interface, which is
// backed by the surrounding pipeline's keep-rule configuration.
type Retention interface {
	// HasKeepRules reports whether any retention configuration was supplied.
	// Without one the oracle cannot be trusted and destructive passes must
	// decline to run.
	HasKeepRules() bool
	CanDeleteClass(c *Class) bool
	CanDeleteField(f *Field) bool
}

// RetentionRules is a rule-list Retention used by tools and tests: symbols
// are deletable unless explicitly kept.
type RetentionRules struct {
	configured  bool
	keepClasses map[string]bool
	keepFields  map[FieldRef]bool
}

func NewRetentionRules() *RetentionRules {
	return &RetentionRules{
		configured:  true,
		keepClasses: make(map[string]bool),
		keepFields:  make(map[FieldRef]bool),
	}
}

func (r *RetentionRules) KeepClass(name string) {
	r.keepClasses[name] = true
}

func (r *RetentionRules) KeepField(ref FieldRef) {
	r.keepFields[ref] = true
}

func (r *RetentionRules) HasKeepRules() bool {
	return r != nil && r.configured
}

func (r *RetentionRules) CanDeleteClass(c *Class) bool {
	return !r.keepClasses[c.Name()]
}

func (r *RetentionRules) CanDeleteField(f *Field) bool {
	if r.keepClasses[f.Class()] {
		return false
	}
	return !r.keepFields[f.Ref()]
}
