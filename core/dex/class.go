package dex

import "fmt"

// ClinitName is the reserved name of the class initializer method.
const ClinitName = "<clinit>"

// FieldRef is a symbolic reference to a field: owning class descriptor, name
// and type. It is comparable and used as the resolution cache key.
type FieldRef struct {
	Class string
	Name  string
	Type  Type
}

func (r FieldRef) String() string {
	return fmt.Sprintf("%s->%s:%s", r.Class, r.Name, r.Type)
}

// Field is a field definition. A Field with concrete=true is known by
// definition, not just by reference; only concrete fields carry a static value.
type Field struct {
	ref      FieldRef
	access   AccessFlags
	value    *EncodedValue
	concrete bool
}

func NewField(ref FieldRef, access AccessFlags) *Field {
	return &Field{ref: ref, access: access, concrete: true}
}

func (f *Field) Ref() FieldRef {
	return f.ref
}

func (f *Field) Name() string {
	return f.ref.Name
}

func (f *Field) Class() string {
	return f.ref.Class
}

func (f *Field) Type() Type {
	return f.ref.Type
}

func (f *Field) Access() AccessFlags {
	return f.access
}

// StaticValue returns the attached constant payload, or nil when the field
// has no compile-time value.
func (f *Field) StaticValue() *EncodedValue {
	return f.value
}

func (f *Field) SetStaticValue(v *EncodedValue) {
	f.value = v
}

func (f *Field) IsConcrete() bool {
	return f.concrete
}

// MakeConcrete attaches a static value under the given access flags and marks
// the definition concrete. value may be nil for a blank field.
func (f *Field) MakeConcrete(access AccessFlags, value *EncodedValue) {
	f.access = access
	f.value = value
	f.concrete = true
}

func (f *Field) String() string {
	return f.ref.String()
}

// Method is a method definition with its owned instruction sequence.
// code is nil for abstract/native methods.
type Method struct {
	class  string
	name   string
	access AccessFlags
	code   *Code
}

func NewMethod(class, name string, access AccessFlags, code *Code) *Method {
	return &Method{class: class, name: name, access: access, code: code}
}

func (m *Method) Class() string {
	return m.class
}

func (m *Method) Name() string {
	return m.name
}

func (m *Method) Access() AccessFlags {
	return m.access
}

func (m *Method) Code() *Code {
	return m.code
}

func (m *Method) String() string {
	return m.class + "->" + m.name
}

// Class owns an ordered collection of fields and methods. At most one method
// is the class initializer, looked up by name.
type Class struct {
	name      string
	superName string
	access    AccessFlags
	sfields   []*Field
	ifields   []*Field
	methods   []*Method
}

func NewClass(name, superName string, access AccessFlags) *Class {
	return &Class{name: name, superName: superName, access: access}
}

func (c *Class) Name() string {
	return c.name
}

func (c *Class) Super() string {
	return c.superName
}

func (c *Class) Access() AccessFlags {
	return c.access
}

func (c *Class) StaticFields() []*Field {
	return c.sfields
}

func (c *Class) InstanceFields() []*Field {
	return c.ifields
}

func (c *Class) Methods() []*Method {
	return c.methods
}

func (c *Class) AddStaticField(f *Field) {
	c.sfields = append(c.sfields, f)
}

func (c *Class) AddInstanceField(f *Field) {
	c.ifields = append(c.ifields, f)
}

func (c *Class) AddMethod(m *Method) {
	c.methods = append(c.methods, m)
}

// Clinit returns the class initializer, or nil when the class has none.
func (c *Class) Clinit() *Method {
	for _, m := range c.methods {
		if m.name == ClinitName {
			return m
		}
	}
	return nil
}

// RemoveMethod deletes m from the class, preserving method order.
func (c *Class) RemoveMethod(m *Method) bool {
	for i, cur := range c.methods {
		if cur == m {
			c.methods = append(c.methods[:i], c.methods[i+1:]...)
			return true
		}
	}
	return false
}

// FindStaticField looks up an own static field by name and type.
func (c *Class) FindStaticField(name string, t Type) *Field {
	for _, f := range c.sfields {
		if f.ref.Name == name && f.ref.Type == t {
			return f
		}
	}
	return nil
}

// RemoveStaticFields deletes every field in dead from the class's static
// field list and returns how many entries were removed.
func (c *Class) RemoveStaticFields(dead map[*Field]bool) int {
	kept := c.sfields[:0]
	removed := 0
	for _, f := range c.sfields {
		if dead[f] {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	c.sfields = kept
	return removed
}
