package typegraph

import (
	"fmt"
	"sort"
)

// Visibility is a declared access level.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPackage   Visibility = "package"
	VisibilityPrivate   Visibility = "private"
)

// IsPublic reports whether v is public.
func (v Visibility) IsPublic() bool {
	return v == VisibilityPublic
}

// IsPublicOrProtected reports whether v is visible outside the package.
func (v Visibility) IsPublicOrProtected() bool {
	return v == VisibilityPublic || v == VisibilityProtected
}

// ParseVisibility converts a modifier keyword. An empty string means
// package-private.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityProtected, VisibilityPrivate, VisibilityPackage:
		return Visibility(s), nil
	case "":
		return VisibilityPackage, nil
	default:
		return "", fmt.Errorf("unknown visibility %q", s)
	}
}

// ClassKind distinguishes the declaration forms of a type.
type ClassKind string

const (
	KindClass      ClassKind = "class"
	KindInterface  ClassKind = "interface"
	KindEnum       ClassKind = "enum"
	KindRecord     ClassKind = "record"
	KindAnnotation ClassKind = "annotation"
)

// MemberKind distinguishes fields, methods and constructors.
type MemberKind string

const (
	MemberField       MemberKind = "field"
	MemberMethod      MemberKind = "method"
	MemberConstructor MemberKind = "constructor"
)

// ConstructorName is the member name used for constructors.
const ConstructorName = "<init>"

// ClassDecl is the builder input for one class node.
type ClassDecl struct {
	Name         string       `yaml:"name"`
	Package      string       `yaml:"package"`
	Kind         ClassKind    `yaml:"kind"`
	Visibility   Visibility   `yaml:"visibility"`
	Final        bool         `yaml:"final,omitempty"`
	Abstract     bool         `yaml:"abstract,omitempty"`
	Static       bool         `yaml:"static,omitempty"`
	Enclosing    string       `yaml:"enclosing,omitempty"`
	Superclass   string       `yaml:"superclass,omitempty"`
	Interfaces   []string     `yaml:"interfaces,omitempty"`
	Fields       []FieldDecl  `yaml:"fields,omitempty"`
	Methods      []MethodDecl `yaml:"methods,omitempty"`
	Constructors []MethodDecl `yaml:"constructors,omitempty"`
}

// FieldDecl is the builder input for one field.
type FieldDecl struct {
	Name       string     `yaml:"name"`
	Visibility Visibility `yaml:"visibility"`
	Static     bool       `yaml:"static,omitempty"`
	Final      bool       `yaml:"final,omitempty"`
	Type       Type       `yaml:"type"`
}

// MethodDecl is the builder input for one method or constructor.
type MethodDecl struct {
	Name       string     `yaml:"name"`
	Visibility Visibility `yaml:"visibility"`
	Static     bool       `yaml:"static,omitempty"`
	Final      bool       `yaml:"final,omitempty"`
	Abstract   bool       `yaml:"abstract,omitempty"`
	Params     []Type     `yaml:"params,omitempty"`
	Returns    Type       `yaml:"returns,omitempty"`
	Throws     []Type     `yaml:"throws,omitempty"`
}

// Class is one immutable class node of a Graph.
type Class struct {
	graph        *Graph
	decl         ClassDecl
	fields       []*Field
	methods      []*Method
	constructors []*Method
}

func (c *Class) Graph() *Graph { return c.graph }
func (c *Class) QualifiedName() string { return c.decl.Name }
func (c *Class) Package() string { return c.decl.Package }
func (c *Class) Kind() ClassKind { return c.decl.Kind }
func (c *Class) Visibility() Visibility { return c.decl.Visibility }
func (c *Class) IsFinal() bool { return c.decl.Final }
func (c *Class) IsStatic() bool { return c.decl.Static }
func (c *Class) IsMemberType() bool { return c.decl.Enclosing != "" }
func (c *Class) Fields() []*Field { return c.fields }
func (c *Class) Methods() []*Method { return c.methods }
func (c *Class) Constructors() []*Method { return c.constructors }
func (c *Class) Superclass() string { return c.decl.Superclass }
func (c *Class) Interfaces() []string { return c.decl.Interfaces }
func (c *Class) Type() Type { return NewType(c.decl.Name) }
func (c *Class) String() string { return c.decl.Name }

// IsInterface reports whether the class is an interface or annotation type.
func (c *Class) IsInterface() bool {
	return c.decl.Kind == KindInterface || c.decl.Kind == KindAnnotation
}

// IsAbstract reports whether the class is abstract. Interfaces are abstract.
func (c *Class) IsAbstract() bool {
	return c.decl.Abstract || c.IsInterface()
}

// EnclosingType returns the class that declares c, if c is nested and the
// enclosing class is part of the same graph.
func (c *Class) EnclosingType() (*Class, bool) {
	if c.decl.Enclosing == "" {
		return nil, false
	}
	return c.graph.Resolve(c.decl.Enclosing)
}

// Subtypes returns every class of the graph that directly or transitively
// extends or implements c, ordered by qualified name.
func (c *Class) Subtypes() []*Class {
	return c.graph.subtypesOf(c.decl.Name)
}

// Decl returns a copy of the declaration the class was built from.
func (c *Class) Decl() ClassDecl {
	return c.graph.copyDecl(c.decl)
}

// Field is one field of a class.
type Field struct {
	owner *Class
	decl  FieldDecl
}

func (f *Field) Owner() *Class { return f.owner }
func (f *Field) Name() string { return f.decl.Name }
func (f *Field) Visibility() Visibility { return f.decl.Visibility }
func (f *Field) IsStatic() bool { return f.decl.Static }
func (f *Field) IsFinal() bool { return f.decl.Final }
func (f *Field) Type() Type { return f.decl.Type }

// Method is one method or constructor of a class.
type Method struct {
	owner *Class
	kind  MemberKind
	decl  MethodDecl
}

func (m *Method) Owner() *Class { return m.owner }
func (m *Method) Kind() MemberKind { return m.kind }
func (m *Method) Name() string { return m.decl.Name }
func (m *Method) Visibility() Visibility { return m.decl.Visibility }
func (m *Method) IsStatic() bool { return m.decl.Static }
func (m *Method) IsFinal() bool { return m.decl.Final }
func (m *Method) IsAbstract() bool { return m.decl.Abstract }
func (m *Method) Params() []Type { return m.decl.Params }
func (m *Method) ReturnType() Type { return m.decl.Returns }
func (m *Method) Throws() []Type { return m.decl.Throws }

// Signature renders name and parameter descriptor, e.g. "foo(ILjava/lang/String;)".
func (m *Method) Signature() string {
	return m.decl.Name + ParamsDescriptor(m.decl.Params)
}

func sortFields(fields []*Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].decl.Name < fields[j].decl.Name
	})
}

func sortMethods(methods []*Method) {
	sort.SliceStable(methods, func(i, j int) bool {
		return methods[i].Signature() < methods[j].Signature()
	})
}
