// Package java builds type graphs from Java source files.
//
// Parsing happens in two passes. ParseFile turns one file into a
// CompilationUnit holding declarations exactly as written. Build then
// resolves type names across all units, applies the language's implicit
// modifiers and feeds the result to a typegraph.Builder.
package java

import "github.com/LegacyCodeHQ/apicheck/typegraph"

// CompilationUnit is one parsed source file.
type CompilationUnit struct {
	Path    string
	Package string
	Imports []Import
	Types   []*TypeDef
}

// Import is one import declaration.
type Import struct {
	Path     string
	Wildcard bool
	Static   bool
}

// TypeRef is a type as written in source, with generic arguments removed.
// Name may be a primitive keyword, a simple name or a dotted name.
type TypeRef struct {
	Name string
	Dims int
}

// IsZero reports whether no type was written.
func (r TypeRef) IsZero() bool {
	return r.Name == ""
}

// Modifiers are the modifier keywords present on a declaration. Access is
// empty when no access keyword was written.
type Modifiers struct {
	Access   typegraph.Visibility
	Static   bool
	Final    bool
	Abstract bool
	Default  bool
}

// TypeParam is a declared type variable and its first bound.
type TypeParam struct {
	Name  string
	Bound TypeRef
}

// FieldDef is a field declarator.
type FieldDef struct {
	Name      string
	Modifiers Modifiers
	Type      TypeRef
}

// MethodDef is a method, constructor or annotation element declaration.
type MethodDef struct {
	Name       string
	Modifiers  Modifiers
	TypeParams []TypeParam
	Params     []TypeRef
	Returns    TypeRef
	Throws     []TypeRef
	HasBody    bool
}

// TypeDef is a class, interface, enum, record or annotation declaration.
type TypeDef struct {
	Name       string
	Kind       typegraph.ClassKind
	Modifiers  Modifiers
	TypeParams []TypeParam
	Superclass TypeRef
	Interfaces []TypeRef

	Fields       []FieldDef
	Methods      []MethodDef
	Constructors []MethodDef

	// Components and CompactConstructor are set for records only.
	Components         []FieldDef
	CompactConstructor *MethodDef

	EnumConstants []string
	Nested        []*TypeDef
}
