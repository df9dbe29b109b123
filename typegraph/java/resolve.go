package java

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
)

// javaLang lists java.lang types resolvable without an import.
var javaLang = map[string]bool{
	"AutoCloseable": true, "Boolean": true, "Byte": true, "CharSequence": true,
	"Character": true, "Class": true, "ClassCastException": true, "Cloneable": true,
	"CloneNotSupportedException": true, "Comparable": true, "Deprecated": true,
	"Double": true, "Enum": true, "Error": true, "Exception": true, "Float": true,
	"FunctionalInterface": true, "IllegalArgumentException": true,
	"IllegalStateException": true, "IndexOutOfBoundsException": true,
	"Integer": true, "InterruptedException": true, "Iterable": true, "Long": true,
	"Math": true, "NullPointerException": true, "Number": true, "Object": true,
	"Override": true, "Record": true, "Runnable": true, "RuntimeException": true,
	"SafeVarargs": true, "SecurityException": true, "Short": true, "String": true,
	"StringBuilder": true, "SuppressWarnings": true, "System": true, "Thread": true,
	"Throwable": true, "UnsupportedOperationException": true, "Void": true,
	"ArithmeticException": true, "ArrayIndexOutOfBoundsException": true,
}

// wellKnownPackages lists common JDK types reachable through wildcard
// imports when they are not declared in the parsed sources.
var wellKnownPackages = map[string]map[string]bool{
	"java.util": {
		"ArrayList": true, "Collection": true, "Collections": true, "Comparator": true,
		"ConcurrentModificationException": true, "Deque": true, "HashMap": true,
		"HashSet": true, "Iterator": true, "LinkedList": true, "List": true,
		"Locale": true, "Map": true, "NoSuchElementException": true, "Optional": true,
		"Properties": true, "Queue": true, "Set": true, "SortedMap": true,
		"SortedSet": true, "TreeMap": true, "TreeSet": true, "UUID": true,
	},
	"java.io": {
		"Closeable": true, "File": true, "IOException": true, "InputStream": true,
		"OutputStream": true, "Reader": true, "Serializable": true,
		"UncheckedIOException": true, "Writer": true,
	},
	"java.util.function": {
		"BiFunction": true, "Consumer": true, "Function": true, "Predicate": true,
		"Supplier": true,
	},
}

// entry is one declared type with its qualified name.
type entry struct {
	def       *TypeDef
	unit      *CompilationUnit
	qualified string
	enclosing *entry
}

// Build resolves the compilation units into a graph named name.
func Build(name string, units []*CompilationUnit) (*typegraph.Graph, error) {
	r := newResolver(units)
	b := typegraph.NewBuilder(name)
	for _, e := range r.entries {
		if err := b.AddClass(r.classDecl(e)); err != nil {
			return nil, fmt.Errorf("%s: %w", e.unit.Path, err)
		}
	}
	return b.Build()
}

type resolver struct {
	entries []*entry
	known   map[string]*entry
}

func newResolver(units []*CompilationUnit) *resolver {
	r := &resolver{known: make(map[string]*entry)}
	var add func(unit *CompilationUnit, def *TypeDef, enclosing *entry)
	add = func(unit *CompilationUnit, def *TypeDef, enclosing *entry) {
		e := &entry{def: def, unit: unit, enclosing: enclosing}
		switch {
		case enclosing != nil:
			e.qualified = enclosing.qualified + "." + def.Name
		case unit.Package != "":
			e.qualified = unit.Package + "." + def.Name
		default:
			e.qualified = def.Name
		}
		r.entries = append(r.entries, e)
		if _, dup := r.known[e.qualified]; !dup {
			r.known[e.qualified] = e
		}
		for _, nested := range def.Nested {
			add(unit, nested, e)
		}
	}
	for _, unit := range units {
		for _, def := range unit.Types {
			add(unit, def, nil)
		}
	}
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].qualified < r.entries[j].qualified
	})
	return r
}

// scope is the context a type name is resolved in.
type scope struct {
	entry    *entry
	typeVars map[string]TypeRef
}

func (r *resolver) classScope(e *entry) scope {
	s := scope{entry: e, typeVars: make(map[string]TypeRef)}
	var chain []*entry
	for cur := e; cur != nil; cur = cur.enclosing {
		chain = append(chain, cur)
	}
	// Inner declarations shadow outer ones.
	for i := len(chain) - 1; i >= 0; i-- {
		for _, tp := range chain[i].def.TypeParams {
			s.typeVars[tp.Name] = tp.Bound
		}
	}
	return s
}

func (s scope) with(params []TypeParam) scope {
	if len(params) == 0 {
		return s
	}
	vars := make(map[string]TypeRef, len(s.typeVars)+len(params))
	for k, v := range s.typeVars {
		vars[k] = v
	}
	for _, tp := range params {
		vars[tp.Name] = tp.Bound
	}
	return scope{entry: s.entry, typeVars: vars}
}

// resolve erases ref to a qualified type in scope s.
func (r *resolver) resolve(s scope, ref TypeRef) typegraph.Type {
	return r.resolveVisiting(s, ref, nil)
}

func (r *resolver) resolveVisiting(s scope, ref TypeRef, visiting map[string]bool) typegraph.Type {
	if ref.IsZero() {
		return typegraph.Type{}
	}
	if typegraph.IsPrimitiveName(ref.Name) {
		return typegraph.ArrayOf(typegraph.NewType(ref.Name), ref.Dims)
	}

	if bound, ok := s.typeVars[ref.Name]; ok {
		if bound.IsZero() || visiting[ref.Name] {
			return typegraph.ArrayOf(typegraph.NewType(typegraph.ObjectTypeName), ref.Dims)
		}
		next := map[string]bool{ref.Name: true}
		for k := range visiting {
			next[k] = true
		}
		erased := r.resolveVisiting(s, bound, next)
		return typegraph.ArrayOf(erased, ref.Dims)
	}

	head, rest, dotted := strings.Cut(ref.Name, ".")
	name := ref.Name
	if q, ok := r.resolveSimple(s, head); ok {
		name = q
		if dotted {
			name = q + "." + rest
		}
	}
	return typegraph.ArrayOf(typegraph.NewType(name), ref.Dims)
}

func (r *resolver) resolveSimple(s scope, simple string) (string, bool) {
	for e := s.entry; e != nil; e = e.enclosing {
		if e.def.Name == simple {
			return e.qualified, true
		}
		if _, ok := r.known[e.qualified+"."+simple]; ok {
			return e.qualified + "." + simple, true
		}
	}

	unit := s.entry.unit
	for _, imp := range unit.Imports {
		if imp.Wildcard || imp.Static {
			continue
		}
		if imp.Path == simple || strings.HasSuffix(imp.Path, "."+simple) {
			return imp.Path, true
		}
	}

	samePackage := simple
	if unit.Package != "" {
		samePackage = unit.Package + "." + simple
	}
	if _, ok := r.known[samePackage]; ok {
		return samePackage, true
	}

	if javaLang[simple] {
		return "java.lang." + simple, true
	}

	for _, imp := range unit.Imports {
		if !imp.Wildcard || imp.Static {
			continue
		}
		candidate := imp.Path + "." + simple
		if _, ok := r.known[candidate]; ok {
			return candidate, true
		}
		if wellKnownPackages[imp.Path][simple] {
			return candidate, true
		}
	}
	return "", false
}

func (r *resolver) classDecl(e *entry) typegraph.ClassDecl {
	def := e.def
	s := r.classScope(e)
	enclosingIsInterface := e.enclosing != nil && isInterfaceKind(e.enclosing.def.Kind)

	decl := typegraph.ClassDecl{
		Name:       e.qualified,
		Package:    e.unit.Package,
		Kind:       def.Kind,
		Visibility: r.classVisibility(e),
		Final:      def.Modifiers.Final || def.Kind == typegraph.KindEnum || def.Kind == typegraph.KindRecord,
		Abstract:   def.Modifiers.Abstract,
	}
	if e.enclosing != nil {
		decl.Enclosing = e.enclosing.qualified
		decl.Static = def.Modifiers.Static || enclosingIsInterface || def.Kind != typegraph.KindClass
	}

	switch def.Kind {
	case typegraph.KindClass:
		if !def.Superclass.IsZero() {
			decl.Superclass = r.resolve(s, def.Superclass).Name
		} else if e.qualified != typegraph.ObjectTypeName {
			decl.Superclass = typegraph.ObjectTypeName
		}
	case typegraph.KindEnum:
		decl.Superclass = "java.lang.Enum"
	case typegraph.KindRecord:
		decl.Superclass = "java.lang.Record"
	case typegraph.KindAnnotation:
		decl.Interfaces = append(decl.Interfaces, "java.lang.annotation.Annotation")
	}
	for _, iface := range def.Interfaces {
		decl.Interfaces = append(decl.Interfaces, r.resolve(s, iface).Name)
	}

	decl.Fields = r.fields(e, s)
	decl.Methods = r.methods(e, s)
	decl.Constructors = r.constructors(e, s, decl.Visibility)
	return decl
}

func (r *resolver) classVisibility(e *entry) typegraph.Visibility {
	if access := e.def.Modifiers.Access; access != "" {
		return access
	}
	if e.enclosing != nil && isInterfaceKind(e.enclosing.def.Kind) {
		return typegraph.VisibilityPublic
	}
	return typegraph.VisibilityPackage
}

func (r *resolver) fields(e *entry, s scope) []typegraph.FieldDecl {
	def := e.def
	var fields []typegraph.FieldDecl
	for _, name := range def.EnumConstants {
		fields = append(fields, typegraph.FieldDecl{
			Name:       name,
			Visibility: typegraph.VisibilityPublic,
			Static:     true,
			Final:      true,
			Type:       typegraph.NewType(e.qualified),
		})
	}
	for _, f := range def.Fields {
		field := typegraph.FieldDecl{
			Name:       f.Name,
			Visibility: memberVisibility(f.Modifiers, false),
			Static:     f.Modifiers.Static,
			Final:      f.Modifiers.Final,
			Type:       r.resolve(s, f.Type),
		}
		if isInterfaceKind(def.Kind) {
			field.Visibility = typegraph.VisibilityPublic
			field.Static = true
			field.Final = true
		}
		fields = append(fields, field)
	}
	for _, c := range def.Components {
		fields = append(fields, typegraph.FieldDecl{
			Name:       c.Name,
			Visibility: typegraph.VisibilityPrivate,
			Final:      true,
			Type:       r.resolve(s, c.Type),
		})
	}
	return fields
}

func (r *resolver) methods(e *entry, s scope) []typegraph.MethodDecl {
	def := e.def
	inInterface := isInterfaceKind(def.Kind)

	var methods []typegraph.MethodDecl
	declared := make(map[string]bool)
	for _, m := range def.Methods {
		ms := s.with(m.TypeParams)
		decl := typegraph.MethodDecl{
			Name:       m.Name,
			Visibility: memberVisibility(m.Modifiers, inInterface),
			Static:     m.Modifiers.Static,
			Final:      m.Modifiers.Final,
			Abstract:   m.Modifiers.Abstract,
			Params:     r.resolveAll(ms, m.Params),
			Returns:    r.resolve(ms, m.Returns),
			Throws:     r.resolveAll(ms, m.Throws),
		}
		if inInterface && !m.HasBody && !m.Modifiers.Static && !m.Modifiers.Default &&
			decl.Visibility != typegraph.VisibilityPrivate {
			decl.Abstract = true
		}
		if len(m.Params) == 0 {
			declared[m.Name] = true
		}
		methods = append(methods, decl)
	}

	switch def.Kind {
	case typegraph.KindEnum:
		self := typegraph.NewType(e.qualified)
		methods = append(methods,
			typegraph.MethodDecl{
				Name:       "values",
				Visibility: typegraph.VisibilityPublic,
				Static:     true,
				Returns:    typegraph.ArrayOf(self, 1),
			},
			typegraph.MethodDecl{
				Name:       "valueOf",
				Visibility: typegraph.VisibilityPublic,
				Static:     true,
				Params:     []typegraph.Type{typegraph.NewType("java.lang.String")},
				Returns:    self,
			})
	case typegraph.KindRecord:
		for _, c := range def.Components {
			if declared[c.Name] {
				continue
			}
			methods = append(methods, typegraph.MethodDecl{
				Name:       c.Name,
				Visibility: typegraph.VisibilityPublic,
				Returns:    r.resolve(s, c.Type),
			})
		}
	}
	return methods
}

func (r *resolver) constructors(e *entry, s scope, classVisibility typegraph.Visibility) []typegraph.MethodDecl {
	def := e.def
	if isInterfaceKind(def.Kind) {
		return nil
	}

	var ctors []typegraph.MethodDecl
	declared := make(map[string]bool)
	for _, c := range def.Constructors {
		cs := s.with(c.TypeParams)
		decl := typegraph.MethodDecl{
			Name:       typegraph.ConstructorName,
			Visibility: memberVisibility(c.Modifiers, false),
			Params:     r.resolveAll(cs, c.Params),
			Throws:     r.resolveAll(cs, c.Throws),
		}
		if def.Kind == typegraph.KindEnum {
			decl.Visibility = typegraph.VisibilityPrivate
		}
		declared[typegraph.ParamsDescriptor(decl.Params)] = true
		ctors = append(ctors, decl)
	}

	switch def.Kind {
	case typegraph.KindRecord:
		canonical := typegraph.MethodDecl{Name: typegraph.ConstructorName, Visibility: classVisibility}
		for _, c := range def.Components {
			canonical.Params = append(canonical.Params, r.resolve(s, c.Type))
		}
		if def.CompactConstructor != nil && def.CompactConstructor.Modifiers.Access != "" {
			canonical.Visibility = def.CompactConstructor.Modifiers.Access
		}
		if !declared[typegraph.ParamsDescriptor(canonical.Params)] {
			ctors = append(ctors, canonical)
		}
	case typegraph.KindEnum:
		if len(ctors) == 0 {
			ctors = append(ctors, typegraph.MethodDecl{Name: typegraph.ConstructorName, Visibility: typegraph.VisibilityPrivate})
		}
	default:
		if len(ctors) == 0 {
			ctors = append(ctors, typegraph.MethodDecl{Name: typegraph.ConstructorName, Visibility: classVisibility})
		}
	}
	return ctors
}

func (r *resolver) resolveAll(s scope, refs []TypeRef) []typegraph.Type {
	if len(refs) == 0 {
		return nil
	}
	types := make([]typegraph.Type, 0, len(refs))
	for _, ref := range refs {
		types = append(types, r.resolve(s, ref))
	}
	return types
}

func memberVisibility(mods Modifiers, inInterface bool) typegraph.Visibility {
	if mods.Access != "" {
		return mods.Access
	}
	if inInterface {
		return typegraph.VisibilityPublic
	}
	return typegraph.VisibilityPackage
}

func isInterfaceKind(kind typegraph.ClassKind) bool {
	return kind == typegraph.KindInterface || kind == typegraph.KindAnnotation
}
