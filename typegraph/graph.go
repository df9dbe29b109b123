package typegraph

import (
	"errors"
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// Graph is one immutable snapshot of a library's packages, classes and
// members. Classes are indexed by qualified name; the class hierarchy is
// kept as a directed graph with edges from subtype to supertype.
type Graph struct {
	name      string
	packages  map[string]*Package
	classes   map[string]*Class
	hierarchy graphlib.Graph[string, string]
	subtypes  map[string][]string
}

// Package groups the classes (including nested classes) declared in one package.
type Package struct {
	name    string
	classes []*Class
	byName  map[string]*Class
}

// Name returns the package name.
func (p *Package) Name() string {
	return p.name
}

// Classes returns every class of the package, nested ones included,
// ordered by qualified name.
func (p *Package) Classes() []*Class {
	return p.classes
}

// Class looks up a class of the package by qualified name.
func (p *Package) Class(qualifiedName string) (*Class, bool) {
	c, ok := p.byName[qualifiedName]
	return c, ok
}

// Name returns the label of the snapshot (e.g. "old", a path or a git ref).
func (g *Graph) Name() string {
	return g.name
}

// Packages returns every package ordered by name.
func (g *Graph) Packages() []*Package {
	names := make([]string, 0, len(g.packages))
	for name := range g.packages {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]*Package, 0, len(names))
	for _, name := range names {
		result = append(result, g.packages[name])
	}
	return result
}

// Package looks up a package by name.
func (g *Graph) Package(name string) (*Package, bool) {
	p, ok := g.packages[name]
	return p, ok
}

// Classes returns every class of the graph ordered by qualified name.
func (g *Graph) Classes() []*Class {
	var result []*Class
	for _, p := range g.Packages() {
		result = append(result, p.classes...)
	}
	return result
}

// Resolve looks up a class by qualified name. It is the only way a name
// that originates from another graph is mapped onto this one.
func (g *Graph) Resolve(qualifiedName string) (*Class, bool) {
	c, ok := g.classes[qualifiedName]
	return c, ok
}

// Supertypes returns the transitive supertype names of the named class,
// including names that are not declared in this graph.
func (g *Graph) Supertypes(qualifiedName string) []string {
	if _, err := g.hierarchy.Vertex(qualifiedName); err != nil {
		return nil
	}

	var result []string
	_ = graphlib.BFS(g.hierarchy, qualifiedName, func(name string) bool {
		if name != qualifiedName {
			result = append(result, name)
		}
		return false
	})
	sort.Strings(result)
	return result
}

// IsAssignable reports whether a value of type from can be passed where
// type to is expected. from is interpreted in this graph. Two references
// with the same qualified name are always assignable, whether or not the
// name is declared here.
func (g *Graph) IsAssignable(from, to Type) bool {
	if from.Dims != to.Dims {
		if from.Dims > to.Dims && to.Dims == 0 {
			return to.Name == ObjectTypeName ||
				to.Name == "java.lang.Cloneable" ||
				to.Name == "java.io.Serializable"
		}
		return from.Dims > to.Dims && to.Name == ObjectTypeName
	}

	if IsPrimitiveName(from.Name) || IsPrimitiveName(to.Name) {
		if from.Name == to.Name {
			return true
		}
		return from.Dims == 0 && primitiveWidens(from.Name, to.Name)
	}

	if from.Name == to.Name || to.Name == ObjectTypeName {
		return true
	}

	if _, ok := g.Resolve(from.Name); !ok {
		return false
	}
	for _, super := range g.Supertypes(from.Name) {
		if super == to.Name {
			return true
		}
	}
	return false
}

func (g *Graph) subtypesOf(qualifiedName string) []*Class {
	visited := map[string]bool{qualifiedName: true}
	queue := []string{qualifiedName}
	var result []*Class
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, sub := range g.subtypes[current] {
			if visited[sub] {
				continue
			}
			visited[sub] = true
			queue = append(queue, sub)
			if c, ok := g.classes[sub]; ok {
				result = append(result, c)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].decl.Name < result[j].decl.Name
	})
	return result
}

func (g *Graph) copyDecl(d ClassDecl) ClassDecl {
	d.Interfaces = append([]string(nil), d.Interfaces...)
	d.Fields = append([]FieldDecl(nil), d.Fields...)
	d.Methods = append([]MethodDecl(nil), d.Methods...)
	d.Constructors = append([]MethodDecl(nil), d.Constructors...)
	return d
}

// ErrDuplicateClass is returned when a class name is declared twice.
var ErrDuplicateClass = errors.New("duplicate class")

// Builder collects class declarations and produces an immutable Graph.
type Builder struct {
	name  string
	decls []ClassDecl
	seen  map[string]bool
}

// NewBuilder returns a builder for a graph with the given label.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, seen: make(map[string]bool)}
}

// AddClass registers one class declaration.
func (b *Builder) AddClass(decl ClassDecl) error {
	if decl.Name == "" {
		return fmt.Errorf("class declaration without a name in package %q", decl.Package)
	}
	if b.seen[decl.Name] {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, decl.Name)
	}
	if decl.Visibility == "" {
		decl.Visibility = VisibilityPackage
	}
	if decl.Kind == "" {
		decl.Kind = KindClass
	}
	b.seen[decl.Name] = true
	b.decls = append(b.decls, decl)
	return nil
}

// Build creates the graph. Enclosing classes must be declared in the same
// builder.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		name:      b.name,
		packages:  make(map[string]*Package),
		classes:   make(map[string]*Class, len(b.decls)),
		hierarchy: graphlib.New(graphlib.StringHash, graphlib.Directed()),
	}

	for _, decl := range b.decls {
		c := newClass(g, decl)
		g.classes[decl.Name] = c

		pkg, ok := g.packages[decl.Package]
		if !ok {
			pkg = &Package{name: decl.Package, byName: make(map[string]*Class)}
			g.packages[decl.Package] = pkg
		}
		pkg.classes = append(pkg.classes, c)
		pkg.byName[decl.Name] = c

		if err := addVertex(g.hierarchy, decl.Name); err != nil {
			return nil, err
		}
	}

	for _, decl := range b.decls {
		if decl.Enclosing != "" {
			if _, ok := g.classes[decl.Enclosing]; !ok {
				return nil, fmt.Errorf("class %s: enclosing class %s is not declared", decl.Name, decl.Enclosing)
			}
		}
		for _, super := range supertypeNames(decl) {
			if err := addVertex(g.hierarchy, super); err != nil {
				return nil, err
			}
			err := g.hierarchy.AddEdge(decl.Name, super)
			if err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("class %s: failed to record supertype %s: %w", decl.Name, super, err)
			}
		}
	}

	predecessors, err := g.hierarchy.PredecessorMap()
	if err != nil {
		return nil, fmt.Errorf("failed to index subtypes: %w", err)
	}
	g.subtypes = make(map[string][]string, len(predecessors))
	for super, subs := range predecessors {
		for sub := range subs {
			g.subtypes[super] = append(g.subtypes[super], sub)
		}
		sort.Strings(g.subtypes[super])
	}

	for _, pkg := range g.packages {
		sort.Slice(pkg.classes, func(i, j int) bool {
			return pkg.classes[i].decl.Name < pkg.classes[j].decl.Name
		})
	}

	return g, nil
}

func newClass(g *Graph, decl ClassDecl) *Class {
	c := &Class{graph: g, decl: decl}
	for _, f := range decl.Fields {
		c.fields = append(c.fields, &Field{owner: c, decl: f})
	}
	for _, m := range decl.Methods {
		if m.Returns.IsZero() {
			m.Returns = Void()
		}
		c.methods = append(c.methods, &Method{owner: c, kind: MemberMethod, decl: m})
	}
	for _, m := range decl.Constructors {
		m.Name = ConstructorName
		m.Returns = Void()
		c.constructors = append(c.constructors, &Method{owner: c, kind: MemberConstructor, decl: m})
	}
	sortFields(c.fields)
	sortMethods(c.methods)
	sortMethods(c.constructors)
	return c
}

func supertypeNames(decl ClassDecl) []string {
	var names []string
	if decl.Superclass != "" && decl.Superclass != decl.Name {
		names = append(names, decl.Superclass)
	}
	for _, iface := range decl.Interfaces {
		if iface != "" && iface != decl.Name {
			names = append(names, iface)
		}
	}
	return names
}

func addVertex(g graphlib.Graph[string, string], name string) error {
	err := g.AddVertex(name)
	if err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add class %s to hierarchy: %w", name, err)
	}
	return nil
}
