package apicheck

import (
	"sort"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
)

// APIPackage holds the API classes of one package, indexed by qualified name.
type APIPackage struct {
	name    string
	classes map[string]*APIClass
	api     bool
}

func newAPIPackage(pkg *typegraph.Package, c *classifier, opts Options) *APIPackage {
	p := &APIPackage{
		name:    pkg.Name(),
		classes: make(map[string]*APIClass),
	}
	for _, cls := range pkg.Classes() {
		if !cls.IsMemberType() && cls.Visibility().IsPublic() {
			p.api = true
		}
		ac := newAPIClass(cls, c, opts)
		if ac.IsAPI() {
			p.classes[cls.QualifiedName()] = ac
		}
	}
	return p
}

// Name returns the package name.
func (p *APIPackage) Name() string {
	return p.name
}

// IsAPI reports whether the package declares at least one public top-level class.
func (p *APIPackage) IsAPI() bool {
	return p.api
}

// Classes returns the API classes indexed by qualified name.
func (p *APIPackage) Classes() map[string]*APIClass {
	return p.classes
}

// APIContainer is the API surface of a whole snapshot.
type APIContainer struct {
	name     string
	excluded map[string]bool
	packages map[string]*APIPackage
	graph    *typegraph.Graph
}

// NewAPIContainer applies the inclusion rule to every package of g that is
// not excluded.
func NewAPIContainer(g *typegraph.Graph, opts Options) *APIContainer {
	c := &APIContainer{
		name:     g.Name(),
		excluded: opts.excluded(),
		packages: make(map[string]*APIPackage),
		graph:    g,
	}
	cls := newClassifier()
	for _, pkg := range g.Packages() {
		if c.excluded[pkg.Name()] {
			continue
		}
		p := newAPIPackage(pkg, cls, opts)
		if p.IsAPI() {
			c.packages[pkg.Name()] = p
		}
	}
	return c
}

// Name returns the snapshot label.
func (c *APIContainer) Name() string {
	return c.name
}

// Graph returns the underlying snapshot.
func (c *APIContainer) Graph() *typegraph.Graph {
	return c.graph
}

// Packages returns the API packages indexed by name.
func (c *APIContainer) Packages() map[string]*APIPackage {
	return c.packages
}

// Class finds an API class by qualified name in any API package.
func (c *APIContainer) Class(qualifiedName string) (*APIClass, bool) {
	for _, p := range c.packages {
		if ac, ok := p.classes[qualifiedName]; ok {
			return ac, true
		}
	}
	return nil, false
}

// partition splits the old keys into those missing from the new side and
// those present in both, each sorted.
func partition[V, W any](oldSide map[string]V, newSide map[string]W) (missing, common []string) {
	for name := range oldSide {
		if _, ok := newSide[name]; ok {
			common = append(common, name)
		} else {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(common)
	return missing, common
}
