package apicheck

import (
	"github.com/LegacyCodeHQ/apicheck/typegraph"
)

type classState int

const (
	stateUnvisited classState = iota
	stateInProgress
	stateResolved
)

// classifier decides API membership for the classes of one graph. Results
// are memoized per class node. A node is seeded as non-API before its
// enclosing type and subtypes are inspected, so a nested class that extends
// its own enclosing class terminates with the provisional answer.
type classifier struct {
	state map[string]classState
	api   map[string]bool
}

func newClassifier() *classifier {
	return &classifier{
		state: make(map[string]classState),
		api:   make(map[string]bool),
	}
}

func (c *classifier) isAPI(cls *typegraph.Class) bool {
	name := cls.QualifiedName()
	switch c.state[name] {
	case stateResolved:
		return c.api[name]
	case stateInProgress:
		return false
	}

	c.state[name] = stateInProgress
	c.api[name] = false
	result := c.computeAPI(cls)
	c.api[name] = result
	c.state[name] = stateResolved
	return result
}

func (c *classifier) computeAPI(cls *typegraph.Class) bool {
	if !cls.IsMemberType() {
		return cls.Visibility().IsPublic()
	}

	enclosing, ok := cls.EnclosingType()
	if !ok {
		return false
	}

	switch cls.Visibility() {
	case typegraph.VisibilityPublic:
		return c.isAPI(enclosing) || c.anySubtype(enclosing, c.isAPI)
	case typegraph.VisibilityProtected:
		return c.isSubclassableAPI(enclosing) || c.anySubtype(enclosing, c.isSubclassableAPI)
	default:
		return false
	}
}

func (c *classifier) isSubclassableAPI(cls *typegraph.Class) bool {
	return c.isAPI(cls) && isSubclassable(cls)
}

func (c *classifier) anySubtype(cls *typegraph.Class, pred func(*typegraph.Class) bool) bool {
	for _, sub := range cls.Subtypes() {
		if pred(sub) {
			return true
		}
	}
	return false
}

// isSubclassable: not final and reachable through a public or protected
// constructor. Interfaces can always be implemented.
func isSubclassable(cls *typegraph.Class) bool {
	if cls.IsFinal() {
		return false
	}
	if cls.IsInterface() {
		return true
	}
	return hasAccessibleConstructor(cls)
}

func hasAccessibleConstructor(cls *typegraph.Class) bool {
	for _, ctor := range cls.Constructors() {
		if ctor.Visibility().IsPublicOrProtected() {
			return true
		}
	}
	return false
}

type memberKey struct {
	kind  typegraph.MemberKind
	name  string
	arity int
}

func keyOf(m *typegraph.Method) memberKey {
	return memberKey{kind: m.Kind(), name: m.Name(), arity: len(m.Params())}
}

// APIClass is a class node together with its API classification and the
// indices of its API-visible members.
type APIClass struct {
	class        *typegraph.Class
	api          bool
	subclassable bool
	instantiable bool
	options      Options

	fields  map[string]*typegraph.Field
	members map[memberKey][]*typegraph.Method
}

func newAPIClass(cls *typegraph.Class, c *classifier, opts Options) *APIClass {
	api := c.isAPI(cls)
	subclassable := api && isSubclassable(cls)
	return &APIClass{
		class:        cls,
		api:          api,
		subclassable: subclassable,
		instantiable: api && !cls.IsAbstract() && hasAccessibleConstructor(cls),
		options:      opts,
	}
}

func (a *APIClass) Class() *typegraph.Class { return a.class }
func (a *APIClass) QualifiedName() string { return a.class.QualifiedName() }
func (a *APIClass) IsAPI() bool { return a.api }
func (a *APIClass) IsSubclassableAPI() bool { return a.subclassable }
func (a *APIClass) IsNotSubclassableAPI() bool { return a.api && !a.subclassable }
func (a *APIClass) IsInstantiableAPI() bool { return a.instantiable }

// includesMember applies the member inclusion rule. Constructors count as
// static members for the non-instantiable policy.
func (a *APIClass) includesMember(visibility typegraph.Visibility, static bool) bool {
	if a.options.SkipNonInstantiableInstanceMembers && !a.instantiable && !static {
		return false
	}
	if a.subclassable {
		return visibility.IsPublicOrProtected()
	}
	if a.api {
		return visibility.IsPublic()
	}
	return false
}

// Fields returns the API-visible fields indexed by name.
func (a *APIClass) Fields() map[string]*typegraph.Field {
	if a.fields != nil {
		return a.fields
	}
	a.fields = make(map[string]*typegraph.Field)
	for _, f := range a.class.Fields() {
		if a.includesMember(f.Visibility(), f.IsStatic()) {
			a.fields[f.Name()] = f
		}
	}
	return a.fields
}

// Members returns the API-visible methods and constructors grouped by
// kind, name and parameter count.
func (a *APIClass) Members() map[memberKey][]*typegraph.Method {
	if a.members != nil {
		return a.members
	}
	a.members = make(map[memberKey][]*typegraph.Method)
	for _, m := range a.class.Methods() {
		if a.includesMember(m.Visibility(), m.IsStatic()) {
			a.members[keyOf(m)] = append(a.members[keyOf(m)], m)
		}
	}
	for _, ctor := range a.class.Constructors() {
		if a.includesMember(ctor.Visibility(), true) {
			a.members[keyOf(ctor)] = append(a.members[keyOf(ctor)], ctor)
		}
	}
	return a.members
}
