package apicheck

import (
	"fmt"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
	"github.com/cespare/xxhash/v2"
)

// Status classifies one finding.
type Status string

const (
	StatusMissing                           Status = "MISSING"
	StatusCompatible                        Status = "COMPATIBLE"
	StatusCompatibleWith                    Status = "COMPATIBLE_WITH"
	StatusFinalAdded                        Status = "FINAL_ADDED"
	StatusAbstractAdded                     Status = "ABSTRACT_ADDED"
	StatusStaticAdded                       Status = "STATIC_ADDED"
	StatusStaticRemoved                     Status = "STATIC_REMOVED"
	StatusReturnTypeError                   Status = "RETURN_TYPE_ERROR"
	StatusExceptionTypeError                Status = "EXCEPTION_TYPE_ERROR"
	StatusOverloadedMethodCall              Status = "OVERLOADED_METHOD_CALL"
	StatusNonAbstractClassMadeInterface     Status = "NONABSTRACT_CLASS_MADE_INTERFACE"
	StatusSubclassableAPIClassMadeInterface Status = "SUBCLASSABLE_API_CLASS_MADE_INTERFACE"
	StatusSubclassableAPIInterfaceMadeClass Status = "SUBCLASSABLE_API_INTERFACE_MADE_CLASS"
)

// IsCompatible reports whether the status records a successful match
// rather than a problem.
func (s Status) IsCompatible() bool {
	return s == StatusCompatible || s == StatusCompatibleWith
}

// IsWarning reports whether the status comes from a heuristic.
func (s Status) IsWarning() bool {
	return s == StatusOverloadedMethodCall
}

// ElementKind is the kind of API element a change refers to.
type ElementKind string

const (
	ElementPackage     ElementKind = "package"
	ElementClass       ElementKind = "class"
	ElementField       ElementKind = "field"
	ElementMethod      ElementKind = "method"
	ElementConstructor ElementKind = "constructor"
)

// Element identifies an element of the old API surface.
type Element struct {
	Kind    ElementKind
	Package string
	Class   string
	// Member is a field name or a method signature such as "foo(I)".
	Member string
}

// Signature is the qualified element signature used in reports:
// "pkg", "pkg.A", "pkg.A::field" or "pkg.A::foo(I)".
func (e Element) Signature() string {
	switch e.Kind {
	case ElementPackage:
		return e.Package
	case ElementClass:
		return e.Class
	default:
		return e.Class + "::" + e.Member
	}
}

func packageElement(name string) Element {
	return Element{Kind: ElementPackage, Package: name}
}

func classElement(c *typegraph.Class) Element {
	return Element{Kind: ElementClass, Package: c.Package(), Class: c.QualifiedName()}
}

func fieldElement(f *typegraph.Field) Element {
	owner := f.Owner()
	return Element{Kind: ElementField, Package: owner.Package(), Class: owner.QualifiedName(), Member: f.Name()}
}

func methodElement(m *typegraph.Method) Element {
	owner := m.Owner()
	kind := ElementMethod
	if m.Kind() == typegraph.MemberConstructor {
		kind = ElementConstructor
	}
	return Element{Kind: kind, Package: owner.Package(), Class: owner.QualifiedName(), Member: m.Signature()}
}

// Change is one immutable finding. Two changes are equal when their
// canonical strings are equal.
type Change struct {
	Element Element
	Status  Status
	Message string
}

// NewChange creates a finding.
func NewChange(element Element, status Status, message string) Change {
	return Change{Element: element, Status: status, Message: message}
}

// Canonical renders "<signature> <STATUS> [message]".
func (c Change) Canonical() string {
	if c.Message == "" {
		return fmt.Sprintf("%s %s", c.Element.Signature(), c.Status)
	}
	return fmt.Sprintf("%s %s %s", c.Element.Signature(), c.Status, c.Message)
}

func (c Change) String() string {
	return c.Canonical()
}

// ID is a stable 16 hex digit hash of the canonical string.
func (c Change) ID() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(c.Canonical()))
}
