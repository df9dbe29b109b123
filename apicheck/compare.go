package apicheck

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
)

// uncheckedExceptions are JDK throwables that callers never have to catch,
// used when the throwable is not declared in the snapshot itself.
var uncheckedExceptions = map[string]bool{
	"java.lang.RuntimeException":                true,
	"java.lang.Error":                           true,
	"java.lang.IllegalArgumentException":        true,
	"java.lang.IllegalStateException":           true,
	"java.lang.NullPointerException":            true,
	"java.lang.UnsupportedOperationException":   true,
	"java.lang.IndexOutOfBoundsException":       true,
	"java.lang.ArrayIndexOutOfBoundsException":  true,
	"java.lang.ClassCastException":              true,
	"java.lang.ArithmeticException":             true,
	"java.lang.SecurityException":               true,
	"java.util.ConcurrentModificationException": true,
	"java.util.NoSuchElementException":          true,
}

// member is the shared view of methods and constructors. Only
// isOverridable and checkReturnTypeCompatibility depend on the kind.
type member struct {
	*typegraph.Method
}

func (m member) isOverridable(owner *APIClass) bool {
	switch m.Kind() {
	case typegraph.MemberConstructor:
		return false
	default:
		return !m.IsFinal() && !m.IsStatic() && owner.IsSubclassableAPI()
	}
}

// checkReturnTypeCompatibility requires the candidate's return type to be
// assignable to the old one. Covariant narrowing passes, widening fails.
func (m member) checkReturnTypeCompatibility(candidate member, newGraph *typegraph.Graph) bool {
	switch m.Kind() {
	case typegraph.MemberConstructor:
		return true
	default:
		if m.ReturnType().IsVoid() {
			return true
		}
		return newGraph.IsAssignable(candidate.ReturnType(), m.ReturnType())
	}
}

// memberComparator checks old members of one class against the members of
// its counterpart in the new snapshot.
type memberComparator struct {
	options  Options
	newGraph *typegraph.Graph
	newClass *APIClass
}

// compareBucket compares every old overload sharing one (kind, name, arity)
// key with the new candidates for the same key.
func (mc memberComparator) compareBucket(olds, candidates []*typegraph.Method) ([]Change, error) {
	var changes []Change
	for _, old := range olds {
		found, err := mc.compareMember(old, candidates, len(olds) == 1)
		if err != nil {
			return nil, err
		}
		changes = append(changes, found...)
	}
	return changes, nil
}

func (mc memberComparator) compareMember(old *typegraph.Method, candidates []*typegraph.Method, soleOverload bool) ([]Change, error) {
	element := methodElement(old)

	var compatible []*typegraph.Method
	for _, candidate := range candidates {
		if candidate.Kind() != old.Kind() {
			return nil, fmt.Errorf("%w: %s (%s) paired with %s::%s (%s)",
				ErrKindMismatch, element.Signature(), old.Kind(),
				candidate.Owner().QualifiedName(), candidate.Signature(), candidate.Kind())
		}
		if mc.matches(old, candidate) {
			compatible = append(compatible, candidate)
		}
	}

	if len(compatible) == 0 {
		return []Change{NewChange(element, StatusMissing, "")}, nil
	}

	match := compatible[0]
	exact := false
	for _, candidate := range compatible {
		if sameParams(old, candidate) {
			match = candidate
			exact = true
			break
		}
	}

	var changes []Change
	if exact {
		changes = append(changes, NewChange(element, StatusCompatible, ""))
	} else {
		changes = append(changes, NewChange(element, StatusCompatibleWith, match.Signature()))
	}

	if !old.IsFinal() && match.IsFinal() {
		changes = append(changes, NewChange(element, StatusFinalAdded, ""))
	}
	if old.Kind() == typegraph.MemberMethod && !old.IsAbstract() && match.IsAbstract() {
		changes = append(changes, NewChange(element, StatusAbstractAdded, ""))
	}
	if old.IsStatic() && !match.IsStatic() {
		changes = append(changes, NewChange(element, StatusStaticRemoved, ""))
	}

	oldMember, newMember := member{old}, member{match}
	if !oldMember.checkReturnTypeCompatibility(newMember, mc.newGraph) {
		changes = append(changes, NewChange(element, StatusReturnTypeError, match.ReturnType().String()))
	}
	if newMember.isOverridable(mc.newClass) {
		if added := mc.addedCheckedExceptions(old, match); len(added) > 0 {
			changes = append(changes, NewChange(element, StatusExceptionTypeError, strings.Join(added, ",")))
		}
	}

	if mc.options.OverloadWarnings && soleOverload {
		var ambiguous []string
		for _, candidate := range candidates {
			if coarseMatches(old, candidate) {
				ambiguous = append(ambiguous, candidate.Signature())
			}
		}
		if len(ambiguous) >= 2 {
			changes = append(changes, NewChange(element, StatusOverloadedMethodCall, strings.Join(ambiguous, ",")))
		}
	}

	return changes, nil
}

// matches: same arity and every old parameter type, looked up in the new
// snapshot, is assignable to the candidate's parameter type.
func (mc memberComparator) matches(old, candidate *typegraph.Method) bool {
	oldParams, newParams := old.Params(), candidate.Params()
	if len(oldParams) != len(newParams) {
		return false
	}
	for i := range oldParams {
		if !mc.newGraph.IsAssignable(oldParams[i], newParams[i]) {
			return false
		}
	}
	return true
}

// addedCheckedExceptions lists checked exceptions thrown by the candidate
// that are not covered by an exception the old member already declared.
func (mc memberComparator) addedCheckedExceptions(old, candidate *typegraph.Method) []string {
	var added []string
	for _, thrown := range candidate.Throws() {
		if mc.isUnchecked(thrown) {
			continue
		}
		covered := false
		for _, declared := range old.Throws() {
			if mc.newGraph.IsAssignable(thrown, declared) {
				covered = true
				break
			}
		}
		if !covered {
			added = append(added, thrown.String())
		}
	}
	return added
}

func (mc memberComparator) isUnchecked(t typegraph.Type) bool {
	if uncheckedExceptions[t.Name] {
		return true
	}
	for _, super := range mc.newGraph.Supertypes(t.Name) {
		if uncheckedExceptions[super] {
			return true
		}
	}
	return false
}

func sameParams(a, b *typegraph.Method) bool {
	return typegraph.ParamsDescriptor(a.Params()) == typegraph.ParamsDescriptor(b.Params())
}

// coarseMatches compares parameter lists keeping only whether each
// parameter is a primitive or a reference. It approximates overload
// ambiguity; it is not overload resolution.
func coarseMatches(a, b *typegraph.Method) bool {
	pa, pb := a.Params(), b.Params()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i].IsPrimitive() != pb[i].IsPrimitive() {
			return false
		}
	}
	return true
}

func compareField(old, candidate *typegraph.Field) []Change {
	element := fieldElement(old)
	if old.Type().Descriptor() != candidate.Type().Descriptor() {
		return []Change{NewChange(element, StatusMissing, "")}
	}

	changes := []Change{NewChange(element, StatusCompatible, "")}
	if !old.IsFinal() && candidate.IsFinal() {
		changes = append(changes, NewChange(element, StatusFinalAdded, ""))
	}
	if old.IsStatic() && !candidate.IsStatic() {
		changes = append(changes, NewChange(element, StatusStaticRemoved, ""))
	}
	return changes
}

func compareClassModifiers(old, candidate *APIClass) []Change {
	element := classElement(old.Class())
	oc, nc := old.Class(), candidate.Class()

	var changes []Change
	if !oc.IsFinal() && nc.IsFinal() {
		changes = append(changes, NewChange(element, StatusFinalAdded, ""))
	}
	if !oc.IsAbstract() && nc.IsAbstract() && !nc.IsInterface() {
		changes = append(changes, NewChange(element, StatusAbstractAdded, ""))
	}
	if oc.IsMemberType() && nc.IsMemberType() {
		if !oc.IsStatic() && nc.IsStatic() {
			changes = append(changes, NewChange(element, StatusStaticAdded, ""))
		}
		if oc.IsStatic() && !nc.IsStatic() {
			changes = append(changes, NewChange(element, StatusStaticRemoved, ""))
		}
	}

	switch {
	case !oc.IsInterface() && nc.IsInterface():
		if !oc.IsAbstract() {
			changes = append(changes, NewChange(element, StatusNonAbstractClassMadeInterface, ""))
		} else if old.IsSubclassableAPI() {
			changes = append(changes, NewChange(element, StatusSubclassableAPIClassMadeInterface, ""))
		}
	case oc.IsInterface() && !nc.IsInterface():
		if old.IsSubclassableAPI() {
			changes = append(changes, NewChange(element, StatusSubclassableAPIInterfaceMadeClass, ""))
		}
	}

	if len(changes) == 0 {
		changes = append(changes, NewChange(element, StatusCompatible, ""))
	}
	return changes
}
