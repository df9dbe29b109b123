package apicheck

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
)

// Checker computes the incompatibilities between two snapshots. It keeps no
// state between runs.
type Checker struct {
	options Options
	logger  *slog.Logger
}

// NewChecker creates a checker. A nil logger discards all output.
func NewChecker(opts Options, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{options: opts, logger: logger}
}

// Options returns the options the checker was created with.
func (c *Checker) Options() Options {
	return c.options
}

// Diff compares every API package of oldGraph with newGraph.
func (c *Checker) Diff(oldGraph, newGraph *typegraph.Graph) ([]Change, error) {
	start := time.Now()
	d := &containerDiff{
		checker: c,
		old:     NewAPIContainer(oldGraph, c.options),
		new:     NewAPIContainer(newGraph, c.options),
		found:   newFindings(),
	}
	if err := d.computeDiff(); err != nil {
		return nil, err
	}

	changes := d.found.list(c.options.IncludeCompatible)
	c.logger.Debug("api diff complete",
		"old", oldGraph.Name(),
		"new", newGraph.Name(),
		"old_packages", len(d.old.Packages()),
		"new_packages", len(d.new.Packages()),
		"changes", len(changes),
		"elapsed", time.Since(start),
	)
	return changes, nil
}

// DiffPackage compares a single package that must be an API package of
// both snapshots.
func (c *Checker) DiffPackage(oldGraph, newGraph *typegraph.Graph, name string) ([]Change, error) {
	oldC, newC := NewAPIContainer(oldGraph, c.options), NewAPIContainer(newGraph, c.options)
	oldPkg, ok := oldC.Packages()[name]
	if !ok {
		return nil, fmt.Errorf("%w: package %s in %s", ErrNotFound, name, oldGraph.Name())
	}
	newPkg, ok := newC.Packages()[name]
	if !ok {
		return nil, fmt.Errorf("%w: package %s in %s", ErrNotFound, name, newGraph.Name())
	}

	d := &packageDiff{checker: c, old: oldPkg, new: newPkg, newGraph: newGraph, found: newFindings()}
	if err := d.computeDiff(); err != nil {
		return nil, err
	}
	return d.found.list(c.options.IncludeCompatible), nil
}

// DiffClass compares a single class that must be an API class of both
// snapshots.
func (c *Checker) DiffClass(oldGraph, newGraph *typegraph.Graph, qualifiedName string) ([]Change, error) {
	oldClass, ok := NewAPIContainer(oldGraph, c.options).Class(qualifiedName)
	if !ok {
		return nil, fmt.Errorf("%w: class %s in %s", ErrNotFound, qualifiedName, oldGraph.Name())
	}
	newClass, ok := NewAPIContainer(newGraph, c.options).Class(qualifiedName)
	if !ok {
		return nil, fmt.Errorf("%w: class %s in %s", ErrNotFound, qualifiedName, newGraph.Name())
	}

	d := &classDiff{checker: c, old: oldClass, new: newClass, newGraph: newGraph, found: newFindings()}
	if err := d.computeDiff(); err != nil {
		return nil, err
	}
	return d.found.list(c.options.IncludeCompatible), nil
}

// findings accumulates changes keyed by element signature, in discovery order.
type findings struct {
	byElement map[string][]Change
	order     []string
}

func newFindings() *findings {
	return &findings{byElement: make(map[string][]Change)}
}

func (f *findings) add(changes ...Change) {
	for _, change := range changes {
		key := change.Element.Signature()
		if _, ok := f.byElement[key]; !ok {
			f.order = append(f.order, key)
		}
		f.byElement[key] = append(f.byElement[key], change)
	}
}

func (f *findings) list(includeCompatible bool) []Change {
	var result []Change
	for _, key := range f.order {
		for _, change := range f.byElement[key] {
			if change.Status.IsCompatible() && !includeCompatible {
				continue
			}
			result = append(result, change)
		}
	}
	return result
}

type containerDiff struct {
	checker *Checker
	old     *APIContainer
	new     *APIContainer
	found   *findings
}

func (d *containerDiff) computeDiff() error {
	missing, common := partition(d.old.Packages(), d.new.Packages())
	d.checker.logger.Debug("partitioned packages", "missing", len(missing), "common", len(common))

	for _, name := range missing {
		d.found.add(NewChange(packageElement(name), StatusMissing, ""))
	}
	for _, name := range common {
		pd := &packageDiff{
			checker:  d.checker,
			old:      d.old.Packages()[name],
			new:      d.new.Packages()[name],
			newGraph: d.new.Graph(),
			found:    d.found,
		}
		if err := pd.computeDiff(); err != nil {
			return err
		}
	}
	return nil
}

type packageDiff struct {
	checker  *Checker
	old      *APIPackage
	new      *APIPackage
	newGraph *typegraph.Graph
	found    *findings
}

func (d *packageDiff) computeDiff() error {
	missing, common := partition(d.old.Classes(), d.new.Classes())
	if len(missing) > 0 {
		d.checker.logger.Debug("classes missing from package", "package", d.old.Name(), "count", len(missing))
	}

	for _, name := range missing {
		d.found.add(NewChange(classElement(d.old.Classes()[name].Class()), StatusMissing, ""))
	}
	for _, name := range common {
		cd := &classDiff{
			checker:  d.checker,
			old:      d.old.Classes()[name],
			new:      d.new.Classes()[name],
			newGraph: d.newGraph,
			found:    d.found,
		}
		if err := cd.computeDiff(); err != nil {
			return err
		}
	}
	return nil
}

type classDiff struct {
	checker  *Checker
	old      *APIClass
	new      *APIClass
	newGraph *typegraph.Graph
	found    *findings
}

func (d *classDiff) computeDiff() error {
	d.found.add(compareClassModifiers(d.old, d.new)...)

	oldFields, newFields := d.old.Fields(), d.new.Fields()
	missing, common := partition(oldFields, newFields)
	for _, name := range missing {
		d.found.add(NewChange(fieldElement(oldFields[name]), StatusMissing, ""))
	}
	for _, name := range common {
		d.found.add(compareField(oldFields[name], newFields[name])...)
	}

	comparator := memberComparator{
		options:  d.checker.options,
		newGraph: d.newGraph,
		newClass: d.new,
	}
	oldMembers, newMembers := d.old.Members(), d.new.Members()
	for _, key := range sortedKeys(oldMembers) {
		changes, err := comparator.compareBucket(oldMembers[key], newMembers[key])
		if err != nil {
			return fmt.Errorf("comparing %s: %w", d.old.QualifiedName(), err)
		}
		d.found.add(changes...)
	}
	return nil
}

func sortedKeys(members map[memberKey][]*typegraph.Method) []memberKey {
	keys := make([]memberKey, 0, len(members))
	for key := range members {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].arity < keys[j].arity
	})
	return keys
}
