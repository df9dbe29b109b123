package report

import (
	"sort"

	"github.com/LegacyCodeHQ/apicheck/apicheck"
)

// Options controls how findings are collected into a report.
type Options struct {
	// Deduplicate drops findings whose canonical string was already seen.
	Deduplicate bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Deduplicate: true}
}

// Report is an ordered, immutable list of findings.
//
// Order: missing packages first, then one block per package holding its
// missing classes and members followed by every other finding, each group
// sorted by canonical string.
type Report struct {
	missingPackages []apicheck.Change
	packages        []packageBlock
}

type packageBlock struct {
	name    string
	changes []apicheck.Change
}

// New builds a report from raw findings in any discovery order.
func New(changes []apicheck.Change, opts Options) *Report {
	if opts.Deduplicate {
		changes = Deduplicate(changes)
	}

	r := &Report{}
	byPackage := make(map[string][]apicheck.Change)
	for _, c := range changes {
		if c.Element.Kind == apicheck.ElementPackage {
			r.missingPackages = append(r.missingPackages, c)
			continue
		}
		byPackage[c.Element.Package] = append(byPackage[c.Element.Package], c)
	}
	sortChanges(r.missingPackages)

	names := make([]string, 0, len(byPackage))
	for name := range byPackage {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		block := byPackage[name]
		sortChanges(block)
		r.packages = append(r.packages, packageBlock{name: name, changes: block})
	}
	return r
}

// Deduplicate removes findings with an identical canonical string, keeping
// the first occurrence.
func Deduplicate(changes []apicheck.Change) []apicheck.Change {
	seen := make(map[string]bool, len(changes))
	result := make([]apicheck.Change, 0, len(changes))
	for _, c := range changes {
		key := c.Canonical()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, c)
	}
	return result
}

func sortChanges(changes []apicheck.Change) {
	sort.SliceStable(changes, func(i, j int) bool {
		mi := changes[i].Status == apicheck.StatusMissing
		mj := changes[j].Status == apicheck.StatusMissing
		if mi != mj {
			return mi
		}
		return changes[i].Canonical() < changes[j].Canonical()
	})
}

// Changes returns the findings in report order.
func (r *Report) Changes() []apicheck.Change {
	result := append([]apicheck.Change(nil), r.missingPackages...)
	for _, block := range r.packages {
		result = append(result, block.changes...)
	}
	return result
}

// Lines returns one "<signature> <STATUS> [message]" line per finding, in
// report order and without package headers.
func (r *Report) Lines() []string {
	changes := r.Changes()
	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		lines = append(lines, c.Canonical())
	}
	return lines
}

// IsEmpty reports whether the report holds no findings.
func (r *Report) IsEmpty() bool {
	return len(r.missingPackages) == 0 && len(r.packages) == 0
}

// Filter returns a report without the findings the whitelist matches.
func (r *Report) Filter(w *Whitelist) *Report {
	if w == nil || w.Len() == 0 {
		return r
	}

	filtered := &Report{}
	for _, c := range r.missingPackages {
		if !w.Matches(c.Canonical()) {
			filtered.missingPackages = append(filtered.missingPackages, c)
		}
	}
	for _, block := range r.packages {
		var kept []apicheck.Change
		for _, c := range block.changes {
			if !w.Matches(c.Canonical()) {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			filtered.packages = append(filtered.packages, packageBlock{name: block.name, changes: kept})
		}
	}
	return filtered
}
