package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/apicheck/apicheck"
)

// Summary provides an overview of a report.
type Summary struct {
	Total     int
	Missing   int
	Warnings  int
	ByStatus  map[apicheck.Status]int
	ByPackage map[string]int
}

// Summarize counts the findings of r.
func Summarize(r *Report) Summary {
	s := Summary{
		ByStatus:  make(map[apicheck.Status]int),
		ByPackage: make(map[string]int),
	}
	for _, c := range r.Changes() {
		s.Total++
		s.ByStatus[c.Status]++
		s.ByPackage[c.Element.Package]++
		if c.Status == apicheck.StatusMissing {
			s.Missing++
		}
		if c.Status.IsWarning() {
			s.Warnings++
		}
	}
	return s
}

// HasIncompatibilities returns true if any finding remains.
func (s Summary) HasIncompatibilities() bool {
	return s.Total > 0
}

// String renders one "<STATUS>: <count>" line per status, sorted by status.
func (s Summary) String() string {
	statuses := make([]string, 0, len(s.ByStatus))
	for status := range s.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)

	var b strings.Builder
	fmt.Fprintf(&b, "total: %d\n", s.Total)
	for _, status := range statuses {
		fmt.Fprintf(&b, "%s: %d\n", status, s.ByStatus[apicheck.Status(status)])
	}
	return b.String()
}
