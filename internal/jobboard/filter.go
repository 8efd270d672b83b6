// Package jobboard filters the public job list and caches the listings shown
// on public pages.
package jobboard

import (
	"strings"

	"github.com/samber/lo"

	"github.com/azenia/website/internal/db"
)

// AllDepartments disables the department filter.
const AllDepartments = "all"

// Filter holds the job board search inputs.
type Filter struct {
	Query      string
	Location   string
	Department string
}

// IsZero reports whether the filter matches every job.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" &&
		strings.TrimSpace(f.Location) == "" &&
		(f.Department == "" || f.Department == AllDepartments)
}

// Match reports whether job satisfies every predicate of f.
func (f Filter) Match(job db.Job) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(job.Title), q) &&
			!strings.Contains(strings.ToLower(job.Department), q) &&
			!strings.Contains(strings.ToLower(job.Description), q) {
			return false
		}
	}
	if loc := strings.ToLower(strings.TrimSpace(f.Location)); loc != "" {
		if !strings.Contains(strings.ToLower(job.Location), loc) {
			return false
		}
	}
	if f.Department != "" && f.Department != AllDepartments && job.Department != f.Department {
		return false
	}
	return true
}

// Apply returns the jobs matching f in their original order.
func Apply(jobs []db.Job, f Filter) []db.Job {
	return lo.Filter(jobs, func(job db.Job, _ int) bool {
		return f.Match(job)
	})
}

// Departments returns "all" followed by each distinct department in
// first-seen order.
func Departments(jobs []db.Job) []string {
	depts := lo.Uniq(lo.FilterMap(jobs, func(job db.Job, _ int) (string, bool) {
		return job.Department, job.Department != ""
	}))
	return append([]string{AllDepartments}, depts...)
}
