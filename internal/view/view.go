// Package view derives the displayed task list from the canonical
// collection. Everything here is pure: inputs are never modified and the
// same inputs always give the same output.
package view

import (
	"slices"
	"strings"

	"todoTracker/internal/models/task"

	"golang.org/x/text/cases"
)

// Select filters tasks and returns them stably sorted. The returned slice
// is new; the tasks themselves are shared with the input.
func Select(tasks []*task.Task, filters task.Filters, sort task.Sort) []*task.Task {
	m := newMatcher(filters)

	res := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if m.match(t) {
			res = append(res, t)
		}
	}

	cmp := comparator(sort.Field)
	if sort.Order == task.OrderDesc {
		asc := cmp
		cmp = func(a, b *task.Task) int { return -asc(a, b) }
	}
	slices.SortStableFunc(res, cmp)

	return res
}

type matcher struct {
	status   task.Status
	priority task.Priority
	search   string
	caser    cases.Caser
}

func newMatcher(filters task.Filters) *matcher {
	// a Caser is stateful, one per call keeps Select safe to run concurrently
	caser := cases.Fold()
	search := strings.TrimSpace(filters.Search)
	if search != "" {
		search = caser.String(search)
	}

	return &matcher{
		status:   filters.Status,
		priority: filters.Priority,
		search:   search,
		caser:    caser,
	}
}

func (m *matcher) match(t *task.Task) bool {
	if m.status != "" && m.status != task.All && t.Status != m.status {
		return false
	}
	if m.priority != "" && m.priority != task.All && t.Priority != m.priority {
		return false
	}
	if m.search == "" {
		return true
	}
	return strings.Contains(m.caser.String(t.Title), m.search) ||
		strings.Contains(m.caser.String(t.Description), m.search)
}

func comparator(field task.SortField) func(a, b *task.Task) int {
	switch field {
	case task.SortByPriority:
		return func(a, b *task.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		}
	case task.SortByStatus:
		return func(a, b *task.Task) int {
			return a.Status.Rank() - b.Status.Rank()
		}
	case task.SortByDueDate:
		return compareDueDate
	case task.SortByCreatedAt:
		return func(a, b *task.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	return func(a, b *task.Task) int { return 0 }
}

// compareDueDate puts tasks without a deadline after the ones that have
// one. Descending order flips that too.
func compareDueDate(a, b *task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}
