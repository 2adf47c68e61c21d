package task

import "fmt"

// All matches every status or priority in Filters.
const All = "all"

type SortField string
type SortOrder string

const (
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
	SortByCreatedAt SortField = "createdAt"
)

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

type Filters struct {
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
	Search   string   `json:"search"`
}

type Sort struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

func DefaultFilters() Filters {
	return Filters{Status: All, Priority: All}
}

func DefaultSort() Sort {
	return Sort{Field: SortByCreatedAt, Order: OrderDesc}
}

// ParseStatusFilter accepts a status or "all"; empty means "all".
func ParseStatusFilter(s string) (Status, error) {
	if s == "" || s == All {
		return All, nil
	}
	return ParseStatus(s)
}

// ParsePriorityFilter accepts a priority or "all"; empty means "all".
func ParsePriorityFilter(s string) (Priority, error) {
	if s == "" || s == All {
		return All, nil
	}
	return ParsePriority(s)
}

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortByDueDate, SortByPriority, SortByStatus, SortByCreatedAt:
		return f, nil
	case "":
		return SortByCreatedAt, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case OrderAsc, OrderDesc:
		return o, nil
	case "":
		return OrderDesc, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}
