package models

import "fmt"

type SortKey string

const (
	SortByName   SortKey = "name"
	SortByTotals SortKey = "totals"
	SortBySales  SortKey = "sales"
	SortByViews  SortKey = "views"
)

// SortKeys lists the table columns in display order.
var SortKeys = []SortKey{SortByName, SortBySales, SortByViews, SortByTotals}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByName, SortByTotals, SortBySales, SortByViews:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

func ParseSortDirection(s string) (SortDirection, error) {
	switch s {
	case "asc", string(Ascending):
		return Ascending, nil
	case "desc", string(Descending):
		return Descending, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

func (d SortDirection) Flip() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

type SortState struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

// Indicator is the aria-sort value for a column.
func (s SortState) Indicator(column SortKey) string {
	if s.Key != column {
		return "none"
	}
	return string(s.Direction)
}
