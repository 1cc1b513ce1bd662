// Package sorting holds the column sort state of a locations table.
package sorting

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"locations-dashboard/internal/models"
)

// DefaultState is the sort applied before any column is activated.
var DefaultState = models.SortState{Key: models.SortByTotals, Direction: models.Descending}

// DefaultDirection is the direction a column takes when it is first selected.
func DefaultDirection(key models.SortKey) models.SortDirection {
	if key == models.SortByName {
		return models.Ascending
	}
	return models.Descending
}

// Next is the transition on a column header activation.
func Next(state models.SortState, key models.SortKey) models.SortState {
	if state.Key == key {
		return models.SortState{Key: key, Direction: state.Direction.Flip()}
	}
	return models.SortState{Key: key, Direction: DefaultDirection(key)}
}

// Controller owns the sort state of one table. It is not safe for
// concurrent use; callers serialize access per display session.
type Controller struct {
	state    models.SortState
	collator *collate.Collator
	label    func(name string) string
}

func NewController() *Controller {
	return NewControllerWithState(DefaultState)
}

func NewControllerWithState(state models.SortState) *Controller {
	return &Controller{
		state:    state,
		collator: collate.New(language.English, collate.IgnoreCase),
		label:    func(name string) string { return name },
	}
}

// WithLabels makes the name column compare the text a row is displayed
// with instead of its key.
func (c *Controller) WithLabels(label func(name string) string) *Controller {
	c.label = label
	return c
}

func (c *Controller) State() models.SortState {
	return c.state
}

// Activate selects a column and returns the resulting state.
func (c *Controller) Activate(key models.SortKey) models.SortState {
	c.state = Next(c.state, key)
	return c.state
}

func (c *Controller) Compare(a, b models.TableEntry) int {
	var result int
	switch c.state.Key {
	case models.SortByName:
		result = c.collator.CompareString(c.label(a.Name), c.label(b.Name))
	case models.SortBySales:
		result = cmp.Compare(a.Sales, b.Sales)
	case models.SortByViews:
		result = cmp.Compare(a.Views, b.Views)
	default:
		result = cmp.Compare(a.Totals, b.Totals)
	}

	if c.state.Direction == models.Descending {
		return -result
	}
	return result
}

// Sort returns a stably sorted copy of rows.
func (c *Controller) Sort(rows []models.TableEntry) []models.TableEntry {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, c.Compare)
	return sorted
}
