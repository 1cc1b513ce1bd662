package services

import (
	"slices"
	"strings"

	"locations-dashboard/internal/geo"
	"locations-dashboard/internal/models"
)

// ProductSet is the filter applied to the payload before aggregation.
type ProductSet map[string]struct{}

func NewProductSet(ids ...string) ProductSet {
	set := make(ProductSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s ProductSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s ProductSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Intersect keeps only the members listed in ids.
func (s ProductSet) Intersect(ids []string) ProductSet {
	out := make(ProductSet, min(len(s), len(ids)))
	for _, id := range ids {
		if s.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Key is a canonical representation used for memoization.
func (s ProductSet) Key() string {
	return strings.Join(s.IDs(), "\x1f")
}

// LocationStrategy extracts per-location figures for one product.
type LocationStrategy interface {
	Collect(p *models.AnalyticsPayload, product string, add func(name string, totals, sales, views int64))
}

// Aggregate reduces the payload to one row per location, restricted to the
// selected products. Rows keep the order of their first contribution and
// rows with no activity are dropped.
func Aggregate(p *models.AnalyticsPayload, selected ProductSet, strategy LocationStrategy) []models.TableEntry {
	if p == nil {
		return nil
	}

	acc := newAccumulator()
	for _, product := range sortedKeys(p.Totals) {
		if !selected.Has(product) {
			continue
		}
		strategy.Collect(p, product, acc.add)
	}
	return acc.rows()
}

// CountryStrategy keys rows by the payload's location key.
type CountryStrategy struct{}

func (CountryStrategy) Collect(p *models.AnalyticsPayload, product string, add func(string, int64, int64, int64)) {
	for _, location := range sortedKeys(p.Totals[product]) {
		totals, _ := p.Totals.Lookup(product, location)
		sales, _ := p.Sales.Lookup(product, location)
		views, _ := p.Views.Lookup(product, location)

		name := location
		if name == "" {
			name = geo.OtherLocation
		}
		add(name, totals.Sum(), sales.Sum(), views.Sum())
	}
}

// StateStrategy expands positional state series. Names[i] labels position i;
// positions without a name are skipped.
type StateStrategy struct {
	Names []string
}

func (s StateStrategy) Collect(p *models.AnalyticsPayload, product string, add func(string, int64, int64, int64)) {
	for _, location := range sortedKeys(p.Totals[product]) {
		totals, _ := p.Totals.Lookup(product, location)
		sales, _ := p.Sales.Lookup(product, location)
		views, _ := p.Views.Lookup(product, location)
		if !totals.Sequence || !sales.Sequence || !views.Sequence {
			continue
		}

		for i := range totals.Series {
			if i >= len(s.Names) || s.Names[i] == "" {
				continue
			}
			add(s.Names[i], totals.At(i), sales.At(i), views.At(i))
		}
	}
}

// StrategyFor returns the strategy backing an aggregation mode.
func StrategyFor(mode models.LocationMode) LocationStrategy {
	if mode == models.ModeState {
		return StateStrategy{Names: geo.USStates}
	}
	return CountryStrategy{}
}

type accumulator struct {
	index map[string]int
	order []models.TableEntry
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[string]int)}
}

func (a *accumulator) add(name string, totals, sales, views int64) {
	i, ok := a.index[name]
	if !ok {
		i = len(a.order)
		a.index[name] = i
		a.order = append(a.order, models.TableEntry{Name: name})
	}
	row := &a.order[i]
	row.Totals += totals
	row.Sales += sales
	row.Views += views
}

func (a *accumulator) rows() []models.TableEntry {
	result := make([]models.TableEntry, 0, len(a.order))
	for _, row := range a.order {
		if row.Empty() {
			continue
		}
		result = append(result, row)
	}
	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
