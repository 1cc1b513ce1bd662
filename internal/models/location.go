package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Value is a single analytics figure. Country payloads carry a scalar,
// state payloads carry one number per US state position.
type Value struct {
	Scalar   int64
	Series   []int64
	Sequence bool
}

func Scalar(n int64) Value {
	return Value{Scalar: n}
}

func Series(ns ...int64) Value {
	return Value{Series: ns, Sequence: true}
}

// Sum collapses the value to one number.
func (v Value) Sum() int64 {
	if !v.Sequence {
		return v.Scalar
	}
	var total int64
	for _, n := range v.Series {
		total += n
	}
	return total
}

// At returns the figure at a state position, 0 when out of range.
func (v Value) At(i int) int64 {
	if !v.Sequence || i < 0 || i >= len(v.Series) {
		return 0
	}
	return v.Series[i]
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var raw []json.Number
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode series: %w", err)
		}
		var series []int64
		for i, n := range raw {
			parsed, err := parseNumber(n)
			if err != nil {
				return fmt.Errorf("series position %d: %w", i, err)
			}
			series = append(series, parsed)
		}
		*v = Value{Series: series, Sequence: true}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode scalar: %w", err)
	}
	parsed, err := parseNumber(n)
	if err != nil {
		return err
	}
	*v = Value{Scalar: parsed}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Sequence {
		if v.Series == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Series)
	}
	return json.Marshal(v.Scalar)
}

func parseNumber(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", n.String(), err)
	}
	return int64(math.Round(f)), nil
}

// ProductLocations maps product ID to location key to figure.
type ProductLocations map[string]map[string]Value

// Lookup returns the figure for a product and location. Missing entries
// are reported with ok == false and a zero Value.
func (p ProductLocations) Lookup(product, location string) (Value, bool) {
	locations, ok := p[product]
	if !ok {
		return Value{}, false
	}
	v, ok := locations[location]
	return v, ok
}

// AnalyticsPayload holds three parallel product x location mappings.
// Revenue in Totals is USD cents.
type AnalyticsPayload struct {
	Totals ProductLocations `json:"totals"`
	Sales  ProductLocations `json:"sales"`
	Views  ProductLocations `json:"views"`
}

// Products returns every product ID that appears in any mapping, sorted.
func (p *AnalyticsPayload) Products() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, m := range []ProductLocations{p.Totals, p.Sales, p.Views} {
		for id := range m {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

type TableEntry struct {
	Name   string `json:"name"`
	Totals int64  `json:"totals"`
	Sales  int64  `json:"sales"`
	Views  int64  `json:"views"`
}

// Empty reports whether the row has no activity at all.
func (e TableEntry) Empty() bool {
	return e.Totals == 0 && e.Sales == 0 && e.Views == 0
}

type LocationMode string

const (
	ModeCountry LocationMode = "country"
	ModeState   LocationMode = "state"
)

func ParseLocationMode(s string) (LocationMode, error) {
	switch LocationMode(s) {
	case ModeCountry, "":
		return ModeCountry, nil
	case ModeState:
		return ModeState, nil
	default:
		return "", fmt.Errorf("unknown location mode %q", s)
	}
}

// View is the top-level table toggle.
type View string

const (
	ViewWorld View = "world"
	ViewUS    View = "us"
)

func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewWorld:
		return ViewWorld, nil
	case ViewUS:
		return ViewUS, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Mode is the aggregation mode backing the view.
func (v View) Mode() LocationMode {
	if v == ViewUS {
		return ModeState
	}
	return ModeCountry
}
