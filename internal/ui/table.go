// Package ui renders the locations dashboard as templ components.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"locations-dashboard/internal/geo"
	"locations-dashboard/internal/models"
)

const (
	TableElementID  = "locations"
	ToggleElementID = "locations-toggle"
	EmptyMessage    = "Nothing yet"
)

// TableView is everything needed to draw one locations table. Rows are
// expected in display order.
type TableView struct {
	View   models.View
	Rows   []models.TableEntry
	Sort   models.SortState
	Lookup geo.Lookup
}

type column struct {
	key   models.SortKey
	title string
}

func columns(view models.View) []column {
	name := "Country"
	if view == models.ViewUS {
		name = "State"
	}
	return []column{
		{models.SortByName, name},
		{models.SortBySales, "Sales"},
		{models.SortByViews, "Views"},
		{models.SortByTotals, "Total"},
	}
}

// LocationsTable renders the table, or the placeholder when there are no rows.
func LocationsTable(v TableView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s" data-view="%s">`, TableElementID, esc(string(v.View)))

		if len(v.Rows) == 0 {
			fmt.Fprintf(&b, `<div class="placeholder">%s</div></div>`, EmptyMessage)
			_, err := io.WriteString(w, b.String())
			return err
		}

		b.WriteString(`<table class="modern-table"><thead><tr>`)
		for _, col := range columns(v.View) {
			fmt.Fprintf(&b, `<th aria-sort="%s"><button type="button" data-on:click="@get('/sse/sort?key=%s')">%s</button></th>`,
				v.Sort.Indicator(col.key), esc(string(col.key)), esc(col.title))
		}
		b.WriteString(`</tr></thead><tbody>`)

		lookup := v.Lookup
		if lookup == nil {
			lookup = geo.StateLookup
		}
		for _, row := range v.Rows {
			label, flagCode := lookup.Label(row.Name)
			b.WriteString(`<tr><td>`)
			if flag := FlagGlyph(flagCode); flag != "" {
				fmt.Fprintf(&b, `<span class="flag">%s</span> `, flag)
			}
			fmt.Fprintf(&b, `%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				esc(label),
				GroupDigits(row.Sales),
				GroupDigits(row.Views),
				esc(FormatPrice("usd", row.Totals, PriceOptions{Symbol: SymbolShort, NoCentsIfWhole: true})),
			)
		}
		b.WriteString(`</tbody></table></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Toggle renders the world/us selector.
func Toggle(active models.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s" role="tablist">`, ToggleElementID)
		for _, opt := range []struct {
			view  models.View
			label string
		}{
			{models.ViewWorld, "World"},
			{models.ViewUS, "United States"},
		} {
			fmt.Fprintf(&b, `<button type="button" role="tab" aria-selected="%t" data-on:click="@get('/sse/view?view=%s')">%s</button>`,
				opt.view == active, esc(string(opt.view)), esc(opt.label))
		}
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func esc(s string) string {
	return templ.EscapeString(s)
}
