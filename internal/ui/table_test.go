package ui

import (
	"context"
	"strings"
	"testing"

	"locations-dashboard/internal/geo"
	"locations-dashboard/internal/models"
)

func render(t *testing.T, v TableView) string {
	t.Helper()
	html, err := RenderString(context.Background(), LocationsTable(v))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return html
}

func TestLocationsTable_CountryRows(t *testing.T) {
	html := render(t, TableView{
		View: models.ViewWorld,
		Rows: []models.TableEntry{
			{Name: "US", Totals: 100000, Sales: 2, Views: 1500},
			{Name: "Other", Totals: 4050, Sales: 1, Views: 3},
		},
		Sort:   models.SortState{Key: models.SortByTotals, Direction: models.Descending},
		Lookup: geo.CountryLookup,
	})

	expected := []string{
		`<div id="locations" data-view="world">`,
		`<table class="modern-table">`,
		`<th aria-sort="descending"><button type="button" data-on:click="@get('/sse/sort?key=totals')">Total</button></th>`,
		`<th aria-sort="none"><button type="button" data-on:click="@get('/sse/sort?key=name')">Country</button></th>`,
		`<span class="flag">` + FlagGlyph("US") + `</span> United States`,
		`<td>$1,000</td>`,
		`<td>1,500</td>`,
		`<td>Other</td>`,
		`<td>$40.50</td>`,
	}
	for _, content := range expected {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q\n%s", content, html)
		}
	}

	if strings.Index(html, "United States") > strings.Index(html, "Other") {
		t.Error("rows should render in the given order")
	}
	if strings.Contains(html, EmptyMessage) {
		t.Error("placeholder should not render with rows")
	}
}

func TestLocationsTable_StateRows(t *testing.T) {
	html := render(t, TableView{
		View:   models.ViewUS,
		Rows:   []models.TableEntry{{Name: "Alabama", Totals: 100, Sales: 1, Views: 10}},
		Sort:   models.SortState{Key: models.SortByName, Direction: models.Ascending},
		Lookup: geo.StateLookup,
	})

	for _, content := range []string{
		`data-view="us"`,
		`<th aria-sort="ascending"><button type="button" data-on:click="@get('/sse/sort?key=name')">State</button></th>`,
		`<tr><td>Alabama</td><td>1</td><td>10</td><td>$1</td></tr>`,
	} {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q\n%s", content, html)
		}
	}
	if strings.Contains(html, `class="flag"`) {
		t.Error("state rows carry no flag")
	}
}

func TestLocationsTable_Empty(t *testing.T) {
	html := render(t, TableView{View: models.ViewWorld, Lookup: geo.CountryLookup})

	if !strings.Contains(html, `<div class="placeholder">Nothing yet</div>`) {
		t.Errorf("expected placeholder, got %s", html)
	}
	if strings.Contains(html, "<table") {
		t.Error("empty result should not render a table shell")
	}
	if !strings.HasPrefix(html, `<div id="locations"`) {
		t.Error("placeholder should keep the patch target id")
	}
}

func TestLocationsTable_EscapesLabels(t *testing.T) {
	html := render(t, TableView{
		View:   models.ViewWorld,
		Rows:   []models.TableEntry{{Name: "<script>", Views: 1}},
		Lookup: geo.CountryLookup,
	})

	if strings.Contains(html, "<script>") {
		t.Errorf("label was not escaped: %s", html)
	}
}

func TestLocationsTable_UnknownCountryHasNoFlag(t *testing.T) {
	html := render(t, TableView{
		View:   models.ViewWorld,
		Rows:   []models.TableEntry{{Name: "ZZ", Sales: 1}},
		Lookup: geo.CountryLookup,
	})

	if strings.Contains(html, `class="flag"`) {
		t.Error("unknown country should render without a flag")
	}
	if !strings.Contains(html, "<td>ZZ</td>") {
		t.Errorf("unknown country should fall back to its key: %s", html)
	}
}

func TestToggle(t *testing.T) {
	html, err := RenderString(context.Background(), Toggle(models.ViewUS))
	if err != nil {
		t.Fatal(err)
	}

	for _, content := range []string{
		`<div id="locations-toggle" role="tablist">`,
		`aria-selected="false" data-on:click="@get('/sse/view?view=world')">World</button>`,
		`aria-selected="true" data-on:click="@get('/sse/view?view=us')">United States</button>`,
	} {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q\n%s", content, html)
		}
	}
}

func TestDashboard(t *testing.T) {
	html, err := RenderString(context.Background(), Dashboard(DashboardView{
		Table: TableView{
			View:   models.ViewWorld,
			Rows:   []models.TableEntry{{Name: "FR", Totals: 500, Sales: 1, Views: 5}},
			Sort:   models.SortState{Key: models.SortByTotals, Direction: models.Descending},
			Lookup: geo.CountryLookup,
		},
		Products: []string{"p1", "p2"},
		Selected: []string{"p1"},
	}))
	if err != nil {
		t.Fatal(err)
	}

	for _, content := range []string{
		"<!DOCTYPE html>",
		`value="p1" data-bind:selected-products data-on:change="@get('/sse/products')" checked>`,
		`value="p2" data-bind:selected-products data-on:change="@get('/sse/products')">`,
		`id="locations-toggle"`,
		`id="locations"`,
		"France",
		"selectedProducts",
	} {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}
