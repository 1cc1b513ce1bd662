package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

type DashboardView struct {
	Table    TableView
	Products []string
	Selected []string
}

// Dashboard is the full page: product picker, toggle and the active table.
func Dashboard(v DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		selected := v.Selected
		if selected == nil {
			selected = []string{}
		}
		signals, err := json.Marshal(map[string]any{"selectedProducts": selected})
		if err != nil {
			return fmt.Errorf("marshal signals: %w", err)
		}

		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Locations</title><script type="module" src="%s"></script></head><body data-signals="%s"><main><section class="products"><h2>Products</h2>`,
			datastarScript, esc(string(signals))); err != nil {
			return err
		}

		for _, id := range v.Products {
			checked := ""
			if slices.Contains(v.Selected, id) {
				checked = " checked"
			}
			if _, err := fmt.Fprintf(w, `<label><input type="checkbox" value="%s" data-bind:selected-products data-on:change="@get('/sse/products')"%s> %s</label>`,
				esc(id), checked, esc(id)); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `</section><section class="locations">`); err != nil {
			return err
		}
		if err := Toggle(v.Table.View).Render(ctx, w); err != nil {
			return err
		}
		if err := LocationsTable(v.Table).Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, `</section></main></body></html>`)
		return err
	})
}

// RenderString renders a component for an SSE patch.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
