package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"locations-dashboard/internal/errors"
	"locations-dashboard/internal/geo"
	"locations-dashboard/internal/models"
	"locations-dashboard/internal/observability"
	"locations-dashboard/internal/services"
	"locations-dashboard/internal/session"
	"locations-dashboard/internal/ui"
)

type SSEHandlers struct {
	locations *services.Locations
	logger    *slog.Logger
}

func NewSSEHandlers(locations *services.Locations, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		locations: locations,
		logger:    logger,
	}
}

// TableView builds the table for a view from the session's selection and
// sort memory.
func TableView(locations *services.Locations, state *session.State, view models.View) ui.TableView {
	selection := state.Selection(locations.Products())
	rows, sortState := state.SortRows(view, locations.Rows(view.Mode(), selection))

	return ui.TableView{
		View:   view,
		Rows:   rows,
		Sort:   sortState,
		Lookup: geo.ForMode(view.Mode()),
	}
}

func (h *SSEHandlers) patchTable(sse *datastar.ServerSentEventGenerator, r *http.Request, state *session.State, withToggle bool) error {
	view := state.View()

	if withToggle {
		html, err := ui.RenderString(r.Context(), ui.Toggle(view))
		if err != nil {
			return err
		}
		if err := sse.PatchElements(html); err != nil {
			return err
		}
	}

	html, err := ui.RenderString(r.Context(), ui.LocationsTable(TableView(h.locations, state, view)))
	if err != nil {
		return err
	}
	return sse.PatchElements(html)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleLocations(w http.ResponseWriter, r *http.Request) {
	state := session.FromContext(r.Context())
	sse := datastar.NewSSE(w, r)

	if err := h.patchTable(sse, r, state, true); err != nil {
		h.logger.Error("patch locations table", "error", err)
		return
	}
	flush(w)
}

// HandleSort activates a column header on the current view's table.
func (h *SSEHandlers) HandleSort(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("key")
	key, err := models.ParseSortKey(raw)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InvalidParam("key", raw, err), observability.GetRequestID(r.Context()))
		return
	}

	state := session.FromContext(r.Context())
	view, sortState := state.Activate(key)
	observability.SortActivations.WithLabelValues(string(view), string(key)).Inc()
	h.logger.Debug("sort column activated", "view", view, "key", sortState.Key, "direction", sortState.Direction)

	sse := datastar.NewSSE(w, r)
	if err := h.patchTable(sse, r, state, false); err != nil {
		h.logger.Error("patch sorted table", "error", err)
		return
	}
	flush(w)
}

func (h *SSEHandlers) HandleView(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("view")
	view, err := models.ParseView(raw)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InvalidParam("view", raw, err), observability.GetRequestID(r.Context()))
		return
	}

	state := session.FromContext(r.Context())
	state.SetView(view)

	sse := datastar.NewSSE(w, r)
	if err := h.patchTable(sse, r, state, true); err != nil {
		h.logger.Error("patch toggled view", "error", err)
		return
	}
	flush(w)
}

type productSignals struct {
	SelectedProducts []string `json:"selectedProducts"`
}

// HandleProducts replaces the session's product selection from datastar signals.
func (h *SSEHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	var signals productSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.BadSignals(err), observability.GetRequestID(r.Context()))
		return
	}

	state := session.FromContext(r.Context())
	known := services.NewProductSet(signals.SelectedProducts...).Intersect(h.locations.Products())
	state.SetSelection(known.IDs())

	sse := datastar.NewSSE(w, r)
	if err := h.patchTable(sse, r, state, false); err != nil {
		h.logger.Error("patch product selection", "error", err)
		return
	}
	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	state := session.FromContext(r.Context())
	sse := datastar.NewSSE(w, r)

	if err := h.patchTable(sse, r, state, true); err != nil {
		h.logger.Error("patch locations table", "error", err)
		return
	}

	signals, err := json.Marshal(map[string]any{
		"stats": h.locations.Stats(),
	})
	if err != nil {
		h.logger.Error("marshal stats signals", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Error("patch stats signals", "error", err)
		return
	}
	flush(w)
}
