package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"locations-dashboard/internal/errors"
	"locations-dashboard/internal/geo"
	"locations-dashboard/internal/models"
	"locations-dashboard/internal/observability"
	"locations-dashboard/internal/services"
	"locations-dashboard/internal/sorting"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	locations *services.Locations
	logger    *slog.Logger
}

func NewAPIHandlers(locations *services.Locations, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		locations: locations,
		logger:    logger,
	}
}

type locationsResponse struct {
	Mode     models.LocationMode `json:"mode"`
	Products []string            `json:"products"`
	Sort     models.SortState    `json:"sort"`
	Rows     []models.TableEntry `json:"rows"`
}

// HandleLocations serves aggregated, sorted rows as JSON.
func (h *APIHandlers) HandleLocations(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	q := r.URL.Query()

	mode, err := models.ParseLocationMode(q.Get("mode"))
	if err != nil {
		errors.WriteError(w, h.logger, errors.InvalidParam("mode", q.Get("mode"), err), requestID)
		return
	}

	state, err := parseSortState(q.Get("sort"), q.Get("dir"))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	products := h.locations.Products()
	selected := services.NewProductSet(products...)
	if q.Has("products") {
		selected = services.NewProductSet(splitList(q.Get("products"))...).Intersect(products)
	}

	sorter := sorting.NewControllerWithState(state).WithLabels(geo.DisplayName(geo.ForMode(mode)))
	rows := sorter.Sort(h.locations.Rows(mode, selected))

	w.Header().Set("Cache-Control", cacheControl)
	errors.WriteSuccess(w, locationsResponse{
		Mode:     mode,
		Products: selected.IDs(),
		Sort:     state,
		Rows:     rows,
	})
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	products := h.locations.Products()
	if products == nil {
		products = []string{}
	}
	w.Header().Set("Cache-Control", cacheControl)
	errors.WriteSuccess(w, products)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if len(h.locations.Products()) == 0 {
		errors.WriteError(w, h.logger, errors.NotReady("analytics payload not loaded"), observability.GetRequestID(r.Context()))
		return
	}

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.locations.Stats())
}

func parseSortState(key, dir string) (models.SortState, error) {
	if key == "" && dir == "" {
		return sorting.DefaultState, nil
	}
	if key == "" {
		key = string(sorting.DefaultState.Key)
	}

	k, err := models.ParseSortKey(key)
	if err != nil {
		return models.SortState{}, errors.InvalidParam("sort", key, err)
	}

	d := sorting.DefaultDirection(k)
	if dir != "" {
		if d, err = models.ParseSortDirection(dir); err != nil {
			return models.SortState{}, errors.InvalidParam("dir", dir, err)
		}
	}
	return models.SortState{Key: k, Direction: d}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
