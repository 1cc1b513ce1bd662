package services

import (
	"bufio"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"locations-dashboard/internal/geo"
	"locations-dashboard/internal/models"
	"locations-dashboard/internal/observability"
)

const (
	cacheVersion = "v1"
	maxWorkers   = 4

	// maxMemoEntries bounds the number of memoized tables. The oldest entry
	// is evicted first.
	maxMemoEntries = 256
)

type cachedPayload struct {
	Payload      models.AnalyticsPayload
	LastModified time.Time
}

// Locations owns the analytics payload and memoizes aggregations over it.
type Locations struct {
	mu           sync.RWMutex
	payload      *models.AnalyticsPayload
	version      uint64
	lastModified time.Time
	rows         map[string][]models.TableEntry
	memoOrder    []string

	cacheDir string
	logger   *slog.Logger
}

func NewLocations() *Locations {
	return &Locations{
		payload: &models.AnalyticsPayload{},
		rows:    make(map[string][]models.TableEntry),
		logger:  slog.Default(),
	}
}

// WithCacheDir enables the on-disk gob cache of decoded payloads.
func (l *Locations) WithCacheDir(dir string) *Locations {
	l.cacheDir = dir
	return l
}

// SetPayload installs a new payload and drops every memoized aggregation.
func (l *Locations) SetPayload(p *models.AnalyticsPayload) {
	if p == nil {
		p = &models.AnalyticsPayload{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.payload = p
	l.version++
	l.lastModified = time.Now()
	l.rows = make(map[string][]models.TableEntry)
	l.memoOrder = nil
}

func (l *Locations) LoadFromJSON(ctx context.Context, filename string) error {
	if cached, err := l.loadFromCache(filename); err == nil {
		fileInfo, err := os.Stat(filename)
		if err == nil && fileInfo.ModTime().Before(cached.LastModified) {
			l.SetPayload(&cached.Payload)
			l.logger.Info("loaded from cache", "products", len(cached.Payload.Products()))
			return nil
		}
	}

	start := time.Now()
	l.logger.Info("decoding analytics payload", "filename", filename)

	payload, err := decodePayload(ctx, filename)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	l.SetPayload(payload)

	if err := l.saveToCache(filename); err != nil {
		l.logger.Warn("failed to save cache", "error", err)
	}

	l.logger.Info("analytics payload loaded",
		"products", len(payload.Products()),
		"duration", time.Since(start))
	return nil
}

func decodePayload(ctx context.Context, filename string) (*models.AnalyticsPayload, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var payload models.AnalyticsPayload
	if err := json.NewDecoder(bufio.NewReader(file)).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Totals == nil && payload.Sales == nil && payload.Views == nil {
		return nil, fmt.Errorf("payload has no totals, sales or views")
	}
	return &payload, nil
}

// Warm precomputes the all-products aggregation for every mode.
func (l *Locations) Warm(ctx context.Context) error {
	all := NewProductSet(l.Products()...)

	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for _, mode := range []models.LocationMode{models.ModeCountry, models.ModeState} {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			rows := l.Rows(mode, all)
			l.logger.Debug("warmed aggregation", "mode", mode, "rows", len(rows))
			return nil
		})
	}
	return g.Wait()
}

// Rows returns the aggregated rows for a mode and product selection. Products
// missing from the payload are ignored. The returned slice is shared with the
// memo cache and must not be modified.
func (l *Locations) Rows(mode models.LocationMode, selected ProductSet) []models.TableEntry {
	l.mu.RLock()
	payload, version := l.payload, l.version
	selected = selected.Intersect(payload.Products())
	key := memoKey(version, mode, selected)
	rows, ok := l.rows[key]
	l.mu.RUnlock()

	if ok {
		observability.AggregationCacheHits.Inc()
		return rows
	}

	rows = Aggregate(payload, selected, StrategyFor(mode))
	observability.Aggregations.WithLabelValues(string(mode)).Inc()

	l.mu.Lock()
	if _, exists := l.rows[key]; !exists && l.version == version {
		if len(l.memoOrder) >= maxMemoEntries {
			delete(l.rows, l.memoOrder[0])
			l.memoOrder = l.memoOrder[1:]
		}
		l.rows[key] = rows
		l.memoOrder = append(l.memoOrder, key)
	}
	l.mu.Unlock()

	return rows
}

func memoKey(version uint64, mode models.LocationMode, selected ProductSet) string {
	return fmt.Sprintf("%d|%s|%s", version, mode, selected.Key())
}

func (l *Locations) Products() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.payload.Products()
}

// Stats reports payload and cache sizes for monitoring.
func (l *Locations) Stats() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return map[string]any{
		"products":          len(l.payload.Products()),
		"payload_version":   l.version,
		"last_loaded":       l.lastModified,
		"memoized_tables":   len(l.rows),
		"state_positions":   len(geo.USStates),
		"country_locations": countLocations(l.payload.Totals),
	}
}

func countLocations(m models.ProductLocations) int {
	seen := make(map[string]struct{})
	for _, locations := range m {
		for k := range locations {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

func (l *Locations) getCacheFilename(path string) string {
	name := strings.ReplaceAll(path, string(filepath.Separator), "_")
	return filepath.Join(l.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (l *Locations) saveToCache(path string) error {
	if l.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(l.getCacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	l.mu.RLock()
	defer l.mu.RUnlock()

	return gob.NewEncoder(file).Encode(cachedPayload{
		Payload:      *l.payload,
		LastModified: l.lastModified,
	})
}

func (l *Locations) loadFromCache(path string) (*cachedPayload, error) {
	if l.cacheDir == "" {
		return nil, os.ErrNotExist
	}

	file, err := os.Open(l.getCacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data cachedPayload
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
