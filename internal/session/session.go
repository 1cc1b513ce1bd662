// Package session keeps per-browser display state: the active view, the
// product selection and one sort controller per table.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"locations-dashboard/internal/geo"
	"locations-dashboard/internal/models"
	"locations-dashboard/internal/observability"
	"locations-dashboard/internal/services"
	"locations-dashboard/internal/sorting"
)

type State struct {
	mu       sync.Mutex
	view     models.View
	selected services.ProductSet
	country  *sorting.Controller
	state    *sorting.Controller
	lastSeen time.Time
}

func NewState() *State {
	return &State{
		view:     models.ViewWorld,
		country:  sorting.NewController().WithLabels(geo.DisplayName(geo.CountryLookup)),
		state:    sorting.NewController().WithLabels(geo.DisplayName(geo.StateLookup)),
		lastSeen: time.Now(),
	}
}

func (s *State) View() models.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *State) SetView(v models.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

func (s *State) controller(v models.View) *sorting.Controller {
	if v == models.ViewUS {
		return s.state
	}
	return s.country
}

// Activate applies a column activation to the table of the current view.
func (s *State) Activate(key models.SortKey) (models.View, models.SortState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view, s.controller(s.view).Activate(key)
}

// SortRows orders rows with the controller of the given view.
func (s *State) SortRows(v models.View, rows []models.TableEntry) ([]models.TableEntry, models.SortState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.controller(v)
	return c.Sort(rows), c.State()
}

// Selection returns the chosen products, or all of them when nothing was
// chosen yet.
func (s *State) Selection(all []string) services.ProductSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return services.NewProductSet(all...)
	}
	return s.selected
}

func (s *State) SetSelection(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = services.NewProductSet(ids...)
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*State
	ttl      time.Duration
	logger   *slog.Logger
}

func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*State),
		ttl:      ttl,
		logger:   logger,
	}
}

func (st *Store) Get(id string) (*State, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.touch(time.Now())
	}
	return s, ok
}

func (st *Store) Create() (string, *State) {
	id := uuid.NewString()
	s := NewState()

	st.mu.Lock()
	st.sessions[id] = s
	n := len(st.sessions)
	st.mu.Unlock()

	observability.ActiveSessions.Set(float64(n))
	return id, s
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the TTL.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	observability.ActiveSessions.Set(float64(n))
	return removed
}

// RunJanitor sweeps expired sessions until ctx is done.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := st.Sweep(now); removed > 0 {
				st.logger.Debug("expired sessions removed", "count", removed)
			}
		}
	}
}

type contextKey struct{}

func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's state, or a fresh one when the
// request went around the middleware.
func FromContext(ctx context.Context) *State {
	if s, ok := ctx.Value(contextKey{}).(*State); ok {
		return s
	}
	return NewState()
}

// Middleware resolves the session cookie, creating a session when needed.
func Middleware(store *Store, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var state *State
			if c, err := r.Cookie(cookieName); err == nil {
				state, _ = store.Get(c.Value)
			}

			if state == nil {
				var id string
				id, state = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithState(r.Context(), state)))
		})
	}
}
