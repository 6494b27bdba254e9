package repositories

import (
	"context"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"slices"
	"sync"
)

// MemoryStore implements the drop, route and driver ports in process memory.
// A single mutex serializes every operation, which gives the assignment path
// the same all-or-nothing behavior as the Postgres transaction.
type MemoryStore struct {
	mu sync.Mutex

	drops     map[string]domain.Drop
	dropOrder []string

	routes     map[string]domain.Route
	routeOrder []string

	assignments   map[string]domain.DriverAssignment
	latestByRoute map[string]string

	drivers map[string]domain.Driver

	// Number of SavePlan calls that wrote data.
	writes int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drops:         make(map[string]domain.Drop),
		routes:        make(map[string]domain.Route),
		assignments:   make(map[string]domain.DriverAssignment),
		latestByRoute: make(map[string]string),
		drivers:       make(map[string]domain.Driver),
	}
}

func (s *MemoryStore) PutDrops(drops ...domain.Drop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range drops {
		if _, ok := s.drops[d.ID]; !ok {
			s.dropOrder = append(s.dropOrder, d.ID)
		}
		d.Items = slices.Clone(d.Items)
		s.drops[d.ID] = d
	}
}

func (s *MemoryStore) PutDrivers(drivers ...domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range drivers {
		s.drivers[d.ID] = d
	}
}

// PutRoute stores a route as-is, bypassing plan validation.
func (s *MemoryStore) PutRoute(r domain.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[r.ID]; !ok {
		s.routeOrder = append(s.routeOrder, r.ID)
	}
	r.Stops = slices.Clone(r.Stops)
	s.routes[r.ID] = r
}

func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *MemoryStore) Drop(id string) (domain.Drop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drops[id]
	return d, ok
}

func (s *MemoryStore) ListPlannableDrops(ctx context.Context) ([]domain.Drop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Drop, 0, len(s.dropOrder))
	for _, id := range s.dropOrder {
		d := s.drops[id]
		if !d.Plannable() {
			continue
		}
		d.Items = slices.Clone(d.Items)
		out = append(out, d)
	}
	return out, nil
}

func (s *MemoryStore) SavePlan(ctx context.Context, routes []domain.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before the first write.
	seen := make(map[string]string)
	for _, r := range routes {
		if _, exists := s.routes[r.ID]; exists {
			return &domain.ConflictError{Detail: "route " + r.ID + " already exists"}
		}
		for _, id := range r.DropIDs() {
			d, ok := s.drops[id]
			if !ok {
				return &domain.NotFoundError{Entity: "drop", ID: id}
			}
			if !d.Plannable() {
				return &domain.ConflictError{Detail: "drop " + id + " is no longer plannable"}
			}
			if other, dup := seen[id]; dup && other != r.ID {
				return &domain.ConflictError{Detail: "drop " + id + " appears on two routes"}
			}
			seen[id] = r.ID
		}
	}

	for _, r := range routes {
		r.Stops = slices.Clone(r.Stops)
		s.routes[r.ID] = r
		s.routeOrder = append(s.routeOrder, r.ID)
	}
	for dropID, routeID := range seen {
		d := s.drops[dropID]
		rid := routeID
		d.RouteID = &rid
		d.Status = domain.DropStatusRouted
		s.drops[dropID] = d
	}
	s.writes++

	return nil
}

func (s *MemoryStore) GetRoute(ctx context.Context, routeID string) (*domain.RouteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routes[routeID]
	if !ok {
		return nil, nil
	}
	r.Stops = slices.Clone(r.Stops)

	detail := &domain.RouteDetail{Route: r}
	if aid, ok := s.latestByRoute[routeID]; ok {
		a := s.assignments[aid]
		detail.Assignment = &a
	}
	return detail, nil
}

// ListRoutes returns stored routes in insertion order.
func (s *MemoryStore) ListRoutes() []domain.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Route, 0, len(s.routeOrder))
	for _, id := range s.routeOrder {
		out = append(out, s.routes[id])
	}
	return out
}

func (s *MemoryStore) AssignRoute(ctx context.Context, p ports.AssignParams) (domain.DriverAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.routes[p.RouteID]
	if !ok {
		return domain.DriverAssignment{}, &domain.NotFoundError{Entity: "route", ID: p.RouteID}
	}
	driver, ok := s.drivers[p.DriverID]
	if !ok {
		return domain.DriverAssignment{}, &domain.NotFoundError{Entity: "driver", ID: p.DriverID}
	}
	if r.Status != domain.RouteStatusPlanned {
		return domain.DriverAssignment{}, &domain.InvalidStateError{
			Entity: "route", ID: r.ID, State: string(r.Status), Want: string(domain.RouteStatusPlanned),
		}
	}
	if !driver.Available() {
		return domain.DriverAssignment{}, &domain.DriverUnavailableError{DriverID: driver.ID, Status: driver.Status}
	}
	if other := s.activeRouteLocked(p.DriverID); other != "" && other != p.RouteID {
		return domain.DriverAssignment{}, &domain.ConflictError{DriverID: p.DriverID, ExistingRouteID: other}
	}

	driverID := p.DriverID
	r.Status = domain.RouteStatusAssigned
	r.DriverID = &driverID
	s.routes[r.ID] = r

	a := p.Assignment
	s.assignments[a.ID] = a
	s.latestByRoute[r.ID] = a.ID

	return a, nil
}

func (s *MemoryStore) ResolveAssignment(ctx context.Context, p ports.ResolveParams) (domain.DriverAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignments[p.AssignmentID]
	if !ok || (p.DriverID != "" && a.DriverID != p.DriverID) {
		return domain.DriverAssignment{}, &domain.NotFoundError{Entity: "assignment", ID: p.AssignmentID}
	}
	if err := checkResolvable(a, p); err != nil {
		return domain.DriverAssignment{}, err
	}

	at := p.At
	a.Outcome = p.Outcome
	a.RespondedAt = &at
	s.assignments[a.ID] = a

	if p.Outcome == domain.OutcomeRejected || p.Outcome == domain.OutcomeExpired {
		r := s.routes[a.RouteID]
		if r.Status == domain.RouteStatusAssigned && r.DriverID != nil && *r.DriverID == a.DriverID {
			r.Status = domain.RouteStatusPlanned
			r.DriverID = nil
			s.routes[r.ID] = r
		}
	}

	return a, nil
}

func (s *MemoryStore) GetAssignment(ctx context.Context, assignmentID string) (*domain.DriverAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[assignmentID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) GetDriver(ctx context.Context, driverID string) (domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[driverID]
	if !ok {
		return domain.Driver{}, &domain.NotFoundError{Entity: "driver", ID: driverID}
	}
	return d, nil
}

func (s *MemoryStore) ActiveRouteID(ctx context.Context, driverID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeRouteLocked(driverID), nil
}

func (s *MemoryStore) activeRouteLocked(driverID string) string {
	for _, id := range s.routeOrder {
		r := s.routes[id]
		if r.DriverID != nil && *r.DriverID == driverID && r.Status.Active() {
			return id
		}
	}
	return ""
}
