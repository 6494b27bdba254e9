package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"

	"github.com/shopspring/decimal"
)

// Postgres-backed implementation of the DropStore, RouteStore and DriverDirectory ports.
type PostgresStore struct{ DB *sql.DB }

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// execTx runs fn in a read-committed transaction and commits when it returns nil.
func (s *PostgresStore) execTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s.DB == nil {
		return errors.New("postgres store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Return drops that are booked and not yet linked to a route.
func (s *PostgresStore) ListPlannableDrops(ctx context.Context) (_ []domain.Drop, err error) {
	defer obs.Time(ctx, "drops.ListPlannable")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres store: DB is nil")
	}

	query := `
	SELECT
		id, status,
		pickup_lat, pickup_lng, pickup_label,
		dropoff_lat, dropoff_lng, dropoff_label,
		window_start, window_end, quoted_price, items
	FROM drops
	WHERE status = 'booked' AND route_id IS NULL
	ORDER BY window_start, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list drops: query drops table: %w", err)
	}
	defer rows.Close()

	drops := make([]domain.Drop, 0, 64)
	for rows.Next() {
		var d domain.Drop
		var status string
		var items []byte
		err := rows.Scan(
			&d.ID, &status,
			&d.Pickup.Lat, &d.Pickup.Lng, &d.Pickup.Label,
			&d.Dropoff.Lat, &d.Dropoff.Lng, &d.Dropoff.Label,
			&d.WindowStart, &d.WindowEnd, &d.QuotedPrice, &items,
		)
		if err != nil {
			return nil, fmt.Errorf("list drops: scan row: %w", err)
		}
		d.Status = domain.DropStatus(status)
		if err := json.Unmarshal(items, &d.Items); err != nil {
			return nil, fmt.Errorf("list drops: decode items of drop %s: %w", d.ID, err)
		}
		drops = append(drops, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drops: row iteration: %w", err)
	}

	return drops, nil
}

// Persist every route of a run, its stops, and link the drops, all or nothing.
func (s *PostgresStore) SavePlan(ctx context.Context, routes []domain.Route) (err error) {
	defer obs.Time(ctx, "routes.SavePlan")(&err)

	if len(routes) == 0 {
		return nil
	}

	return s.execTx(ctx, func(tx *sql.Tx) error {
		routeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO routes (
			id, area, status, distance_km, duration_minutes, value,
			driver_id, vehicle_id, backhaul_eligible, full_load, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
		`)
		if err != nil {
			return fmt.Errorf("save plan: prepare route insert: %w", err)
		}
		defer routeStmt.Close()

		stopStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO route_stops (
			id, route_id, seq, drop_id, kind, lat, lng, label, operation_minutes, items
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
		`)
		if err != nil {
			return fmt.Errorf("save plan: prepare stop insert: %w", err)
		}
		defer stopStmt.Close()

		linkStmt, err := tx.PrepareContext(ctx, `
		UPDATE drops
		SET route_id = $1, status = 'routed'
		WHERE id = ANY($2::text[])
			AND status = 'booked'
			AND route_id IS NULL;
		`)
		if err != nil {
			return fmt.Errorf("save plan: prepare drop link: %w", err)
		}
		defer linkStmt.Close()

		for _, r := range routes {
			_, err := routeStmt.ExecContext(ctx,
				r.ID, r.Area, string(r.Status), r.DistanceKm, r.DurationMinutes, r.Value,
				r.DriverID, r.VehicleID, r.BackhaulEligible, r.FullLoad, r.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("save plan: insert route %s: %w", r.ID, err)
			}

			for seq, stop := range r.Stops {
				items, err := json.Marshal(stop.Items)
				if err != nil {
					return fmt.Errorf("save plan: encode items of stop %s: %w", stop.ID, err)
				}
				_, err = stopStmt.ExecContext(ctx,
					stop.ID, r.ID, seq, stop.DropID, string(stop.Kind),
					stop.Location.Lat, stop.Location.Lng, stop.Location.Label,
					stop.OperationMinutes, items,
				)
				if err != nil {
					return fmt.Errorf("save plan: insert stop %d of route %s: %w", seq, r.ID, err)
				}
			}

			dropIDs := r.DropIDs()
			res, err := linkStmt.ExecContext(ctx, r.ID, dropIDs)
			if err != nil {
				return fmt.Errorf("save plan: link drops to route %s: %w", r.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("save plan: rows affected: %w", err)
			}
			if int(n) != len(dropIDs) {
				return &domain.ConflictError{
					Detail: fmt.Sprintf("route %s: %d of %d drops were no longer plannable", r.ID, len(dropIDs)-int(n), len(dropIDs)),
				}
			}
		}

		return nil
	})
}

// Return the route with its stops and latest assignment, or (nil, nil).
func (s *PostgresStore) GetRoute(ctx context.Context, routeID string) (_ *domain.RouteDetail, err error) {
	defer obs.Time(ctx, "routes.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres store: DB is nil")
	}

	var r domain.Route
	var status string
	var driverID, vehicleID sql.NullString
	err = s.DB.QueryRowContext(ctx, `
	SELECT id, area, status, distance_km, duration_minutes, value,
		driver_id, vehicle_id, backhaul_eligible, full_load, created_at
	FROM routes
	WHERE id = $1;
	`, routeID).Scan(
		&r.ID, &r.Area, &status, &r.DistanceKm, &r.DurationMinutes, &r.Value,
		&driverID, &vehicleID, &r.BackhaulEligible, &r.FullLoad, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get route: query routes table: %w", err)
	}
	r.Status = domain.RouteStatus(status)
	r.DriverID = nullableString(driverID)
	r.VehicleID = nullableString(vehicleID)

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, drop_id, kind, lat, lng, label, operation_minutes, items
	FROM route_stops
	WHERE route_id = $1
	ORDER BY seq;
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("get route: query route_stops table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stop domain.RouteStop
		var kind string
		var items []byte
		err := rows.Scan(
			&stop.ID, &stop.DropID, &kind,
			&stop.Location.Lat, &stop.Location.Lng, &stop.Location.Label,
			&stop.OperationMinutes, &items,
		)
		if err != nil {
			return nil, fmt.Errorf("get route: scan stop: %w", err)
		}
		stop.Kind = domain.StopKind(kind)
		if err := json.Unmarshal(items, &stop.Items); err != nil {
			return nil, fmt.Errorf("get route: decode items of stop %s: %w", stop.ID, err)
		}
		r.Stops = append(r.Stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get route: row iteration: %w", err)
	}

	detail := &domain.RouteDetail{Route: r}

	a, err := scanAssignment(s.DB.QueryRowContext(ctx, selectAssignment+`
	WHERE route_id = $1
	ORDER BY assigned_at DESC
	LIMIT 1;
	`, routeID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route: latest assignment: %w", err)
	}
	if err == nil {
		detail.Assignment = &a
	}

	return detail, nil
}

// Atomically assign a planned route to an active driver.
// Both rows are locked FOR UPDATE so concurrent offers to the same driver serialize;
// the partial unique index on routes(driver_id) is the final guard.
func (s *PostgresStore) AssignRoute(ctx context.Context, p ports.AssignParams) (_ domain.DriverAssignment, err error) {
	defer obs.Time(ctx, "routes.AssignTx")(&err)

	err = s.execTx(ctx, func(tx *sql.Tx) error {
		var routeStatus string
		err := tx.QueryRowContext(ctx, `SELECT status FROM routes WHERE id = $1 FOR UPDATE;`, p.RouteID).Scan(&routeStatus)
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "route", ID: p.RouteID}
		}
		if err != nil {
			return fmt.Errorf("lock route: %w", err)
		}

		var driverStatus string
		err = tx.QueryRowContext(ctx, `SELECT status FROM drivers WHERE id = $1 FOR UPDATE;`, p.DriverID).Scan(&driverStatus)
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.NotFoundError{Entity: "driver", ID: p.DriverID}
		}
		if err != nil {
			return fmt.Errorf("lock driver: %w", err)
		}

		if domain.RouteStatus(routeStatus) != domain.RouteStatusPlanned {
			return &domain.InvalidStateError{
				Entity: "route", ID: p.RouteID, State: routeStatus, Want: string(domain.RouteStatusPlanned),
			}
		}
		if domain.DriverStatus(driverStatus) != domain.DriverStatusActive {
			return &domain.DriverUnavailableError{DriverID: p.DriverID, Status: domain.DriverStatus(driverStatus)}
		}

		var existing string
		err = tx.QueryRowContext(ctx, `
		SELECT id FROM routes
		WHERE driver_id = $1
			AND id <> $2
			AND status IN ('planned', 'assigned', 'in_progress')
		LIMIT 1;
		`, p.DriverID, p.RouteID).Scan(&existing)
		if err == nil {
			return &domain.ConflictError{DriverID: p.DriverID, ExistingRouteID: existing}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check active route: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
		UPDATE routes SET status = 'assigned', driver_id = $2 WHERE id = $1;
		`, p.RouteID, p.DriverID); err != nil {
			return fmt.Errorf("update route: %w", err)
		}

		a := p.Assignment
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO driver_assignments (
			id, route_id, driver_id, assigned_at, expires_at, outcome, estimated_earnings
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
		`, a.ID, a.RouteID, a.DriverID, a.AssignedAt, a.ExpiresAt, string(a.Outcome), a.EstimatedEarnings); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.DriverAssignment{}, mapAssignError(err, p.DriverID)
	}

	return p.Assignment, nil
}

// Atomically resolve a pending assignment, releasing the route on reject/expire.
func (s *PostgresStore) ResolveAssignment(ctx context.Context, p ports.ResolveParams) (_ domain.DriverAssignment, err error) {
	defer obs.Time(ctx, "assignments.Resolve")(&err)

	var out domain.DriverAssignment
	err = s.execTx(ctx, func(tx *sql.Tx) error {
		a, err := scanAssignment(tx.QueryRowContext(ctx, selectAssignment+`
		WHERE id = $1
		FOR UPDATE;
		`, p.AssignmentID))
		if errors.Is(err, sql.ErrNoRows) || (err == nil && p.DriverID != "" && a.DriverID != p.DriverID) {
			return &domain.NotFoundError{Entity: "assignment", ID: p.AssignmentID}
		}
		if err != nil {
			return fmt.Errorf("lock assignment: %w", err)
		}

		if err := checkResolvable(a, p); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
		UPDATE driver_assignments SET outcome = $2, responded_at = $3 WHERE id = $1;
		`, a.ID, string(p.Outcome), p.At); err != nil {
			return fmt.Errorf("update assignment: %w", err)
		}

		if p.Outcome == domain.OutcomeRejected || p.Outcome == domain.OutcomeExpired {
			if _, err := tx.ExecContext(ctx, `
			UPDATE routes SET status = 'planned', driver_id = NULL
			WHERE id = $1 AND status = 'assigned' AND driver_id = $2;
			`, a.RouteID, a.DriverID); err != nil {
				return fmt.Errorf("release route: %w", err)
			}
		}

		at := p.At
		a.Outcome = p.Outcome
		a.RespondedAt = &at
		out = a
		return nil
	})
	if err != nil {
		return domain.DriverAssignment{}, err
	}

	return out, nil
}

func (s *PostgresStore) GetAssignment(ctx context.Context, assignmentID string) (*domain.DriverAssignment, error) {
	if s.DB == nil {
		return nil, errors.New("postgres store: DB is nil")
	}

	a, err := scanAssignment(s.DB.QueryRowContext(ctx, selectAssignment+`WHERE id = $1;`, assignmentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) GetDriver(ctx context.Context, driverID string) (domain.Driver, error) {
	if s.DB == nil {
		return domain.Driver{}, errors.New("postgres store: DB is nil")
	}

	var d domain.Driver
	var status string
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, status FROM drivers WHERE id = $1;`, driverID).
		Scan(&d.ID, &d.Name, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Driver{}, &domain.NotFoundError{Entity: "driver", ID: driverID}
	}
	if err != nil {
		return domain.Driver{}, fmt.Errorf("get driver: %w", err)
	}
	d.Status = domain.DriverStatus(status)
	return d, nil
}

func (s *PostgresStore) ActiveRouteID(ctx context.Context, driverID string) (string, error) {
	if s.DB == nil {
		return "", errors.New("postgres store: DB is nil")
	}

	var id string
	err := s.DB.QueryRowContext(ctx, `
	SELECT id FROM routes
	WHERE driver_id = $1 AND status IN ('planned', 'assigned', 'in_progress')
	LIMIT 1;
	`, driverID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("active route: %w", err)
	}
	return id, nil
}

const selectAssignment = `
	SELECT id, route_id, driver_id, assigned_at, expires_at, outcome, responded_at, estimated_earnings
	FROM driver_assignments
	`

func scanAssignment(row *sql.Row) (domain.DriverAssignment, error) {
	var a domain.DriverAssignment
	var outcome string
	var responded sql.NullTime
	var earnings decimal.NullDecimal
	err := row.Scan(&a.ID, &a.RouteID, &a.DriverID, &a.AssignedAt, &a.ExpiresAt, &outcome, &responded, &earnings)
	if err != nil {
		return domain.DriverAssignment{}, err
	}
	a.Outcome = domain.AssignmentOutcome(outcome)
	if responded.Valid {
		t := responded.Time
		a.RespondedAt = &t
	}
	if earnings.Valid {
		a.EstimatedEarnings = earnings.Decimal
	}
	return a, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
