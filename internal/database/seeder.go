// internal/database/seeder.go
package database

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"greencart-ops-api/internal/auth"
	"greencart-ops-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// OrderRow is one line of orders.csv. The route is referenced by its code and
// resolved against seeded routes.
type OrderRow struct {
	OrderID   string
	ValueRs   float64
	RouteCode string
}

// SeedReport counts what a CSV seed wrote.
type SeedReport struct {
	Drivers       int
	Routes        int
	Orders        int
	SkippedOrders int
}

type Seeder struct {
	store  *Store
	logger *zap.Logger
}

func NewSeeder(store *Store, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// SeedManager creates the manager account if it does not exist yet.
func (s *Seeder) SeedManager(ctx context.Context, username, password string) error {
	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		s.logger.Info("manager account already exists, seeding skipped", zap.String("username", username))
		return nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed manager: %w", err)
	}
	if err := s.store.CreateUser(ctx, &models.User{Username: username, Password: hashed}); err != nil {
		return err
	}

	s.logger.Info("manager account seeded", zap.String("username", username))
	return nil
}

// SeedCSV loads drivers.csv, routes.csv and orders.csv from dir. With reset the
// three collections are emptied first. Orders referencing an unknown route
// code are skipped with a warning.
func (s *Seeder) SeedCSV(ctx context.Context, dir string, reset bool) (SeedReport, error) {
	var report SeedReport

	drivers, err := parseFile(filepath.Join(dir, "drivers.csv"), ParseDrivers)
	if err != nil {
		return report, err
	}
	routes, err := parseFile(filepath.Join(dir, "routes.csv"), ParseRoutes)
	if err != nil {
		return report, err
	}
	orders, err := parseFile(filepath.Join(dir, "orders.csv"), ParseOrders)
	if err != nil {
		return report, err
	}

	if reset {
		for _, coll := range []string{ordersCollection, driversCollection, routesCollection} {
			if _, err := s.store.collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
				return report, fmt.Errorf("seed: clear %s: %w", coll, err)
			}
		}
		s.logger.Info("existing data cleared")
	}

	for i := range drivers {
		if err := s.store.CreateDriver(ctx, &drivers[i]); err != nil {
			return report, fmt.Errorf("seed: driver %q: %w", drivers[i].Name, err)
		}
		report.Drivers++
	}

	byCode := make(map[string]models.Route, len(routes))
	for i := range routes {
		if err := s.store.CreateRoute(ctx, &routes[i]); err != nil {
			return report, fmt.Errorf("seed: route %q: %w", routes[i].RouteID, err)
		}
		byCode[routes[i].RouteID] = routes[i]
		report.Routes++
	}

	docs := make([]interface{}, 0, len(orders))
	for _, row := range orders {
		route, ok := byCode[row.RouteCode]
		if !ok {
			s.logger.Warn("order references unknown route, skipping",
				zap.String("order_id", row.OrderID),
				zap.String("route_id", row.RouteCode),
			)
			report.SkippedOrders++
			continue
		}
		docs = append(docs, models.Order{OrderID: row.OrderID, ValueRs: row.ValueRs, AssignedRoute: route.ID})
	}
	if len(docs) > 0 {
		res, err := s.store.collection(ordersCollection).InsertMany(ctx, docs)
		if err != nil {
			return report, fmt.Errorf("seed: orders: %w", err)
		}
		report.Orders = len(res.InsertedIDs)
	}

	s.logger.Info("database seeded",
		zap.Int("drivers", report.Drivers),
		zap.Int("routes", report.Routes),
		zap.Int("orders", report.Orders),
		zap.Int("skipped_orders", report.SkippedOrders),
	)
	return report, nil
}

func parseFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	defer f.Close()

	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// ParseDrivers reads name,shift_hours,past_week_hours where the week is a
// pipe-separated list of hours, oldest first.
func ParseDrivers(r io.Reader) ([]models.Driver, error) {
	var out []models.Driver
	err := readRecords(r, []string{"name", "shift_hours", "past_week_hours"}, func(line int, rec record) error {
		name := rec.get("name")
		if name == "" {
			return fmt.Errorf("line %d: name is required", line)
		}
		shift, err := rec.float("shift_hours")
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		d := models.NewDriver(name)
		d.CurrentShiftHours = shift
		if week := rec.get("past_week_hours"); week != "" {
			parts := strings.Split(week, "|")
			d.Past7DayWorkHours = make([]float64, 0, len(parts))
			for _, p := range parts {
				h, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
				if err != nil {
					return fmt.Errorf("line %d: past_week_hours: %w", line, err)
				}
				d.Past7DayWorkHours = append(d.Past7DayWorkHours, h)
			}
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

// ParseRoutes reads route_id,distance_km,traffic_level,base_time_min.
func ParseRoutes(r io.Reader) ([]models.Route, error) {
	var out []models.Route
	err := readRecords(r, []string{"route_id", "distance_km", "traffic_level", "base_time_min"}, func(line int, rec record) error {
		code := rec.get("route_id")
		if code == "" {
			return fmt.Errorf("line %d: route_id is required", line)
		}
		distance, err := rec.float("distance_km")
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		level, err := models.ParseTrafficLevel(rec.get("traffic_level"))
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		base, err := rec.float("base_time_min")
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if distance <= 0 || base <= 0 {
			return fmt.Errorf("line %d: distance and base time must be positive", line)
		}
		out = append(out, models.Route{RouteID: code, Distance: distance, TrafficLevel: level, BaseTime: base})
		return nil
	})
	return out, err
}

// ParseOrders reads order_id,value_rs,route_id.
func ParseOrders(r io.Reader) ([]OrderRow, error) {
	var out []OrderRow
	err := readRecords(r, []string{"order_id", "value_rs", "route_id"}, func(line int, rec record) error {
		id := rec.get("order_id")
		if id == "" {
			return fmt.Errorf("line %d: order_id is required", line)
		}
		value, err := rec.float("value_rs")
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if value < 0 {
			return fmt.Errorf("line %d: value_rs must not be negative", line)
		}
		out = append(out, OrderRow{OrderID: id, ValueRs: value, RouteCode: rec.get("route_id")})
		return nil
	})
	return out, err
}

type record struct {
	header map[string]int
	fields []string
}

func (r record) get(col string) string {
	i, ok := r.header[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) float(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.get(col), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return v, nil
}

// readRecords reads a headed CSV and calls fn for every data row. Columns may
// appear in any order; every required column must be present.
func readRecords(r io.Reader, required []string, fn func(line int, rec record) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("empty file")
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(head))
	for i, h := range head {
		header[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("missing column %q", col)
		}
	}

	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if err := fn(line, record{header: header, fields: fields}); err != nil {
			return err
		}
	}
}
