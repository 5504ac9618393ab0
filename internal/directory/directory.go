// Package directory resolves submitters against the employee roster kept in
// the Config table.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/visit-log-api/internal/models"
	"github.com/noah-isme/visit-log-api/internal/store"
)

const cacheKeyPrefix = "roster:email:"

// Directory looks up employees by email. Lookups are exact and case
// sensitive; an absent Config table or an empty roster is simply "not
// found", never an error.
type Directory struct {
	store  store.Store
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Option customises a Directory.
type Option func(*Directory)

// WithCache enables the Redis roster cache.
func WithCache(client *redis.Client, ttl time.Duration) Option {
	return func(d *Directory) {
		d.cache = client
		d.ttl = ttl
	}
}

// New builds a Directory over the given store.
func New(st store.Store, logger *zap.Logger, opts ...Option) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Directory{store: st, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ResolveByEmail returns the roster entry matching the email exactly.
func (d *Directory) ResolveByEmail(ctx context.Context, email string) (models.Employee, bool) {
	if email == "" {
		return models.Employee{}, false
	}

	if emp, ok := d.cached(ctx, email); ok {
		return emp, true
	}

	for _, emp := range d.roster(ctx) {
		if emp.Email == email {
			d.remember(ctx, emp)
			return emp, true
		}
	}
	return models.Employee{}, false
}

// Roster returns all populated roster rows.
func (d *Directory) Roster(ctx context.Context) []models.Employee {
	return d.roster(ctx)
}

func (d *Directory) roster(ctx context.Context) []models.Employee {
	tbl, err := d.store.Table(ctx, models.ConfigTableName)
	if err != nil {
		return nil
	}

	numRows := models.RosterLastRow - models.RosterFirstRow + 1
	numCols := models.RosterPositionCol - models.RosterNameCol + 1
	grid, err := tbl.ReadRange(ctx, models.RosterFirstRow, models.RosterNameCol, numRows, numCols)
	if err != nil {
		d.logger.Warn("roster read failed", zap.Error(err))
		return nil
	}

	var employees []models.Employee
	for _, row := range grid {
		name := cellString(row[0])
		email := cellString(row[models.RosterEmailCol-models.RosterNameCol])
		if name == "" || email == "" {
			continue
		}
		employees = append(employees, models.Employee{
			Name:     name,
			Email:    email,
			Position: cellString(row[models.RosterPositionCol-models.RosterNameCol]),
		})
	}
	return employees
}

func (d *Directory) cached(ctx context.Context, email string) (models.Employee, bool) {
	if d.cache == nil {
		return models.Employee{}, false
	}
	raw, err := d.cache.Get(ctx, cacheKeyPrefix+email).Result()
	if err != nil {
		return models.Employee{}, false
	}
	var emp models.Employee
	if err := json.Unmarshal([]byte(raw), &emp); err != nil {
		return models.Employee{}, false
	}
	return emp, true
}

func (d *Directory) remember(ctx context.Context, emp models.Employee) {
	if d.cache == nil {
		return
	}
	raw, err := json.Marshal(emp)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, cacheKeyPrefix+emp.Email, raw, d.ttl).Err(); err != nil {
		d.logger.Warn("roster cache write failed", zap.Error(err))
	}
}

func cellString(v store.Cell) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
