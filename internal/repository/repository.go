// Package repository is the data facade of pgstay: one cached collection per
// sheet, backed by the Sheets client.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/pgstay/internal/fixtures"
	"github.com/mmynk/pgstay/internal/metrics"
	"github.com/mmynk/pgstay/internal/models"
	"github.com/mmynk/pgstay/internal/sheets"
	"github.com/mmynk/pgstay/internal/storage"
)

// Backend reads and writes whole sheets. *sheets.Client implements it.
type Backend interface {
	ReadRecords(ctx context.Context, sheet string, schema *sheets.Schema) ([]sheets.Record, error)
	WriteRecords(ctx context.Context, sheet string, schema *sheets.Schema, records []sheets.Record) error
}

var _ Backend = (*sheets.Client)(nil)

// Table describes a sheet managed by the repository.
type Table interface {
	Sheet() string
	Schema() *sheets.Schema
}

// Options configures a Repository. Every field is optional.
type Options struct {
	Snapshots storage.SnapshotStore
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// MockRooms supplies the rooms served when the Rooms sheet, the cache and
	// the snapshot are all unavailable. Defaults to the bundled fixtures.
	MockRooms func() ([]models.Room, error)
}

// Repository holds one collection per entity.
type Repository struct {
	Users             *Collection[models.User]
	Rooms             *Collection[models.Room]
	Meals             *Collection[models.Meal]
	MealResponses     *Collection[models.MealResponse]
	Notifications     *Collection[models.Notification]
	Payments          *Collection[models.Payment]
	PGProperties      *Collection[models.PGProperty]
	UserRegistrations *Collection[models.UserRegistration]
}

// New creates a Repository over backend.
func New(backend Backend, opts Options) *Repository {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MockRooms == nil {
		opts.MockRooms = fixtures.Rooms
	}

	return &Repository{
		Users:             newCollection[models.User](models.SheetUsers, backend, opts, nil),
		Rooms:             newCollection[models.Room](models.SheetRooms, backend, opts, opts.MockRooms),
		Meals:             newCollection[models.Meal](models.SheetMeals, backend, opts, nil),
		MealResponses:     newCollection[models.MealResponse](models.SheetMealResponses, backend, opts, nil),
		Notifications:     newCollection[models.Notification](models.SheetNotifications, backend, opts, nil),
		Payments:          newCollection[models.Payment](models.SheetPayments, backend, opts, nil),
		PGProperties:      newCollection[models.PGProperty](models.SheetPGProperties, backend, opts, nil),
		UserRegistrations: newCollection[models.UserRegistration](models.SheetUserRegistration, backend, opts, nil),
	}
}

// Tables lists every managed sheet in bootstrap order.
func (r *Repository) Tables() []Table {
	return []Table{
		r.Users,
		r.Rooms,
		r.Meals,
		r.MealResponses,
		r.Notifications,
		r.Payments,
		r.PGProperties,
		r.UserRegistrations,
	}
}

// Table returns the managed sheet with the given name.
func (r *Repository) Table(name string) (Table, bool) {
	for _, t := range r.Tables() {
		if t.Sheet() == name {
			return t, true
		}
	}
	return nil, false
}

// SeedMock writes the bundled fixtures into every collection that has no
// records yet. It returns the number of records written per sheet.
func (r *Repository) SeedMock(ctx context.Context) (map[string]int, error) {
	set, err := fixtures.All()
	if err != nil {
		return nil, err
	}

	seeded := make(map[string]int)
	steps := []struct {
		sheet string
		seed  func() (int, error)
	}{
		{models.SheetUsers, func() (int, error) { return r.Users.SeedIfEmpty(ctx, set.Users) }},
		{models.SheetRooms, func() (int, error) { return r.Rooms.SeedIfEmpty(ctx, set.Rooms) }},
		{models.SheetMeals, func() (int, error) { return r.Meals.SeedIfEmpty(ctx, set.Meals) }},
		{models.SheetMealResponses, func() (int, error) { return r.MealResponses.SeedIfEmpty(ctx, set.MealResponses) }},
		{models.SheetNotifications, func() (int, error) { return r.Notifications.SeedIfEmpty(ctx, set.Notifications) }},
		{models.SheetPayments, func() (int, error) { return r.Payments.SeedIfEmpty(ctx, set.Payments) }},
		{models.SheetPGProperties, func() (int, error) { return r.PGProperties.SeedIfEmpty(ctx, set.PGProperties) }},
		{models.SheetUserRegistration, func() (int, error) {
			return r.UserRegistrations.SeedIfEmpty(ctx, set.UserRegistration)
		}},
	}
	for _, step := range steps {
		n, err := step.seed()
		if err != nil {
			return seeded, fmt.Errorf("failed to seed %s: %w", step.sheet, err)
		}
		seeded[step.sheet] = n
	}
	return seeded, nil
}
