// Package bootstrap prepares a spreadsheet for pgstay: header rows, optional
// seed data, per-sheet resets and access checks.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/pgstay/internal/repository"
	"github.com/mmynk/pgstay/internal/sheets"
)

// ErrUnknownSheet is returned for sheet names pgstay does not manage.
var ErrUnknownSheet = errors.New("unknown sheet")

const (
	// resetRowLimit is the last row ResetSheet clears.
	resetRowLimit = 1000

	initConcurrency = 4
)

// API is the subset of the Sheets client the bootstrapper needs.
type API interface {
	ReadHeaders(ctx context.Context, sheet string) ([]string, error)
	UpdateValues(ctx context.Context, rng string, rows [][]string) error
	ClearValues(ctx context.Context, rng string) error
	Spreadsheet(ctx context.Context) (*sheets.SpreadsheetInfo, error)
}

var _ API = (*sheets.Client)(nil)

// InitReport summarizes InitializeSheets.
type InitReport struct {
	// Created lists sheets that received a header row.
	Created []string
	// Existing lists sheets that already had one.
	Existing []string
	// Seeded holds the number of fixture records written per sheet.
	Seeded map[string]int
}

// AccessReport is the outcome of CheckAccess.
type AccessReport struct {
	OK    bool
	Title string
	// Missing lists managed sheets the spreadsheet has no tab for.
	Missing []string
	Err     error
}

// Bootstrapper prepares the sheets of a Repository.
type Bootstrapper struct {
	api    API
	repo   *repository.Repository
	logger *slog.Logger
}

// New creates a Bootstrapper.
func New(api API, repo *repository.Repository, logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{api: api, repo: repo, logger: logger}
}

// InitializeSheets writes the header row of every sheet whose first row is
// empty. Sheets that already have headers are left untouched, so running it
// twice is harmless. With seed, collections without records are then filled
// from the bundled fixtures.
func (b *Bootstrapper) InitializeSheets(ctx context.Context, seed bool) (InitReport, error) {
	var (
		mu     sync.Mutex
		report InitReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(initConcurrency)
	for _, table := range b.repo.Tables() {
		g.Go(func() error {
			created, err := b.ensureHeaders(gctx, table)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if created {
				report.Created = append(report.Created, table.Sheet())
			} else {
				report.Existing = append(report.Existing, table.Sheet())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	b.sortByTableOrder(report.Created)
	b.sortByTableOrder(report.Existing)
	b.logger.Info("Sheets initialized", "created", report.Created, "existing", report.Existing)

	if !seed {
		return report, nil
	}
	seeded, err := b.repo.SeedMock(ctx)
	report.Seeded = seeded
	if err != nil {
		return report, err
	}
	b.logger.Info("Mock data seeded", "records", seeded)
	return report, nil
}

func (b *Bootstrapper) ensureHeaders(ctx context.Context, table repository.Table) (bool, error) {
	sheet := table.Sheet()
	headers, err := b.api.ReadHeaders(ctx, sheet)
	if err != nil {
		return false, fmt.Errorf("failed to read headers of %s (does the tab exist?): %w", sheet, err)
	}
	if len(headers) > 0 {
		return false, nil
	}

	rows := [][]string{table.Schema().Headers()}
	if err := b.api.UpdateValues(ctx, sheets.A1(sheet, "A1"), rows); err != nil {
		return false, fmt.Errorf("failed to write headers of %s: %w", sheet, err)
	}
	b.logger.Debug("Header row written", "sheet", sheet)
	return true, nil
}

// ResetSheet clears every data row of a sheet up to resetRowLimit, keeping
// the header row.
func (b *Bootstrapper) ResetSheet(ctx context.Context, name string) error {
	if _, ok := b.repo.Table(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSheet, name)
	}

	rng := sheets.A1(name, fmt.Sprintf("A2:ZZ%d", resetRowLimit))
	if err := b.api.ClearValues(ctx, rng); err != nil {
		return fmt.Errorf("failed to reset %s: %w", name, err)
	}

	b.logger.Info("Sheet reset", "sheet", name)
	return nil
}

// CheckAccess fetches the spreadsheet metadata to confirm the credentials
// and spreadsheet ID work.
func (b *Bootstrapper) CheckAccess(ctx context.Context) AccessReport {
	info, err := b.api.Spreadsheet(ctx)
	if err != nil {
		b.logger.Warn("Spreadsheet access check failed", "error", err)
		return AccessReport{Err: err}
	}

	report := AccessReport{OK: true, Title: info.Title}
	for _, table := range b.repo.Tables() {
		if !slices.Contains(info.Sheets, table.Sheet()) {
			report.Missing = append(report.Missing, table.Sheet())
		}
	}
	return report
}

func (b *Bootstrapper) sortByTableOrder(names []string) {
	order := make(map[string]int)
	for i, t := range b.repo.Tables() {
		order[t.Sheet()] = i
	}
	slices.SortFunc(names, func(a, c string) int { return order[a] - order[c] })
}
