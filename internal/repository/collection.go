package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/pgstay/internal/metrics"
	"github.com/mmynk/pgstay/internal/sheets"
	"github.com/mmynk/pgstay/internal/storage"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("record not found")

// Source tells where the items of a read came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceSnapshot Source = "snapshot"
	SourceMock     Source = "mock"
	SourceEmpty    Source = "empty"
)

// Result is the outcome of a read. Items is never nil. When the live read
// failed, Err holds the cause and Items comes from a fallback source.
type Result[T any] struct {
	Items  []T
	Source Source
	Err    error
}

// Stale reports whether the items did not come from the live sheet.
func (r Result[T]) Stale() bool {
	return r.Source != SourceLive
}

// Entity is implemented by pointers to every model.
type Entity interface {
	GetID() string
	SetID(string)
}

// Collection is the cached, read-modify-write view of one sheet.
//
// Every mutation reads the whole sheet, changes it in memory and writes the
// whole sheet back. Mutations through the same Collection are serialized;
// separate processes writing the same sheet are not coordinated and the last
// write wins.
type Collection[T any] struct {
	sheet     string
	schema    *sheets.Schema
	backend   Backend
	snapshots storage.SnapshotStore
	mock      func() ([]T, error)
	metrics   *metrics.Metrics
	logger    *slog.Logger

	getID func(*T) string
	setID func(*T, string)

	mu    sync.Mutex      // guards cache and gen
	cache []sheets.Record // nil until the first successful read
	gen   uint64          // bumped by every successful write

	writeMu sync.Mutex
}

func newCollection[T any, PT interface {
	*T
	Entity
}](sheet string, backend Backend, opts Options, mock func() ([]T, error)) *Collection[T] {
	return &Collection[T]{
		sheet:     sheet,
		schema:    sheets.MustSchemaOf[T](),
		backend:   backend,
		snapshots: opts.Snapshots,
		mock:      mock,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With("sheet", sheet),
		getID:     func(t *T) string { return PT(t).GetID() },
		setID:     func(t *T, id string) { PT(t).SetID(id) },
	}
}

// Sheet returns the sheet name.
func (c *Collection[T]) Sheet() string { return c.sheet }

// Schema returns the column schema derived from T.
func (c *Collection[T]) Schema() *sheets.Schema { return c.schema }

// Fetch reads the sheet. On failure it falls back to the in-memory cache,
// then the persisted snapshot, then bundled mock data, then an empty list.
// It never returns a nil slice.
func (c *Collection[T]) Fetch(ctx context.Context) Result[T] {
	items, _, err := c.loadLive(ctx, false)
	if err == nil {
		return Result[T]{Items: items, Source: SourceLive}
	}
	return c.fallback(ctx, err)
}

// List returns the records of the sheet, or fallback data if the sheet could
// not be read.
func (c *Collection[T]) List(ctx context.Context) []T {
	return c.Fetch(ctx).Items
}

// Get returns the first record with the given ID.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	res := c.Fetch(ctx)
	for _, item := range res.Items {
		if c.getID(&item) == id {
			return item, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %q: %w", c.sheet, id, ErrNotFound)
}

// Replace overwrites the whole sheet body with items. Columns the model does
// not declare are left empty.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.write(ctx, items, nil)
}

// Add appends an item, assigning a new UUID when its ID is empty.
func (c *Collection[T]) Add(ctx context.Context, item T) (T, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	items, base, err := c.loadLive(ctx, true)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to read %s before add: %w", c.sheet, err)
	}

	if c.getID(&item) == "" {
		c.setID(&item, uuid.NewString())
	}
	items = append(items, item)
	base = append(base, nil)
	if err := c.write(ctx, items, base); err != nil {
		var zero T
		return zero, err
	}

	c.logger.Info("Record added", "id", c.getID(&item))
	return item, nil
}

// Update applies mutate to the first record with the given ID and writes the
// sheet back. The ID itself cannot be changed. If mutate fails nothing is
// written.
func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var zero T
	items, base, err := c.loadLive(ctx, true)
	if err != nil {
		return zero, fmt.Errorf("failed to read %s before update: %w", c.sheet, err)
	}

	idx := slices.IndexFunc(items, func(item T) bool { return c.getID(&item) == id })
	if idx < 0 {
		return zero, fmt.Errorf("%s %q: %w", c.sheet, id, ErrNotFound)
	}

	updated := items[idx]
	if err := mutate(&updated); err != nil {
		return zero, err
	}
	c.setID(&updated, id)
	items[idx] = updated

	if err := c.write(ctx, items, base); err != nil {
		return zero, err
	}

	c.logger.Info("Record updated", "id", id)
	return updated, nil
}

// Delete removes every record with the given ID.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	items, base, err := c.loadLive(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to read %s before delete: %w", c.sheet, err)
	}

	var (
		kept     = make([]T, 0, len(items))
		keptBase = make([]sheets.Record, 0, len(base))
	)
	for i := range items {
		if c.getID(&items[i]) == id {
			continue
		}
		kept = append(kept, items[i])
		keptBase = append(keptBase, base[i])
	}
	if len(kept) == len(items) {
		return fmt.Errorf("%s %q: %w", c.sheet, id, ErrNotFound)
	}
	if err := c.write(ctx, kept, keptBase); err != nil {
		return err
	}

	c.logger.Info("Record deleted", "id", id, "removed", len(items)-len(kept))
	return nil
}

// SeedIfEmpty writes items when the sheet currently holds no records and
// returns how many were written.
func (c *Collection[T]) SeedIfEmpty(ctx context.Context, items []T) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	current, _, err := c.loadLive(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s before seeding: %w", c.sheet, err)
	}
	if len(current) > 0 || len(items) == 0 {
		return 0, nil
	}
	if err := c.write(ctx, items, nil); err != nil {
		return 0, err
	}
	return len(items), nil
}

// loadLive reads and decodes the sheet, refreshing the cache and snapshot.
// The returned records hold every column of each item's row, including
// columns T does not declare. In strict mode a row that fails to decode is an
// error, because writing the collection back would drop it; otherwise such
// rows are skipped.
func (c *Collection[T]) loadLive(ctx context.Context, strict bool) ([]T, []sheets.Record, error) {
	gen := c.generation()
	records, err := c.backend.ReadRecords(ctx, c.sheet, c.schema)
	if err != nil {
		return nil, nil, err
	}

	items, kept, err := c.decode(records, strict)
	if err != nil {
		return nil, nil, err
	}

	c.storeRead(ctx, gen, kept)
	return items, kept, nil
}

// decode unmarshals records into fresh values of T. Slices in the result
// never share memory with records.
func (c *Collection[T]) decode(records []sheets.Record, strict bool) ([]T, []sheets.Record, error) {
	items := make([]T, 0, len(records))
	kept := make([]sheets.Record, 0, len(records))
	for i, rec := range records {
		var item T
		if err := sheets.Unmarshal(rec, &item); err != nil {
			if strict {
				return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			c.logger.Warn("Skipping undecodable row", "row", i+2, "error", err)
			continue
		}
		items = append(items, item)
		kept = append(kept, rec)
	}
	return items, kept, nil
}

// write replaces the sheet body with items. base[i], when present, is the
// record items[i] was read from; its columns outside the schema are written
// back unchanged.
func (c *Collection[T]) write(ctx context.Context, items []T, base []sheets.Record) error {
	records := make([]sheets.Record, len(items))
	for i := range items {
		rec, err := sheets.Marshal(&items[i])
		if err != nil {
			return fmt.Errorf("failed to encode %s record: %w", c.sheet, err)
		}
		if i < len(base) && base[i] != nil {
			merged := maps.Clone(base[i])
			maps.Copy(merged, rec)
			rec = merged
		}
		records[i] = rec
	}

	err := c.backend.WriteRecords(ctx, c.sheet, c.schema, records)
	c.metrics.IncWrite(c.sheet, err)
	if err != nil {
		c.logger.Error("Sheet write failed", "records", len(records), "error", err)
		return fmt.Errorf("failed to write %s: %w", c.sheet, err)
	}

	c.storeWrite(ctx, records)
	return nil
}

func (c *Collection[T]) fallback(ctx context.Context, cause error) Result[T] {
	res := Result[T]{Items: []T{}, Source: SourceEmpty, Err: cause}

	if cached, ok := c.cached(); ok {
		res.Items, res.Source = cached, SourceCache
	} else if items, ok := c.loadSnapshot(ctx); ok {
		res.Items, res.Source = items, SourceSnapshot
	} else if c.mock != nil {
		if items, err := c.mock(); err == nil && items != nil {
			res.Items, res.Source = items, SourceMock
		} else if err != nil {
			c.logger.Error("Failed to load mock data", "error", err)
		}
	}

	c.metrics.IncFallback(c.sheet, string(res.Source))
	c.logger.Warn("Live read failed, serving fallback",
		"source", res.Source,
		"records", len(res.Items),
		"error", cause,
	)
	return res
}

// cached decodes the cache into fresh items, so callers and mutations never
// alias it.
func (c *Collection[T]) cached() ([]T, bool) {
	c.mu.Lock()
	records := c.cache
	c.mu.Unlock()
	if records == nil {
		return nil, false
	}
	items, _, _ := c.decode(records, false)
	return items, true
}

func (c *Collection[T]) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// storeRead caches records from a read that started at generation gen. A
// write that landed after the read started wins, so the older rows are
// dropped.
func (c *Collection[T]) storeRead(ctx context.Context, gen uint64, records []sheets.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		c.logger.Debug("Discarding read older than the last write")
		return
	}
	c.setCacheLocked(ctx, records)
}

func (c *Collection[T]) storeWrite(ctx context.Context, records []sheets.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.setCacheLocked(ctx, records)
}

// setCacheLocked must be called with c.mu held. The snapshot is saved under
// the same lock so it always matches the cache.
func (c *Collection[T]) setCacheLocked(ctx context.Context, records []sheets.Record) {
	c.cache = slices.Clone(records)
	if c.cache == nil {
		c.cache = []sheets.Record{}
	}

	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.SaveSnapshot(ctx, c.sheet, records); err != nil {
		c.logger.Warn("Failed to save snapshot", "error", err)
	}
}

func (c *Collection[T]) loadSnapshot(ctx context.Context) ([]T, bool) {
	if c.snapshots == nil {
		return nil, false
	}
	snap, err := c.snapshots.LoadSnapshot(ctx, c.sheet)
	if err != nil {
		c.logger.Warn("Failed to load snapshot", "error", err)
		return nil, false
	}
	if snap == nil {
		return nil, false
	}

	items, _, _ := c.decode(snap.Records, false)
	return items, true
}
