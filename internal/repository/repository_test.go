package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/pgstay/internal/models"
	"github.com/mmynk/pgstay/internal/sheets"
	"github.com/mmynk/pgstay/internal/sheets/sheetstest"
	"github.com/mmynk/pgstay/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// memSnapshots is an in-memory storage.SnapshotStore.
type memSnapshots struct {
	mu    sync.Mutex
	snaps map[string][]sheets.Record
}

func (m *memSnapshots) SaveSnapshot(_ context.Context, sheet string, records []sheets.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snaps == nil {
		m.snaps = make(map[string][]sheets.Record)
	}
	m.snaps[sheet] = records
	return nil
}

func (m *memSnapshots) LoadSnapshot(_ context.Context, sheet string) (*storage.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records, ok := m.snaps[sheet]
	if !ok {
		return nil, nil
	}
	return &storage.Snapshot{Sheet: sheet, Records: records}, nil
}

func (m *memSnapshots) Close() error { return nil }

func newTestRepo(t *testing.T, srv *sheetstest.Server, opts Options) *Repository {
	t.Helper()
	client := sheets.New("sheet-id", "test-key",
		sheets.WithBaseURL(srv.BaseURL()),
		sheets.WithHTTPClient(srv.Client()),
		sheets.WithRetries(0, time.Millisecond),
	)
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return New(client, opts)
}

func roomRows(t *testing.T, rooms ...models.Room) [][]string {
	t.Helper()
	headers := sheets.MustSchemaOf[models.Room]().Headers()
	rows := [][]string{headers}
	for i := range rooms {
		rec, err := sheets.Marshal(&rooms[i])
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		rows = append(rows, sheets.Encode(headers, rec))
	}
	return rows
}

var room101 = models.Room{
	ID:         "room-101",
	RoomNumber: "101",
	Type:       "double",
	Capacity:   2,
	Occupancy:  1,
	Floor:      1,
	Rent:       7500,
	Status:     "available",
	Facilities: []string{"Wi-Fi", "AC"},
	PGID:       "pg-1",
}

func TestCollectionCRUD(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetNames...)
	repo := newTestRepo(t, srv, Options{})
	ctx := context.Background()

	t.Run("Add assigns an ID and writes headers", func(t *testing.T) {
		added, err := repo.Rooms.Add(ctx, models.Room{RoomNumber: "102", Capacity: 1, Rent: 9000})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if added.ID == "" {
			t.Error("Expected a generated ID")
		}

		rows := srv.Rows(models.SheetRooms)
		if diff := cmp.Diff(repo.Rooms.Schema().Headers(), rows[0]); diff != "" {
			t.Errorf("header row mismatch (-want +got):\n%s", diff)
		}
		if len(rows) != 2 {
			t.Errorf("Expected 2 rows, got %d", len(rows))
		}
	})

	t.Run("Add keeps an explicit ID", func(t *testing.T) {
		added, err := repo.Rooms.Add(ctx, room101)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if added.ID != room101.ID {
			t.Errorf("Expected ID %s, got %s", room101.ID, added.ID)
		}
	})

	t.Run("Get returns the typed record", func(t *testing.T) {
		got, err := repo.Rooms.Get(ctx, room101.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if diff := cmp.Diff(room101, got); diff != "" {
			t.Errorf("room mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Update mutates one record", func(t *testing.T) {
		updated, err := repo.Rooms.Update(ctx, room101.ID, func(r *models.Room) error {
			r.Occupancy = 2
			r.Status = "occupied"
			r.ID = "ignored"
			return nil
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.ID != room101.ID {
			t.Errorf("Update must not change the ID, got %s", updated.ID)
		}

		fresh := newTestRepo(t, srv, Options{})
		got, err := fresh.Rooms.Get(ctx, room101.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Occupancy != 2 || got.Status != "occupied" {
			t.Errorf("Update not persisted: %+v", got)
		}
	})

	t.Run("Update of unknown ID", func(t *testing.T) {
		_, err := repo.Rooms.Update(ctx, "missing", func(*models.Room) error { return nil })
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update aborts when mutate fails", func(t *testing.T) {
		writes := srv.Requests("values.update")
		boom := errors.New("boom")
		_, err := repo.Rooms.Update(ctx, room101.ID, func(r *models.Room) error { return boom })
		if !errors.Is(err, boom) {
			t.Errorf("Expected mutate error, got %v", err)
		}
		if got := srv.Requests("values.update"); got != writes {
			t.Errorf("Expected no write, got %d", got-writes)
		}
	})

	t.Run("Delete removes the record", func(t *testing.T) {
		if err := repo.Rooms.Delete(ctx, room101.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Rooms.Get(ctx, room101.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Rooms.Delete(ctx, room101.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
		if rows := srv.Rows(models.SheetRooms); len(rows) != 2 {
			t.Errorf("Expected header plus one row, got %d rows", len(rows))
		}
	})

	t.Run("Replace overwrites the body", func(t *testing.T) {
		if err := repo.Rooms.Replace(ctx, []models.Room{room101}); err != nil {
			t.Fatalf("Replace failed: %v", err)
		}
		got := repo.Rooms.List(ctx)
		if diff := cmp.Diff([]models.Room{room101}, got); diff != "" {
			t.Errorf("rooms mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDeleteRemovesDuplicates(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetRooms)
	dup := room101
	dup.RoomNumber = "101-dup"
	srv.SetRows(models.SheetRooms, roomRows(t, room101, dup))
	repo := newTestRepo(t, srv, Options{})
	ctx := context.Background()

	updated, err := repo.Rooms.Update(ctx, room101.ID, func(r *models.Room) error {
		r.Floor = 9
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.RoomNumber != "101" {
		t.Errorf("Update should act on the first match, got %s", updated.RoomNumber)
	}

	if err := repo.Rooms.Delete(ctx, room101.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := repo.Rooms.List(ctx); len(got) != 0 {
		t.Errorf("Expected every duplicate removed, got %d rooms", len(got))
	}
}

func TestFetchFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("live", func(t *testing.T) {
		srv := sheetstest.NewServer(t, models.SheetRooms)
		srv.SetRows(models.SheetRooms, roomRows(t, room101))
		repo := newTestRepo(t, srv, Options{})

		res := repo.Rooms.Fetch(ctx)
		if res.Source != SourceLive || res.Err != nil || res.Stale() {
			t.Errorf("Expected live result, got source=%s err=%v", res.Source, res.Err)
		}
	})

	t.Run("cache after a successful read", func(t *testing.T) {
		srv := sheetstest.NewServer(t, models.SheetRooms)
		srv.SetRows(models.SheetRooms, roomRows(t, room101))
		repo := newTestRepo(t, srv, Options{})

		if res := repo.Rooms.Fetch(ctx); res.Source != SourceLive {
			t.Fatalf("Expected live read, got %s", res.Source)
		}

		srv.Fail("values.get", http.StatusServiceUnavailable)
		res := repo.Rooms.Fetch(ctx)
		if res.Source != SourceCache {
			t.Errorf("Expected cache, got %s", res.Source)
		}
		if res.Err == nil {
			t.Error("Expected the live error to be reported")
		}
		if diff := cmp.Diff([]models.Room{room101}, res.Items); diff != "" {
			t.Errorf("cached rooms mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("snapshot when the process has no cache", func(t *testing.T) {
		srv := sheetstest.NewServer(t, models.SheetRooms)
		srv.SetRows(models.SheetRooms, roomRows(t, room101))
		snaps := &memSnapshots{}

		if res := newTestRepo(t, srv, Options{Snapshots: snaps}).Rooms.Fetch(ctx); res.Source != SourceLive {
			t.Fatalf("Expected live read, got %s", res.Source)
		}

		srv.Fail("values.get", http.StatusServiceUnavailable)
		res := newTestRepo(t, srv, Options{Snapshots: snaps}).Rooms.Fetch(ctx)
		if res.Source != SourceSnapshot {
			t.Errorf("Expected snapshot, got %s", res.Source)
		}
		if diff := cmp.Diff([]models.Room{room101}, res.Items); diff != "" {
			t.Errorf("snapshot rooms mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("mock rooms when nothing else is available", func(t *testing.T) {
		srv := sheetstest.NewServer(t, models.SheetRooms)
		srv.Fail("values.get", http.StatusForbidden)
		repo := newTestRepo(t, srv, Options{})

		res := repo.Rooms.Fetch(ctx)
		if res.Source != SourceMock {
			t.Errorf("Expected mock, got %s", res.Source)
		}
		if len(res.Items) != 4 {
			t.Errorf("Expected 4 mock rooms, got %d", len(res.Items))
		}
	})

	t.Run("empty for sheets without mock data", func(t *testing.T) {
		srv := sheetstest.NewServer(t, models.SheetUsers)
		srv.Fail("values.get", http.StatusForbidden)
		repo := newTestRepo(t, srv, Options{})

		res := repo.Users.Fetch(ctx)
		if res.Source != SourceEmpty {
			t.Errorf("Expected empty, got %s", res.Source)
		}
		if res.Items == nil || len(res.Items) != 0 {
			t.Errorf("Expected an empty non-nil slice, got %#v", res.Items)
		}
		if got := repo.Users.List(ctx); got == nil {
			t.Error("List must never return nil")
		}
	})
}

func TestMutationsKeepUndeclaredColumns(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetRooms)
	rows := roomRows(t, room101)
	rows[0] = append(rows[0], "notes")
	rows[1] = append(rows[1], "007")
	srv.SetRows(models.SheetRooms, rows)
	repo := newTestRepo(t, srv, Options{})
	ctx := context.Background()

	notes := func(t *testing.T) string {
		t.Helper()
		rows := srv.Rows(models.SheetRooms)
		if len(rows) < 2 {
			t.Fatalf("Expected at least one data row, got %d rows", len(rows))
		}
		col := len(rows[0]) - 1
		if rows[0][col] != "notes" {
			t.Fatalf("Expected the notes header to survive, got %v", rows[0])
		}
		if col >= len(rows[1]) {
			return ""
		}
		return rows[1][col]
	}

	if _, err := repo.Rooms.Add(ctx, models.Room{ID: "room-202", RoomNumber: "202"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := notes(t); got != "007" {
		t.Errorf("after Add: notes = %q, want %q", got, "007")
	}

	if _, err := repo.Rooms.Update(ctx, room101.ID, func(r *models.Room) error {
		r.Occupancy = 2
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := notes(t); got != "007" {
		t.Errorf("after Update: notes = %q, want %q", got, "007")
	}

	if err := repo.Rooms.Delete(ctx, "room-202"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := notes(t); got != "007" {
		t.Errorf("after Delete: notes = %q, want %q", got, "007")
	}

	got, err := repo.Rooms.Get(ctx, room101.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Occupancy != 2 {
		t.Errorf("Expected the update to persist, got occupancy %d", got.Occupancy)
	}
}

func TestFailedUpdateLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	patch := []byte(`{"facilities":["Gym"]}`)

	cachedFacilities := func(t *testing.T, srv *sheetstest.Server, repo *Repository) []string {
		t.Helper()
		srv.Fail("values.get", http.StatusServiceUnavailable)
		res := repo.Rooms.Fetch(ctx)
		if res.Source != SourceCache {
			t.Fatalf("Expected cache, got %s", res.Source)
		}
		if len(res.Items) != 1 {
			t.Fatalf("Expected 1 cached room, got %d", len(res.Items))
		}
		return res.Items[0].Facilities
	}

	t.Run("sheet write fails", func(t *testing.T) {
		srv := sheetstest.NewServer(t, models.SheetRooms)
		srv.SetRows(models.SheetRooms, roomRows(t, room101))
		repo := newTestRepo(t, srv, Options{})

		srv.Fail("values.update", http.StatusBadRequest)
		_, err := repo.Rooms.Update(ctx, room101.ID, func(r *models.Room) error {
			return json.Unmarshal(patch, r)
		})
		if err == nil {
			t.Fatal("Expected Update to fail")
		}

		if diff := cmp.Diff(room101.Facilities, cachedFacilities(t, srv, repo)); diff != "" {
			t.Errorf("cached facilities mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("mutate fails after a partial change", func(t *testing.T) {
		srv := sheetstest.NewServer(t, models.SheetRooms)
		srv.SetRows(models.SheetRooms, roomRows(t, room101))
		repo := newTestRepo(t, srv, Options{})

		boom := errors.New("boom")
		_, err := repo.Rooms.Update(ctx, room101.ID, func(r *models.Room) error {
			if err := json.Unmarshal(patch, r); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Expected mutate error, got %v", err)
		}

		if diff := cmp.Diff(room101.Facilities, cachedFacilities(t, srv, repo)); diff != "" {
			t.Errorf("cached facilities mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("returned items do not alias the cache", func(t *testing.T) {
		srv := sheetstest.NewServer(t, models.SheetRooms)
		srv.SetRows(models.SheetRooms, roomRows(t, room101))
		repo := newTestRepo(t, srv, Options{})

		listed := repo.Rooms.List(ctx)
		listed[0].Facilities[0] = "Gym"

		if diff := cmp.Diff(room101.Facilities, cachedFacilities(t, srv, repo)); diff != "" {
			t.Errorf("cached facilities mismatch (-want +got):\n%s", diff)
		}
	})
}

// pausingBackend parks the first ReadRecords call after it has read the
// sheet, until release is closed.
type pausingBackend struct {
	Backend
	once    sync.Once
	parked  chan struct{}
	release chan struct{}
}

func (b *pausingBackend) ReadRecords(ctx context.Context, sheet string, schema *sheets.Schema) ([]sheets.Record, error) {
	records, err := b.Backend.ReadRecords(ctx, sheet, schema)
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.parked)
		<-b.release
	}
	return records, err
}

func TestSlowReadDoesNotOverwriteNewerWrite(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetRooms)
	srv.SetRows(models.SheetRooms, roomRows(t, room101))
	client := sheets.New("sheet-id", "test-key",
		sheets.WithBaseURL(srv.BaseURL()),
		sheets.WithHTTPClient(srv.Client()),
		sheets.WithRetries(0, time.Millisecond),
	)
	backend := &pausingBackend{
		Backend: client,
		parked:  make(chan struct{}),
		release: make(chan struct{}),
	}
	snaps := &memSnapshots{}
	repo := New(backend, Options{
		Snapshots: snaps,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	done := make(chan Result[models.Room])
	go func() { done <- repo.Rooms.Fetch(ctx) }()
	<-backend.parked

	if _, err := repo.Rooms.Add(ctx, models.Room{ID: "room-202", RoomNumber: "202"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	close(backend.release)
	if res := <-done; res.Source != SourceLive || len(res.Items) != 1 {
		t.Errorf("Expected the slow read to return its own live view, got source=%s items=%d", res.Source, len(res.Items))
	}

	snap, err := snaps.LoadSnapshot(ctx, models.SheetRooms)
	if err != nil || snap == nil {
		t.Fatalf("LoadSnapshot: snap=%v err=%v", snap, err)
	}
	if len(snap.Records) != 2 {
		t.Errorf("Expected the snapshot to keep the newer write, got %d records", len(snap.Records))
	}

	srv.Fail("values.get", http.StatusServiceUnavailable)
	res := repo.Rooms.Fetch(ctx)
	if res.Source != SourceCache {
		t.Fatalf("Expected cache, got %s", res.Source)
	}
	if len(res.Items) != 2 {
		t.Errorf("Expected the cache to keep the newer write, got %d rooms", len(res.Items))
	}
}

func TestMutationsRequireLiveRead(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetRooms)
	srv.SetRows(models.SheetRooms, roomRows(t, room101))
	repo := newTestRepo(t, srv, Options{})
	ctx := context.Background()

	repo.Rooms.List(ctx)
	srv.Fail("values.get", http.StatusServiceUnavailable)

	if _, err := repo.Rooms.Add(ctx, models.Room{RoomNumber: "301"}); err == nil {
		t.Error("Expected Add to fail without a live read")
	}
	if _, err := repo.Rooms.Update(ctx, room101.ID, func(r *models.Room) error {
		r.Floor = 3
		return nil
	}); err == nil {
		t.Error("Expected Update to fail without a live read")
	}
	if err := repo.Rooms.Delete(ctx, room101.ID); err == nil {
		t.Error("Expected Delete to fail without a live read")
	}
	if n := srv.Requests("values.update"); n != 0 {
		t.Errorf("Expected no writes, got %d", n)
	}
}

func TestUndecodableRows(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetRooms)
	rows := roomRows(t, room101)
	bad := append([]string(nil), rows[1]...)
	bad[0] = "room-bad"
	bad[3] = "two"
	srv.SetRows(models.SheetRooms, append(rows, bad))
	repo := newTestRepo(t, srv, Options{})
	ctx := context.Background()

	if got := repo.Rooms.List(ctx); len(got) != 1 {
		t.Errorf("Expected the bad row to be skipped, got %d rooms", len(got))
	}
	if _, err := repo.Rooms.Add(ctx, models.Room{RoomNumber: "301"}); err == nil {
		t.Error("Expected Add to refuse rewriting a sheet with undecodable rows")
	}
}

func TestConcurrentAddsSameRepository(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetRooms)
	repo := newTestRepo(t, srv, Options{})
	ctx := context.Background()

	const n = 8
	g, ctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			_, err := repo.Rooms.Add(ctx, models.Room{RoomNumber: string(rune('A' + i))})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if got := repo.Rooms.List(context.Background()); len(got) != n {
		t.Errorf("Expected %d rooms, got %d", n, len(got))
	}
}

func TestConcurrentAddsSeparateRepositoriesLoseUpdates(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetRooms)
	srv.SetRows(models.SheetRooms, roomRows(t, room101))
	first := newTestRepo(t, srv, Options{})
	second := newTestRepo(t, srv, Options{})

	// Both writers read the same state before either writes.
	srv.HoldWholeSheetReads(2)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		_, err := first.Rooms.Add(ctx, models.Room{ID: "room-a", RoomNumber: "A"})
		return err
	})
	g.Go(func() error {
		_, err := second.Rooms.Add(ctx, models.Room{ID: "room-b", RoomNumber: "B"})
		return err
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got := newTestRepo(t, srv, Options{}).Rooms.List(context.Background())
	if len(got) != 2 {
		t.Fatalf("Expected the last write to win with 2 rooms, got %d", len(got))
	}
	if got[0].ID != room101.ID {
		t.Errorf("Expected the original room first, got %s", got[0].ID)
	}
	if id := got[1].ID; id != "room-a" && id != "room-b" {
		t.Errorf("Unexpected surviving room %s", id)
	}
}

func TestSeedMock(t *testing.T) {
	srv := sheetstest.NewServer(t, models.SheetNames...)
	repo := newTestRepo(t, srv, Options{})
	ctx := context.Background()

	seeded, err := repo.SeedMock(ctx)
	if err != nil {
		t.Fatalf("SeedMock failed: %v", err)
	}
	for _, name := range models.SheetNames {
		if seeded[name] == 0 {
			t.Errorf("Expected %s to be seeded", name)
		}
	}
	if got := repo.Rooms.List(ctx); len(got) != 4 {
		t.Errorf("Expected 4 seeded rooms, got %d", len(got))
	}

	again, err := repo.SeedMock(ctx)
	if err != nil {
		t.Fatalf("second SeedMock failed: %v", err)
	}
	for name, n := range again {
		if n != 0 {
			t.Errorf("Expected %s to be left alone, seeded %d", name, n)
		}
	}
}

func TestTables(t *testing.T) {
	repo := New(nil, Options{})
	var names []string
	for _, table := range repo.Tables() {
		names = append(names, table.Sheet())
	}
	if diff := cmp.Diff(models.SheetNames, names); diff != "" {
		t.Errorf("table order mismatch (-want +got):\n%s", diff)
	}
	if _, ok := repo.Table("Nope"); ok {
		t.Error("Expected unknown table lookup to fail")
	}
}
