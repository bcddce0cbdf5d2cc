package postgres

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testDB is nil when Docker is unavailable or -short is set.
var testDB DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("restaurant"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres container unavailable, skipping integration tests: %v\n", err)
		os.Exit(m.Run())
	}

	code := func() int {
		defer func() { _ = container.Terminate(ctx) }()

		url, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "connection string: %v\n", err)
			return 1
		}
		db, err := ConnectURL(ctx, url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect: %v\n", err)
			return 1
		}
		defer db.Close()

		if err := Migrate(ctx, db); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			return 1
		}
		// Migrations must be safe to re-run.
		if err := Migrate(ctx, db); err != nil {
			fmt.Fprintf(os.Stderr, "second migrate: %v\n", err)
			return 1
		}

		testDB = db
		return m.Run()
	}()
	os.Exit(code)
}

func requireDB(t *testing.T) DB {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres not available")
	}
	return testDB
}

var companySeq struct {
	sync.Mutex
	next int64
}

// newCompany keeps tests independent inside the shared database.
func newCompany() int64 {
	companySeq.Lock()
	defer companySeq.Unlock()
	companySeq.next++
	return companySeq.next
}

func createTable(t *testing.T, repo *tableRepository, companyID int64, number, capacity int) *domain.Table {
	t.Helper()
	table, err := domain.NewTable(companyID, number, capacity, "hall", domain.ShapeSquare)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(context.Background(), table); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return table
}

func reserve(ctx context.Context, repo *reservationRepository, tableID int64, start, end domain.ClockTime) (*domain.Reservation, error) {
	date, _ := domain.ParseDate("2026-03-14")
	slot, err := domain.NewSlot(date, start, end)
	if err != nil {
		return nil, err
	}
	return repo.CreateWithNoOverlap(ctx, tableID, date, func(table *domain.Table, existing []*domain.Reservation) (*domain.Reservation, error) {
		return domain.NewReservation(table, slot, 2, domain.Customer{Name: "Guest", Phone: "123"}, "", existing)
	})
}

func TestTableRepository(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := &tableRepository{db: db}
	company := newCompany()

	table := createTable(t, repo, company, 1, 4)
	if table.ID == 0 {
		t.Fatal("table id not assigned")
	}

	dup, _ := domain.NewTable(company, 1, 2, "", "")
	if err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrDuplicateTableNumber) {
		t.Fatalf("duplicate: err = %v", err)
	}

	got, err := repo.UpdateStatus(ctx, table.ID, domain.TableMaintenance)
	if err != nil || got.Status != domain.TableMaintenance {
		t.Fatalf("UpdateStatus = %+v, %v", got, err)
	}

	if _, err := repo.FindByID(ctx, 1<<40); !errors.Is(err, domain.ErrTableNotFound) {
		t.Errorf("missing table: err = %v", err)
	}

	deactivated, err := repo.Deactivate(ctx, table.ID, time.Now(), func(tbl *domain.Table, holding []*domain.Reservation) error {
		return tbl.Deactivate(holding, time.Now())
	})
	if err != nil || deactivated.Active {
		t.Fatalf("Deactivate = %+v, %v", deactivated, err)
	}

	// The unique index only covers active tables.
	createTable(t, repo, company, 1, 6)

	tables, err := repo.ListByCompany(ctx, company)
	if err != nil || len(tables) != 2 {
		t.Errorf("ListByCompany = %d, %v", len(tables), err)
	}
}

func TestReservationRepositoryPreventsOverlap(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	tables := &tableRepository{db: db}
	repo := &reservationRepository{db: db}
	table := createTable(t, tables, newCompany(), 3, 6)

	first, err := reserve(ctx, repo, table.ID, 18*60, 20*60)
	if err != nil {
		t.Fatal(err)
	}

	_, err = reserve(ctx, repo, table.ID, 19*60, 21*60)
	var conflict *domain.SlotConflictError
	if !errors.As(err, &conflict) || conflict.ReservationID != first.ID {
		t.Fatalf("overlap: err = %v", err)
	}

	if _, err := reserve(ctx, repo, table.ID, 20*60, 21*60+30); err != nil {
		t.Fatalf("touching: %v", err)
	}

	stored, err := repo.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Start != 18*60 || stored.Customer.Phone != "123" || !stored.Date.Equal(first.Date) {
		t.Errorf("round trip mismatch: %+v", stored)
	}

	updated, err := repo.Update(ctx, first.ID, func(r *domain.Reservation) error {
		return r.TransitionTo(domain.ReservationCancelled)
	})
	if err != nil || updated.Status != domain.ReservationCancelled {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	_, err = repo.Update(ctx, first.ID, func(r *domain.Reservation) error {
		return r.TransitionTo(domain.ReservationSeated)
	})
	if !errors.Is(err, domain.ErrReservationClosed) {
		t.Errorf("closed: err = %v", err)
	}

	holding, err := repo.ListHoldingByCompanyAndDate(ctx, table.CompanyID, first.Date)
	if err != nil || len(holding) != 1 {
		t.Errorf("holding = %d, %v", len(holding), err)
	}
}

func TestConcurrentReservationsSerialize(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	table := createTable(t, &tableRepository{db: db}, newCompany(), 9, 4)
	repo := &reservationRepository{db: db}

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reserve(ctx, repo, table.ID, 19*60, 21*60)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrSlotConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != attempts-1 {
		t.Fatalf("succeeded=%d conflicts=%d", succeeded, conflicts)
	}
}

func TestOrderRepository(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	orders := &orderRepository{db: db}
	timeline := &timelineRepository{db: db}

	items := []domain.OrderItem{
		{Name: "Margherita", Price: 899, Quantity: 2},
		{Name: "Lemonade", Price: 299, Quantity: 1},
	}
	o, err := domain.NewOrder(newCompany(), nil, domain.OrderTypeDineIn, items,
		decimal.RequireFromString("0.10"), domain.FlatDeliveryFee(499), "cash", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := orders.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.ID == 0 || o.Code == "" || o.Items[0].ID == 0 {
		t.Fatalf("ids not assigned: %+v", o)
	}

	stored, err := orders.FindByID(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.TaxRate.Equal(decimal.RequireFromString("0.10")) || stored.Total != 2307 || len(stored.Items) != 2 {
		t.Errorf("round trip mismatch: %+v", stored)
	}

	removeID := stored.Items[0].ID
	updated, err := orders.Update(ctx, o.ID, func(o *domain.Order) error {
		if err := o.AddItem(domain.OrderItem{Name: "Tiramisu", Price: 650, Quantity: 1}); err != nil {
			return err
		}
		return o.RemoveItem(removeID)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Subtotal != 949 {
		t.Errorf("subtotal = %d, want 949", updated.Subtotal)
	}

	reloaded, _ := orders.FindByID(ctx, o.ID)
	if len(reloaded.Items) != 2 || !reloaded.Consistent() {
		t.Errorf("reloaded = %+v", reloaded)
	}

	actor := int64(5)
	if _, err := orders.Update(ctx, o.ID, func(o *domain.Order) error {
		return o.TransitionTo(domain.StatusInProgress, &actor, nil)
	}); err != nil {
		t.Fatal(err)
	}

	// A failed mutation leaves nothing behind.
	_, err = orders.Update(ctx, o.ID, func(o *domain.Order) error {
		return o.AddItem(domain.OrderItem{Name: "Espresso", Price: 250, Quantity: 1})
	})
	if !errors.Is(err, domain.ErrOrderLocked) {
		t.Fatalf("locked: err = %v", err)
	}
	reloaded, _ = orders.FindByID(ctx, o.ID)
	if len(reloaded.Items) != 2 || reloaded.Status != domain.StatusInProgress {
		t.Errorf("failed update leaked: %+v", reloaded)
	}

	events, err := timeline.ListForOrder(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Status != domain.StatusCreated || events[1].Status != domain.StatusInProgress {
		t.Fatalf("timeline = %+v", events)
	}
	if events[1].Actor == nil || *events[1].Actor != actor {
		t.Errorf("actor not stored: %+v", events[1])
	}

	if _, err := timeline.ListForOrder(ctx, 1<<40); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("missing order: err = %v", err)
	}
	if _, err := orders.FindByID(ctx, 1<<40); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("missing order: err = %v", err)
	}
}

func TestOrderTaxRateKeepsScale(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	orders := &orderRepository{db: db}
	rate := decimal.RequireFromString("0.08875")

	items := []domain.OrderItem{{Name: "Tasting menu", Price: 10200, Quantity: 1}}
	o, err := domain.NewOrder(newCompany(), nil, domain.OrderTypeDineIn, items, rate, nil, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := orders.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := orders.FindByID(ctx, o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.TaxRate.Equal(rate) {
		t.Errorf("tax rate = %s, want %s", stored.TaxRate, rate)
	}
	if stored.Tax != o.Tax || !stored.Consistent() {
		t.Errorf("reloaded totals drifted: tax %d, want %d", stored.Tax, o.Tax)
	}

	updated, err := orders.Update(ctx, o.ID, func(o *domain.Order) error {
		return o.AddItem(domain.OrderItem{Name: "Espresso", Price: 0, Quantity: 1})
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Tax != o.Tax || updated.Total != o.Total {
		t.Errorf("totals changed after adding a free item: %d/%d, want %d/%d", updated.Tax, updated.Total, o.Tax, o.Total)
	}
}
