package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"medsupply/internal/order/domain"
)

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)

func TestMemory_ListByUser_NewestFirst(t *testing.T) {
	repo := NewMemoryRepository(nil)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Amoxicillin 500mg", "Insulin 100IU", "Omeprazole 20mg"} {
		o := &domain.Order{ID: name, UserID: "u-1", MedicationName: name, Quantity: 10, Status: domain.StatusShipped, RequestedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	_ = repo.Create(ctx, &domain.Order{ID: "other", UserID: "u-2", Quantity: 1})

	got, err := repo.ListByUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "Omeprazole 20mg" || got[2].ID != "Amoxicillin 500mg" {
		t.Errorf("order = %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
	got[0].Status = "mutated"
	again, _ := repo.ListByUser(ctx, "u-1")
	if again[0].Status == "mutated" {
		t.Error("ListByUser returned a shared pointer")
	}
}

func TestMemory_ListPublic(t *testing.T) {
	names := map[string]string{"u-1": "Addis General Hospital"}
	repo := NewMemoryRepository(func(ctx context.Context, userID string) string { return names[userID] })
	ctx := context.Background()
	for i := 0; i < PublicFeedLimit+5; i++ {
		_ = repo.Create(ctx, &domain.Order{ID: string(rune('a' + i)), UserID: "u-1", Quantity: 1, Status: domain.StatusDelivered})
	}
	got, err := repo.ListPublic(ctx, 0)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(got) != PublicFeedLimit {
		t.Fatalf("len = %d, want %d", len(got), PublicFeedLimit)
	}
	if got[0].HospitalName != "Addis General Hospital" {
		t.Errorf("hospital = %q", got[0].HospitalName)
	}
	if n, _ := repo.CountAll(ctx); n != PublicFeedLimit+5 {
		t.Errorf("CountAll = %d", n)
	}
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestPostgres_ListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "medication_name", "quantity", "status", "requested_at", "batch_number"}).
		AddRow("o-1", "u-1", "Insulin 100IU", 100, domain.StatusDelivered, at, "a1b2c3d4").
		AddRow("o-2", "u-1", "Paracetamol 500mg", 500, domain.StatusPendingApproval, at, "deadbeef")
	mock.ExpectQuery(`(?s)^SELECT .+ FROM orders WHERE user_id = \$1 ORDER BY requested_at DESC$`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[1].BatchNumber != "deadbeef" || got[0].Quantity != 100 {
		t.Fatalf("unexpected orders: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgres_ListPublic_NoUserIDs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "medication_name", "quantity", "status", "hospital_name"}).
		AddRow("o-1", "Vitamin D 1000IU", 150, domain.StatusShipped, "Hawassa Medical Center")
	mock.ExpectQuery(`(?s)SELECT o\.id, o\.medication_name, o\.quantity, o\.status, u\.hospital_name.+JOIN users u.+LIMIT \$1`).
		WithArgs(PublicFeedLimit).
		WillReturnRows(rows)

	got, err := repo.ListPublic(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(got) != 1 || got[0].HospitalName != "Hawassa Medical Center" {
		t.Fatalf("unexpected feed: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgres_Create(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	o := &domain.Order{ID: "o-1", UserID: "u-1", MedicationName: "Insulin 100IU", Quantity: 100, Status: domain.StatusDelivered, RequestedAt: time.Now().UTC(), BatchNumber: "0a0b0c0d"}
	mock.ExpectExec(`^INSERT INTO orders`).
		WithArgs(o.ID, o.UserID, o.MedicationName, o.Quantity, o.Status, o.RequestedAt, o.BatchNumber).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgres_CountAll_Error(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM orders$`).WillReturnError(dbErr)

	if _, err := repo.CountAll(context.Background()); !errors.Is(err, dbErr) {
		t.Fatalf("CountAll err = %v, want %v", err, dbErr)
	}
}
