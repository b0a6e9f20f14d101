package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

var orderCols = []string{"id", "user_id", "items", "total_amount", "delivery_info", "payment_info", "status", "order_date", "created_at", "updated_at"}

const orderID = "1b2c3d4e-5f60-4718-8a9b-0c1d2e3f4a01"

func samplePlacedOrder(now time.Time) Order {
	return Order{
		ID:           orderID,
		UserID:       buyerID,
		Items:        []LineItem{{ProductID: p1ID, Name: "Pleated Skirt", Price: decimal.RequireFromString("20.00"), Quantity: 2}},
		TotalAmount:  decimal.RequireFromString("40.00"),
		DeliveryInfo: validDelivery(),
		PaymentInfo:  PaymentInfo{Method: MethodCard, Status: PaymentPending},
		Status:       StatusPending,
		OrderDate:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPostgresPlace_CommitsOrderAndCartClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts").WithArgs(buyerID, now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Place(context.Background(), samplePlacedOrder(now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresPlace_RollsBackWhenCartClearFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts").WillReturnError(boom)
	mock.ExpectRollback()

	if err := repo.Place(context.Background(), samplePlacedOrder(time.Now().UTC())); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(orderCols).AddRow(
		orderID, buyerID,
		[]byte(`[{"productId":"`+p1ID+`","name":"Pleated Skirt","price":"20.00","quantity":2,"color":"default","size":"default"}]`),
		"40.00",
		[]byte(`{"firstName":"Jane","lastName":"Doe","phoneNumber":"1","address":{"addressLine1":"1 High St","city":"Leeds","postcode":"LS1","country":"UK"}}`),
		[]byte(`{"method":"Card","status":"Pending"}`),
		"Pending", now, now, now,
	)
	mock.ExpectQuery("WHERE user_id = \\$1").WithArgs(buyerID).WillReturnRows(rows)

	orders, err := repo.ListByUser(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || orders[0].Items[0].Quantity != 2 || orders[0].DeliveryInfo.Address.City != "Leeds" {
		t.Fatalf("unexpected orders %+v", orders)
	}
	if !orders[0].TotalAmount.Equal(decimal.NewFromInt(40)) || orders[0].Status != StatusPending {
		t.Fatalf("unexpected order fields %+v", orders[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdateStatus_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("UPDATE orders").
		WithArgs(orderID, "Shipped", "Cancelled", now).
		WillReturnRows(sqlmock.NewRows(orderCols))
	mock.ExpectQuery("WHERE id = \\$1").WithArgs(orderID).WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
		orderID, buyerID, []byte(`[]`), "0", []byte(`{}`), []byte(`{}`), "Delivered", now, now, now,
	))
	mock.ExpectQuery("UPDATE orders").
		WithArgs(orderID, "Pending", "Cancelled", now).
		WillReturnRows(sqlmock.NewRows(orderCols))
	mock.ExpectQuery("WHERE id = \\$1").WithArgs(orderID).WillReturnRows(sqlmock.NewRows(orderCols))

	if _, err := repo.UpdateStatus(context.Background(), orderID, StatusShipped, StatusCancelled, now); !errors.Is(err, ErrStatusChanged) {
		t.Fatalf("expected ErrStatusChanged, got %v", err)
	}
	if _, err := repo.UpdateStatus(context.Background(), orderID, StatusPending, StatusCancelled, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
