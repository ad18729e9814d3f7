package order

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderColumnNames = []string{"id", "owner_id", "items", "delivery_cost", "total", "delivery_type", "delivery_info", "payment_reference", "status", "created_at", "updated_at"}

func orderRow(o Order) []driver.Value {
	items, _ := json.Marshal(o.Items)
	info, _ := json.Marshal(o.DeliveryInfo)
	return []driver.Value{o.ID, o.OwnerID, items, o.DeliveryCost.String(), o.Total.String(), string(o.DeliveryType), info, o.PaymentReference, string(o.Status), o.CreatedAt, o.UpdatedAt}
}

func TestPostgresRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	want := randomOrder(4, StatusShipped)
	mock.ExpectQuery("FROM orders WHERE id = \\$1").WithArgs(want.ID).
		WillReturnRows(sqlmock.NewRows(orderColumnNames).AddRow(orderRow(want)...))
	mock.ExpectQuery("FROM orders WHERE id = \\$1").WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	repo := NewPostgresRepository(db)
	got, err := repo.FindByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, StatusShipped, got.Status)
	assert.True(t, want.Total.Equal(got.Total))
	require.Len(t, got.Items, 1)
	assert.Equal(t, want.DeliveryInfo, got.DeliveryInfo)

	_, err = repo.FindByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListFiltersByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	o := randomOrder(4, StatusProcessing)
	mock.ExpectQuery("status = ANY").WithArgs(pq.Array([]string{"processing", "shipped"})).
		WillReturnRows(sqlmock.NewRows(orderColumnNames).AddRow(orderRow(o)...))

	got, err := NewPostgresRepository(db).List(context.Background(), []Status{StatusProcessing, StatusShipped})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	o := randomOrder(4, StatusShipped)
	o.UpdatedAt = at

	mock.ExpectQuery("UPDATE orders").WithArgs(o.ID, "processing", "shipped", at).
		WillReturnRows(sqlmock.NewRows(orderColumnNames).AddRow(orderRow(o)...))
	mock.ExpectQuery("UPDATE orders").WithArgs(o.ID, "processing", "shipped", at).
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	repo := NewPostgresRepository(db)
	got, err := repo.UpdateStatus(context.Background(), o.ID, StatusProcessing, StatusShipped, at)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, got.Status)

	_, err = repo.UpdateStatus(context.Background(), o.ID, StatusProcessing, StatusShipped, at)
	require.ErrorIs(t, err, ErrStatusChanged)
}

func TestPostgresRepository_CreateTx(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		wantErr error
	}{
		{name: "inserted", rows: sqlmock.NewRows([]string{"id"}).AddRow("x")},
		{name: "payment reference taken", rows: sqlmock.NewRows([]string{"id"}), wantErr: ErrDuplicatePaymentReference},
		{name: "driver failure", err: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			o := randomOrder(4, StatusProcessing)
			mock.ExpectBegin()
			q := mock.ExpectQuery("INSERT INTO orders").WithArgs(
				o.ID, o.OwnerID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				"pickup", sqlmock.AnyArg(), o.PaymentReference, "processing", o.CreatedAt, o.UpdatedAt,
			)
			if tt.err != nil {
				q.WillReturnError(tt.err)
			} else {
				q.WillReturnRows(tt.rows)
			}

			tx, err := db.Begin()
			require.NoError(t, err)

			err = NewPostgresRepository(db).CreateTx(context.Background(), tx, o)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.err != nil:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrDuplicatePaymentReference)
			default:
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
			_ = tx.Rollback()
		})
	}
}
