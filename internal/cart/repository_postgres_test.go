package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_GetMissingCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT items, version FROM carts").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"items", "version"}))

	c, err := NewPostgresRepository(db).Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.OwnerID)
	assert.Empty(t, c.Items)
}

func TestPostgresRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO carts").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"items", "version"}).
			AddRow([]byte(`[{"productId":1,"name":"Cat Food","unitPrice":"10","quantity":2}]`), 3))
	mock.ExpectQuery("UPDATE carts SET items").
		WithArgs(5, `[{"productId":1,"name":"Cat Food","unitPrice":"10","quantity":5}]`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(4))
	mock.ExpectCommit()

	c, err := NewPostgresRepository(db).Update(context.Background(), 5, func(c *Cart) error {
		c.Items[0].Quantity += 3
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.Version)
	assert.Equal(t, 5, c.Items[0].Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateRollsBackOnCallbackError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO carts").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE").WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"items", "version"}).AddRow([]byte(`[]`), 0))
	mock.ExpectRollback()

	_, err = NewPostgresRepository(db).Update(context.Background(), 5, func(*Cart) error {
		return ErrLineNotFound
	})
	require.ErrorIs(t, err, ErrLineNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ClearTx(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "version matches", affected: 1},
		{name: "version moved on", affected: 0, wantErr: ErrCartChanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec("UPDATE carts SET items = '\\[\\]'").WithArgs(5, int64(3)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectRollback()

			tx, err := db.Begin()
			require.NoError(t, err)
			err = NewPostgresRepository(db).ClearTx(context.Background(), tx, 5, 3)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, tx.Rollback())
		})
	}

	t.Run("driver error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE carts").WillReturnError(errors.New("deadlock detected"))

		tx, err := db.Begin()
		require.NoError(t, err)
		err = NewPostgresRepository(db).ClearTx(context.Background(), tx, 5, 3)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCartChanged)
	})
}
