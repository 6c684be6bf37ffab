package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE items").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err = txManager.WithTx(ctx, func(txCtx context.Context) error {
			querier := GetTx(txCtx, db)
			_, execErr := querier.ExecContext(txCtx, "UPDATE items SET title = 'x'")
			return execErr
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		txManager := NewTxManager(db)
		fnErr := errors.New("boom")
		err = txManager.WithTx(ctx, func(txCtx context.Context) error {
			return fnErr
		})

		require.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns begin error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		beginErr := errors.New("connection lost")
		mock.ExpectBegin().WillReturnError(beginErr)

		txManager := NewTxManager(db)
		err = txManager.WithTx(ctx, func(txCtx context.Context) error {
			t.Fatal("fn must not run when begin fails")
			return nil
		})

		require.ErrorIs(t, err, beginErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetTx(t *testing.T) {
	t.Run("returns db when no transaction in context", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		querier := GetTx(context.Background(), db)
		assert.Equal(t, db, querier)
	})

	t.Run("returns transaction from context", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectCommit()

		txManager := NewTxManager(db)
		err = txManager.WithTx(context.Background(), func(txCtx context.Context) error {
			querier := GetTx(txCtx, db)
			assert.NotEqual(t, Querier(db), querier)
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
