package postgres

import (
	"context"
	"errors"
	"testing"

	"tukangku/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepo_Credit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET balance = balance \\+").
		WithArgs(userID, int64(50000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Credit(context.Background(), tx, userID, 50000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Credit_AccountMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET balance = balance \\+").
		WithArgs(userID, int64(50000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Credit(context.Background(), tx, userID, 50000)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "RES_001", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Credit_RejectsNonPositiveAmount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Credit(context.Background(), tx, uuid.New(), 0)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "WAL_002", appErr.Code)
}

func TestWalletRepo_Debit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET balance = balance -").
		WithArgs(userID, int64(30000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Debit(context.Background(), tx, userID, 30000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Debit_InsufficientBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET balance = balance -").
		WithArgs(userID, int64(30000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Debit(context.Background(), tx, userID, 30000)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "WAL_001", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Debit_AccountMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET balance = balance -").
		WithArgs(userID, int64(30000)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Debit(context.Background(), tx, userID, 30000)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "RES_001", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT balance FROM users WHERE id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(125000)))

	balance, err := repo.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(125000), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetBalance_AccountMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT balance FROM users WHERE id").
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetBalance(context.Background(), userID)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "RES_001", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
