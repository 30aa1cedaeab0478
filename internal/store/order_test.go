package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockOrderQuery = `SELECT user_id, status, subtotal_cents, points_awarded_at`

func TestAwardCompletionPointsSkipsStampedOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockOrderQuery)).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status", "subtotal_cents", "points_awarded_at"}).
			AddRow("u1", "completed", int64(2599), time.Now()))
	mock.ExpectRollback()

	points, already, err := repo.AwardCompletionPoints(context.Background(), "o1", "e1", func(int64) int64 {
		t.Fatal("calc must not run for an already-stamped order")
		return 0
	})
	require.NoError(t, err)
	assert.True(t, already)
	assert.Zero(t, points)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardCompletionPointsSkipsDetachedOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockOrderQuery)).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status", "subtotal_cents", "points_awarded_at"}).
			AddRow(nil, "completed", int64(2599), nil))
	mock.ExpectRollback()

	points, already, err := repo.AwardCompletionPoints(context.Background(), "o1", "e1", func(int64) int64 { return 250 })
	require.NoError(t, err)
	assert.True(t, already, "detached orders have nobody to credit")
	assert.Zero(t, points)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardCompletionPointsStampsLedgersAndCredits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockOrderQuery)).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "status", "subtotal_cents", "points_awarded_at"}).
			AddRow("u1", "completed", int64(2599), nil))
	mock.ExpectExec(regexp.QuoteMeta(`SET points_earned = $1, points_awarded_at = $2`)).
		WithArgs(int64(250), sqlmock.AnyArg(), "o1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO points_ledger`)).
		WithArgs("e1", "u1", "o1", "earn", int64(250), "Order completed", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SET points_balance = points_balance + $1`)).
		WithArgs(int64(250), sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	points, already, err := repo.AwardCompletionPoints(context.Background(), "o1", "e1", func(subtotal int64) int64 {
		return subtotal / 100 * 10
	})
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, int64(250), points)

	assert.NoError(t, mock.ExpectationsWereMet())
}
