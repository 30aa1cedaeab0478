package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectErasePreamble(mock sqlmock.Sqlmock, id string) {
	for _, table := range []string{"sessions", "user_verification", "points_ledger", "customer_tags", "password_reset_tokens"} {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM ` + table)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
}

func TestEraseAnonymizesOrdersBeforeDetaching(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	// Expectations are ordered: the PII rewrite must land while the
	// orders still carry user_id, before the detach nulls it.
	mock.ExpectBegin()
	expectErasePreamble(mock, "u1")
	mock.ExpectExec(regexp.QuoteMeta(`SET customer_name = NULL`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET user_id = NULL`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Erase(context.Background(), "u1", true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEraseWithoutAnonymizeKeepsOrderSnapshots(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	expectErasePreamble(mock, "u1")
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET user_id = NULL`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Erase(context.Background(), "u1", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
