package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatusUpsertsMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewVerificationRepository(db)

	// A user who never uploaded has no row yet; the decision still lands.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO user_verification (user_id, status, updated_at)`)).
		WithArgs("u1", "approved", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetStatus(context.Background(), "u1", "approved"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
