package services

import (
	"testing"

	"quickpark/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpiredLocksOnlyClearsLeaseFields(t *testing.T) {
	mock := newMockDB(t)

	// SET 只有租約欄位，status 不在其中；WHERE 限定 available
	mock.ExpectExec("UPDATE `slot` SET `lock_expires_at`=\\?,`lock_holder_id`=\\?,`updated_at`=\\? WHERE status = \\?").
		WithArgs(nil, nil, sqlmock.AnyArg(), models.SlotAvailable, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, SweepExpiredLocks())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepAbandonedReservationsResetsSlot(t *testing.T) {
	mock := newMockDB(t)

	// 整位重設回 available，但 WHERE 限定 reserved，occupied 一律不碰
	mock.ExpectExec("UPDATE `slot` SET `lock_expires_at`=\\?,`lock_holder_id`=\\?,`occupant_id`=\\?,`status`=\\?,`updated_at`=\\? WHERE status = \\?").
		WithArgs(nil, nil, nil, models.SlotAvailable, sqlmock.AnyArg(), models.SlotReserved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, SweepAbandonedReservations())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepsAreNoopWhenNothingExpired(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec("UPDATE `slot` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, SweepExpiredLocks())

	mock.ExpectExec("UPDATE `slot` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, SweepAbandonedReservations())

	assert.NoError(t, mock.ExpectationsWereMet())
}
