package services

import (
	"testing"
	"time"

	"quickpark/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestConfirmReservationRejectsSecondHold(t *testing.T) {
	mock := newMockDB(t)

	// 同一人已經有一個 reserved/occupied 車位，跨車位檢查要擋下來
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	_, err := ConfirmReservation(7, 42)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmReservationRequiresLiveLock(t *testing.T) {
	mock := newMockDB(t)

	// 軟鎖已過期，就算持有人是本人也不能轉預約
	expired := time.Now().UTC().Add(-time.Minute)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status", "lock_holder_id", "lock_expires_at"}).
			AddRow(7, models.SlotAvailable, 42, expired))
	mock.ExpectRollback()

	_, err := ConfirmReservation(7, 42)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmReservationRejectsForeignLock(t *testing.T) {
	mock := newMockDB(t)

	// 鎖是別人的
	future := time.Now().UTC().Add(time.Minute)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status", "lock_holder_id", "lock_expires_at"}).
			AddRow(7, models.SlotAvailable, 9, future))
	mock.ExpectRollback()

	_, err := ConfirmReservation(7, 42)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmReservationLostRace(t *testing.T) {
	mock := newMockDB(t)

	// 前置檢查都過，commit 的條件式更新打空代表被搶先
	future := time.Now().UTC().Add(time.Minute)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status", "lock_holder_id", "lock_expires_at"}).
			AddRow(7, models.SlotAvailable, 42, future))
	mock.ExpectExec("UPDATE `slot` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := ConfirmReservation(7, 42)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
