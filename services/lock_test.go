package services

import (
	"testing"
	"time"

	"quickpark/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeLeaseSeconds(t *testing.T) {
	// 非正數落回預設值
	assert.Equal(t, DefaultLockLeaseSeconds, normalizeLeaseSeconds(0))
	assert.Equal(t, DefaultLockLeaseSeconds, normalizeLeaseSeconds(-10))

	// 範圍內的自訂值照用
	assert.Equal(t, 30, normalizeLeaseSeconds(30))
	assert.Equal(t, MaxLockLeaseSeconds, normalizeLeaseSeconds(MaxLockLeaseSeconds))

	// 超過上限一律截到上限，client 不能自己挑一個拿不回來的租期
	assert.Equal(t, MaxLockLeaseSeconds, normalizeLeaseSeconds(MaxLockLeaseSeconds+1))
	assert.Equal(t, MaxLockLeaseSeconds, normalizeLeaseSeconds(1000000000))
}

func TestAcquireOrExtendLockRejectsForeignLiveLease(t *testing.T) {
	mock := newMockDB(t)

	// 車位可用，但別人的租約還活著
	future := time.Now().UTC().Add(time.Minute)
	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status", "lock_holder_id", "lock_expires_at"}).
			AddRow(7, models.SlotAvailable, 9, future))

	_, err := AcquireOrExtendLock(7, 42, 0)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireOrExtendLockRejectsNonAvailableSlot(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status"}).
			AddRow(7, models.SlotReserved))

	_, err := AcquireOrExtendLock(7, 42, 0)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireOrExtendLockLostRace(t *testing.T) {
	mock := newMockDB(t)

	// 讀的時候沒人鎖，commit 時條件式更新打空代表被搶先
	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status"}).
			AddRow(7, models.SlotAvailable))
	mock.ExpectExec("UPDATE `slot` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := AcquireOrExtendLock(7, 42, 0)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseLockRequiresHolder(t *testing.T) {
	mock := newMockDB(t)

	// 鎖在別人手上，非持有人不能放
	future := time.Now().UTC().Add(time.Minute)
	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status", "lock_holder_id", "lock_expires_at"}).
			AddRow(7, models.SlotAvailable, 9, future))

	_, err := ReleaseLock(7, 42)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}
