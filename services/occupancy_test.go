package services

import (
	"testing"
	"time"

	"quickpark/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTransitionSensor(t *testing.T) {
	// 感測器在空位回報空位：重複訊號，拒絕
	rule := resolveTransition(models.SlotAvailable, ActorSensor, models.SlotAvailable)
	assert.Equal(t, effectReject, rule.effect)
	assert.ErrorIs(t, rule.err, ErrConflict)

	// 感測器在空位回報佔用：直接佔用（無預約的入場）
	rule = resolveTransition(models.SlotAvailable, ActorSensor, models.SlotOccupied)
	assert.Equal(t, effectOccupy, rule.effect)

	// 感測器在預約位回報空位：預約還沒入場，不動狀態
	rule = resolveTransition(models.SlotReserved, ActorSensor, models.SlotAvailable)
	assert.Equal(t, effectNoop, rule.effect)
	assert.NotEmpty(t, rule.reason)

	// 感測器在預約位回報佔用：預約人入場
	rule = resolveTransition(models.SlotReserved, ActorSensor, models.SlotOccupied)
	assert.Equal(t, effectOccupy, rule.effect)

	// 感測器在佔用位回報空位：結束停留
	rule = resolveTransition(models.SlotOccupied, ActorSensor, models.SlotAvailable)
	assert.Equal(t, effectCloseStay, rule.effect)

	// 感測器在佔用位回報佔用：重複訊號，拒絕
	rule = resolveTransition(models.SlotOccupied, ActorSensor, models.SlotOccupied)
	assert.Equal(t, effectReject, rule.effect)
	assert.ErrorIs(t, rule.err, ErrConflict)
}

func TestResolveTransitionUser(t *testing.T) {
	// 使用者唯一允許的轉移：放棄自己的預約
	rule := resolveTransition(models.SlotReserved, ActorUser, models.SlotAvailable)
	assert.Equal(t, effectUserRelease, rule.effect)

	// 其餘組合一律拒絕，且分類都是權限問題
	rejected := []struct {
		current   string
		requested string
	}{
		{models.SlotAvailable, models.SlotAvailable},
		{models.SlotAvailable, models.SlotOccupied},
		{models.SlotReserved, models.SlotOccupied},
		{models.SlotOccupied, models.SlotAvailable},
		{models.SlotOccupied, models.SlotOccupied},
	}
	for _, tc := range rejected {
		rule := resolveTransition(tc.current, ActorUser, tc.requested)
		require.Equal(t, effectReject, rule.effect, "current=%s requested=%s", tc.current, tc.requested)
		assert.ErrorIs(t, rule.err, ErrForbidden)
	}
}

func TestResolveTransitionUnknownKey(t *testing.T) {
	// 表上沒有的組合一律拒絕
	rule := resolveTransition(models.SlotReserved, ActorSensor, models.SlotReserved)
	assert.Equal(t, effectReject, rule.effect)
	assert.ErrorIs(t, rule.err, ErrForbidden)

	rule = resolveTransition("unknown", ActorSensor, models.SlotOccupied)
	assert.Equal(t, effectReject, rule.effect)
}

func TestCloseStayComputesStaySeconds(t *testing.T) {
	mock := newMockDB(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	since := now.Add(-90 * time.Second)
	slot := &models.Slot{SlotNumber: 7, Status: models.SlotOccupied, OccupiedSince: &since}

	// last_stay_seconds = floor(now - occupied_since)，其餘欄位整位清空
	mock.ExpectExec("UPDATE `slot` SET").
		WithArgs(int64(90), nil, nil, nil, nil, models.SlotAvailable, sqlmock.AnyArg(), 7, models.SlotOccupied).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status", "last_stay_seconds"}).
			AddRow(7, models.SlotAvailable, 90))

	updated, err := closeStay(slot, now)
	require.NoError(t, err)
	assert.Equal(t, models.SlotAvailable, updated.Status)
	assert.Equal(t, int64(90), updated.LastStaySeconds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseStayClampsNegativeDuration(t *testing.T) {
	mock := newMockDB(t)

	// 時鐘歪掉讓 occupied_since 跑到未來，停留秒數壓回 0 而不是負數
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	since := now.Add(30 * time.Second)
	slot := &models.Slot{SlotNumber: 7, Status: models.SlotOccupied, OccupiedSince: &since}

	mock.ExpectExec("UPDATE `slot` SET").
		WithArgs(int64(0), nil, nil, nil, nil, models.SlotAvailable, sqlmock.AnyArg(), 7, models.SlotOccupied).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `slot`").
		WillReturnRows(sqlmock.NewRows([]string{"slot_number", "status", "last_stay_seconds"}).
			AddRow(7, models.SlotAvailable, 0))

	updated, err := closeStay(slot, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.LastStaySeconds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseStayLostRace(t *testing.T) {
	mock := newMockDB(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	since := now.Add(-time.Hour)
	slot := &models.Slot{SlotNumber: 7, Status: models.SlotOccupied, OccupiedSince: &since}

	mock.ExpectExec("UPDATE `slot` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := closeStay(slot, now)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
