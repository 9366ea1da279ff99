package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteVehiclePromotionFailureIsNotFatal(t *testing.T) {
	mock := newMockDB(t)

	// 刪掉預設車後要把最早的一台升為預設，升級失敗只記 log，刪除本身仍算成功
	mock.ExpectExec("DELETE FROM `vehicle`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `vehicle`").
		WillReturnRows(sqlmock.NewRows([]string{"license_plate"}))
	mock.ExpectQuery("SELECT \\* FROM `vehicle`").
		WillReturnRows(sqlmock.NewRows([]string{"license_plate", "user_id"}).
			AddRow("ABC-123", 42))
	mock.ExpectExec("UPDATE `vehicle`").
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, DeleteVehicle("XYZ-999", 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVehicleNotOwned(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM `vehicle`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := DeleteVehicle("XYZ-999", 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
